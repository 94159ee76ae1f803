// Package app wires application dependencies for the CLI.
//
// It resolves the provisioned secret into key material, builds the concrete
// stores and services from config, and exposes them via the Wire struct for
// commands to use.
package app
