// Package rekey reacts to rejected or failed sessions by discarding the
// compromised key material and requesting a fresh secret from the user.
//
// There is deliberately no automatic retry with the held secret: a mismatch
// or tag failure is evidence the secret is wrong or compromised, and a silent
// retry would mask that.
package rekey
