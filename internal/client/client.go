// Package client talks to a sealchat server: it encrypts the prompt,
// advertises the key fingerprint, and decodes the encrypted reply stream
// through a receiver session.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"sealchat/internal/crypto"
	"sealchat/internal/domain"
	"sealchat/internal/services/session"
	"sealchat/internal/transport/sse"
)

// FingerprintHeader mirrors the server's request/response header.
const FingerprintHeader = "X-Key-Fingerprint"

// Client is an HTTP client for the encrypted chat API.
type Client struct {
	Base  string
	HTTP  *http.Client
	Rekey domain.RekeyHandler
	Log   *logrus.Entry
}

// New builds a client against base using http.DefaultClient.
func New(base string, rekey domain.RekeyHandler) *Client {
	return &Client{Base: base, HTTP: http.DefaultClient, Rekey: rekey}
}

type apiErrorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Chat sends prompt encrypted under km and streams the decrypted reply
// chunks to deliver in arrival order, returning the terminal metadata.
//
// km is owned by the exchange: on a fingerprint rejection or a mid-stream
// tag failure the re-key handler wipes it and a fresh derivation is needed
// for the next call.
func (c *Client) Chat(ctx context.Context, km *domain.KeyMaterial, prompt string, deliver func(chunk []byte) error) (domain.Metadata, error) {
	codec, err := crypto.NewCodec(*km)
	if err != nil {
		return domain.Metadata{}, err
	}
	raw, err := json.Marshal(struct {
		Message string `json:"message"`
	}{Message: prompt})
	if err != nil {
		return domain.Metadata{}, err
	}
	env, err := codec.Seal(raw)
	if err != nil {
		return domain.Metadata{}, err
	}
	body, err := json.Marshal(struct {
		EncryptedData string `json:"encrypted_data"`
	}{EncryptedData: env.Base64()})
	if err != nil {
		return domain.Metadata{}, err
	}

	rcv, err := session.NewReceiver(km, c.Rekey, c.Log)
	if err != nil {
		return domain.Metadata{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return domain.Metadata{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(FingerprintHeader, string(km.Fingerprint))

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return domain.Metadata{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Metadata{}, c.refused(ctx, rcv, resp)
	}

	// Confirm the responder's advertised fingerprint before any frame.
	if err := rcv.ConfirmKey(ctx, domain.Fingerprint(resp.Header.Get(FingerprintHeader))); err != nil {
		return domain.Metadata{}, err
	}
	return rcv.Consume(ctx, sse.NewReader(resp.Body), deliver)
}

// refused maps a non-200 response onto the session state machine. A
// fingerprint rejection by the peer is the Rejected transition; everything
// else is a plain transport error.
func (c *Client) refused(ctx context.Context, rcv *session.Receiver, resp *http.Response) error {
	var body apiErrorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error.Code == "" {
		return fmt.Errorf("chat request: %s", resp.Status)
	}
	if body.Error.Code == "FINGERPRINT_MISMATCH" {
		_ = rcv.Reject(ctx)
		return fmt.Errorf("%w: %s", domain.ErrFingerprintMismatch, body.Error.Message)
	}
	return fmt.Errorf("chat request %s: %s", body.Error.Code, body.Error.Message)
}

// Validate asks the server whether fp matches its configured key.
func (c *Client) Validate(ctx context.Context, fp domain.Fingerprint) (bool, error) {
	raw, err := json.Marshal(map[string]string{"fingerprint": string(fp)})
	if err != nil {
		return false, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+"/api/encryption/validate", bytes.NewReader(raw))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("validate: %s", resp.Status)
	}
	var out struct {
		Data struct {
			Valid bool `json:"valid"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, err
	}
	return out.Data.Valid, nil
}
