package server

import (
	"encoding/json"
	"net/http"

	"sealchat/internal/crypto"
	"sealchat/internal/domain"
	"sealchat/internal/transport/sse"
)

// encryptedRequest is the body of every protected endpoint: one envelope
// wrapping the actual request JSON.
type encryptedRequest struct {
	EncryptedData *string `json:"encrypted_data"`
	// Message being present at the top level means the client sent the
	// request in the clear.
	Message *string `json:"message"`
}

// chatRequest is the plaintext carried inside the envelope.
type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, codeRequestMalformed, "POST required")
		return
	}

	fp := r.Header.Get(FingerprintHeader)
	if fp == "" {
		writeError(w, http.StatusBadRequest, codeFingerprintMissing,
			"encryption is mandatory and no key fingerprint was supplied")
		return
	}

	var req encryptedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeJSONInvalid, "request body is not valid JSON")
		return
	}
	if req.EncryptedData == nil {
		// The client spoke, but in the clear.
		writeError(w, http.StatusNotImplemented, codeEncryptionRequired,
			"this endpoint only accepts encrypted requests")
		return
	}

	// Session-scoped rejection: wrong key means no frame is ever processed.
	if !s.km.Matches(domain.Fingerprint(fp)) {
		s.log.Warn("chat request rejected: fingerprint mismatch")
		writeError(w, http.StatusBadRequest, codeFingerprintBad,
			"key fingerprint does not match; your key is invalid or has changed")
		return
	}

	codec, err := crypto.NewCodec(s.km)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeDecryptionFailed, "encryption unavailable")
		return
	}
	env, err := domain.EnvelopeFromBase64(*req.EncryptedData)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeDecryptionFailed, "encrypted payload malformed")
		return
	}
	plaintext, err := codec.Open(env)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeDecryptionFailed, "encrypted payload did not verify")
		return
	}
	var chatReq chatRequest
	if err := json.Unmarshal(plaintext, &chatReq); err != nil || chatReq.Message == "" {
		writeError(w, http.StatusBadRequest, codeRequestMalformed, "decrypted payload is not a chat request")
		return
	}

	w.Header().Set(FingerprintHeader, string(s.km.Fingerprint))
	sink, err := sse.NewWriter(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeStreamUnsupported, "streaming unsupported")
		return
	}

	// From here on the stream is committed; failures travel as error frames
	// or are already on the wire.
	if _, err := s.chat.StreamReply(r.Context(), s.km, chatReq.Message, sink); err != nil {
		s.log.WithError(err).Error("stream reply failed")
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, codeRequestMalformed, "GET required")
		return
	}
	writeData(w, map[string]any{
		"encryption_enabled":     true,
		"fingerprint_configured": s.km.Fingerprint != "",
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, codeRequestMalformed, "POST required")
		return
	}
	var req struct {
		Fingerprint string `json:"fingerprint"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeJSONInvalid, "request body is not valid JSON")
		return
	}
	if req.Fingerprint == "" {
		writeError(w, http.StatusBadRequest, codeFingerprintMissing, "fingerprint required")
		return
	}
	writeData(w, map[string]any{
		"valid": s.km.Matches(domain.Fingerprint(req.Fingerprint)),
	})
}
