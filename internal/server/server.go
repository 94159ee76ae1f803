// Package server exposes the encrypted chat API over HTTP: an SSE streaming
// chat endpoint plus the key-confirmation endpoints.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"sealchat/internal/crypto"
	"sealchat/internal/domain"
	"sealchat/internal/services/chat"
)

// FingerprintHeader carries the advertised key fingerprint on requests and
// responses.
const FingerprintHeader = "X-Key-Fingerprint"

// Error codes returned in the error JSON body.
const (
	codeFingerprintMissing = "ENCRYPTION_FINGERPRINT_MISSING"
	codeEncryptionRequired = "ENCRYPTION_REQUIRED"
	codeJSONInvalid        = "ENCRYPTION_JSON_INVALID"
	codeFingerprintBad     = "FINGERPRINT_MISMATCH"
	codeDecryptionFailed   = "DECRYPTION_FAILED"
	codeRequestMalformed   = "REQUEST_MALFORMED"
	codeStreamUnsupported  = "STREAM_UNSUPPORTED"
)

// Server holds one derived key for its lifetime and serves encrypted
// exchanges against it. Each request still gets its own session.
type Server struct {
	km   domain.KeyMaterial
	chat *chat.Service
	log  *logrus.Entry
}

// New builds a server around the derived key material and chat service.
func New(km domain.KeyMaterial, chatSvc *chat.Service, log *logrus.Entry) (*Server, error) {
	// Fail on an unusable key now rather than on the first request.
	if _, err := crypto.NewCodec(km); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Server{km: km, chat: chatSvc, log: log}, nil
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/api/encryption/status", s.handleStatus)
	mux.HandleFunc("/api/encryption/validate", s.handleValidate)
	return mux
}

// apiError is the error body shape shared by all endpoints.
type apiError struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	var body apiError
	body.Error.Code = code
	body.Error.Message = message
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
}
