package server

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jonathan/faculty-recruitment/internal/recruitment"
	"github.com/jonathan/faculty-recruitment/internal/types"
)

// SignatureHeader carries the hex HMAC-SHA256 of the webhook body
const SignatureHeader = "X-Signature"

// RolePaymentGateway identifies the payment gateway in audit events
const RolePaymentGateway types.Role = "payment_gateway"

// SignPayload returns the hex HMAC-SHA256 signature of body
func SignPayload(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// validSignature compares a header value, with or without a "sha256="
// prefix, against the expected signature in constant time
func validSignature(secret, body []byte, header string) bool {
	got, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(header), "sha256="))
	if err != nil || len(got) == 0 {
		return false
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

// handlePaymentWebhook records the payment status reported by the gateway
func (s *Server) handlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	if len(s.webhookSecret) == 0 {
		s.errorResponse(w, http.StatusServiceUnavailable, "Payment webhook is not configured")
		return
	}
	body, ok := s.readBody(w, r, maxJSONBodyBytes)
	if !ok {
		return
	}
	if !validSignature(s.webhookSecret, body, r.Header.Get(SignatureHeader)) {
		s.errorResponse(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	var req types.PaymentWebhookRequest
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := recruitment.ValidateRequest(&req); err != nil {
		s.jsonResponse(w, http.StatusBadRequest, errorBody(err))
		return
	}

	app, err := s.service.SetPaymentStatus(r.Context(), types.Principal{Role: RolePaymentGateway}, req)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"application_id": app.ID,
		"payment_status": app.PaymentStatus,
	})
}
