package handler

import (
	"net/http"
	"time"

	"github.com/ngo-verify-api/internal/infrastructure/otpstore"
)

// OTPStatusHandler exposes the pending OTP mapping for debugging.
// Only reachable in development mode.
type OTPStatusHandler struct {
	store otpstore.Store
	env   string
}

func NewOTPStatusHandler(store otpstore.Store, env string) *OTPStatusHandler {
	return &OTPStatusHandler{store: store, env: env}
}

// OTPStatusEntry is one pending record with its expiry rendered human-readable.
type OTPStatusEntry struct {
	OTP       string `json:"otp"`
	ExpiresAt string `json:"expires_at"`
	RequestID string `json:"request_id"`
}

type OTPStatusEnvelope struct {
	OTPCount int                       `json:"otp_count"`
	OTPs     map[string]OTPStatusEntry `json:"otps"`
}

func (h *OTPStatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	if h.env != "development" {
		writeError(w, http.StatusForbidden, "Not allowed in production")
		return
	}
	records, err := h.store.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load otp store")
		return
	}
	entries := make(map[string]OTPStatusEntry, len(records))
	for email, rec := range records {
		entries[email] = OTPStatusEntry{
			OTP:       rec.Code,
			ExpiresAt: time.Unix(rec.ExpiresAt, 0).Format("2006-01-02 15:04:05"),
			RequestID: rec.RequestID,
		}
	}
	writeJSON(w, http.StatusOK, OTPStatusEnvelope{OTPCount: len(records), OTPs: entries})
}
