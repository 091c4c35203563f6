package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ngo-verify-api/internal/application/verification"
	"github.com/ngo-verify-api/internal/domain"
	"github.com/ngo-verify-api/internal/pkg/validate"
)

// VerifyHandler handles the NGO verification and OTP confirmation endpoints.
type VerifyHandler struct {
	svc verification.Service
}

func NewVerifyHandler(svc verification.Service) *VerifyHandler {
	return &VerifyHandler{svc: svc}
}

type VerifyNGORequest struct {
	NGOName  string `json:"ngo_name" validate:"required"`
	NGOEmail string `json:"ngo_email" validate:"required,email"`
}

type VerifyOTPRequest struct {
	NGOEmail string `json:"ngo_email" validate:"required,email"`
	OTP      string `json:"otp" validate:"required"`
}

func (h *VerifyHandler) VerifyNGO(w http.ResponseWriter, r *http.Request) {
	var req VerifyNGORequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.svc.Request(r.Context(), req.NGOName, req.NGOEmail); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusUnauthorized, "Invalid NGO details")
		case errors.Is(err, domain.ErrAlreadyRegistered):
			writeError(w, http.StatusBadRequest, "NGO already registered. Please login.")
		case errors.Is(err, domain.ErrNotificationFailure):
			writeError(w, http.StatusInternalServerError, "Failed to send OTP")
		default:
			writeError(w, http.StatusInternalServerError, "verification failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "OTP sent successfully"})
}

func (h *VerifyHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.svc.Confirm(r.Context(), req.NGOEmail, req.OTP); err != nil {
		switch {
		case errors.Is(err, domain.ErrNoPendingOTP):
			writeError(w, http.StatusBadRequest, "No OTP request found or OTP expired")
		case errors.Is(err, domain.ErrExpired):
			writeError(w, http.StatusBadRequest, "OTP expired. Please request a new one.")
		case errors.Is(err, domain.ErrMismatch):
			writeError(w, http.StatusBadRequest, "Invalid OTP")
		default:
			writeError(w, http.StatusInternalServerError, "OTP verification failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "OTP verified successfully"})
}
