package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ngo-verify-api/internal/application/account"
	"github.com/ngo-verify-api/internal/domain"
	"github.com/ngo-verify-api/internal/pkg/validate"
)

// AccountHandler handles signup completion and login.
type AccountHandler struct {
	svc account.Service
}

func NewAccountHandler(svc account.Service) *AccountHandler {
	return &AccountHandler{svc: svc}
}

type SignupRequest struct {
	NGOEmail string `json:"ngo_email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AccountHandler) CompleteSignup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	result, err := h.svc.CompleteSignup(r.Context(), req.NGOEmail, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "NGO not found in database")
		case errors.Is(err, domain.ErrNotVerified):
			writeError(w, http.StatusForbidden, "Email not verified. Please complete OTP verification first.")
		case errors.Is(err, domain.ErrAlreadyRegistered):
			writeError(w, http.StatusBadRequest, "Email already registered")
		default:
			writeError(w, http.StatusInternalServerError, "Registration failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, SignupEnvelope{
		Message: "NGO registered successfully",
		UID:     result.UID,
		NGOName: result.OrgName,
	})
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	result, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}
	writeJSON(w, http.StatusOK, LoginEnvelope{
		Message: "Login successful",
		UID:     result.UID,
		NGOName: result.OrgName,
		Email:   result.Email,
		Token:   result.Token,
	})
}
