package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ngo-verify-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockVerifySvc struct{ mock.Mock }

func (m *mockVerifySvc) Request(ctx context.Context, orgName, email string) error {
	return m.Called(ctx, orgName, email).Error(0)
}

func (m *mockVerifySvc) Confirm(ctx context.Context, email, code string) error {
	return m.Called(ctx, email, code).Error(0)
}

// --- helpers ---

func postJSON(t *testing.T, h http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func postRaw(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func decodeMessage(t *testing.T, rr *httptest.ResponseRecorder) MessageEnvelope {
	t.Helper()
	var env MessageEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	return env
}

// --- VerifyNGO ---

func TestVerifyNGO_Success(t *testing.T) {
	svc := &mockVerifySvc{}
	svc.On("Request", mock.Anything, "Helping Hands", "ops@helpinghands.org").Return(nil)
	h := NewVerifyHandler(svc)

	rr := postJSON(t, h.VerifyNGO, VerifyNGORequest{
		NGOName: "Helping Hands", NGOEmail: "ops@helpinghands.org",
	})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OTP sent successfully", decodeMessage(t, rr).Message)
}

func TestVerifyNGO_UnknownPair_401(t *testing.T) {
	svc := &mockVerifySvc{}
	svc.On("Request", mock.Anything, mock.Anything, mock.Anything).Return(domain.ErrNotFound)
	h := NewVerifyHandler(svc)

	rr := postJSON(t, h.VerifyNGO, VerifyNGORequest{
		NGOName: "Helping Handz", NGOEmail: "ops@helpinghands.org",
	})

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Invalid NGO details", decodeMessage(t, rr).Error)
}

func TestVerifyNGO_AlreadyRegistered_400(t *testing.T) {
	svc := &mockVerifySvc{}
	svc.On("Request", mock.Anything, mock.Anything, mock.Anything).Return(domain.ErrAlreadyRegistered)
	h := NewVerifyHandler(svc)

	rr := postJSON(t, h.VerifyNGO, VerifyNGORequest{
		NGOName: "Helping Hands", NGOEmail: "ops@helpinghands.org",
	})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "NGO already registered. Please login.", decodeMessage(t, rr).Error)
}

func TestVerifyNGO_SendFailure_500(t *testing.T) {
	svc := &mockVerifySvc{}
	svc.On("Request", mock.Anything, mock.Anything, mock.Anything).Return(domain.ErrNotificationFailure)
	h := NewVerifyHandler(svc)

	rr := postJSON(t, h.VerifyNGO, VerifyNGORequest{
		NGOName: "Helping Hands", NGOEmail: "ops@helpinghands.org",
	})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Failed to send OTP", decodeMessage(t, rr).Error)
}

func TestVerifyNGO_MalformedBody_400(t *testing.T) {
	h := NewVerifyHandler(&mockVerifySvc{})
	rr := postRaw(h.VerifyNGO, "{not json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestVerifyNGO_MissingFields_422(t *testing.T) {
	h := NewVerifyHandler(&mockVerifySvc{})
	rr := postJSON(t, h.VerifyNGO, VerifyNGORequest{NGOName: "Helping Hands"})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

// --- VerifyOTP ---

func TestVerifyOTP_Success(t *testing.T) {
	svc := &mockVerifySvc{}
	svc.On("Confirm", mock.Anything, "ops@helpinghands.org", "123456").Return(nil)
	h := NewVerifyHandler(svc)

	rr := postJSON(t, h.VerifyOTP, VerifyOTPRequest{
		NGOEmail: "ops@helpinghands.org", OTP: "123456",
	})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OTP verified successfully", decodeMessage(t, rr).Message)
}

func TestVerifyOTP_ErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"no pending", domain.ErrNoPendingOTP, "No OTP request found or OTP expired"},
		{"expired", domain.ErrExpired, "OTP expired. Please request a new one."},
		{"mismatch", domain.ErrMismatch, "Invalid OTP"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockVerifySvc{}
			svc.On("Confirm", mock.Anything, mock.Anything, mock.Anything).Return(tc.err)
			h := NewVerifyHandler(svc)

			rr := postJSON(t, h.VerifyOTP, VerifyOTPRequest{
				NGOEmail: "ops@helpinghands.org", OTP: "000000",
			})

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tc.wantMsg, decodeMessage(t, rr).Error)
		})
	}
}

func TestVerifyOTP_MissingOTP_422(t *testing.T) {
	h := NewVerifyHandler(&mockVerifySvc{})
	rr := postJSON(t, h.VerifyOTP, VerifyOTPRequest{NGOEmail: "ops@helpinghands.org"})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}
