package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/ngo-verify-api/internal/application/account"
	"github.com/ngo-verify-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockAccountSvc struct{ mock.Mock }

func (m *mockAccountSvc) CompleteSignup(ctx context.Context, email, password string) (*account.SignupResult, error) {
	args := m.Called(ctx, email, password)
	if r, _ := args.Get(0).(*account.SignupResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountSvc) Login(ctx context.Context, email, password string) (*account.LoginResult, error) {
	args := m.Called(ctx, email, password)
	if r, _ := args.Get(0).(*account.LoginResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- CompleteSignup ---

func TestCompleteSignup_Success(t *testing.T) {
	svc := &mockAccountSvc{}
	svc.On("CompleteSignup", mock.Anything, "ops@helpinghands.org", "secret123").
		Return(&account.SignupResult{UID: "u1", OrgName: "Helping Hands"}, nil)
	h := NewAccountHandler(svc)

	rr := postJSON(t, h.CompleteSignup, SignupRequest{
		NGOEmail: "ops@helpinghands.org", Password: "secret123",
	})

	require.Equal(t, http.StatusOK, rr.Code)
	var env SignupEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	assert.Equal(t, "NGO registered successfully", env.Message)
	assert.Equal(t, "u1", env.UID)
	assert.Equal(t, "Helping Hands", env.NGOName)
}

func TestCompleteSignup_ErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"not found", domain.ErrNotFound, http.StatusNotFound, "NGO not found in database"},
		{"not verified", domain.ErrNotVerified, http.StatusForbidden, "Email not verified. Please complete OTP verification first."},
		{"already exists", domain.ErrAlreadyRegistered, http.StatusBadRequest, "Email already registered"},
		{"provisioning", domain.ErrProvisioningFailure, http.StatusInternalServerError, "Registration failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockAccountSvc{}
			svc.On("CompleteSignup", mock.Anything, mock.Anything, mock.Anything).Return(nil, tc.err)
			h := NewAccountHandler(svc)

			rr := postJSON(t, h.CompleteSignup, SignupRequest{
				NGOEmail: "ops@helpinghands.org", Password: "secret123",
			})

			assert.Equal(t, tc.wantCode, rr.Code)
			assert.Equal(t, tc.wantMsg, decodeMessage(t, rr).Error)
		})
	}
}

func TestCompleteSignup_ShortPassword_422(t *testing.T) {
	h := NewAccountHandler(&mockAccountSvc{})
	rr := postJSON(t, h.CompleteSignup, SignupRequest{
		NGOEmail: "ops@helpinghands.org", Password: "abc",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

// --- Login ---

func TestLogin_Success(t *testing.T) {
	svc := &mockAccountSvc{}
	svc.On("Login", mock.Anything, "ops@helpinghands.org", "secret123").
		Return(&account.LoginResult{
			UID: "u1", OrgName: "Helping Hands",
			Email: "ops@helpinghands.org", Token: "signed.jwt.token",
		}, nil)
	h := NewAccountHandler(svc)

	rr := postJSON(t, h.Login, LoginRequest{
		Email: "ops@helpinghands.org", Password: "secret123",
	})

	require.Equal(t, http.StatusOK, rr.Code)
	var env LoginEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	assert.Equal(t, "Login successful", env.Message)
	assert.Equal(t, "u1", env.UID)
	assert.Equal(t, "Helping Hands", env.NGOName)
	assert.Equal(t, "ops@helpinghands.org", env.Email)
	assert.Equal(t, "signed.jwt.token", env.Token)
}

func TestLogin_InvalidCredentials_401(t *testing.T) {
	svc := &mockAccountSvc{}
	svc.On("Login", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.ErrInvalidCredentials)
	h := NewAccountHandler(svc)

	rr := postJSON(t, h.Login, LoginRequest{
		Email: "ops@helpinghands.org", Password: "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Invalid email or password", decodeMessage(t, rr).Error)
}

func TestLogin_ProviderFailure_500(t *testing.T) {
	svc := &mockAccountSvc{}
	svc.On("Login", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, assert.AnError)
	h := NewAccountHandler(svc)

	rr := postJSON(t, h.Login, LoginRequest{
		Email: "ops@helpinghands.org", Password: "pw",
	})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Login failed", decodeMessage(t, rr).Error)
}

func TestLogin_BadEmail_422(t *testing.T) {
	h := NewAccountHandler(&mockAccountSvc{})
	rr := postJSON(t, h.Login, LoginRequest{Email: "not-an-email", Password: "pw"})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}
