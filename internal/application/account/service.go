package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ngo-verify-api/internal/domain"
	"github.com/ngo-verify-api/internal/infrastructure/otpstore"
)

// Lookup is the email-only dataset query signup needs to recover the org name.
type Lookup interface {
	FindByEmail(email string) (*domain.Organization, bool)
}

// IdentityProvider is the slice of the identity adapter this service uses.
type IdentityProvider interface {
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	Create(ctx context.Context, email, password, displayName string) (*domain.Account, error)
	VerifyPassword(ctx context.Context, email, password string) error
	VerifiesPasswords() bool
}

// TokenSigner issues the optional bearer token returned on login.
type TokenSigner interface {
	Sign(uid, email, orgName string) (string, error)
}

type SignupResult struct {
	UID     string
	OrgName string
}

type LoginResult struct {
	UID     string
	OrgName string
	Email   string
	Token   string
}

type Service interface {
	CompleteSignup(ctx context.Context, email, password string) (*SignupResult, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

type ServiceDeps struct {
	Registry Lookup
	Identity IdentityProvider
	Verified otpstore.Store
	Signer   TokenSigner // nil when no signing key is configured
	// RequireVerified gates signup on a consumed-OTP marker. False restores
	// the historical ungated behavior.
	RequireVerified bool
}

type service struct {
	registry        Lookup
	identity        IdentityProvider
	verified        otpstore.Store
	signer          TokenSigner
	requireVerified bool
}

func NewService(deps ServiceDeps) Service {
	return &service{
		registry:        deps.Registry,
		identity:        deps.Identity,
		verified:        deps.Verified,
		signer:          deps.Signer,
		requireVerified: deps.RequireVerified,
	}
}

func (s *service) CompleteSignup(ctx context.Context, email, password string) (*SignupResult, error) {
	org, ok := s.registry.FindByEmail(email)
	if !ok {
		return nil, fmt.Errorf("contact %s not in dataset: %w", email, domain.ErrNotFound)
	}

	if s.requireVerified {
		marker, err := s.verified.Get(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("load verified marker: %w", err)
		}
		if marker == nil || marker.ExpiredAt(time.Now()) {
			return nil, fmt.Errorf("no consumed otp for %s: %w", email, domain.ErrNotVerified)
		}
	}

	acct, err := s.identity.Create(ctx, email, password, org.Name)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyRegistered) {
			return nil, err
		}
		slog.Error("identity create failed", "email", email, "err", err)
		return nil, fmt.Errorf("account creation failed: %w", domain.ErrProvisioningFailure)
	}

	if s.requireVerified {
		if err := s.verified.Delete(ctx, email); err != nil {
			slog.Warn("could not delete verified marker", "email", email, "err", err)
		}
	}
	return &SignupResult{UID: acct.UID, OrgName: org.Name}, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	acct, err := s.identity.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("no account for %s: %w", email, domain.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("identity lookup: %w", err)
	}

	// Without a configured web API key the provider cannot check passwords
	// server-side; login is then existence-only (insecure demo mode, warned
	// about at startup).
	if s.identity.VerifiesPasswords() {
		if err := s.identity.VerifyPassword(ctx, email, password); err != nil {
			if errors.Is(err, domain.ErrInvalidCredentials) {
				return nil, err
			}
			return nil, fmt.Errorf("password verification: %w", err)
		}
	}

	orgName := acct.DisplayName
	if orgName == "" {
		orgName = "NGO User"
	}

	result := &LoginResult{UID: acct.UID, OrgName: orgName, Email: acct.Email}
	if s.signer != nil {
		token, err := s.signer.Sign(acct.UID, acct.Email, orgName)
		if err != nil {
			slog.Warn("could not sign login token", "uid", acct.UID, "err", err)
		} else {
			result.Token = token
		}
	}
	return result, nil
}
