package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ngo-verify-api/internal/domain"
	"github.com/ngo-verify-api/internal/infrastructure/otpstore"
	"github.com/ngo-verify-api/internal/pkg/id"
)

// Lookup is the joint (name, email) dataset query the request flow needs.
type Lookup interface {
	FindByNameAndEmail(name, email string) (*domain.Organization, bool)
}

// IdentityLookup is the existence check against the identity provider.
type IdentityLookup interface {
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}

// Mailer sends the OTP to the contact address.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// Service drives the OTP lifecycle: none → pending on a verification request,
// pending → consumed or expired on confirmation.
type Service interface {
	Request(ctx context.Context, orgName, email string) error
	Confirm(ctx context.Context, email, code string) error
}

type ServiceDeps struct {
	Registry    Lookup
	OTPStore    otpstore.Store
	Verified    otpstore.Store
	Identity    IdentityLookup
	Mailer      Mailer
	OTPTTL      time.Duration
	VerifiedTTL time.Duration
}

type service struct {
	registry    Lookup
	otps        otpstore.Store
	verified    otpstore.Store
	identity    IdentityLookup
	mailer      Mailer
	otpTTL      time.Duration
	verifiedTTL time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		registry:    deps.Registry,
		otps:        deps.OTPStore,
		verified:    deps.Verified,
		identity:    deps.Identity,
		mailer:      deps.Mailer,
		otpTTL:      deps.OTPTTL,
		verifiedTTL: deps.VerifiedTTL,
	}
}

func (s *service) Request(ctx context.Context, orgName, email string) error {
	if _, ok := s.registry.FindByNameAndEmail(orgName, email); !ok {
		return fmt.Errorf("organization/contact pair unrecognized: %w", domain.ErrNotFound)
	}

	_, err := s.identity.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return fmt.Errorf("account exists for %s: %w", email, domain.ErrAlreadyRegistered)
	case errors.Is(err, domain.ErrNotFound):
		// no account yet — proceed with verification
	default:
		return fmt.Errorf("identity check: %w", err)
	}

	if _, err := s.otps.CleanExpired(ctx); err != nil {
		return fmt.Errorf("clean expired otps: %w", err)
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	now := time.Now()
	rec := domain.OTPRecord{
		Code:      code,
		ExpiresAt: now.Add(s.otpTTL).Unix(),
		RequestID: id.New(),
		CreatedAt: now.Unix(),
	}
	if err := s.otps.Put(ctx, email, rec); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	slog.Info("otp issued", "email", email, "request_id", rec.RequestID)

	subject := "NGO Registration OTP"
	body := fmt.Sprintf("Your OTP for NGO registration is %s. This code will expire in %d minutes.",
		code, int(s.otpTTL.Minutes()))
	if err := s.mailer.SendEmail(email, subject, body); err != nil {
		// The stored record is intentionally kept: a retried request overwrites it.
		slog.Error("otp email failed", "email", email, "request_id", rec.RequestID, "err", err)
		return fmt.Errorf("send otp email: %w", domain.ErrNotificationFailure)
	}
	return nil
}

func (s *service) Confirm(ctx context.Context, email, code string) error {
	if _, err := s.otps.CleanExpired(ctx); err != nil {
		return fmt.Errorf("clean expired otps: %w", err)
	}

	rec, err := s.otps.Get(ctx, email)
	if err != nil {
		return fmt.Errorf("load otp: %w", err)
	}
	if rec == nil {
		return fmt.Errorf("no pending otp for %s: %w", email, domain.ErrNoPendingOTP)
	}

	// Expiry may have passed between the cleanup above and this check.
	if rec.ExpiredAt(time.Now()) {
		if err := s.otps.Delete(ctx, email); err != nil {
			slog.Warn("could not delete expired otp", "email", email, "err", err)
		}
		return fmt.Errorf("otp for %s past expiry: %w", email, domain.ErrExpired)
	}

	submitted, err := strconv.Atoi(strings.TrimSpace(code))
	if err != nil {
		return fmt.Errorf("malformed otp: %w", domain.ErrMismatch)
	}
	stored, err := strconv.Atoi(rec.Code)
	if err != nil || submitted != stored {
		// record kept so the caller may retry within the TTL
		return fmt.Errorf("otp does not match: %w", domain.ErrMismatch)
	}

	if err := s.otps.Delete(ctx, email); err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}
	slog.Info("otp consumed", "email", email, "request_id", rec.RequestID)

	// Verified marker consumed by signup gating. Best effort: the OTP is
	// already consumed, so a marker write failure only affects gated signup.
	now := time.Now()
	marker := domain.OTPRecord{
		Code:      rec.RequestID,
		ExpiresAt: now.Add(s.verifiedTTL).Unix(),
		RequestID: rec.RequestID,
		CreatedAt: now.Unix(),
	}
	if err := s.verified.Put(ctx, email, marker); err != nil {
		slog.Warn("could not store verified marker", "email", email, "err", err)
	}
	return nil
}

// generateCode draws a six-digit decimal code uniformly from [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}
