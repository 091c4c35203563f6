package otpstore

import (
	"context"

	"github.com/ngo-verify-api/internal/domain"
)

// Store persists pending OTP records keyed by contact email.
//
// Load returns the full mapping; implementations swallow read failures and
// return an empty map so a missing backing file never breaks a request.
// Save replaces the full mapping. CleanExpired drops records whose expiry has
// passed and returns what remains. Put/Get/Delete operate on a single key so
// backends with per-key atomicity (DynamoDB) avoid the whole-mapping race of
// the flat-file backend. Get returns (nil, nil) when no record exists.
type Store interface {
	Load(ctx context.Context) (map[string]domain.OTPRecord, error)
	Save(ctx context.Context, records map[string]domain.OTPRecord) error
	CleanExpired(ctx context.Context) (map[string]domain.OTPRecord, error)
	Put(ctx context.Context, email string, rec domain.OTPRecord) error
	Get(ctx context.Context, email string) (*domain.OTPRecord, error)
	Delete(ctx context.Context, email string) error
}
