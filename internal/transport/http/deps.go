package http

import (
	"github.com/ngo-verify-api/internal/infrastructure/identity"
	jwtinfra "github.com/ngo-verify-api/internal/infrastructure/jwt"
	"github.com/ngo-verify-api/internal/infrastructure/otpstore"
	"github.com/ngo-verify-api/internal/infrastructure/registry"
	"github.com/ngo-verify-api/internal/infrastructure/smtp"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	Registry    *registry.Registry
	OTPStore    otpstore.Store
	Verified    otpstore.Store
	Mailer      smtp.Mailer
	Identity    identity.Provider
	JWTProvider *jwtinfra.Provider // nil when no signing key is configured
}
