package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ngo-verify-api/internal/application/account"
	"github.com/ngo-verify-api/internal/application/verification"
	"github.com/ngo-verify-api/internal/config"
	"github.com/ngo-verify-api/internal/transport/http/handler"
	appmiddleware "github.com/ngo-verify-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 — applied to the public POST endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	verifySvc := verification.NewService(verification.ServiceDeps{
		Registry:    deps.Registry,
		OTPStore:    deps.OTPStore,
		Verified:    deps.Verified,
		Identity:    deps.Identity,
		Mailer:      deps.Mailer,
		OTPTTL:      cfg.OTPTTL,
		VerifiedTTL: cfg.VerifiedTTL,
	})

	var signer account.TokenSigner
	if deps.JWTProvider != nil {
		signer = deps.JWTProvider
	}
	accountSvc := account.NewService(account.ServiceDeps{
		Registry:        deps.Registry,
		Identity:        deps.Identity,
		Verified:        deps.Verified,
		Signer:          signer,
		RequireVerified: cfg.RequireVerified,
	})

	healthH := handler.NewHealthHandler()
	verifyH := handler.NewVerifyHandler(verifySvc)
	accountH := handler.NewAccountHandler(accountSvc)
	statusH := handler.NewOTPStatusHandler(deps.OTPStore, cfg.AppEnv)

	r.Get("/", healthH.Root)
	r.With(sensitiveRL.Limit).Post("/verify-ngo", verifyH.VerifyNGO)
	r.With(sensitiveRL.Limit).Post("/verify-otp", verifyH.VerifyOTP)
	r.With(sensitiveRL.Limit).Post("/complete-signup", accountH.CompleteSignup)
	r.With(sensitiveRL.Limit).Post("/login", accountH.Login)
	r.Get("/check-otp-status", statusH.Status)

	return r
}
