package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/ngo-verify-api/internal/config"
	"github.com/ngo-verify-api/internal/infrastructure/identity"
	jwtinfra "github.com/ngo-verify-api/internal/infrastructure/jwt"
	"github.com/ngo-verify-api/internal/infrastructure/otpstore"
	"github.com/ngo-verify-api/internal/infrastructure/registry"
	s3infra "github.com/ngo-verify-api/internal/infrastructure/s3"
	"github.com/ngo-verify-api/internal/infrastructure/smtp"
	transporthttp "github.com/ngo-verify-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	ctx := context.Background()

	// Reference dataset — local CSV or an s3:// URI.
	var reg *registry.Registry
	var err error
	if strings.HasPrefix(cfg.NGOCSVPath, "s3://") {
		s3Store := s3infra.NewStore(s3infra.NewClient(cfg))
		reg, err = registry.LoadS3(ctx, s3Store, cfg.NGOCSVPath)
	} else {
		reg, err = registry.LoadFile(cfg.NGOCSVPath)
	}
	if err != nil {
		log.Fatalf("load reference dataset: %v", err)
	}
	log.Printf("Loaded %d organizations from %s", reg.Len(), cfg.NGOCSVPath)

	// OTP store — flat file by default, DynamoDB for per-key atomicity.
	var otpStore, verifiedStore otpstore.Store
	switch cfg.OTPStoreBackend {
	case "dynamo":
		client := otpstore.NewDynamoClient(cfg)
		otpStore = otpstore.NewDynamoStore(ctx, client, cfg.DynamoTableOTPs)
		verifiedStore = otpstore.NewDynamoStore(ctx, client, cfg.DynamoTableVerified)
	default:
		if cfg.OTPStoreUnsafe {
			log.Println("WARN: OTP store running without locking (compatibility mode)")
			otpStore = otpstore.NewUnsafeFileStore(cfg.OTPFile)
			verifiedStore = otpstore.NewUnsafeFileStore(cfg.VerifiedFile)
		} else {
			otpStore = otpstore.NewFileStore(cfg.OTPFile)
			verifiedStore = otpstore.NewFileStore(cfg.VerifiedFile)
		}
	}

	// Identity provider.
	idp, err := identity.NewFirebase(ctx, cfg)
	if err != nil {
		log.Fatalf("identity provider: %v", err)
	}
	if !idp.VerifiesPasswords() {
		log.Println("WARN: FIREBASE_WEB_API_KEY not set — login checks account existence only (insecure demo mode)")
	}

	// SMTP mailer.
	mailer := smtp.NewMailer(cfg)

	// JWT provider (optional — graceful fallback if the key is missing).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available, login responses carry no token: %v", err)
	}

	deps := &transporthttp.Deps{
		Registry:    reg,
		OTPStore:    otpStore,
		Verified:    verifiedStore,
		Mailer:      mailer,
		Identity:    idp,
		JWTProvider: jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
