package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/ngo-verify-api/internal/config"
	"github.com/ngo-verify-api/internal/domain"
	"google.golang.org/api/option"
)

const signInURL = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"

// Provider is the identity-provider adapter. The provider owns accounts and
// credentials entirely; this service holds no local copy.
type Provider interface {
	// GetByEmail returns the account for the email, or a
	// domain.ErrNotFound-wrapped error when the provider has none.
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	// Create provisions an account. Returns a domain.ErrAlreadyRegistered-wrapped
	// error when the email is taken.
	Create(ctx context.Context, email, password, displayName string) (*domain.Account, error)
	// VerifyPassword checks the credentials against the provider's sign-in
	// endpoint. Returns a domain.ErrInvalidCredentials-wrapped error on rejection.
	VerifyPassword(ctx context.Context, email, password string) error
	// VerifiesPasswords reports whether VerifyPassword is available. When
	// false, login falls back to existence-only checks.
	VerifiesPasswords() bool
}

// Firebase adapts the Firebase Auth Admin SDK. Password verification goes
// through the Identity Toolkit REST endpoint because the Admin SDK has no
// password check; it requires the project's Web API key.
type Firebase struct {
	client     *fbauth.Client
	webAPIKey  string
	httpClient *http.Client
}

// NewFirebase initializes the Admin SDK from the service-account credentials file.
func NewFirebase(ctx context.Context, cfg *config.Config) (*Firebase, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(cfg.FirebaseCredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth client: %w", err)
	}
	return &Firebase{
		client:     client,
		webAPIKey:  cfg.FirebaseWebAPIKey,
		httpClient: http.DefaultClient,
	}, nil
}

func (f *Firebase) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	u, err := f.client.GetUserByEmail(ctx, email)
	if err != nil {
		if fbauth.IsUserNotFound(err) {
			return nil, fmt.Errorf("no account for %s: %w", email, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("identity lookup: %w", err)
	}
	return toAccount(u), nil
}

func (f *Firebase) Create(ctx context.Context, email, password, displayName string) (*domain.Account, error) {
	params := (&fbauth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)
	u, err := f.client.CreateUser(ctx, params)
	if err != nil {
		if fbauth.IsEmailAlreadyExists(err) {
			return nil, fmt.Errorf("email taken: %w", domain.ErrAlreadyRegistered)
		}
		return nil, fmt.Errorf("identity create: %w", err)
	}
	return toAccount(u), nil
}

func (f *Firebase) VerifyPassword(ctx context.Context, email, password string) error {
	body, err := json.Marshal(map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, signInURL+"?key="+f.webAPIKey, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity sign-in: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sign-in rejected: %w", domain.ErrInvalidCredentials)
	}
	return nil
}

func (f *Firebase) VerifiesPasswords() bool { return f.webAPIKey != "" }

func toAccount(u *fbauth.UserRecord) *domain.Account {
	return &domain.Account{
		UID:         u.UID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
	}
}
