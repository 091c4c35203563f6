package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	NGOCSVPath string // local path or s3://bucket/key URI

	OTPFile             string
	OTPTTL              time.Duration
	VerifiedTTL         time.Duration
	OTPStoreBackend     string // "file" | "dynamo"
	OTPStoreUnsafe      bool   // reproduce the original unlocked load-modify-save
	RequireVerified     bool   // gate signup on a consumed OTP
	VerifiedFile        string
	DynamoTableOTPs     string
	DynamoTableVerified string

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	FirebaseCredentialsFile string
	FirebaseWebAPIKey       string // enables server-side password verification when set

	JWTPrivateKeyPath string
	JWTExpiry         time.Duration

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	AllowedOrigins []string // CORS allowed origins
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "5000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		NGOCSVPath: getEnv("NGO_CSV_PATH", "ngo.csv"),

		OTPFile:             getEnv("OTP_FILE", "otp_storage.json"),
		OTPTTL:              time.Duration(getEnvInt("OTP_TTL_MINUTES", 10)) * time.Minute,
		VerifiedTTL:         time.Duration(getEnvInt("VERIFIED_TTL_MINUTES", 30)) * time.Minute,
		OTPStoreBackend:     getEnv("OTP_STORE_BACKEND", "file"),
		OTPStoreUnsafe:      getEnvBool("OTP_STORE_UNSAFE", false),
		RequireVerified:     getEnvBool("REQUIRE_VERIFIED_SIGNUP", true),
		VerifiedFile:        getEnv("VERIFIED_FILE", "verified_contacts.json"),
		DynamoTableOTPs:     getEnv("DYNAMO_TABLE_OTPS", "ngo_otps"),
		DynamoTableVerified: getEnv("DYNAMO_TABLE_VERIFIED", "ngo_verified_contacts"),

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPFrom:     getEnv("SMTP_FROM", getEnv("MAIL_USERNAME", "")),
		SMTPUsername: getEnv("MAIL_USERNAME", ""),
		SMTPPassword: getEnv("MAIL_PASSWORD", ""),

		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", "firebasecredentials.json"),
		FirebaseWebAPIKey:       getEnv("FIREBASE_WEB_API_KEY", ""),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTExpiry:         time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
