package jwtinfra

import (
	"crypto/rsa"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ngo-verify-api/internal/config"
)

// Claims holds the JWT payload fields for a logged-in account.
type Claims struct {
	UID     string `json:"uid"`
	Email   string `json:"email"`
	OrgName string `json:"ngo_name"`
	jwt.RegisteredClaims
}

// Provider signs RS256 bearer tokens returned on login.
type Provider struct {
	privateKey *rsa.PrivateKey
	expiry     time.Duration
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	privBytes, err := os.ReadFile(cfg.JWTPrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privBytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return &Provider{privateKey: privKey, expiry: cfg.JWTExpiry}, nil
}

func (p *Provider) Sign(uid, email, orgName string) (string, error) {
	claims := Claims{
		UID:     uid,
		Email:   email,
		OrgName: orgName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(p.expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(p.privateKey)
}
