// Copyright (c) 2026, Gatehouse Authors.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package auth provides password hashing and stateless bearer tokens.
//
// Passwords are hashed with bcrypt. Tokens are HMAC-SHA256 signed payloads
// carrying a subject, an expiry, and a nonce; they can be verified by any
// process holding the same secret without shared storage.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/gatehouse-io/gatehouse/pkg/defaults"
)

var (
	// ErrInvalidToken indicates a malformed token or a signature mismatch.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken indicates a well-formed token past its expiry.
	ErrExpiredToken = errors.New("token expired")
)

// HashPassword returns the bcrypt hash of password at the default cost.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), defaults.PasswordHashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword compares a bcrypt hash against a candidate password.
func VerifyPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return fmt.Errorf("password verification failed: %w", err)
	}
	return nil
}

// Claims is the payload embedded in a token.
type Claims struct {
	Subject   string `json:"sub"`
	ExpiresAt int64  `json:"exp"`
	Nonce     string `json:"nonce"`
}

// Expiry returns the expiration as a time.Time.
func (c Claims) Expiry() time.Time {
	return time.Unix(c.ExpiresAt, 0)
}

// MinterOption defines a configuration option for Minter.
type MinterOption func(*Minter)

// WithTTL sets the lifetime of minted tokens.
func WithTTL(ttl time.Duration) MinterOption {
	return func(m *Minter) {
		m.ttl = ttl
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) MinterOption {
	return func(m *Minter) {
		m.now = now
	}
}

// Minter mints and verifies HMAC-SHA256 signed tokens.
type Minter struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewMinter creates a Minter for the given secret.
func NewMinter(secret string, options ...MinterOption) (*Minter, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("auth secret is empty")
	}

	m := &Minter{
		secret: []byte(secret),
		ttl:    defaults.TokenTTL,
		now:    time.Now,
	}
	for _, opt := range options {
		opt(m)
	}

	if m.ttl <= 0 {
		m.ttl = defaults.TokenTTL
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m, nil
}

// Mint creates a signed token for subject, valid for the configured TTL.
// The token is "payload.signature" with both parts base64url encoded.
func (m *Minter) Mint(subject string) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("subject is empty")
	}

	claims := Claims{
		Subject:   subject,
		ExpiresAt: m.now().Add(m.ttl).Unix(),
		Nonce:     uuid.NewString(),
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to encode claims: %w", err)
	}

	encoded := base64.RawURLEncoding.EncodeToString(payload)
	return encoded + "." + m.sign(encoded), nil
}

// Verify checks the token signature and expiry and returns its claims.
// Returns ErrInvalidToken for malformed or forged tokens and ErrExpiredToken
// for authentic tokens past their expiry.
func (m *Minter) Verify(token string) (*Claims, error) {
	encoded, sig, ok := strings.Cut(token, ".")
	if !ok || encoded == "" || sig == "" {
		return nil, ErrInvalidToken
	}

	// Compare signatures before trusting the payload.
	if !hmac.Equal([]byte(sig), []byte(m.sign(encoded))) {
		return nil, ErrInvalidToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidToken
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, ErrInvalidToken
	}

	if !m.now().Before(claims.Expiry()) {
		return nil, ErrExpiredToken
	}

	return &claims, nil
}

func (m *Minter) sign(encoded string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
