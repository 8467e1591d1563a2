package utils

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrRevokedToken = errors.New("token has been revoked")
)

type CustomClaims struct {
	StaffID string `json:"staff_id"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and checks staff tokens and remembers tokens revoked by logout.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
	sweepAt time.Time
}

const revokedSweepEvery = 5 * time.Minute

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret:  []byte(secret),
		ttl:     ttl,
		now:     time.Now,
		revoked: make(map[string]time.Time),
		sweepAt: time.Now().Add(revokedSweepEvery),
	}
}

func (tm *TokenManager) GenerateToken(staffID, role string) (string, error) {
	now := tm.now()
	claims := &CustomClaims{
		StaffID: staffID,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   staffID,
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "demeter",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		ErrorLogger.WithError(err).Error("sign token")
		return "", err
	}
	return signed, nil
}

func (tm *TokenManager) ParseToken(tokenString string) (*CustomClaims, error) {
	if tm.IsRevoked(tokenString) {
		return nil, ErrRevokedToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || claims.StaffID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Revoke blacklists a token until it would have expired anyway.
func (tm *TokenManager) Revoke(tokenString string) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	now := tm.now()
	tm.sweep(now)
	tm.revoked[tokenString] = now.Add(tm.ttl)
}

func (tm *TokenManager) IsRevoked(tokenString string) bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	now := tm.now()
	tm.sweep(now)
	expiry, ok := tm.revoked[tokenString]
	return ok && now.Before(expiry)
}

// Revoked counts the blacklist entries still held.
func (tm *TokenManager) Revoked() int {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return len(tm.revoked)
}

// sweep drops expired entries at most once per revokedSweepEvery.
// Must be called with mu held.
func (tm *TokenManager) sweep(now time.Time) {
	if now.Before(tm.sweepAt) {
		return
	}
	for token, expiry := range tm.revoked {
		if !now.Before(expiry) {
			delete(tm.revoked, token)
		}
	}
	tm.sweepAt = now.Add(revokedSweepEvery)
}
