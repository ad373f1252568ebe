// Package auth выпускает и проверяет токены доступа к игровой сессии.
package auth

import (
	"errors"
	"fmt"
	"time"

	"parenting-server/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "parenting-server"

// SessionClaims - данные токена сессии.
type SessionClaims struct {
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// TokenManager подписывает токены HMAC-секретом.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager создает TokenManager. Пустой секрет - ошибка конфигурации.
func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("session token secret is empty")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue создает токен для сессии и возвращает его вместе со временем истечения.
func (m *TokenManager) Issue(sessionID uuid.UUID) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := &SessionClaims{
		SessionID: sessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   sessionID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify проверяет токен и возвращает ID сессии.
// Ошибки: domain.ErrTokenExpired, domain.ErrTokenInvalid.
func (m *TokenManager) Verify(tokenString string) (uuid.UUID, error) {
	if tokenString == "" {
		return uuid.Nil, domain.ErrUnauthorized
	}
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, fmt.Errorf("%w: %v", domain.ErrTokenExpired, err)
		}
		return uuid.Nil, fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return uuid.Nil, domain.ErrTokenInvalid
	}
	id, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad session id", domain.ErrTokenInvalid)
	}
	return id, nil
}

// VerifyFor проверяет, что токен выдан именно для sessionID.
func (m *TokenManager) VerifyFor(tokenString string, sessionID uuid.UUID) error {
	id, err := m.Verify(tokenString)
	if err != nil {
		return err
	}
	if id != sessionID {
		return domain.ErrSessionMismatch
	}
	return nil
}
