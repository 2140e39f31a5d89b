package crypto

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidSigningAlg     = errors.New("invalid signing algorithm")
	ErrExpiredToken          = errors.New("expired token")
	ErrInvalidTokenSignature = errors.New("invalid token signature")
	ErrCorruptedToken        = errors.New("corrupted token")

	UnexpectedTokenGenerationError   = errors.New("unexpected token generation error")
	UnexpectedTokenVerificationError = errors.New("unexpected token verification error")
)

// roomClaims is an unexported struct used for claims.
// Fields must be exported for JSON serialization.
type roomClaims struct {
	PlayerID string `json:"playerId"`
	RoomID   string `json:"roomId"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies per-player room capability tokens.
type TokenManager struct {
	secretKey []byte
	maxAge    time.Duration
}

func NewTokenManager(secretKey string, maxAge time.Duration) *TokenManager {
	return &TokenManager{
		secretKey: []byte(secretKey),
		maxAge:    maxAge,
	}
}

func (m *TokenManager) Generate(playerID, roomID string, now time.Time) (string, error) {
	claims := roomClaims{
		PlayerID: playerID,
		RoomID:   roomID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.maxAge)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(m.secretKey)

	if err != nil {
		return "", fmt.Errorf("%w: %w", UnexpectedTokenGenerationError, err)
	}

	return signedToken, nil
}

// Verify returns the player and room the token grants access to.
func (m *TokenManager) Verify(tokenString string) (playerID, roomID string, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &roomClaims{}, func(token *jwt.Token) (any, error) {
		// Validate the signing method is what we expect (HMAC)
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSigningAlg
		}
		return m.secretKey, nil
	})

	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidSigningAlg):
			return "", "", err
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", "", ErrExpiredToken
		case errors.Is(err, jwt.ErrSignatureInvalid):
			return "", "", ErrInvalidTokenSignature
		case errors.Is(err, jwt.ErrTokenMalformed):
			return "", "", ErrCorruptedToken
		default:
			return "", "", fmt.Errorf("%w: %w", UnexpectedTokenVerificationError, err)
		}
	}

	if claims, ok := token.Claims.(*roomClaims); ok && token.Valid {
		return claims.PlayerID, claims.RoomID, nil
	}

	return "", "", ErrCorruptedToken
}
