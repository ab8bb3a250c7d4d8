package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessTTL  = 15 * time.Minute
	RefreshTTL = 7 * 24 * time.Hour
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Issuer выпускает и проверяет пары access/refresh токенов. Токены подписываются HS256 разными секретами.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	now           func() time.Time
}

func NewIssuer(accessSecret, refreshSecret string) *Issuer {
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		now:           time.Now,
	}
}

func (i *Issuer) Pair(userID uint) (access, refresh string, err error) {
	access, err = i.generate(userID, AccessTTL, i.accessSecret)
	if err != nil {
		return "", "", fmt.Errorf("access token: %w", err)
	}
	refresh, err = i.generate(userID, RefreshTTL, i.refreshSecret)
	if err != nil {
		return "", "", fmt.Errorf("refresh token: %w", err)
	}
	return access, refresh, nil
}

func (i *Issuer) ParseAccess(token string) (uint, error) {
	return i.parse(token, i.accessSecret)
}

func (i *Issuer) ParseRefresh(token string) (uint, error) {
	return i.parse(token, i.refreshSecret)
}

func (i *Issuer) generate(userID uint, ttl time.Duration, secret []byte) (string, error) {
	now := i.now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(ttl).Unix(),
		"iat":     now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (i *Issuer) parse(tokenString string, secret []byte) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		return 0, ErrInvalidToken
	}
	return uint(userID), nil
}
