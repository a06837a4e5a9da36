package services

import (
	"errors"
	"fmt"
	"time"

	"choretracker/model"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = fmt.Errorf("%w: invalid token", ErrUnauthorized)
	ErrTokenExpired = fmt.Errorf("%w: token has expired", ErrUnauthorized)
)

const tokenIssuer = "choretracker"

type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
}

func CreateAccessToken(cfg TokenConfig, user *model.User) (string, error) {
	now := time.Now()
	claims := &model.AccessClaims{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(cfg.Secret)
}

func NewTokenResponse(cfg TokenConfig, user *model.User) (*model.TokenResponse, error) {
	accessToken, err := CreateAccessToken(cfg, user)
	if err != nil {
		return nil, err
	}
	return &model.TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(cfg.TTL.Seconds()),
	}, nil
}

// ParseAccessToken fails closed: anything but a valid, unexpired HS256 token
// from this issuer is rejected.
func ParseAccessToken(cfg TokenConfig, tokenString string) (*model.AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.AccessClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return cfg.Secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.AccessClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
