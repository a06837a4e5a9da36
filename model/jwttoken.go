package model

import "github.com/golang-jwt/jwt/v5"

type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"` // seconds
}

type AccessClaims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

func (c *AccessClaims) Caller() Caller {
	return Caller{UserID: c.UserID, Username: c.Username, IsAdmin: c.IsAdmin}
}
