package dto

import (
	"time"

	"choretracker/model"
)

type UserResponse struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	IsAdmin   bool   `json:"isAdmin"`
	CreatedAt string `json:"createdAt"`
}

func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		UserID:    u.ID,
		Username:  u.Username,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

type AuthResponse struct {
	Message string               `json:"message"`
	User    UserResponse         `json:"user"`
	Token   *model.TokenResponse `json:"token"`
}
