package auth

import (
	"net/http"

	"choretracker/controller/httperror"
	"choretracker/dto"
	"choretracker/middleware"
	"choretracker/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SignUpController(router *gin.RouterGroup, db *gorm.DB, tokens services.TokenConfig, hashCost int) {
	router.POST("/auth/register", middleware.OptionalAccessToken(tokens), func(c *gin.Context) {
		Signup(c, db, tokens, hashCost)
	})
}

func Signup(c *gin.Context, db *gorm.DB, tokens services.TokenConfig, hashCost int) {
	var request dto.RegisterRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		httperror.BadRequest(c, err)
		return
	}

	caller, _ := middleware.CallerFrom(c)
	user, err := services.Register(c.Request.Context(), db, hashCost, services.RegisterInput{
		Username: request.Username,
		Password: request.Password,
		IsAdmin:  request.IsAdmin,
	}, caller.IsAdmin)
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	token, err := services.NewTokenResponse(tokens, user)
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.AuthResponse{
		Message: "User registered successfully",
		User:    dto.NewUserResponse(user),
		Token:   token,
	})
}
