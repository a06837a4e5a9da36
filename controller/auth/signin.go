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

func SignInController(router *gin.RouterGroup, db *gorm.DB, tokens services.TokenConfig) {
	router.POST("/auth/login", func(c *gin.Context) {
		Signin(c, db, tokens)
	})
	router.GET("/auth/me", middleware.AccessTokenMiddleware(tokens), func(c *gin.Context) {
		Me(c, db)
	})
}

func Signin(c *gin.Context, db *gorm.DB, tokens services.TokenConfig) {
	var request dto.LoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		httperror.BadRequest(c, err)
		return
	}

	user, err := services.Login(c.Request.Context(), db, request.Username, request.Password)
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	token, err := services.NewTokenResponse(tokens, user)
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{
		Message: "Login Successfully",
		User:    dto.NewUserResponse(user),
		Token:   token,
	})
}

// Me returns the stored account behind the credential.
func Me(c *gin.Context, db *gorm.DB) {
	caller, _ := middleware.CallerFrom(c)

	user, err := services.GetUserByID(db.WithContext(c.Request.Context()), caller.UserID)
	if err != nil {
		httperror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}
