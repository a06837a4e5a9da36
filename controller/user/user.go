package user

import (
	"net/http"

	"choretracker/controller/httperror"
	"choretracker/dto"
	"choretracker/middleware"
	"choretracker/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func UserController(router *gin.RouterGroup, db *gorm.DB, tokens services.TokenConfig, hashCost int) {
	routes := router.Group("/users", middleware.AccessTokenMiddleware(tokens))
	{
		routes.GET("", middleware.AdminMiddleware(), func(c *gin.Context) {
			SearchUser(c, db)
		})
		routes.PUT("/me/password", func(c *gin.Context) {
			ChangePassword(c, db, hashCost)
		})
	}
}

// SearchUser lists users whose username starts with ?q=.
func SearchUser(c *gin.Context, db *gorm.DB) {
	users, err := services.ListUsers(c.Request.Context(), db, c.Query("q"))
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	userResponses := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		userResponses = append(userResponses, dto.NewUserResponse(&users[i]))
	}
	c.JSON(http.StatusOK, userResponses)
}

func ChangePassword(c *gin.Context, db *gorm.DB, hashCost int) {
	caller, _ := middleware.CallerFrom(c)

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperror.BadRequest(c, err)
		return
	}

	if err := services.ChangePassword(c.Request.Context(), db, hashCost, caller.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		httperror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully", "userId": caller.UserID})
}
