package middleware

import (
	"strings"

	"choretracker/controller/httperror"
	"choretracker/model"
	"choretracker/services"

	"github.com/gin-gonic/gin"
)

const (
	claimsKey = "claims"
	userIDKey = "userId"
)

func AccessTokenMiddleware(cfg services.TokenConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.Request.Header.Get("Authorization")
		if header == "" {
			httperror.Abort(c, services.ErrInvalidToken)
			return
		}

		claims, err := bearerClaims(cfg, header)
		if err != nil {
			httperror.Abort(c, err)
			return
		}

		c.Set(claimsKey, claims)
		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

// OptionalAccessToken accepts requests without a credential but still
// rejects a credential that is present and invalid.
func OptionalAccessToken(cfg services.TokenConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.Request.Header.Get("Authorization")
		if header == "" {
			c.Next()
			return
		}

		claims, err := bearerClaims(cfg, header)
		if err != nil {
			httperror.Abort(c, err)
			return
		}

		c.Set(claimsKey, claims)
		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

// AdminMiddleware must run after AccessTokenMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := CallerFrom(c)
		if !ok {
			httperror.Abort(c, services.ErrInvalidToken)
			return
		}
		if !caller.IsAdmin {
			httperror.Abort(c, services.ErrForbidden)
			return
		}
		c.Next()
	}
}

// CallerFrom returns the identity stored by the token middlewares.
func CallerFrom(c *gin.Context) (model.Caller, bool) {
	v, exists := c.Get(claimsKey)
	if !exists {
		return model.Caller{}, false
	}
	claims, ok := v.(*model.AccessClaims)
	if !ok {
		return model.Caller{}, false
	}
	return claims.Caller(), true
}

func bearerClaims(cfg services.TokenConfig, header string) (*model.AccessClaims, error) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return nil, services.ErrInvalidToken
	}
	return services.ParseAccessToken(cfg, strings.TrimSpace(token))
}
