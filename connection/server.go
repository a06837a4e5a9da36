package connection

import (
	"errors"
	"net/http"
	"time"

	"choretracker/config"
	"choretracker/controller/admin"
	"choretracker/controller/auth"
	"choretracker/controller/task"
	"choretracker/controller/user"
	"choretracker/middleware"
	"choretracker/scheduler"
	"choretracker/services"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ServerDeps struct {
	Config config.Config
	DB     *gorm.DB
	Job    *scheduler.Job
	Logger *log.Logger
	// Now overrides the clock of the admin endpoints.
	Now func() time.Time
}

func NewRouter(deps ServerDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(deps.Logger))

	corsConfig := cors.DefaultConfig()
	if len(deps.Config.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = deps.Config.CORSOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowHeaders("Authorization")
	router.Use(cors.New(corsConfig))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Api is running!"})
	})

	tokens := services.TokenConfig{Secret: []byte(deps.Config.JWTSecret), TTL: deps.Config.JWTTTL}
	api := router.Group("/api")

	auth.SignUpController(api, deps.DB, tokens, deps.Config.BcryptCost)
	auth.SignInController(api, deps.DB, tokens)
	task.TaskController(api, deps.DB, tokens)
	user.UserController(api, deps.DB, tokens, deps.Config.BcryptCost)
	admin.AdminController(api, deps.DB, tokens, admin.Options{
		Location:     deps.Config.Location,
		ReminderHour: deps.Config.ReminderHour,
		Job:          deps.Job,
		Now:          deps.Now,
	})

	return router
}

// StartServer serves handler on :port in the background. Use Shutdown on the
// returned server to stop it.
func StartServer(port string, handler http.Handler, logger *log.Logger) *http.Server {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", "err", err)
		}
	}()
	return srv
}
