package admin

import (
	"fmt"
	"net/http"
	"time"

	"choretracker/controller/httperror"
	"choretracker/dto"
	"choretracker/middleware"
	"choretracker/scheduler"
	"choretracker/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Options struct {
	Location     *time.Location
	ReminderHour int
	Job          *scheduler.Job
	// Now is replaced in tests.
	Now func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func AdminController(router *gin.RouterGroup, db *gorm.DB, tokens services.TokenConfig, opts Options) {
	routes := router.Group("/admin", middleware.AccessTokenMiddleware(tokens), middleware.AdminMiddleware())
	{
		routes.GET("/progress", func(c *gin.Context) {
			AllProgress(c, db)
		})
		routes.GET("/reminder", func(c *gin.Context) {
			Reminder(c, db, opts)
		})
		routes.GET("/week", func(c *gin.Context) {
			Week(c, db, opts)
		})
		routes.POST("/reset-week", func(c *gin.Context) {
			ResetWeek(c, opts)
		})
		routes.GET("/history", func(c *gin.Context) {
			History(c, db)
		})
	}
}

func AllProgress(c *gin.Context, db *gorm.DB) {
	caller, _ := middleware.CallerFrom(c)

	rows, err := services.GetProgress(c.Request.Context(), db, caller, services.ProgressFilter{
		TaskID: c.Query("taskId"),
		All:    true,
	})
	if err != nil {
		httperror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func Reminder(c *gin.Context, db *gorm.DB, opts Options) {
	rows, err := services.Reminders(c.Request.Context(), db, opts.now(), opts.Location, opts.ReminderHour)
	if err != nil {
		httperror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": rows, "count": len(rows)})
}

func Week(c *gin.Context, db *gorm.DB, opts Options) {
	tasks, err := services.CurrentWeek(c.Request.Context(), db, opts.now(), opts.Location)
	if err != nil {
		httperror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// ResetWeek runs the same job as the scheduled tick.
func ResetWeek(c *gin.Context, opts Options) {
	summary, err := opts.Job.Run(c.Request.Context())
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ResetWeekResponse{
		Message:       "Week reset successfully",
		WeekEnding:    summary.WeekEnding.Format("2006-01-02"),
		Archived:      summary.Archived,
		EntriesReset:  summary.EntriesReset,
		TasksReopened: summary.TasksReopened,
	})
}

func History(c *gin.Context, db *gorm.DB) {
	var weekEnding *time.Time
	if week := c.Query("week"); week != "" {
		t, err := time.Parse("2006-01-02", week)
		if err != nil {
			httperror.BadRequest(c, fmt.Errorf("invalid week %q, expected YYYY-MM-DD", week))
			return
		}
		weekEnding = &t
	}

	rows, err := services.History(c.Request.Context(), db, weekEnding)
	if err != nil {
		httperror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
