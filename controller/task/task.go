package task

import (
	"errors"
	"io"
	"net/http"

	"choretracker/controller/httperror"
	"choretracker/dto"
	"choretracker/middleware"
	"choretracker/model"
	"choretracker/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func ListTasks(c *gin.Context, db *gorm.DB) {
	caller, _ := middleware.CallerFrom(c)

	tasks, err := services.ListTasks(c.Request.Context(), db, caller)
	if err != nil {
		httperror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func GetTask(c *gin.Context, db *gorm.DB) {
	caller, _ := middleware.CallerFrom(c)

	task, err := services.GetTask(c.Request.Context(), db, caller, c.Param("id"))
	if err != nil {
		httperror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func UpdateTask(c *gin.Context, db *gorm.DB) {
	caller, _ := middleware.CallerFrom(c)

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperror.BadRequest(c, err)
		return
	}
	upd, err := toTaskUpdate(req)
	if err != nil {
		httperror.BadRequest(c, err)
		return
	}

	task, err := services.UpdateTask(c.Request.Context(), db, caller, c.Param("id"), upd)
	if err != nil {
		httperror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func DeleteTask(c *gin.Context, db *gorm.DB) {
	caller, _ := middleware.CallerFrom(c)

	if err := services.DeleteTask(c.Request.Context(), db, caller, c.Param("id")); err != nil {
		httperror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully", "taskId": c.Param("id")})
}

// CompleteTask accepts an optional {"day": "mon"} body. Without a day every
// day of the caller's assignment is completed.
func CompleteTask(c *gin.Context, db *gorm.DB) {
	caller, _ := middleware.CallerFrom(c)

	var req dto.CompleteTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		httperror.BadRequest(c, err)
		return
	}

	var day *model.Weekday
	if req.Day != "" {
		d, err := model.ParseWeekday(req.Day)
		if err != nil {
			httperror.BadRequest(c, err)
			return
		}
		day = &d
	}

	task, err := services.MarkComplete(c.Request.Context(), db, caller, c.Param("id"), day)
	if err != nil {
		httperror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func MyProgress(c *gin.Context, db *gorm.DB) {
	caller, _ := middleware.CallerFrom(c)

	rows, err := services.GetProgress(c.Request.Context(), db, caller, services.ProgressFilter{
		TaskID: c.Query("taskId"),
	})
	if err != nil {
		httperror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
