package task

import (
	"fmt"
	"net/http"
	"time"

	"choretracker/controller/httperror"
	"choretracker/dto"
	"choretracker/middleware"
	"choretracker/model"
	"choretracker/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

func TaskController(router *gin.RouterGroup, db *gorm.DB, tokens services.TokenConfig) {
	routes := router.Group("/tasks", middleware.AccessTokenMiddleware(tokens))
	{
		routes.GET("", func(c *gin.Context) {
			ListTasks(c, db)
		})
		routes.GET("/progress", func(c *gin.Context) {
			MyProgress(c, db)
		})
		routes.GET("/:id", func(c *gin.Context) {
			GetTask(c, db)
		})
		routes.PUT("/:id/complete", func(c *gin.Context) {
			CompleteTask(c, db)
		})
		routes.POST("", middleware.AdminMiddleware(), func(c *gin.Context) {
			Createtask(c, db)
		})
		routes.PUT("/:id", middleware.AdminMiddleware(), func(c *gin.Context) {
			UpdateTask(c, db)
		})
		routes.DELETE("/:id", middleware.AdminMiddleware(), func(c *gin.Context) {
			DeleteTask(c, db)
		})
	}
}

func Createtask(c *gin.Context, db *gorm.DB) {
	caller, _ := middleware.CallerFrom(c)

	var taskReq dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&taskReq); err != nil {
		httperror.BadRequest(c, err)
		return
	}

	input, err := toTaskInput(taskReq)
	if err != nil {
		httperror.BadRequest(c, err)
		return
	}

	task, err := services.CreateTask(c.Request.Context(), db, caller, input)
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

func toTaskInput(req dto.CreateTaskRequest) (services.TaskInput, error) {
	days, err := parseDays(req.RecurrenceDays)
	if err != nil {
		return services.TaskInput{}, err
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return services.TaskInput{}, err
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return services.TaskInput{}, err
	}
	assignees, err := toAssignees(req.Assignees)
	if err != nil {
		return services.TaskInput{}, err
	}

	return services.TaskInput{
		Name:           req.Name,
		Description:    req.Description,
		Frequency:      model.Frequency(req.Frequency),
		RecurrenceDays: days,
		StartDate:      start,
		EndDate:        end,
		Assignees:      assignees,
	}, nil
}

func toTaskUpdate(req dto.UpdateTaskRequest) (services.TaskUpdate, error) {
	upd := services.TaskUpdate{
		Name:        req.Name,
		Description: req.Description,
	}
	if req.Frequency != nil {
		f := model.Frequency(*req.Frequency)
		upd.Frequency = &f
	}
	if req.RecurrenceDays != nil {
		days, err := parseDays(*req.RecurrenceDays)
		if err != nil {
			return upd, err
		}
		upd.RecurrenceDays = &days
	}

	var err error
	if req.StartDate != nil {
		if upd.StartDate, err = parseDate(*req.StartDate); err != nil {
			return upd, err
		}
	}
	if req.EndDate != nil {
		if upd.EndDate, err = parseDate(*req.EndDate); err != nil {
			return upd, err
		}
	}
	if req.Assignees != nil {
		assignees, err := toAssignees(*req.Assignees)
		if err != nil {
			return upd, err
		}
		upd.Assignees = &assignees
	}
	return upd, nil
}

func toAssignees(reqs []dto.AssigneeRequest) ([]services.AssigneeInput, error) {
	assignees := make([]services.AssigneeInput, 0, len(reqs))
	for _, a := range reqs {
		days, err := parseDays(a.Days)
		if err != nil {
			return nil, err
		}
		assignees = append(assignees, services.AssigneeInput{UserID: a.UserID, Days: days})
	}
	return assignees, nil
}

func parseDays(values []string) (model.Weekdays, error) {
	days := make(model.Weekdays, 0, len(values))
	for _, v := range values {
		d, err := model.ParseWeekday(v)
		if err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, nil
}

func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return &t, nil
}
