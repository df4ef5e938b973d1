package controller

import (
	"errors"
	"strconv"

	"bcs_edu_backend/internal/service"
	"bcs_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService     *service.ProgressService
	GamificationService *service.GamificationService
}

func NewProgressController(
	progressService *service.ProgressService,
	gamificationService *service.GamificationService,
) *ProgressController {
	return &ProgressController{
		ProgressService:     progressService,
		GamificationService: gamificationService,
	}
}

type completionRequest struct {
	ModuleID  uint  `json:"moduleId"`
	CourseID  *uint `json:"courseId"`
	Completed *bool `json:"completed"`
}

// @Summary Complete module
// @Description Marks a module complete for the user; completed=false removes the record
// @Tags Progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body completionRequest true "Completion payload"
// @Success 200 {object} util.Response
// @Router /api/progress/module/complete [post]
func (c *ProgressController) CompleteModule(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req completionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if req.ModuleID == 0 {
		util.BadRequest(ctx, "moduleId is required")
		return
	}

	// Absent means complete; only an explicit false undoes.
	if req.Completed != nil && !*req.Completed {
		if err := c.ProgressService.MarkIncomplete(user.UserID, req.ModuleID, req.CourseID); err != nil {
			util.LogInternalError(ctx, err)
			return
		}
		util.Success(ctx, gin.H{"success": true, "completed": false})
		return
	}

	result, err := c.ProgressService.MarkComplete(user.UserID, req.ModuleID, req.CourseID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrModuleNotFound):
			util.NotFound(ctx, "Module not found")
		case errors.Is(err, util.ErrNotEnrolled):
			util.Forbidden(ctx, "Not enrolled in this course")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result)
}

// @Summary Start module
// @Description Records that the user opened a module, creating an in progress entry
// @Tags Progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body object true "Start payload"
// @Success 200 {object} util.Response
// @Router /api/progress/module/start [post]
func (c *ProgressController) StartModule(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req struct {
		ModuleID uint  `json:"moduleId"`
		CourseID *uint `json:"courseId"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if req.ModuleID == 0 {
		util.BadRequest(ctx, "moduleId is required")
		return
	}

	progress, err := c.ProgressService.StartModule(user.UserID, req.ModuleID, req.CourseID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrModuleNotFound):
			util.NotFound(ctx, "Module not found")
		case errors.Is(err, util.ErrNotEnrolled):
			util.Forbidden(ctx, "Not enrolled in this course")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, progress)
}

// @Summary Course progress
// @Description Returns per module progress and the rollup for one course
// @Tags Progress
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Success 200 {object} util.Response
// @Router /api/progress/course/{courseId} [get]
func (c *ProgressController) GetCourseProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, err := strconv.Atoi(ctx.Param("courseId"))
	if err != nil {
		util.BadRequest(ctx, "Invalid course ID")
		return
	}

	view, err := c.ProgressService.GetCourseProgress(user.UserID, uint(courseID))
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx, "Course not found")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, view)
}

// @Summary Streaks
// @Description Returns streak counters, the activity calendar and summary windows
// @Tags Progress
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/progress/streaks [get]
func (c *ProgressController) GetStreaks(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	streaks, err := c.GamificationService.GetStreaks(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, streaks)
}
