package controller

import (
	"errors"

	"bcs_edu_backend/internal/service"
	"bcs_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

// @Summary Enroll
// @Description Enrolls the authenticated user in a course
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Course slug"
// @Success 201 {object} util.Response
// @Router /api/courses/{slug}/enroll [post]
func (c *CourseController) Enroll(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	tracking, err := c.CourseService.Enroll(user.UserID, ctx.Param("slug"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrCourseNotFound):
			util.NotFound(ctx, "Course not found")
		case errors.Is(err, util.ErrAlreadyEnrolled):
			util.BadRequest(ctx, "Already enrolled in this course")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, tracking)
}

// @Summary Quest map
// @Description Returns the course quest map with per module status for the user
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Course slug"
// @Success 200 {object} util.Response
// @Router /api/courses/{slug}/quest-map [get]
func (c *CourseController) GetQuestMap(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	questMap, err := c.CourseService.GetQuestMap(user.UserID, ctx.Param("slug"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrCourseNotFound):
			util.NotFound(ctx, "Course not found")
		case errors.Is(err, util.ErrNotEnrolled):
			util.Forbidden(ctx, "Not enrolled in this course")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, questMap)
}

// @Summary Public quest map
// @Description Returns the course map without user progress, cached
// @Tags Courses
// @Produce json
// @Param slug path string true "Course slug"
// @Success 200 {object} util.Response
// @Router /api/courses/{slug}/map [get]
func (c *CourseController) GetPublicMap(ctx *gin.Context) {
	questMap, err := c.CourseService.GetPublicMap(ctx.Param("slug"))
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx, "Course not found")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, questMap)
}
