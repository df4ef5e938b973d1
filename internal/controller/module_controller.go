package controller

import (
	"errors"
	"strconv"

	"bcs_edu_backend/internal/service"
	"bcs_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ModuleController struct {
	ModuleService *service.ModuleService
}

func NewModuleController(moduleService *service.ModuleService) *ModuleController {
	return &ModuleController{ModuleService: moduleService}
}

// @Summary Module tree
// @Description Returns the full published module forest with section numbering
// @Tags Modules
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/modules/tree [get]
func (c *ModuleController) GetTree(ctx *gin.Context) {
	tree, err := c.ModuleService.GetTree()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"tree": tree})
}

// @Summary Module detail
// @Description Returns a module subtree by slug along with its ancestor chain
// @Tags Modules
// @Produce json
// @Param slug path string true "Module slug"
// @Success 200 {object} util.Response
// @Router /api/modules/{slug} [get]
func (c *ModuleController) GetBySlug(ctx *gin.Context) {
	slug := ctx.Param("slug")

	detail, err := c.ModuleService.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, util.ErrModuleNotFound) {
			util.NotFound(ctx, "Module not found")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, detail)
}

// @Summary Update prerequisites
// @Description Replaces a module's prerequisite list after validation
// @Tags Modules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param moduleId path int true "Module ID"
// @Param body body object true "Prerequisite IDs"
// @Success 200 {object} util.Response
// @Router /api/modules/{moduleId}/prerequisites [put]
func (c *ModuleController) UpdatePrerequisites(ctx *gin.Context) {
	moduleIDStr := ctx.Param("moduleId")
	moduleID, err := strconv.Atoi(moduleIDStr)
	if err != nil {
		util.BadRequest(ctx, "Invalid module ID")
		return
	}

	var req struct {
		PrerequisiteIDs []uint `json:"prerequisiteIds"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	err = c.ModuleService.UpdatePrerequisites(uint(moduleID), req.PrerequisiteIDs)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrModuleNotFound):
			util.NotFound(ctx, "Module not found")
		case errors.Is(err, util.ErrSelfPrerequisite):
			util.BadRequest(ctx, "A module cannot require itself")
		case errors.Is(err, util.ErrUnknownPrereq):
			util.BadRequest(ctx, "Prerequisite references an unknown module")
		case errors.Is(err, util.ErrPrereqCycle):
			util.BadRequest(ctx, "Prerequisites would form a cycle")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"message": "Prerequisites updated"})
}
