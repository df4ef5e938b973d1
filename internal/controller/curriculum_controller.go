package controller

import (
	"bcs_edu_backend/internal/service"
	"bcs_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CurriculumController struct {
	CurriculumService *service.CurriculumService
}

func NewCurriculumController(curriculumService *service.CurriculumService) *CurriculumController {
	return &CurriculumController{CurriculumService: curriculumService}
}

// @Summary Curriculum map
// @Description Returns the program level course map; anonymous users get the public variant
// @Tags Curriculum
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/curriculum/map [get]
func (c *CurriculumController) GetMap(ctx *gin.Context) {
	var userID uint
	if user := util.GetUserFromContext(ctx); user != nil {
		userID = user.UserID
	}

	curriculumMap, err := c.CurriculumService.GetMap(userID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, curriculumMap)
}
