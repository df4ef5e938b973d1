package controller

import (
	"strconv"

	"bcs_edu_backend/internal/service"
	"bcs_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AchievementController struct {
	AchievementService *service.AchievementService
}

func NewAchievementController(achievementService *service.AchievementService) *AchievementController {
	return &AchievementController{AchievementService: achievementService}
}

// @Summary Achievement catalogue
// @Description Lists every badge definition
// @Tags Achievements
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/achievements [get]
func (c *AchievementController) ListDefinitions(ctx *gin.Context) {
	definitions, err := c.AchievementService.ListDefinitions()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, definitions)
}

// @Summary Earned achievements
// @Description Lists badges earned by the authenticated user
// @Tags Achievements
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/achievements/mine [get]
func (c *AchievementController) ListEarned(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	earned, err := c.AchievementService.ListEarned(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, earned)
}

// @Summary Leaderboard
// @Description Returns the top users ranked by total XP
// @Tags Achievements
// @Produce json
// @Param limit query int false "Number of entries" default(10)
// @Success 200 {object} util.Response
// @Router /api/achievements/leaderboard [get]
func (c *AchievementController) GetLeaderboard(ctx *gin.Context) {
	limit := 10
	if limitStr := ctx.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	leaderboard, err := c.AchievementService.GetLeaderboard(limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, leaderboard)
}
