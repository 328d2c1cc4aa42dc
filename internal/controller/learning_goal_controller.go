package controller

import (
	"errors"
	"learnpath_backend/internal/service"
	"learnpath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// LearningGoalController 处理学习目标的API请求

type LearningGoalController struct {
	GoalService      *service.LearningGoalService
	RecommendService *service.RecommendationService
}

func NewLearningGoalController(goalService *service.LearningGoalService, recommendService *service.RecommendationService) *LearningGoalController {
	return &LearningGoalController{GoalService: goalService, RecommendService: recommendService}
}

type CreateGoalRequest struct {
	Title        string `json:"title" binding:"required,max=255"`
	Description  string `json:"description" binding:"required"`
	DurationDays int    `json:"durationDays" binding:"required,min=1"`
}

// @Summary 创建学习目标
// @Description 创建前先经过SMART资格审查，不通过时返回422和改进建议，目标不保存
// @Tags 学习目标
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param goal body CreateGoalRequest true "学习目标信息"
// @Success 201 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /api/goals [post]
func (c *LearningGoalController) CreateGoal(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CreateGoalRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.GoalService.CreateGoal(ctx.Request.Context(), user.UserID, req.Title, req.Description, req.DurationDays)
	if err != nil {
		if errors.Is(err, util.ErrGoalNotSmart) {
			util.UnprocessableEntity(ctx, "goal does not meet SMART criteria", result.Verdict)
			return
		}
		respondServiceError(ctx, err)
		return
	}

	util.Created(ctx, result)
}

// @Summary 获取所有学习目标
// @Tags 学习目标
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/goals [get]
func (c *LearningGoalController) ListGoals(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	goals, err := c.GoalService.ListGoals(user.UserID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, goals)
}

// @Summary 获取学习目标详情
// @Tags 学习目标
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "目标ID"
// @Success 200 {object} util.Response
// @Router /api/goals/{id} [get]
func (c *LearningGoalController) GetGoal(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	goalID := util.MustParseUint(ctx.Param("id"))
	if goalID == 0 {
		util.BadRequest(ctx, "invalid goal id")
		return
	}

	goal, err := c.GoalService.GetGoal(user.UserID, goalID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, goal)
}

// @Summary 删除学习目标
// @Tags 学习目标
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "目标ID"
// @Success 200 {object} util.Response
// @Router /api/goals/{id} [delete]
func (c *LearningGoalController) DeleteGoal(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	goalID := util.MustParseUint(ctx.Param("id"))
	if goalID == 0 {
		util.BadRequest(ctx, "invalid goal id")
		return
	}

	if err := c.GoalService.DeleteGoal(user.UserID, goalID); err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 推荐课程
// @Description 按目标推荐外部课程，按评分排序
// @Tags 学习目标
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "目标ID"
// @Success 200 {object} util.Response
// @Failure 502 {object} util.Response
// @Router /api/goals/{id}/courses [get]
func (c *LearningGoalController) RecommendCourses(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	goalID := util.MustParseUint(ctx.Param("id"))
	if goalID == 0 {
		util.BadRequest(ctx, "invalid goal id")
		return
	}

	courses, err := c.RecommendService.RecommendCourses(ctx.Request.Context(), user.UserID, goalID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}
