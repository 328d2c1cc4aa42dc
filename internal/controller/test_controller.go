package controller

import (
	"learnpath_backend/internal/service"
	"learnpath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TestController struct {
	TestService *service.TestService
}

func NewTestController(testService *service.TestService) *TestController {
	return &TestController{TestService: testService}
}

type GenerateModuleTestRequest struct {
	GoalID     uint   `json:"goalId" binding:"required"`
	ModuleInfo string `json:"moduleInfo" binding:"required"`
}

type RecordScoreRequest struct {
	RightFluency float64 `json:"rightFluency" binding:"min=0"`
	WrongFluency float64 `json:"wrongFluency" binding:"min=0"`
}

type SubmitFeedbackRequest struct {
	Content string `json:"content" binding:"required"`
}

// @Summary 生成摸底测验
// @Description 为目标生成10题测验。同一目标重复请求返回已有测验，不再调用生成后端
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "目标ID"
// @Success 201 {object} util.Response
// @Failure 502 {object} util.Response
// @Router /api/goals/{id}/preliminary-test [post]
func (c *TestController) GeneratePreliminary(ctx *gin.Context) {
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

	result, err := c.TestService.GeneratePreliminary(ctx.Request.Context(), user.UserID, goalID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Created(ctx, result)
}

// @Summary 生成模块测验
// @Description 针对已学模块生成阶段测验，每次调用都产生新测验
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GenerateModuleTestRequest true "模块测验参数"
// @Success 201 {object} util.Response
// @Failure 502 {object} util.Response
// @Router /api/tests/module [post]
func (c *TestController) GenerateModuleTest(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req GenerateModuleTestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.TestService.GenerateModuleTest(ctx.Request.Context(), user.UserID, req.GoalID, req.ModuleInfo)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Created(ctx, result)
}

// @Summary 获取测验详情
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/tests/{id} [get]
func (c *TestController) GetTest(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	testID := util.MustParseUint(ctx.Param("id"))
	if testID == 0 {
		util.BadRequest(ctx, "invalid test id")
		return
	}

	result, err := c.TestService.GetTest(ctx.Request.Context(), user.UserID, testID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 记录测验成绩
// @Description 记录对错两类答题流畅度
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "测验ID"
// @Param score body RecordScoreRequest true "成绩"
// @Success 201 {object} util.Response
// @Router /api/tests/{id}/scores [post]
func (c *TestController) RecordScore(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	testID := util.MustParseUint(ctx.Param("id"))
	if testID == 0 {
		util.BadRequest(ctx, "invalid test id")
		return
	}

	var req RecordScoreRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	score, err := c.TestService.RecordScore(user.UserID, testID, req.RightFluency, req.WrongFluency)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Created(ctx, score)
}

// @Summary 提交测验反馈
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "测验ID"
// @Param feedback body SubmitFeedbackRequest true "反馈内容"
// @Success 201 {object} util.Response
// @Router /api/tests/{id}/feedback [post]
func (c *TestController) SubmitFeedback(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	testID := util.MustParseUint(ctx.Param("id"))
	if testID == 0 {
		util.BadRequest(ctx, "invalid test id")
		return
	}

	var req SubmitFeedbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	feedback, err := c.TestService.SubmitFeedback(user.UserID, testID, req.Content)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Created(ctx, feedback)
}
