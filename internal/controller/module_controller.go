package controller

import (
	"learnpath_backend/internal/service"
	"learnpath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ModuleController struct {
	ModuleService *service.ModuleService
}

func NewModuleController(moduleService *service.ModuleService) *ModuleController {
	return &ModuleController{ModuleService: moduleService}
}

type GenerateModuleRequest struct {
	GoalID     uint   `json:"goalId" binding:"required"`
	ModuleInfo string `json:"moduleInfo" binding:"required"`
}

type ReviseModuleRequest struct {
	TestID uint `json:"testId" binding:"required"`
}

// @Summary 生成学习模块
// @Description 路线图→练习两段链生成，任一段失败则整体失败，不保存部分结果
// @Tags 学习模块
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GenerateModuleRequest true "模块参数"
// @Success 201 {object} util.Response
// @Failure 502 {object} util.Response
// @Router /api/modules [post]
func (c *ModuleController) GenerateModule(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req GenerateModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ModuleService.GenerateModule(ctx.Request.Context(), user.UserID, req.GoalID, req.ModuleInfo)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Created(ctx, result)
}

// @Summary 模块列表
// @Tags 学习模块
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/modules [get]
func (c *ModuleController) ListModules(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	modules, err := c.ModuleService.ListModules(user.UserID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, modules)
}

// @Summary 模块详情
// @Description 返回模块记录和当前版本的路线图+练习产物
// @Tags 学习模块
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "模块ID"
// @Success 200 {object} util.Response
// @Router /api/modules/{id} [get]
func (c *ModuleController) GetModule(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	moduleID := util.MustParseUint(ctx.Param("id"))
	if moduleID == 0 {
		util.BadRequest(ctx, "invalid module id")
		return
	}

	result, err := c.ModuleService.GetModule(ctx.Request.Context(), user.UserID, moduleID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 模块修订
// @Description 基于测验成绩与反馈修订模块。修订流水线失败时返回修订前的内容，revised为false；
// @Description 并发修订冲突返回409
// @Tags 学习模块
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "模块ID"
// @Param request body ReviseModuleRequest true "修订依据的测验"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/modules/{id}/revise [post]
func (c *ModuleController) ReviseModule(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	moduleID := util.MustParseUint(ctx.Param("id"))
	if moduleID == 0 {
		util.BadRequest(ctx, "invalid module id")
		return
	}

	var req ReviseModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ModuleService.ReviseModule(ctx.Request.Context(), user.UserID, moduleID, req.TestID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
