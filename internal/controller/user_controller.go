package controller

import (
	"learnpath_backend/internal/service"
	"learnpath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

type AddSkillRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// @Summary 获取个人资料
// @Tags 用户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/users/profile [get]
func (c *UserController) GetProfile(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	profile, err := c.UserService.GetProfile(user.UserID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// @Summary 更新个人资料
// @Description 更新资料字段，资料补全后用户画像分类自动升级
// @Tags 用户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body service.ProfileUpdate true "资料更新"
// @Success 200 {object} util.Response
// @Router /api/users/profile [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ProfileUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	profile, err := c.UserService.UpdateProfile(user.UserID, &req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// @Summary 技能列表
// @Tags 用户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/users/skills [get]
func (c *UserController) ListSkills(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	skills, err := c.UserService.ListSkills(user.UserID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, skills)
}

// @Summary 添加技能
// @Tags 用户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param skill body AddSkillRequest true "技能名称"
// @Success 201 {object} util.Response
// @Router /api/users/skills [post]
func (c *UserController) AddSkill(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req AddSkillRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	skill, err := c.UserService.AddSkill(user.UserID, req.Name)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Created(ctx, skill)
}

// @Summary 删除技能
// @Tags 用户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "技能ID"
// @Success 200 {object} util.Response
// @Router /api/users/skills/{id} [delete]
func (c *UserController) RemoveSkill(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	skillID := util.MustParseUint(ctx.Param("id"))
	if skillID == 0 {
		util.BadRequest(ctx, "invalid skill id")
		return
	}

	if err := c.UserService.RemoveSkill(user.UserID, skillID); err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
