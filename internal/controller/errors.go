package controller

import (
	"errors"
	"learnpath_backend/internal/contract"
	"learnpath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// respondServiceError 把服务层的哨兵错误映射成HTTP状态码。
// 生成后端故障和约定解析失败都算上游问题，对外统一是502
func respondServiceError(ctx *gin.Context, err error) {
	var parseErr *contract.ParseError
	switch {
	case errors.Is(err, util.ErrGoalNotFound),
		errors.Is(err, util.ErrTestNotFound),
		errors.Is(err, util.ErrScoreNotFound),
		errors.Is(err, util.ErrFeedbackNotFound),
		errors.Is(err, util.ErrModuleNotFound),
		errors.Is(err, util.ErrArtifactNotFound),
		errors.Is(err, util.ErrUserNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrEmailRegistered),
		errors.Is(err, util.ErrUsernameRegistered):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrModuleRevised):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrInvalidCredentials):
		util.Unauthorized(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrBackendUnavailable):
		util.BadGateway(ctx, "generation backend unavailable")
	case errors.As(err, &parseErr):
		util.BadGateway(ctx, "generation backend returned unparseable content")
	default:
		util.LogInternalError(ctx, err)
	}
}
