package util

import "errors"

var (
	ErrUserNotFound       = errors.New("用户不存在")
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrUsernameRegistered = errors.New("该用户名已被注册")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrGoalNotFound       = errors.New("goal not found")
	ErrTestNotFound       = errors.New("test not found")
	ErrScoreNotFound      = errors.New("score not found")
	ErrFeedbackNotFound   = errors.New("feedback not found")
	ErrModuleNotFound     = errors.New("learning module not found")
	ErrArtifactNotFound   = errors.New("artifact not found")
	ErrGoalNotSmart       = errors.New("goal does not meet SMART criteria")

	// ErrBackendUnavailable 生成后端调用本身失败（网络/鉴权/限流）
	ErrBackendUnavailable = errors.New("generation backend unavailable")

	// ErrModuleRevised 修订写回时版本检查失败，说明有并发修订已先行生效
	ErrModuleRevised = errors.New("learning module was revised concurrently")
)
