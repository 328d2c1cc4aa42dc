package controller

import (
	"learnpath_backend/internal/service"
	"learnpath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ChatController 处理学习目标答疑助手的API请求

type ChatController struct {
	ChatService *service.ChatService
}

func NewChatController(chatService *service.ChatService) *ChatController {
	return &ChatController{ChatService: chatService}
}

type ChatRequest struct {
	Message string `json:"message"`
	IsStart bool   `json:"isStart"`
	GoalID  uint   `json:"goalId"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

// @Summary 答疑助手对话
// @Description isStart为true时围绕指定目标开启新对话（需要goalId），否则在当前对话中追问
// @Tags 答疑助手
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param chat body ChatRequest true "对话内容"
// @Success 200 {object} util.Response
// @Failure 502 {object} util.Response
// @Router /api/chat [post]
func (c *ChatController) Chat(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	var reply string
	var err error
	if req.IsStart {
		if req.GoalID == 0 {
			util.BadRequest(ctx, "goalId is required to start a chat")
			return
		}
		reply, err = c.ChatService.StartChat(ctx.Request.Context(), user.UserID, req.GoalID)
	} else {
		if req.Message == "" {
			util.BadRequest(ctx, "message is required")
			return
		}
		reply, err = c.ChatService.Ask(ctx.Request.Context(), user.UserID, req.Message)
	}
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, ChatResponse{Reply: reply})
}
