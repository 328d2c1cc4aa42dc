package service

import (
	"context"
	"fmt"
	"learnpath_backend/internal/config"
	"learnpath_backend/internal/contract"
	"learnpath_backend/internal/model"
	"learnpath_backend/pkg/logger"
	"learnpath_backend/pkg/monitoring"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// EvaluationFallbackSuggestion 评估降级时的占位建议文本
const EvaluationFallbackSuggestion = "Error in evaluation processing."

var evaluationContract = contract.MustBuild(
	contract.Field{Name: "reward", Description: "Reward for the base model on a scale of -10 to 10."},
	contract.Field{Name: "suggestions", Description: "Suggestions to improve the base model."},
)

// EvaluationService 依据测验成绩与用户反馈给生成模型打分。
// 评估结果只是修订环节的输入信号，因此任何后端/解析失败都不向上传播，
// 而是降级为中性结果{0, 占位文本}并记日志——修订流程照常推进
type EvaluationService struct {
	Generator TextGenerator
	AIConfig  config.AIConfig
}

func NewEvaluationService(generator TextGenerator, aiCfg config.AIConfig) *EvaluationService {
	return &EvaluationService{Generator: generator, AIConfig: aiCfg}
}

// Evaluate 永不失败。使用独立的评估模型
func (s *EvaluationService) Evaluate(ctx context.Context, goal *model.Goal, test *model.Test, score *model.Score, feedback *model.Feedback) *model.Evaluation {
	prompt := s.buildPrompt(goal, test, score, feedback)

	start := time.Now()
	raw, err := s.Generator.Generate(ctx, s.AIConfig.EvaluationModel, prompt)
	if err != nil {
		monitoring.ObserveGeneration("evaluation", "backend_error", time.Since(start))
		logger.Log.Error("evaluation model error", zap.Error(err))
		return fallbackEvaluation()
	}

	parsed, err := evaluationContract.Parse(raw)
	if err != nil {
		monitoring.ObserveGeneration("evaluation", "parse_error", time.Since(start))
		logger.Log.Error("evaluation output unparseable", zap.Error(err))
		return fallbackEvaluation()
	}
	monitoring.ObserveGeneration("evaluation", "ok", time.Since(start))

	reward, err := strconv.Atoi(strings.TrimSpace(contract.GetString(parsed, "reward")))
	if err != nil {
		logger.Log.Error("evaluation reward not numeric", zap.String("reward", contract.GetString(parsed, "reward")))
		return fallbackEvaluation()
	}
	if reward > 10 {
		reward = 10
	}
	if reward < -10 {
		reward = -10
	}

	return &model.Evaluation{
		Reward:      reward,
		Suggestions: contract.GetString(parsed, "suggestions"),
	}
}

func fallbackEvaluation() *model.Evaluation {
	return &model.Evaluation{Reward: 0, Suggestions: EvaluationFallbackSuggestion}
}

func (s *EvaluationService) buildPrompt(goal *model.Goal, test *model.Test, score *model.Score, feedback *model.Feedback) string {
	var b strings.Builder
	b.WriteString("I am a student.\n")
	fmt.Fprintf(&b, "I want to learn %s, with this description: %s.\n", goal.Title, goal.Description)
	fmt.Fprintf(&b, "I have completed the %s module and given a test on it.\n", test.ModuleInfo)
	fmt.Fprintf(&b, "My wrong-answer fluency in the test is %.2f and my right-answer fluency is %.2f.\n", score.WrongFluency, score.RightFluency)
	fmt.Fprintf(&b, "My feedback regarding the module is: %s.\n", feedback.Content)
	b.WriteString("The base model is the model which generated the learning module. Rate how well it served me and suggest improvements.\n\n")
	b.WriteString(evaluationContract.RenderInstructions())
	return b.String()
}
