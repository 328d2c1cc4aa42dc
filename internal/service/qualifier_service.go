package service

import (
	"context"
	"fmt"
	"learnpath_backend/internal/config"
	"learnpath_backend/internal/contract"
	"learnpath_backend/internal/model"
	"learnpath_backend/pkg/monitoring"
	"strings"
	"time"
)

// smartGoalContract 目标质量评估的输出契约，字段与提示词一次性包级构建
var smartGoalContract = contract.MustBuild(
	contract.Field{Name: "is_smart", Description: "whether the goal is SMART or not, answer yes or no"},
	contract.Field{Name: "reason", Description: "reason for the answer"},
	contract.Field{Name: "smart_example", Description: "suggestions to help the user make the goal SMART"},
)

// QualifierService 判定学习目标是否符合SMART标准。
// 单次生成调用，解析失败即为致命错误——目标创建中止，不落库
type QualifierService struct {
	Generator TextGenerator
	AIConfig  config.AIConfig
}

func NewQualifierService(generator TextGenerator, aiCfg config.AIConfig) *QualifierService {
	return &QualifierService{Generator: generator, AIConfig: aiCfg}
}

// QualifyGoal 评估候选目标。无论通过与否，理由与改进建议都返回给调用方
func (s *QualifierService) QualifyGoal(ctx context.Context, title, description string, skills []string, durationDays int) (*model.GoalVerdict, error) {
	prompt := s.buildPrompt(title, description, skills, durationDays)

	start := time.Now()
	raw, err := s.Generator.Generate(ctx, s.AIConfig.GenerationModel, prompt)
	if err != nil {
		monitoring.ObserveGeneration("smart_goal", "backend_error", time.Since(start))
		return nil, err
	}

	parsed, err := smartGoalContract.Parse(raw)
	if err != nil {
		monitoring.ObserveGeneration("smart_goal", "parse_error", time.Since(start))
		return nil, err
	}
	monitoring.ObserveGeneration("smart_goal", "ok", time.Since(start))

	verdict := &model.GoalVerdict{
		IsSmart:     strings.EqualFold(contract.GetString(parsed, "is_smart"), "yes"),
		Rationale:   contract.GetString(parsed, "reason"),
		Suggestions: contract.GetString(parsed, "smart_example"),
	}
	return verdict, nil
}

func (s *QualifierService) buildPrompt(title, description string, skills []string, durationDays int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I am a student and I want to learn %s. The description for this goal is: %s.\n", title, description)
	fmt.Fprintf(&b, "I currently have the following skills: %s.\n", joinForPrompt(skills))
	fmt.Fprintf(&b, "The duration for this goal is %d days.\n\n", durationDays)
	b.WriteString("Judge whether this goal is SMART (Specific, Measurable, Achievable, Relevant, Time-bound). ")
	b.WriteString("If it is SMART say so, otherwise explain what is missing and suggest how to restate it.\n\n")
	b.WriteString(smartGoalContract.RenderInstructions())
	return b.String()
}

func joinForPrompt(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
