package service

import (
	"context"
	"fmt"
	"learnpath_backend/internal/config"
	"learnpath_backend/internal/contract"
	"learnpath_backend/internal/model"
	"learnpath_backend/internal/repository"
	"learnpath_backend/internal/util"
	"learnpath_backend/pkg/logger"
	"learnpath_backend/pkg/monitoring"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const listFormatHint = "(Format should be a list such that each sentence is a separate entry in the list)"

var roadmapContract = contract.MustBuild(
	contract.Field{Name: "topics", Description: "Ordered list of learning topics with time allocation. " + listFormatHint, List: true},
	contract.Field{Name: "prerequisites", Description: "Required foundational knowledge. " + listFormatHint, List: true},
	contract.Field{Name: "weekly_breakdown", Description: "Detailed weekly learning objectives. " + listFormatHint, List: true},
	contract.Field{Name: "key_milestones", Description: "Assessment points and project deadlines. " + listFormatHint, List: true},
)

var practiceContract = contract.MustBuild(
	contract.Field{Name: "active_recall", Description: "Spaced repetition prompts for key concepts. " + listFormatHint, List: true},
	contract.Field{Name: "hands_on_projects", Description: "Project ideas with complexity grading. " + listFormatHint, List: true},
	contract.Field{Name: "debugging_scenarios", Description: "Common error examples to solve. " + listFormatHint, List: true},
	contract.Field{Name: "collaborative_learning", Description: "Pair programming/study group suggestions. " + listFormatHint, List: true},
)

// 产物内容会原样展示给用户并回填到后续提示词，任何富文本标记都会污染下游解析
const plainTextRule = "All text must be in simple plain format, do not highlight it or make it bold. Do not add end of line or any other non-human readable characters."

// ModuleService 学习模块的生成与修订。
// 生成是路线图->练习的两段严格顺序链：第二段的提示词嵌入第一段解析后的结果，
// 任一段失败则整个操作失败，绝不存半个产物。
// 修订在同样的链前加一步评估，失败时回退到修订前的产物原样返回
type ModuleService struct {
	Generator    TextGenerator
	AIConfig     config.AIConfig
	Artifacts    ArtifactStore
	Evaluator    *EvaluationService
	ModuleRepo   *repository.ModuleRepository
	GoalRepo     *repository.GoalRepository
	SkillRepo    *repository.SkillRepository
	UserRepo     *repository.UserRepository
	TestRepo     *repository.TestRepository
	ScoreRepo    *repository.ScoreRepository
	FeedbackRepo *repository.FeedbackRepository
}

func NewModuleService(
	generator TextGenerator,
	aiCfg config.AIConfig,
	artifacts ArtifactStore,
	evaluator *EvaluationService,
	moduleRepo *repository.ModuleRepository,
	goalRepo *repository.GoalRepository,
	skillRepo *repository.SkillRepository,
	userRepo *repository.UserRepository,
	testRepo *repository.TestRepository,
	scoreRepo *repository.ScoreRepository,
	feedbackRepo *repository.FeedbackRepository,
) *ModuleService {
	return &ModuleService{
		Generator:    generator,
		AIConfig:     aiCfg,
		Artifacts:    artifacts,
		Evaluator:    evaluator,
		ModuleRepo:   moduleRepo,
		GoalRepo:     goalRepo,
		SkillRepo:    skillRepo,
		UserRepo:     userRepo,
		TestRepo:     testRepo,
		ScoreRepo:    scoreRepo,
		FeedbackRepo: feedbackRepo,
	}
}

// ModuleWithArtifact 模块记录以及产物存储中的路线图+练习本体
type ModuleWithArtifact struct {
	Module   *model.LearningModule `json:"module"`
	Artifact *model.ModuleArtifact `json:"artifact"`
	// Revised 修订请求中标记本次是否真的产出了新产物
	Revised bool `json:"revised,omitempty"`
}

// GenerateModule 初次生成。链上任一段失败即整体失败，不创建任何记录
func (s *ModuleService) GenerateModule(ctx context.Context, userID, goalID uint, moduleInfo string) (*ModuleWithArtifact, error) {
	goal, err := s.GoalRepo.FindByIDAndUserID(goalID, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrGoalNotFound
		}
		return nil, err
	}

	education := ""
	if user, err := s.UserRepo.FindByID(userID); err == nil {
		education = user.Education
	}
	skills, err := s.SkillRepo.NamesByUserID(userID)
	if err != nil {
		return nil, err
	}

	artifact, err := s.generatePair(ctx, education, skills, goal.DurationDays, goal.Title, goal.Description)
	if err != nil {
		return nil, err
	}

	artifactID, err := s.Artifacts.Put(ctx, ModuleCollection, artifact)
	if err != nil {
		return nil, err
	}

	module := &model.LearningModule{
		UserID:     userID,
		GoalID:     goal.ID,
		ModuleInfo: moduleInfo,
		ArtifactID: artifactID,
		Version:    1,
	}
	if err := s.ModuleRepo.Create(module); err != nil {
		return nil, err
	}

	logger.Log.Info("learning module generated",
		zap.Uint("goalId", goal.ID),
		zap.String("artifactId", artifactID),
	)

	return &ModuleWithArtifact{Module: module, Artifact: artifact}, nil
}

// GetModule 取模块记录并解析当前产物
func (s *ModuleService) GetModule(ctx context.Context, userID, moduleID uint) (*ModuleWithArtifact, error) {
	module, err := s.ModuleRepo.FindByIDAndUserID(moduleID, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}

	var artifact model.ModuleArtifact
	if err := s.Artifacts.Get(ctx, ModuleCollection, module.ArtifactID, &artifact); err != nil {
		return nil, err
	}
	return &ModuleWithArtifact{Module: module, Artifact: &artifact}, nil
}

// ListModules 用户的所有模块记录（不解析产物）
func (s *ModuleService) ListModules(userID uint) ([]model.LearningModule, error) {
	return s.ModuleRepo.FindByUserID(userID)
}

// ReviseModule 闭环修订：评估→路线图修订→练习重生成→新产物写入→指针替换。
// 生成或解析环节失败时放弃本次修订，存量记录与产物保持原样，对用户不可见。
// 指针替换带乐观版本检查，并发修订只有先写回的生效
func (s *ModuleService) ReviseModule(ctx context.Context, userID, moduleID, testID uint) (*ModuleWithArtifact, error) {
	module, err := s.ModuleRepo.FindByIDAndUserID(moduleID, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}

	goal, err := s.GoalRepo.FindByID(module.GoalID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrGoalNotFound
		}
		return nil, err
	}

	test, err := s.TestRepo.FindByID(testID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}
	if test.UserID != userID {
		return nil, util.ErrPermissionDenied
	}

	score, err := s.ScoreRepo.FindLatestByTestID(testID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrScoreNotFound
		}
		return nil, err
	}

	feedback, err := s.FeedbackRepo.FindLatestByTestID(testID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrFeedbackNotFound
		}
		return nil, err
	}

	var prior model.ModuleArtifact
	if err := s.Artifacts.Get(ctx, ModuleCollection, module.ArtifactID, &prior); err != nil {
		return nil, err
	}

	revised, ok := s.revisePair(ctx, &prior, goal, test, score, feedback)
	if !ok {
		// 修订失败是可恢复的：返回未动过的旧产物，记录不更新
		return &ModuleWithArtifact{Module: module, Artifact: &prior, Revised: false}, nil
	}

	artifactID, err := s.Artifacts.Put(ctx, ModuleCollection, revised)
	if err != nil {
		return nil, err
	}

	replaced, err := s.ModuleRepo.ReplaceArtifact(module.ID, module.Version, artifactID)
	if err != nil {
		return nil, err
	}
	if !replaced {
		return nil, util.ErrModuleRevised
	}

	logger.Log.Info("learning module revised",
		zap.Uint("moduleId", module.ID),
		zap.String("oldArtifactId", module.ArtifactID),
		zap.String("newArtifactId", artifactID),
	)

	module.ArtifactID = artifactID
	module.Version++
	return &ModuleWithArtifact{Module: module, Artifact: revised, Revised: true}, nil
}

// generatePair 路线图->练习两段链。严格顺序：练习段在路线图解析成功前不会发起
func (s *ModuleService) generatePair(ctx context.Context, education string, skills []string, durationDays int, goalTitle, goalDesc string) (*model.ModuleArtifact, error) {
	roadmap, err := s.generateRoadmap(ctx, education, skills, durationDays, goalTitle, goalDesc)
	if err != nil {
		return nil, err
	}

	practice, err := s.generatePractice(ctx, roadmap)
	if err != nil {
		return nil, err
	}

	return &model.ModuleArtifact{Roadmap: *roadmap, Practice: *practice}, nil
}

// revisePair 修订链。任何失败都吞掉并返回(nil,false)，调用方保留旧产物
func (s *ModuleService) revisePair(ctx context.Context, prior *model.ModuleArtifact, goal *model.Goal, test *model.Test, score *model.Score, feedback *model.Feedback) (*model.ModuleArtifact, bool) {
	evaluation := s.Evaluator.Evaluate(ctx, goal, test, score, feedback)
	logger.Log.Info("module evaluation",
		zap.Int("reward", evaluation.Reward),
		zap.String("suggestions", evaluation.Suggestions),
	)

	roadmap, err := s.reviseRoadmap(ctx, &prior.Roadmap, test, score, feedback, evaluation)
	if err != nil {
		logger.Log.Error("roadmap revision failed, keeping prior artifact", zap.Error(err))
		return nil, false
	}

	practice, err := s.generatePractice(ctx, roadmap)
	if err != nil {
		logger.Log.Error("practice revision failed, keeping prior artifact", zap.Error(err))
		return nil, false
	}

	return &model.ModuleArtifact{Roadmap: *roadmap, Practice: *practice}, true
}

func (s *ModuleService) generateRoadmap(ctx context.Context, education string, skills []string, durationDays int, goalTitle, goalDesc string) (*model.Roadmap, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "As a %s student with these skills: %s, I have %d days to learn %s: %s.\n\n",
		education, joinForPrompt(skills), durationDays, goalTitle, goalDesc)
	b.WriteString("Create a comprehensive learning roadmap that:\n")
	b.WriteString("1. Addresses my current skill level\n")
	b.WriteString("2. Includes practical projects\n")
	b.WriteString("3. Balances theory/practice\n")
	b.WriteString("4. Has clear progression markers\n\n")
	b.WriteString(plainTextRule + "\n\n")
	b.WriteString("Format: " + roadmapContract.RenderInstructions())

	parsed, err := s.callStage(ctx, "roadmap", roadmapContract, b.String())
	if err != nil {
		return nil, err
	}
	return roadmapFromParsed(parsed), nil
}

// reviseRoadmap 修订版的路线图提示词：嵌入反馈、成绩、奖励与完整旧路线图，
// 要求在既有结构上修改而不是从头再来
func (s *ModuleService) reviseRoadmap(ctx context.Context, prior *model.Roadmap, test *model.Test, score *model.Score, feedback *model.Feedback, evaluation *model.Evaluation) (*model.Roadmap, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "This is the feedback for a previous roadmap: %s.\n", feedback.Content)
	fmt.Fprintf(&b, "The test scores for the module %s are %.2f wrong-answer fluency and %.2f right-answer fluency.\n",
		test.ModuleInfo, score.WrongFluency, score.RightFluency)
	fmt.Fprintf(&b, "The reward model has given a score of %d.\n", evaluation.Reward)
	fmt.Fprintf(&b, "Suggestions: %s.\n", evaluation.Suggestions)
	fmt.Fprintf(&b, "Previous roadmap:\n%s\n", roadmapPromptText(prior))
	b.WriteString("\nModify the roadmap accordingly while keeping the existing structure intact.\n\n")
	b.WriteString(plainTextRule + "\n\n")
	b.WriteString("Format: " + roadmapContract.RenderInstructions())

	parsed, err := s.callStage(ctx, "roadmap", roadmapContract, b.String())
	if err != nil {
		return nil, err
	}
	return roadmapFromParsed(parsed), nil
}

// generatePractice 第二段：提示词嵌入解析后的路线图（而非原始文本）
func (s *ModuleService) generatePractice(ctx context.Context, roadmap *model.Roadmap) (*model.PracticePlan, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on this roadmap:\n%s\n\n", roadmapPromptText(roadmap))
	b.WriteString("Create practice instructions that:\n")
	b.WriteString("1. Use evidence-based learning techniques\n")
	b.WriteString("2. Include multiple difficulty levels\n")
	b.WriteString("3. Provide real-world applications\n")
	b.WriteString("4. Suggest troubleshooting exercises\n\n")
	b.WriteString(plainTextRule + "\n\n")
	b.WriteString("Format: " + practiceContract.RenderInstructions())

	parsed, err := s.callStage(ctx, "practice", practiceContract, b.String())
	if err != nil {
		return nil, err
	}
	return &model.PracticePlan{
		ActiveRecall:          contract.GetStringList(parsed, "active_recall"),
		HandsOnProjects:       contract.GetStringList(parsed, "hands_on_projects"),
		DebuggingScenarios:    contract.GetStringList(parsed, "debugging_scenarios"),
		CollaborativeLearning: contract.GetStringList(parsed, "collaborative_learning"),
	}, nil
}

// callStage 一段链的标准过程：调用后端、按契约解析、上报指标
func (s *ModuleService) callStage(ctx context.Context, stage string, c contract.Contract, prompt string) (map[string]interface{}, error) {
	start := time.Now()
	raw, err := s.Generator.Generate(ctx, s.AIConfig.GenerationModel, prompt)
	if err != nil {
		monitoring.ObserveGeneration(stage, "backend_error", time.Since(start))
		return nil, err
	}

	parsed, err := c.Parse(raw)
	if err != nil {
		monitoring.ObserveGeneration(stage, "parse_error", time.Since(start))
		return nil, err
	}
	monitoring.ObserveGeneration(stage, "ok", time.Since(start))
	return parsed, nil
}

func roadmapFromParsed(parsed map[string]interface{}) *model.Roadmap {
	return &model.Roadmap{
		Topics:          contract.GetStringList(parsed, "topics"),
		Prerequisites:   contract.GetStringList(parsed, "prerequisites"),
		WeeklyBreakdown: contract.GetStringList(parsed, "weekly_breakdown"),
		KeyMilestones:   contract.GetStringList(parsed, "key_milestones"),
	}
}

// roadmapPromptText 把解析后的路线图渲染成嵌入提示词的纯文本段落
func roadmapPromptText(r *model.Roadmap) string {
	var b strings.Builder
	writeSection := func(name string, items []string) {
		fmt.Fprintf(&b, "%s:\n", name)
		for _, item := range items {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}
	writeSection("Topics", r.Topics)
	writeSection("Prerequisites", r.Prerequisites)
	writeSection("Weekly breakdown", r.WeeklyBreakdown)
	writeSection("Key milestones", r.KeyMilestones)
	return b.String()
}
