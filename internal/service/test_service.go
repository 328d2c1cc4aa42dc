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

// QuizQuestionCount 每份测验的固定题量，由契约解析强制校验
const QuizQuestionCount = 10

// quizContract 测验输出契约：恰好10题，每题7个字段、4个选项。
// 形状之外的内容质量（认知层级覆盖、难度递进）由提示词约束
var quizContract = contract.MustBuild(
	contract.Field{
		Name:        "questions",
		Description: "A list of questions, each with a question type, skill tested, difficulty tier, question statement, four options, the correct answer, and diagnostic insight.",
		Arity:       QuizQuestionCount,
		Item: []contract.Field{
			{Name: "question_type", Description: "The Bloom's Taxonomy level and cognitive verb for the question."},
			{Name: "skill_tested", Description: "The specific skill from the user's list or a prerequisite skill being tested."},
			{Name: "difficulty_tier", Description: "The difficulty level of the question: Basic, Intermediate, or Advanced."},
			{Name: "question", Description: "The question statement."},
			{Name: "options", Description: "Four options to choose from, with distractors reflecting common misconceptions.", List: true, Arity: 4},
			{Name: "right_answer", Description: "The whole correct answer."},
			{Name: "diagnostic_insight", Description: "What this question reveals about the user's understanding."},
		},
	},
)

// 持久层按用例收窄成接口，生成路径的行为（去重短路、失败不落库）
// 可以脱离数据库验证
type goalReader interface {
	FindByIDAndUserID(id, userID uint) (*model.Goal, error)
}

type testRecords interface {
	Create(test *model.Test) error
	FindByID(id uint) (*model.Test, error)
	FindPreliminaryByGoalID(goalID uint) (*model.Test, error)
}

type skillNameLister interface {
	NamesByUserID(userID uint) ([]string, error)
}

type userReader interface {
	FindByID(id uint) (*model.User, error)
}

type scoreWriter interface {
	Create(score *model.Score) error
}

type feedbackWriter interface {
	Create(feedback *model.Feedback) error
}

// TestService 生成与读取诊断测验。
// 摸底测验每个目标只生成一次（去重在生成之前检查），模块测验每次都新生成
type TestService struct {
	Generator    TextGenerator
	AIConfig     config.AIConfig
	Artifacts    ArtifactStore
	TestRepo     testRecords
	GoalRepo     goalReader
	SkillRepo    skillNameLister
	UserRepo     userReader
	ScoreRepo    scoreWriter
	FeedbackRepo feedbackWriter
}

func NewTestService(
	generator TextGenerator,
	aiCfg config.AIConfig,
	artifacts ArtifactStore,
	testRepo *repository.TestRepository,
	goalRepo *repository.GoalRepository,
	skillRepo *repository.SkillRepository,
	userRepo *repository.UserRepository,
	scoreRepo *repository.ScoreRepository,
	feedbackRepo *repository.FeedbackRepository,
) *TestService {
	return &TestService{
		Generator:    generator,
		AIConfig:     aiCfg,
		Artifacts:    artifacts,
		TestRepo:     testRepo,
		GoalRepo:     goalRepo,
		SkillRepo:    skillRepo,
		UserRepo:     userRepo,
		ScoreRepo:    scoreRepo,
		FeedbackRepo: feedbackRepo,
	}
}

// TestWithQuiz 测验记录连同产物存储中的题目本体
type TestWithQuiz struct {
	Test *model.Test `json:"test"`
	Quiz *model.Quiz `json:"quiz"`
}

// GeneratePreliminary 为目标生成摸底测验。
// 已存在时直接取回存量产物返回，不会二次调用生成后端（首写即终身有效）
func (s *TestService) GeneratePreliminary(ctx context.Context, userID, goalID uint) (*TestWithQuiz, error) {
	goal, err := s.GoalRepo.FindByIDAndUserID(goalID, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrGoalNotFound
		}
		return nil, err
	}

	existing, err := s.TestRepo.FindPreliminaryByGoalID(goalID)
	if err == nil {
		var quiz model.Quiz
		if err := s.Artifacts.Get(ctx, QuizCollection, existing.ArtifactID, &quiz); err != nil {
			return nil, err
		}
		return &TestWithQuiz{Test: existing, Quiz: &quiz}, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	return s.generateAndStore(ctx, userID, goal, model.PreliminaryTest, "")
}

// GenerateModuleTest 模块完成后的测验，不去重
func (s *TestService) GenerateModuleTest(ctx context.Context, userID, goalID uint, moduleInfo string) (*TestWithQuiz, error) {
	goal, err := s.GoalRepo.FindByIDAndUserID(goalID, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrGoalNotFound
		}
		return nil, err
	}
	return s.generateAndStore(ctx, userID, goal, model.ModuleTest, moduleInfo)
}

// GetTest 取测验记录并解析其产物
func (s *TestService) GetTest(ctx context.Context, userID, testID uint) (*TestWithQuiz, error) {
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

	var quiz model.Quiz
	if err := s.Artifacts.Get(ctx, QuizCollection, test.ArtifactID, &quiz); err != nil {
		return nil, err
	}
	return &TestWithQuiz{Test: test, Quiz: &quiz}, nil
}

// RecordScore 记录一次答题成绩
func (s *TestService) RecordScore(userID, testID uint, rightFluency, wrongFluency float64) (*model.Score, error) {
	if _, err := s.TestRepo.FindByID(testID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}

	score := &model.Score{
		UserID:       userID,
		TestID:       testID,
		RightFluency: rightFluency,
		WrongFluency: wrongFluency,
	}
	return score, s.ScoreRepo.Create(score)
}

// SubmitFeedback 记录模块反馈文本
func (s *TestService) SubmitFeedback(userID, testID uint, content string) (*model.Feedback, error) {
	if _, err := s.TestRepo.FindByID(testID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}

	feedback := &model.Feedback{
		UserID:  userID,
		TestID:  testID,
		Content: content,
	}
	return feedback, s.FeedbackRepo.Create(feedback)
}

// generateAndStore 一次生成调用+解析+产物入库+测验记录落库。
// 生成或解析失败为致命错误，不会留下半成品记录
func (s *TestService) generateAndStore(ctx context.Context, userID uint, goal *model.Goal, kind model.TestKind, moduleInfo string) (*TestWithQuiz, error) {
	education := ""
	if user, err := s.UserRepo.FindByID(userID); err == nil {
		education = user.Education
	}

	skills, err := s.SkillRepo.NamesByUserID(userID)
	if err != nil {
		return nil, err
	}

	quiz, err := s.generateQuiz(ctx, education, goal.Title, goal.Description, skills, kind, moduleInfo)
	if err != nil {
		return nil, err
	}

	artifactID, err := s.Artifacts.Put(ctx, QuizCollection, quiz)
	if err != nil {
		return nil, err
	}

	test := &model.Test{
		UserID:     userID,
		GoalID:     goal.ID,
		ArtifactID: artifactID,
		Kind:       kind,
		ModuleInfo: moduleInfo,
	}
	if err := s.TestRepo.Create(test); err != nil {
		return nil, err
	}

	logger.Log.Info("quiz generated",
		zap.Uint("goalId", goal.ID),
		zap.String("kind", string(kind)),
		zap.String("artifactId", artifactID),
	)

	return &TestWithQuiz{Test: test, Quiz: quiz}, nil
}

func (s *TestService) generateQuiz(ctx context.Context, education, goalTitle, goalDesc string, skills []string, kind model.TestKind, moduleInfo string) (*model.Quiz, error) {
	prompt := buildQuizPrompt(education, goalTitle, goalDesc, skills, kind, moduleInfo)

	start := time.Now()
	raw, err := s.Generator.Generate(ctx, s.AIConfig.GenerationModel, prompt)
	if err != nil {
		monitoring.ObserveGeneration("quiz", "backend_error", time.Since(start))
		return nil, err
	}

	parsed, err := quizContract.Parse(raw)
	if err != nil {
		monitoring.ObserveGeneration("quiz", "parse_error", time.Since(start))
		return nil, err
	}
	monitoring.ObserveGeneration("quiz", "ok", time.Since(start))

	items := contract.GetObjectList(parsed, "questions")
	quiz := &model.Quiz{Questions: make([]model.Question, 0, len(items))}
	for _, item := range items {
		quiz.Questions = append(quiz.Questions, model.Question{
			TypeLabel:         contract.GetString(item, "question_type"),
			SkillTested:       contract.GetString(item, "skill_tested"),
			DifficultyTier:    model.DifficultyTier(contract.GetString(item, "difficulty_tier")),
			Prompt:            contract.GetString(item, "question"),
			Options:           contract.GetStringList(item, "options"),
			CorrectAnswer:     contract.GetString(item, "right_answer"),
			DiagnosticInsight: contract.GetString(item, "diagnostic_insight"),
		})
	}
	return quiz, nil
}

func buildQuizPrompt(education, goalTitle, goalDesc string, skills []string, kind model.TestKind, moduleInfo string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I am a %s student.\n", education)
	fmt.Fprintf(&b, "I want to learn %s, with this description: %s.\n", goalTitle, goalDesc)
	fmt.Fprintf(&b, "My current relevant skills are: %s.\n\n", joinForPrompt(skills))

	if kind == model.ModuleTest && moduleInfo != "" {
		fmt.Fprintf(&b, "I have just completed the module %q and want a quiz on it.\n\n", moduleInfo)
	}

	fmt.Fprintf(&b, "Please create a personalized %d-question quiz that:\n", QuizQuestionCount)
	b.WriteString("1. Assesses knowledge at all Bloom's Taxonomy levels (Remember, Understand, Apply, Analyze, Evaluate, Create)\n")
	b.WriteString("2. References my stated skills to build relevant questions\n")
	b.WriteString("3. Identifies knowledge gaps through targeted distractor options\n")
	b.WriteString("4. Progresses from foundational to complex concepts\n")
	b.WriteString("5. Includes this format for each question:\n\n")
	b.WriteString("**Question Type**: [Bloom's Level + Cognitive Verb]\n")
	b.WriteString("**Skill Tested**: [Specific skill from my list or prerequisite]\n")
	b.WriteString("**Difficulty Tier**: [Basic/Intermediate/Advanced based on my education]\n")
	b.WriteString("**Question**: [Stem with context]\n")
	b.WriteString("**Options**: [Multiple choice/distractors reflecting common misconceptions]\n")
	b.WriteString("**Diagnostic Insight**: [What this question reveals about my understanding]\n\n")
	b.WriteString("Use the following format for the quiz:\n")
	b.WriteString(quizContract.RenderInstructions())
	return b.String()
}
