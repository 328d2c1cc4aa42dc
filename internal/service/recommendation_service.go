package service

import (
	"context"
	"fmt"
	"learnpath_backend/internal/config"
	"learnpath_backend/internal/contract"
	"learnpath_backend/internal/util"
	"learnpath_backend/pkg/monitoring"
	"strings"
	"time"

	"gorm.io/gorm"
)

// CourseCount 每次推荐的课程数
const CourseCount = 5

var courseContract = contract.MustBuild(
	contract.Field{
		Name:        "course_list",
		Description: "A list of recommended courses sorted by rating, each with a title, URL, and provider.",
		Arity:       CourseCount,
		Item: []contract.Field{
			{Name: "course_title", Description: "The title of the recommended course."},
			{Name: "course_url", Description: "The URL of the recommended course."},
			{Name: "course_provider", Description: "The provider of the recommended course."},
		},
	},
)

// Course 一条课程推荐
type Course struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Provider string `json:"provider"`
}

// RecommendationService 按学习目标推荐外部课程。
// 推荐与奖励打分共用评估模型。生成或解析失败为致命错误
type RecommendationService struct {
	Generator TextGenerator
	AIConfig  config.AIConfig
	GoalRepo  goalReader
}

func NewRecommendationService(generator TextGenerator, aiCfg config.AIConfig, goalRepo goalReader) *RecommendationService {
	return &RecommendationService{
		Generator: generator,
		AIConfig:  aiCfg,
		GoalRepo:  goalRepo,
	}
}

// RecommendCourses 为目标推荐课程，按评分排序
func (s *RecommendationService) RecommendCourses(ctx context.Context, userID, goalID uint) ([]Course, error) {
	goal, err := s.GoalRepo.FindByIDAndUserID(goalID, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrGoalNotFound
		}
		return nil, err
	}

	prompt := buildCoursePrompt(goal.Title, goal.Description)

	start := time.Now()
	raw, err := s.Generator.Generate(ctx, s.AIConfig.EvaluationModel, prompt)
	if err != nil {
		monitoring.ObserveGeneration("recommendation", "backend_error", time.Since(start))
		return nil, err
	}

	parsed, err := courseContract.Parse(raw)
	if err != nil {
		monitoring.ObserveGeneration("recommendation", "parse_error", time.Since(start))
		return nil, err
	}
	monitoring.ObserveGeneration("recommendation", "ok", time.Since(start))

	items := contract.GetObjectList(parsed, "course_list")
	courses := make([]Course, 0, len(items))
	for _, item := range items {
		courses = append(courses, Course{
			Title:    contract.GetString(item, "course_title"),
			URL:      contract.GetString(item, "course_url"),
			Provider: contract.GetString(item, "course_provider"),
		})
	}
	return courses, nil
}

func buildCoursePrompt(goalTitle, goalDesc string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I am a student and I want to learn %s. The description for this skill is: %s.\n", goalTitle, goalDesc)
	fmt.Fprintf(&b, "Please recommend courses for me in the exact format below, without any additional text.\n")
	fmt.Fprintf(&b, "Suggest a list of %d courses and sort the courses according to the rating.\n", CourseCount)
	b.WriteString("Some courses from Udemy and some from Coursera.\n\n")
	b.WriteString("Use the following format:\n")
	b.WriteString(courseContract.RenderInstructions())
	return b.String()
}
