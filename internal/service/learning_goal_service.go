package service

import (
	"context"
	"learnpath_backend/internal/model"
	"learnpath_backend/internal/repository"
	"learnpath_backend/internal/util"
	"learnpath_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LearningGoalService 学习目标管理。创建由 SMART 资格审查把关：
// 审查不通过时目标不落库，裁决原样返回给调用方
type LearningGoalService struct {
	GoalRepo  *repository.GoalRepository
	SkillRepo *repository.SkillRepository
	Qualifier *QualifierService
}

func NewLearningGoalService(goalRepo *repository.GoalRepository, skillRepo *repository.SkillRepository, qualifier *QualifierService) *LearningGoalService {
	return &LearningGoalService{
		GoalRepo:  goalRepo,
		SkillRepo: skillRepo,
		Qualifier: qualifier,
	}
}

// GoalWithVerdict 目标与审查裁决。审查不通过时 Goal 为 nil
type GoalWithVerdict struct {
	Goal    *model.Goal        `json:"goal,omitempty"`
	Verdict *model.GoalVerdict `json:"verdict"`
}

// CreateGoal 审查通过才持久化。审查本身失败（后端不可用/解析失败）向上传播，
// 审查得出"不合格"返回 ErrGoalNotSmart 且带回裁决
func (s *LearningGoalService) CreateGoal(ctx context.Context, userID uint, title, description string, durationDays int) (*GoalWithVerdict, error) {
	skills, err := s.SkillRepo.NamesByUserID(userID)
	if err != nil {
		return nil, err
	}

	verdict, err := s.Qualifier.QualifyGoal(ctx, title, description, skills, durationDays)
	if err != nil {
		return nil, err
	}

	if !verdict.IsSmart {
		logger.Log.Info("goal rejected by SMART qualifier",
			zap.Uint("userId", userID),
			zap.String("title", title),
		)
		return &GoalWithVerdict{Verdict: verdict}, util.ErrGoalNotSmart
	}

	goal := &model.Goal{
		UserID:       userID,
		Title:        title,
		Description:  description,
		DurationDays: durationDays,
		IsSmart:      true,
	}
	if err := s.GoalRepo.Create(goal); err != nil {
		return nil, err
	}
	return &GoalWithVerdict{Goal: goal, Verdict: verdict}, nil
}

func (s *LearningGoalService) GetGoal(userID, goalID uint) (*model.Goal, error) {
	goal, err := s.GoalRepo.FindByIDAndUserID(goalID, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrGoalNotFound
		}
		return nil, err
	}
	return goal, nil
}

func (s *LearningGoalService) ListGoals(userID uint) ([]model.Goal, error) {
	return s.GoalRepo.FindByUserID(userID)
}

func (s *LearningGoalService) DeleteGoal(userID, goalID uint) error {
	if _, err := s.GetGoal(userID, goalID); err != nil {
		return err
	}
	return s.GoalRepo.Delete(goalID)
}
