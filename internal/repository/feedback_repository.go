package repository

import (
	"learnpath_backend/internal/model"

	"gorm.io/gorm"
)

// FeedbackRepository 处理模块反馈的数据访问

type FeedbackRepository struct {
	DB *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{DB: db}
}

func (r *FeedbackRepository) Create(feedback *model.Feedback) error {
	return r.DB.Create(feedback).Error
}

func (r *FeedbackRepository) FindByID(id uint) (*model.Feedback, error) {
	var feedback model.Feedback
	err := r.DB.First(&feedback, id).Error
	return &feedback, err
}

// FindLatestByTestID 取测验最近一次的反馈
func (r *FeedbackRepository) FindLatestByTestID(testID uint) (*model.Feedback, error) {
	var feedback model.Feedback
	err := r.DB.Where("test_id = ?", testID).Order("created_at desc").First(&feedback).Error
	return &feedback, err
}
