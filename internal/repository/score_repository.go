package repository

import (
	"learnpath_backend/internal/model"

	"gorm.io/gorm"
)

// ScoreRepository 处理测验成绩的数据访问

type ScoreRepository struct {
	DB *gorm.DB
}

func NewScoreRepository(db *gorm.DB) *ScoreRepository {
	return &ScoreRepository{DB: db}
}

func (r *ScoreRepository) Create(score *model.Score) error {
	return r.DB.Create(score).Error
}

func (r *ScoreRepository) FindByID(id uint) (*model.Score, error) {
	var score model.Score
	err := r.DB.First(&score, id).Error
	return &score, err
}

// FindLatestByTestID 取测验最近一次的成绩
func (r *ScoreRepository) FindLatestByTestID(testID uint) (*model.Score, error) {
	var score model.Score
	err := r.DB.Where("test_id = ?", testID).Order("created_at desc").First(&score).Error
	return &score, err
}
