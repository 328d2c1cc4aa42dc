package repository

import (
	"learnpath_backend/internal/model"

	"gorm.io/gorm"
)

// TestRepository 处理测验记录的数据访问

type TestRepository struct {
	DB *gorm.DB
}

func NewTestRepository(db *gorm.DB) *TestRepository {
	return &TestRepository{DB: db}
}

func (r *TestRepository) Create(test *model.Test) error {
	return r.DB.Create(test).Error
}

func (r *TestRepository) FindByID(id uint) (*model.Test, error) {
	var test model.Test
	err := r.DB.First(&test, id).Error
	return &test, err
}

func (r *TestRepository) FindByUserID(userID uint) ([]model.Test, error) {
	var tests []model.Test
	err := r.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&tests).Error
	return tests, err
}

// FindPreliminaryByGoalID 查找目标已有的摸底测验，用于去重。
// 未找到时返回 gorm.ErrRecordNotFound
func (r *TestRepository) FindPreliminaryByGoalID(goalID uint) (*model.Test, error) {
	var test model.Test
	err := r.DB.Where("goal_id = ? AND kind = ?", goalID, model.PreliminaryTest).
		First(&test).Error
	return &test, err
}
