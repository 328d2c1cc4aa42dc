package repository

import (
	"learnpath_backend/internal/model"

	"gorm.io/gorm"
)

// GoalRepository 处理学习目标的数据访问

type GoalRepository struct {
	DB *gorm.DB
}

func NewGoalRepository(db *gorm.DB) *GoalRepository {
	return &GoalRepository{DB: db}
}

// Create 创建新的学习目标
func (r *GoalRepository) Create(goal *model.Goal) error {
	return r.DB.Create(goal).Error
}

// Delete 删除学习目标
func (r *GoalRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Goal{}, id).Error
}

// FindByID 根据ID查找学习目标
func (r *GoalRepository) FindByID(id uint) (*model.Goal, error) {
	var goal model.Goal
	err := r.DB.First(&goal, id).Error
	return &goal, err
}

// FindByIDAndUserID 根据ID和用户ID查找学习目标
func (r *GoalRepository) FindByIDAndUserID(id, userID uint) (*model.Goal, error) {
	var goal model.Goal
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&goal).Error
	return &goal, err
}

// FindByUserID 获取用户的所有学习目标
func (r *GoalRepository) FindByUserID(userID uint) ([]model.Goal, error) {
	var goals []model.Goal
	err := r.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&goals).Error
	return goals, err
}
