package repository

import (
	"learnpath_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

// ModuleRepository 处理学习模块记录的数据访问

type ModuleRepository struct {
	DB *gorm.DB
}

func NewModuleRepository(db *gorm.DB) *ModuleRepository {
	return &ModuleRepository{DB: db}
}

func (r *ModuleRepository) Create(module *model.LearningModule) error {
	return r.DB.Create(module).Error
}

func (r *ModuleRepository) FindByID(id uint) (*model.LearningModule, error) {
	var module model.LearningModule
	err := r.DB.First(&module, id).Error
	return &module, err
}

func (r *ModuleRepository) FindByIDAndUserID(id, userID uint) (*model.LearningModule, error) {
	var module model.LearningModule
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&module).Error
	return &module, err
}

func (r *ModuleRepository) FindByUserID(userID uint) ([]model.LearningModule, error) {
	var modules []model.LearningModule
	err := r.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&modules).Error
	return modules, err
}

// ReplaceArtifact 把模块的当前产物指针替换为新ID。
// 带版本号的乐观检查：并发修订时只有第一个写回成功，返回false表示版本已被他人推进
func (r *ModuleRepository) ReplaceArtifact(moduleID uint, expectedVersion int, artifactID string) (bool, error) {
	res := r.DB.Model(&model.LearningModule{}).
		Where("id = ? AND version = ?", moduleID, expectedVersion).
		Updates(map[string]interface{}{
			"artifact_id": artifactID,
			"version":     expectedVersion + 1,
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
