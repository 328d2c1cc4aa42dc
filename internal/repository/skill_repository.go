package repository

import (
	"learnpath_backend/internal/model"

	"gorm.io/gorm"
)

// SkillRepository 处理用户技能的数据访问

type SkillRepository struct {
	DB *gorm.DB
}

func NewSkillRepository(db *gorm.DB) *SkillRepository {
	return &SkillRepository{DB: db}
}

func (r *SkillRepository) Create(skill *model.Skill) error {
	return r.DB.Create(skill).Error
}

func (r *SkillRepository) Delete(id, userID uint) error {
	return r.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Skill{}).Error
}

func (r *SkillRepository) FindByUserID(userID uint) ([]model.Skill, error) {
	var skills []model.Skill
	err := r.DB.Where("user_id = ?", userID).Order("name").Find(&skills).Error
	return skills, err
}

// NamesByUserID 返回技能名列表，供提示词拼装使用
func (r *SkillRepository) NamesByUserID(userID uint) ([]string, error) {
	var names []string
	err := r.DB.Model(&model.Skill{}).
		Where("user_id = ?", userID).
		Order("name").
		Pluck("name", &names).Error
	return names, err
}
