package repository

import (
	"learnpath_backend/internal/model"

	"gorm.io/gorm"
)

// UserRepository 处理用户的数据访问

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) FindByUsername(username string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("username = ?", username).First(&user).Error
	return &user, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

// SetUserType 画像数据补齐后切换用户类型
func (r *UserRepository) SetUserType(userID uint, userType model.UserType) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Update("user_type", userType).Error
}
