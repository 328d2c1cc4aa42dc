package service

import (
	"learnpath_backend/internal/model"
	"learnpath_backend/internal/repository"
	"learnpath_backend/internal/util"

	"gorm.io/gorm"
)

type UserService struct {
	UserRepo  *repository.UserRepository
	SkillRepo *repository.SkillRepository
}

func NewUserService(userRepo *repository.UserRepository, skillRepo *repository.SkillRepository) *UserService {
	return &UserService{
		UserRepo:  userRepo,
		SkillRepo: skillRepo,
	}
}

// ProfileUpdate 可更新字段集合，零值字段不覆盖
type ProfileUpdate struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	City        *string `json:"city"`
	College     *string `json:"college"`
	Education   *string `json:"education"`
	LinkedinURL *string `json:"linkedinUrl"`
	GithubURL   *string `json:"githubUrl"`
	LeetcodeURL *string `json:"leetcodeUrl"`
}

func (s *UserService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateProfile(userID uint, update *ProfileUpdate) (*model.User, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&user.FirstName, update.FirstName)
	apply(&user.LastName, update.LastName)
	apply(&user.City, update.City)
	apply(&user.College, update.College)
	apply(&user.Education, update.Education)
	apply(&user.LinkedinURL, update.LinkedinURL)
	apply(&user.GithubURL, update.GithubURL)
	apply(&user.LeetcodeURL, update.LeetcodeURL)

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return s.reclassify(user)
}

func (s *UserService) ListSkills(userID uint) ([]model.Skill, error) {
	return s.SkillRepo.FindByUserID(userID)
}

func (s *UserService) AddSkill(userID uint, name string) (*model.Skill, error) {
	skill := &model.Skill{UserID: userID, Name: name}
	if err := s.SkillRepo.Create(skill); err != nil {
		return nil, err
	}
	if user, err := s.UserRepo.FindByID(userID); err == nil {
		s.reclassify(user)
	}
	return skill, nil
}

func (s *UserService) RemoveSkill(userID, skillID uint) error {
	return s.SkillRepo.Delete(skillID, userID)
}

// reclassify 画像分类：学历和技能都已填写的用户归为 B 类，
// 测评与生成提示词据此携带更多画像信息
func (s *UserService) reclassify(user *model.User) (*model.User, error) {
	skills, err := s.SkillRepo.NamesByUserID(user.ID)
	if err != nil {
		return user, nil
	}

	userType := ClassifyProfile(user, skills)
	if userType != user.UserType {
		if err := s.UserRepo.SetUserType(user.ID, userType); err != nil {
			return nil, err
		}
		user.UserType = userType
	}
	return user, nil
}

// ClassifyProfile 画像充足性判定
func ClassifyProfile(user *model.User, skills []string) model.UserType {
	if user.Education != "" && len(skills) > 0 {
		return model.SufficientData
	}
	return model.InsufficientData
}
