package model

type Skill struct {
	BaseModel
	UserID uint   `gorm:"index;type:bigint unsigned" json:"userId"`
	Name   string `gorm:"size:255;not null" json:"name"`
}

func (Skill) TableName() string {
	return "skills"
}
