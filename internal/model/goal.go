package model

// Goal 学习目标。IsSmart由目标质量评估门禁写入，未通过评估的目标不会入库
type Goal struct {
	BaseModel
	UserID       uint   `gorm:"index;type:bigint unsigned" json:"userId"`
	Title        string `gorm:"size:255;not null" json:"title"`
	Description  string `gorm:"type:text" json:"description"`
	DurationDays int    `gorm:"not null" json:"durationDays"`
	IsSmart      bool   `gorm:"default:false" json:"isSmart"`
}

func (Goal) TableName() string {
	return "goals"
}
