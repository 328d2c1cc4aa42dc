package model

// Feedback 用户对学习模块的自由文本反馈，作为修订环节的定性信号
type Feedback struct {
	BaseModel
	UserID  uint   `gorm:"index;type:bigint unsigned" json:"userId"`
	TestID  uint   `gorm:"index;type:bigint unsigned;not null" json:"testId"`
	Content string `gorm:"type:text;not null" json:"content"`
}

func (Feedback) TableName() string {
	return "feedbacks"
}
