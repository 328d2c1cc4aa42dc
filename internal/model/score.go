package model

// Score 一次答题的量化结果，右/错流畅度作为修订环节的定量信号
type Score struct {
	BaseModel
	UserID       uint    `gorm:"index;type:bigint unsigned" json:"userId"`
	TestID       uint    `gorm:"index;type:bigint unsigned;not null" json:"testId"`
	RightFluency float64 `gorm:"not null" json:"rightFluency"`
	WrongFluency float64 `gorm:"not null" json:"wrongFluency"`
}

func (Score) TableName() string {
	return "scores"
}
