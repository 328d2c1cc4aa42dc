package model

// LearningModule 学习模块记录。ArtifactID指向当前的路线图+练习产物，
// 每次修订成功后整体替换为新ID，旧产物成为不可达垃圾而不删除。
// Version用于修订写回时的乐观并发检查
type LearningModule struct {
	BaseModel
	UserID     uint   `gorm:"index;type:bigint unsigned" json:"userId"`
	GoalID     uint   `gorm:"index;type:bigint unsigned;not null" json:"goalId"`
	ModuleInfo string `gorm:"size:512" json:"moduleInfo"`
	ArtifactID string `gorm:"size:36;not null" json:"artifactId"`
	Version    int    `gorm:"default:1;not null" json:"version"`
}

func (LearningModule) TableName() string {
	return "learning_modules"
}
