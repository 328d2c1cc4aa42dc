package model

// TestKind 测验的来源类型。preliminary每个目标只生成一次，module可无限重生成
type TestKind string

const (
	PreliminaryTest TestKind = "preliminary"
	ModuleTest      TestKind = "module"
)

// Test 测验记录。题目本体存放在产物存储中，这里只持有不透明的产物ID
type Test struct {
	BaseModel
	UserID     uint     `gorm:"index;type:bigint unsigned" json:"userId"`
	GoalID     uint     `gorm:"index;type:bigint unsigned;not null" json:"goalId"`
	ArtifactID string   `gorm:"size:36;not null" json:"artifactId"`
	Kind       TestKind `gorm:"type:enum('preliminary','module');not null" json:"kind"`
	ModuleInfo string   `gorm:"size:512" json:"moduleInfo"`
}

func (Test) TableName() string {
	return "tests"
}
