package model

// UserType 区分画像数据是否充足，影响测评个性化程度
type UserType string

const (
	InsufficientData UserType = "A"
	SufficientData   UserType = "B"
)

type User struct {
	BaseModel
	Username    string   `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email       string   `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password    string   `gorm:"size:255;not null" json:"-"`
	FirstName   string   `gorm:"size:150" json:"firstName"`
	LastName    string   `gorm:"size:150" json:"lastName"`
	City        string   `gorm:"size:255" json:"city"`
	College     string   `gorm:"size:255" json:"college"`
	Education   string   `gorm:"size:255" json:"education"`
	LinkedinURL string   `gorm:"size:512" json:"linkedinUrl"`
	GithubURL   string   `gorm:"size:512" json:"githubUrl"`
	LeetcodeURL string   `gorm:"size:512" json:"leetcodeUrl"`
	UserType    UserType `gorm:"type:enum('A','B');default:'A'" json:"userType"`
}

func (User) TableName() string {
	return "users"
}
