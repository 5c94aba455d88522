package model

// User is the minimal account record the orchestrator needs. Credential
// and session handling live outside this service.
type User struct {
	BaseModel
	UserId   string `gorm:"column:user_id;uniqueIndex" json:"userId"`
	Username string `gorm:"column:username;uniqueIndex" json:"username"`
	Email    string `gorm:"column:email" json:"email"`
}

func (User) TableName() string {
	return "t_user"
}
