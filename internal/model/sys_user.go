package model

// SysUser 平台用户（既是买家也可以是卖家）
type SysUser struct {
	BaseModel
	Username string `gorm:"size:100;uniqueIndex;not null"`
	Password string `gorm:"size:255;not null"` // bcrypt 哈希
	Email    string `gorm:"size:100"`
	Nickname string `gorm:"size:64"`
	IsActive bool   `gorm:"default:true"`
}

func (SysUser) TableName() string {
	return "sys_users"
}
