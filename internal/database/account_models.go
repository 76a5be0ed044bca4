package database

import (
	"time"

	"gorm.io/gorm"
)

// Account 账户模型
// 对应身份提供方中的用户，其余数据通过 user_id 归属到账户
type Account struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`               // UUID
	Email        string    `gorm:"not null;uniqueIndex;size:255" json:"email"` // 登录邮箱，小写存储
	PasswordHash string    `gorm:"not null;size:100" json:"-"`                 // bcrypt 哈希
	CreatedAt    time.Time `json:"created_at"`                                 // 注册时间
	UpdatedAt    time.Time `json:"updated_at"`                                 // 最后修改时间
}

// TableName 指定表名
func (Account) TableName() string {
	return TableAccounts
}

// BeforeCreate 生成主键
func (a *Account) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

// Session 登录会话
// JWT 中携带会话ID，注销或账户删除后会话失效
type Session struct {
	ID        string     `gorm:"primaryKey;size:36" json:"id"`             // 会话ID，同时作为JWT的jti
	AccountID string     `gorm:"not null;index;size:36" json:"account_id"` // 所属账户
	UserAgent string     `gorm:"size:500" json:"user_agent"`               // 登录时的客户端标识
	ClientIP  string     `gorm:"size:64" json:"client_ip"`                 // 登录IP
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`               // 过期时间
	RevokedAt *time.Time `json:"revoked_at,omitempty"`                     // 注销时间，为空表示有效
	CreatedAt time.Time  `json:"created_at"`
}

// TableName 指定表名
func (Session) TableName() string {
	return TableSessions
}

// BeforeCreate 生成主键
func (s *Session) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

// Active 会话在 now 时刻是否有效
func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// Visitor 访客记录，匿名写入
type Visitor struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	IP        string    `gorm:"size:64" json:"ip"`
	UserAgent string    `gorm:"size:500" json:"user_agent"`
	Path      string    `gorm:"size:500" json:"path"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (Visitor) TableName() string {
	return TableVisitor
}

// BeforeCreate 生成主键
func (v *Visitor) BeforeCreate(*gorm.DB) error {
	ensureID(&v.ID)
	return nil
}
