package models

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"      json:"id"`
	Username     string    `gorm:"size:64;uniqueIndex;not null"  json:"username"`
	FirstName    string    `gorm:"size:50;not null"              json:"first_name"`
	LastName     string    `gorm:"size:50;not null"              json:"last_name"`
	Email        string    `gorm:"size:120;uniqueIndex;not null" json:"-"`
	PasswordHash string    `gorm:"size:128;not null"             json:"-"`
	Birthday     time.Time `gorm:"not null"                      json:"birthday"`
	JoinDate     time.Time `gorm:"autoCreateTime"                json:"join_date"`

	Posts    []Post    `gorm:"foreignKey:UserID" json:"-"`
	Comments []Comment `gorm:"foreignKey:UserID" json:"-"`
	Tasks    []Task    `gorm:"foreignKey:UserID" json:"-"`
}

type Post struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Body      string    `gorm:"size:140;not null"        json:"body"`
	Timestamp time.Time `gorm:"index;autoCreateTime"     json:"timestamp"`
	UserID    uint      `gorm:"index;not null"           json:"user_id"`

	Comments []Comment `gorm:"foreignKey:PostID" json:"-"`
}

type Comment struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Body      string    `gorm:"size:140;not null"        json:"body"`
	Timestamp time.Time `gorm:"index;autoCreateTime"     json:"timestamp"`
	PostID    uint      `gorm:"index;not null"           json:"post_id"`
	UserID    uint      `gorm:"index;not null"           json:"user_id"`
}

// RevokedToken is one ledger row per revoked jti. Rows are pruned
// out-of-band once every token they could name has expired.
type RevokedToken struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	JTI         string    `gorm:"size:120;uniqueIndex"     json:"jti"`
	DateRevoked time.Time `gorm:"index;autoCreateTime"     json:"date_revoked"`
}

// Task tracks one background job. The partial unique index keeps a user
// from holding two incomplete tasks with the same name, even when two
// launch requests race.
type Task struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	TaskID      string `gorm:"size:36;index"            json:"task_id"`
	Name        string `gorm:"size:128;index;uniqueIndex:ux_tasks_user_name_active,where:complete = false" json:"name"`
	Description string `gorm:"size:128"                 json:"description"`
	UserID      uint   `gorm:"index;not null;uniqueIndex:ux_tasks_user_name_active,where:complete = false" json:"user_id"`
	Complete    bool   `gorm:"not null;default:false"   json:"complete"`
}
