package model

import "time"

type User struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UID       string    `gorm:"column:uid;size:128;not null;uniqueIndex:uk_users_uid"`
	Username  string    `gorm:"size:64;not null;uniqueIndex:uk_users_username"`
	Email     *string   `gorm:"size:255;uniqueIndex:uk_users_email"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{&User{}, &Product{}, &Conversation{}, &Message{}, &Order{}}
}
