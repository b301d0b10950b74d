package api

import "time"

type userModel struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	Email        string    `gorm:"type:text;uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:text;not null"`
	CreatedAt    time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

func (userModel) TableName() string { return "users" }

func (m userModel) toAPI() User {
	return User{
		ID:        m.ID,
		Email:     m.Email,
		CreatedAt: m.CreatedAt,
	}
}
