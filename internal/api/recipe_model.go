package api

import "time"

type recipeModel struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	Title       string    `gorm:"type:text;not null"`
	Ingredients string    `gorm:"type:text;not null"`
	Description string    `gorm:"type:text;not null"`
	ImageKey    string    `gorm:"type:text"`
	Likes       int       `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	OwnerID     uint      `gorm:"not null;index"`
}

func (recipeModel) TableName() string { return "recipes" }

func (m recipeModel) toAPI() Recipe {
	return Recipe{
		ID:          m.ID,
		Title:       m.Title,
		Ingredients: m.Ingredients,
		Description: m.Description,
		ImagePath:   m.ImageKey,
		Likes:       m.Likes,
		CreatedAt:   m.CreatedAt,
		OwnerID:     m.OwnerID,
	}
}
