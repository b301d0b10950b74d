package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gorm.io/gorm"
	"gopkg.in/yaml.v3"

	"forkful/pkg/auth"
)

// Fixture is the YAML shape accepted by `forkful seed`.
type Fixture struct {
	Users []FixtureUser `yaml:"users"`
}

type FixtureUser struct {
	Email    string          `yaml:"email"`
	Password string          `yaml:"password"`
	Recipes  []FixtureRecipe `yaml:"recipes"`
}

type FixtureRecipe struct {
	Title       string `yaml:"title"`
	Ingredients string `yaml:"ingredients"`
	Description string `yaml:"description"`
}

type user struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex"`
	PasswordHash string
	CreatedAt    time.Time
}

func (user) TableName() string { return "users" }

type recipe struct {
	ID          uint `gorm:"primaryKey"`
	Title       string
	Ingredients string
	Description string
	OwnerID     uint
	CreatedAt   time.Time
}

func (recipe) TableName() string { return "recipes" }

// Parse decodes and validates fixture YAML.
func Parse(data []byte) (Fixture, error) {
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return Fixture{}, fmt.Errorf("decode fixture: %w", err)
	}
	for i, u := range fx.Users {
		if u.Email == "" || u.Password == "" {
			return Fixture{}, fmt.Errorf("fixture user %d: email and password are required", i)
		}
		for j, r := range u.Recipes {
			if r.Title == "" || r.Ingredients == "" || r.Description == "" {
				return Fixture{}, fmt.Errorf("fixture user %d recipe %d: title, ingredients and description are required", i, j)
			}
		}
	}
	return fx, nil
}

// Load reads a fixture file and inserts its users and recipes. Existing
// users (matched by email) are reused rather than duplicated.
func Load(ctx context.Context, database *gorm.DB, path string) error {
	if database == nil {
		return errors.New("nil database")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	fx, err := Parse(data)
	if err != nil {
		return err
	}

	for _, fu := range fx.Users {
		digest, err := auth.HashPassword(fu.Password)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", fu.Email, err)
		}

		row := user{Email: fu.Email, PasswordHash: digest}
		if err := database.WithContext(ctx).
			Where(user{Email: fu.Email}).
			Attrs(user{PasswordHash: digest}).
			FirstOrCreate(&row).Error; err != nil {
			return fmt.Errorf("seed user %s: %w", fu.Email, err)
		}

		for _, fr := range fu.Recipes {
			rec := recipe{
				Title:       fr.Title,
				Ingredients: fr.Ingredients,
				Description: fr.Description,
				OwnerID:     row.ID,
			}
			if err := database.WithContext(ctx).
				Where(recipe{Title: fr.Title, OwnerID: row.ID}).
				FirstOrCreate(&rec).Error; err != nil {
				return fmt.Errorf("seed recipe %q: %w", fr.Title, err)
			}
		}
	}

	return nil
}
