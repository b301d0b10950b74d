package seed

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "valid fixture",
			yaml: `
users:
  - email: cook@example.com
    password: Secret1!pass
    recipes:
      - title: Tomato Soup
        ingredients: tomatoes, basil
        description: Simmer for twenty minutes.
`,
		},
		{
			name: "user without recipes",
			yaml: `
users:
  - email: cook@example.com
    password: Secret1!pass
`,
		},
		{
			name:    "not yaml",
			yaml:    "users: [}",
			wantErr: "decode fixture",
		},
		{
			name: "user missing password",
			yaml: `
users:
  - email: cook@example.com
`,
			wantErr: "email and password are required",
		},
		{
			name: "recipe missing description",
			yaml: `
users:
  - email: cook@example.com
    password: Secret1!pass
    recipes:
      - title: Tomato Soup
        ingredients: tomatoes
`,
			wantErr: "title, ingredients and description are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx, err := Parse([]byte(tt.yaml))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Parse() error = %v, want nil", err)
				}
				if len(fx.Users) != 1 {
					t.Fatalf("Parse() users = %d, want 1", len(fx.Users))
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Parse() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadRejectsNilDatabase(t *testing.T) {
	if err := Load(t.Context(), nil, "fixture.yaml"); err == nil {
		t.Fatal("Load() accepted a nil database")
	}
}
