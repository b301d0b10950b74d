package api

import (
	"errors"
	"time"

	"forkful/pkg/auth"
)

const (
	usersRegisteredTopic = "forkful.users.registered"
	recipesCreatedTopic  = "forkful.recipes.created"
	likesAddedTopic      = "forkful.likes.added"
	likesRemovedTopic    = "forkful.likes.removed"

	imageURLExpiry = 15 * time.Minute
	maxUploadBytes = 10 << 20
)

// Config controls runtime behaviour for the API handlers.
type Config struct {
	ImageBucket     string
	AllowedOrigins  []string
	RateLimit       int
	RateLimitWindow time.Duration
}

// API wires storage, the token service, and configuration for HTTP handlers.
type API struct {
	store  *Store
	tokens *auth.Tokens
	config Config
}

// New initialises the API layer with sane defaults applied to the provided
// configuration.
func New(store *Store, tokens *auth.Tokens, cfg Config) (*API, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if store.DB == nil {
		return nil, errors.New("store DB is required")
	}
	if store.ORM == nil {
		return nil, errors.New("store ORM is required")
	}
	if tokens == nil {
		return nil, errors.New("token service is required")
	}
	if store.S3 != nil && cfg.ImageBucket == "" {
		return nil, errors.New("image bucket is required when S3 is configured")
	}

	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 100
	}
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = time.Minute
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	return &API{
		store:  store,
		tokens: tokens,
		config: cfg,
	}, nil
}
