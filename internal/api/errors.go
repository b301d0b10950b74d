package api

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

var (
	// ErrRecipeNotFound is returned when a recipe id does not resolve.
	ErrRecipeNotFound = errors.New("recipe not found")
	// ErrSelfLike is returned when a user tries to like their own recipe.
	ErrSelfLike = errors.New("cannot like your own recipe")
	// ErrSelfUnlike mirrors ErrSelfLike on the unlike side.
	ErrSelfUnlike = errors.New("cannot unlike your own recipe")
	// ErrAlreadyLiked is returned when a like row for the pair already exists.
	ErrAlreadyLiked = errors.New("recipe already liked")
	// ErrNotLiked is returned when unliking without a prior like.
	ErrNotLiked = errors.New("recipe not liked")
	// ErrLikeCountCorrupt signals that the denormalized counter disagrees
	// with the like rows; the transaction is rolled back when this happens.
	ErrLikeCountCorrupt = errors.New("like counter inconsistent")
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
