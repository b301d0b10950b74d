package api

import (
	"context"
	"errors"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
)

// recipeRow is the raw-SQL counterpart of recipeModel for scany scans.
type recipeRow struct {
	ID          uint      `db:"id"`
	Title       string    `db:"title"`
	Ingredients string    `db:"ingredients"`
	Description string    `db:"description"`
	ImageKey    string    `db:"image_key"`
	Likes       int       `db:"likes"`
	CreatedAt   time.Time `db:"created_at"`
	OwnerID     uint      `db:"owner_id"`
}

func (r recipeRow) toAPI() Recipe {
	return Recipe{
		ID:          r.ID,
		Title:       r.Title,
		Ingredients: r.Ingredients,
		Description: r.Description,
		ImagePath:   r.ImageKey,
		Likes:       r.Likes,
		CreatedAt:   r.CreatedAt,
		OwnerID:     r.OwnerID,
	}
}

const returnRecipeColumns = `id, title, ingredients, description, coalesce(image_key, '') AS image_key, likes, created_at, owner_id`

// likeRecipe records a like by userID on recipeID and bumps the recipe's
// counter, both inside one transaction. The composite primary key on likes
// arbitrates concurrent calls: the loser of a race observes ErrAlreadyLiked,
// and the counter moves by exactly one per committed like.
func (a *API) likeRecipe(ctx context.Context, userID, recipeID uint) (Recipe, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := a.store.DB.Begin(ctx)
	if err != nil {
		return Recipe{}, err
	}
	defer tx.Rollback(ctx)

	var ownerID uint
	err = tx.QueryRow(ctx, `SELECT owner_id FROM recipes WHERE id = $1`, recipeID).Scan(&ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Recipe{}, ErrRecipeNotFound
	}
	if err != nil {
		return Recipe{}, err
	}
	if ownerID == userID {
		return Recipe{}, ErrSelfLike
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO likes (user_id, recipe_id) VALUES ($1, $2)`,
		userID, recipeID,
	); err != nil {
		if isUniqueViolation(err) {
			return Recipe{}, ErrAlreadyLiked
		}
		return Recipe{}, err
	}

	var row recipeRow
	err = pgxscan.Get(ctx, tx, &row,
		`UPDATE recipes SET likes = likes + 1 WHERE id = $1 RETURNING `+returnRecipeColumns,
		recipeID,
	)
	if err != nil {
		return Recipe{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Recipe{}, err
	}
	return row.toAPI(), nil
}

// unlikeRecipe removes the like row and decrements the counter in one
// transaction. The decrement is guarded by likes > 0: a successful row
// delete with no counter row to decrement means the denormalized count has
// drifted, which aborts the transaction instead of going negative.
func (a *API) unlikeRecipe(ctx context.Context, userID, recipeID uint) (Recipe, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := a.store.DB.Begin(ctx)
	if err != nil {
		return Recipe{}, err
	}
	defer tx.Rollback(ctx)

	var ownerID uint
	err = tx.QueryRow(ctx, `SELECT owner_id FROM recipes WHERE id = $1`, recipeID).Scan(&ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Recipe{}, ErrRecipeNotFound
	}
	if err != nil {
		return Recipe{}, err
	}
	if ownerID == userID {
		return Recipe{}, ErrSelfUnlike
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM likes WHERE user_id = $1 AND recipe_id = $2`,
		userID, recipeID,
	)
	if err != nil {
		return Recipe{}, err
	}
	if tag.RowsAffected() == 0 {
		return Recipe{}, ErrNotLiked
	}

	var row recipeRow
	err = pgxscan.Get(ctx, tx, &row,
		`UPDATE recipes SET likes = likes - 1 WHERE id = $1 AND likes > 0 RETURNING `+returnRecipeColumns,
		recipeID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Recipe{}, ErrLikeCountCorrupt
	}
	if err != nil {
		return Recipe{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Recipe{}, err
	}
	return row.toAPI(), nil
}
