package api

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"forkful/pkg/auth"
	"forkful/pkg/db"
)

// newLedgerAPI connects to the database named by TEST_DB_DSN, applies
// migrations, and starts from empty tables. Tests using it are skipped when
// no database is available.
func newLedgerAPI(t *testing.T) (*API, *pgxpool.Pool) {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx := t.Context()

	pool, err := db.Open(ctx, dsn)
	if err != nil {
		t.Fatalf("db.Open() error = %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.Migrate(ctx, pool); err != nil {
		t.Fatalf("db.Migrate() error = %v", err)
	}

	orm, err := db.OpenGorm(dsn)
	if err != nil {
		t.Fatalf("db.OpenGorm() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.CloseGorm(orm); err != nil {
			t.Errorf("db.CloseGorm() error = %v", err)
		}
	})

	if _, err := pool.Exec(ctx, `TRUNCATE likes, audit, recipes, users RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}

	tokens, err := auth.NewTokens("test-signing-key", auth.AlgorithmHS256, time.Minute)
	if err != nil {
		t.Fatalf("NewTokens() error = %v", err)
	}

	a, err := New(&Store{DB: pool, ORM: orm}, tokens, Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return a, pool
}

func createUser(t *testing.T, pool *pgxpool.Pool, email string) uint {
	t.Helper()
	var id uint
	err := pool.QueryRow(t.Context(),
		`INSERT INTO users (email, password_hash) VALUES ($1, $2) RETURNING id`,
		email, "x",
	).Scan(&id)
	if err != nil {
		t.Fatalf("insert user %s: %v", email, err)
	}
	return id
}

func createRecipe(t *testing.T, pool *pgxpool.Pool, ownerID uint, title string) uint {
	t.Helper()
	var id uint
	err := pool.QueryRow(t.Context(),
		`INSERT INTO recipes (title, ingredients, description, owner_id) VALUES ($1, $2, $3, $4) RETURNING id`,
		title, "salt", "stir", ownerID,
	).Scan(&id)
	if err != nil {
		t.Fatalf("insert recipe %q: %v", title, err)
	}
	return id
}

func recipeState(t *testing.T, pool *pgxpool.Pool, recipeID uint) (counter, rows int) {
	t.Helper()
	err := pool.QueryRow(t.Context(),
		`SELECT r.likes, (SELECT count(*) FROM likes l WHERE l.recipe_id = r.id) FROM recipes r WHERE r.id = $1`,
		recipeID,
	).Scan(&counter, &rows)
	if err != nil {
		t.Fatalf("read recipe %d state: %v", recipeID, err)
	}
	return counter, rows
}

func TestLikeLedger(t *testing.T) {
	a, pool := newLedgerAPI(t)
	ctx := t.Context()

	owner := createUser(t, pool, "owner@example.com")
	fan := createUser(t, pool, "fan@example.com")
	recipe := createRecipe(t, pool, owner, "Tomato Soup")

	rec, err := a.likeRecipe(ctx, fan, recipe)
	if err != nil {
		t.Fatalf("likeRecipe() error = %v", err)
	}
	if rec.Likes != 1 {
		t.Fatalf("Likes after first like = %d, want 1", rec.Likes)
	}
	if counter, rows := recipeState(t, pool, recipe); counter != 1 || rows != 1 {
		t.Fatalf("state after first like = (counter %d, rows %d), want (1, 1)", counter, rows)
	}

	if _, err := a.likeRecipe(ctx, fan, recipe); !errors.Is(err, ErrAlreadyLiked) {
		t.Fatalf("second likeRecipe() error = %v, want ErrAlreadyLiked", err)
	}
	if counter, rows := recipeState(t, pool, recipe); counter != 1 || rows != 1 {
		t.Fatalf("state after rejected like = (counter %d, rows %d), want (1, 1)", counter, rows)
	}

	rec, err = a.unlikeRecipe(ctx, fan, recipe)
	if err != nil {
		t.Fatalf("unlikeRecipe() error = %v", err)
	}
	if rec.Likes != 0 {
		t.Fatalf("Likes after unlike = %d, want 0", rec.Likes)
	}
	if counter, rows := recipeState(t, pool, recipe); counter != 0 || rows != 0 {
		t.Fatalf("state after unlike = (counter %d, rows %d), want (0, 0)", counter, rows)
	}

	if _, err := a.unlikeRecipe(ctx, fan, recipe); !errors.Is(err, ErrNotLiked) {
		t.Fatalf("second unlikeRecipe() error = %v, want ErrNotLiked", err)
	}

	if _, err := a.likeRecipe(ctx, owner, recipe); !errors.Is(err, ErrSelfLike) {
		t.Fatalf("owner likeRecipe() error = %v, want ErrSelfLike", err)
	}
	if _, err := a.unlikeRecipe(ctx, owner, recipe); !errors.Is(err, ErrSelfUnlike) {
		t.Fatalf("owner unlikeRecipe() error = %v, want ErrSelfUnlike", err)
	}

	if _, err := a.likeRecipe(ctx, fan, recipe+1000); !errors.Is(err, ErrRecipeNotFound) {
		t.Fatalf("likeRecipe(missing) error = %v, want ErrRecipeNotFound", err)
	}
	if _, err := a.unlikeRecipe(ctx, fan, recipe+1000); !errors.Is(err, ErrRecipeNotFound) {
		t.Fatalf("unlikeRecipe(missing) error = %v, want ErrRecipeNotFound", err)
	}
}

func TestLikeLedgerConcurrentDoubleLike(t *testing.T) {
	a, pool := newLedgerAPI(t)
	ctx := t.Context()

	owner := createUser(t, pool, "owner@example.com")
	fan := createUser(t, pool, "fan@example.com")
	recipe := createRecipe(t, pool, owner, "Tomato Soup")

	const attempts = 8
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = a.likeRecipe(ctx, fan, recipe)
		}()
	}
	wg.Wait()

	var committed, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			committed++
		case errors.Is(err, ErrAlreadyLiked):
			rejected++
		default:
			t.Fatalf("concurrent likeRecipe() error = %v", err)
		}
	}
	if committed != 1 || rejected != attempts-1 {
		t.Fatalf("concurrent likes = %d committed, %d rejected, want 1 and %d", committed, rejected, attempts-1)
	}
	if counter, rows := recipeState(t, pool, recipe); counter != 1 || rows != 1 {
		t.Fatalf("state after race = (counter %d, rows %d), want (1, 1)", counter, rows)
	}
}

func TestLikeLedgerCounterMatchesRows(t *testing.T) {
	a, pool := newLedgerAPI(t)
	ctx := t.Context()

	owner := createUser(t, pool, "owner@example.com")
	recipe := createRecipe(t, pool, owner, "Tomato Soup")

	fans := make([]uint, 5)
	for i := range fans {
		fans[i] = createUser(t, pool, fmt.Sprintf("fan%d@example.com", i))
		if _, err := a.likeRecipe(ctx, fans[i], recipe); err != nil {
			t.Fatalf("likeRecipe(fan %d) error = %v", i, err)
		}
	}
	if counter, rows := recipeState(t, pool, recipe); counter != 5 || rows != 5 {
		t.Fatalf("state after 5 likes = (counter %d, rows %d), want (5, 5)", counter, rows)
	}

	if _, err := a.unlikeRecipe(ctx, fans[2], recipe); err != nil {
		t.Fatalf("unlikeRecipe() error = %v", err)
	}
	if counter, rows := recipeState(t, pool, recipe); counter != 4 || rows != 4 {
		t.Fatalf("state after one unlike = (counter %d, rows %d), want (4, 4)", counter, rows)
	}
}
