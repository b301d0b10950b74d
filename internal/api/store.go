package api

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"

	"forkful/pkg/bus"
	gos3 "forkful/pkg/s3"
)

// Store holds external dependencies required by the API layer. The pgx pool
// backs the like ledger's transactional SQL; the GORM handle backs plain
// CRUD over the same database. S3 and Bus are optional.
type Store struct {
	DB  *pgxpool.Pool
	ORM *gorm.DB
	S3  *gos3.Client
	Bus *bus.Bus
}
