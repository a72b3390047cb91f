package postgres

import (
	"github.com/jackc/pgx/v5"
	"github.com/openmint/issuer-node/internal/postgres"
)

type Repository struct {
	db postgres.DB
	tx pgx.Tx
}

func NewRepository(db postgres.DB) *Repository {
	return &Repository{
		db: db,
	}
}

// q returns the active transaction if one is open, the pool otherwise.
func (r *Repository) q() postgres.Queryable {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}
