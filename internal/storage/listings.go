// Package storage persists saved listings in PostgreSQL.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "jobmate/jobsearch-bot/internal/errors"
	"jobmate/jobsearch-bot/internal/model"
)

const schema = `
	CREATE TABLE IF NOT EXISTS saved_jobs (
		id             SERIAL PRIMARY KEY,
		title          TEXT,
		company        TEXT,
		employmenttype TEXT,
		dateposted     TEXT,
		url            TEXT
	)`

// ListingStore is the durable CRUD surface for saved listings. Every call
// is its own statement, so concurrent conversations are serialized by
// PostgreSQL rather than by the caller.
type ListingStore struct {
	pool *pgxpool.Pool
}

// NewListingStore returns a store backed by pool.
func NewListingStore(pool *pgxpool.Pool) *ListingStore {
	return &ListingStore{pool: pool}
}

// InitSchema creates saved_jobs if it does not exist. Safe on every start.
func (s *ListingStore) InitSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return apperrors.Unavailable("init schema", err)
	}
	return nil
}

// Create inserts listing and returns it with the id assigned by the database.
func (s *ListingStore) Create(ctx context.Context, listing model.Listing) (model.SavedListing, error) {
	saved := model.SavedListing{Listing: listing}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO saved_jobs (title, company, employmenttype, dateposted, url)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		listing.Title, listing.Company, listing.EmploymentType, listing.DatePosted, listing.URL,
	).Scan(&saved.ID)
	if err != nil {
		return model.SavedListing{}, classify("create saved job", err)
	}
	return saved, nil
}

// List returns every saved listing in insertion order.
func (s *ListingStore) List(ctx context.Context) ([]model.SavedListing, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, COALESCE(title, ''), COALESCE(company, ''), COALESCE(employmenttype, ''),
		        COALESCE(dateposted, ''), COALESCE(url, '')
		 FROM saved_jobs
		 ORDER BY id`,
	)
	if err != nil {
		return nil, apperrors.Unavailable("list saved jobs", err)
	}
	defer rows.Close()

	saved := make([]model.SavedListing, 0)
	for rows.Next() {
		var l model.SavedListing
		if err := rows.Scan(&l.ID, &l.Title, &l.Company, &l.EmploymentType, &l.DatePosted, &l.URL); err != nil {
			return nil, apperrors.Unavailable("scan saved job", err)
		}
		saved = append(saved, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Unavailable("iterate saved jobs", err)
	}
	return saved, nil
}

// Delete removes the listing with id. A missing id yields a NOT_FOUND error
// that callers are expected to treat as benign.
func (s *ListingStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM saved_jobs WHERE id = $1`, id)
	if err != nil {
		return classify("delete saved job", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound(fmt.Sprintf("saved job %d not found", id), nil)
	}
	return nil
}

// classify separates statements the server rejected from failures to reach
// the server at all.
func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return apperrors.WriteFailed(op, err)
	}
	return apperrors.Unavailable(op, err)
}
