package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arepabyte/comanda/internal/model"
)

// RateRepo stores one VES-per-USD exchange rate per calendar date.
// Rates are append-mostly admin data; invoice issuance only reads them.
type RateRepo struct {
	db *sql.DB
}

// NewRateRepo returns a new RateRepo bound to the given database.
func NewRateRepo(db *sql.DB) *RateRepo { return &RateRepo{db: db} }

// Set upserts the rate for a date, overwriting any existing value.
func (r *RateRepo) Set(ctx context.Context, date time.Time, rate decimal.Decimal) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO exchange_rates (rate_date, rate) VALUES (?, ?)
         ON DUPLICATE KEY UPDATE rate = VALUES(rate)`,
		date.Format("2006-01-02"), rate)
	return err
}

// Get returns the rate recorded for a date, or ErrNotFound.
func (r *RateRepo) Get(ctx context.Context, date time.Time) (*model.ExchangeRate, error) {
	var er model.ExchangeRate
	err := r.db.QueryRowContext(ctx,
		`SELECT id, rate_date, rate FROM exchange_rates WHERE rate_date = ?`,
		date.Format("2006-01-02")).Scan(&er.ID, &er.Date, &er.Rate)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &er, nil
}

// LatestKnown returns the rate with the most recent date on record,
// regardless of today's date.  This is the explicit "rate of the day"
// fallback policy: on a day with no recorded rate the last known one
// applies.  ErrNotFound when no rate was ever recorded.
func (r *RateRepo) LatestKnown(ctx context.Context) (*model.ExchangeRate, error) {
	var er model.ExchangeRate
	err := r.db.QueryRowContext(ctx,
		`SELECT id, rate_date, rate FROM exchange_rates ORDER BY rate_date DESC LIMIT 1`).
		Scan(&er.ID, &er.Date, &er.Rate)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &er, nil
}

// List returns all recorded rates, newest date first.
func (r *RateRepo) List(ctx context.Context) ([]model.ExchangeRate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, rate_date, rate FROM exchange_rates ORDER BY rate_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	rates := make([]model.ExchangeRate, 0)
	for rows.Next() {
		var er model.ExchangeRate
		if err := rows.Scan(&er.ID, &er.Date, &er.Rate); err != nil {
			return nil, err
		}
		rates = append(rates, er)
	}
	return rates, rows.Err()
}

// Delete removes the rate for a date.  ErrNotFound when none exists.
func (r *RateRepo) Delete(ctx context.Context, date time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM exchange_rates WHERE rate_date = ?`, date.Format("2006-01-02"))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
