package repository

import (
	"context"
	"errors"
	"time"

	"github.com/leaf-logistics/rfq-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuoteRepository defines storage operations for quotes.
type QuoteRepository interface {
	GetByID(ctx context.Context, quoteId string) (*models.Quote, error)
	GetByRFQAndVendor(ctx context.Context, rfqId, vendorId string) (*models.Quote, error)
	GetRFQQuotes(ctx context.Context, rfqId string) ([]models.Quote, error)
	Upsert(ctx context.Context, req models.QuoteRequest, ts time.Time) (*models.Quote, error)
	UpdateAdjustment(ctx context.Context, quoteId string, price float64, trucksAllotted int) (*models.Quote, error)
	ApplyAllotments(ctx context.Context, allocs []models.Allocation) error
	ApplyFinalAllocation(ctx context.Context, rfqId string, lines []models.AllocationLine) error
}

// PostgresQuoteRepository implements QuoteRepository on PostgreSQL.
type PostgresQuoteRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresQuoteRepository creates a new PostgresQuoteRepository.
func NewPostgresQuoteRepository(db *pgxpool.Pool) *PostgresQuoteRepository {
	return &PostgresQuoteRepository{DB: db}
}

const quoteColumns = `id, rfq_id, vendor_id, price, number_of_trucks, trucks_per_day, trucks_allotted, label, message, validity_period, created_at`

func scanQuote(row pgx.Row, q *models.Quote) error {
	return row.Scan(
		&q.ID,
		&q.RFQId,
		&q.VendorId,
		&q.Price,
		&q.NumberOfTrucks,
		&q.TrucksPerDay,
		&q.TrucksAllotted,
		&q.Label,
		&q.Message,
		&q.ValidityPeriod,
		&q.CreatedAt,
	)
}

// GetByID returns one quote, or nil if none exists.
func (r *PostgresQuoteRepository) GetByID(ctx context.Context, quoteId string) (*models.Quote, error) {
	var quote models.Quote
	query := `SELECT ` + quoteColumns + ` FROM quote WHERE id = $1`
	err := scanQuote(r.DB.QueryRow(ctx, query, quoteId), &quote)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &quote, nil
}

// GetByRFQAndVendor returns the vendor's quote for an RFQ, or nil if none exists.
func (r *PostgresQuoteRepository) GetByRFQAndVendor(ctx context.Context, rfqId, vendorId string) (*models.Quote, error) {
	var quote models.Quote
	query := `SELECT ` + quoteColumns + ` FROM quote WHERE rfq_id = $1 AND vendor_id = $2`
	err := scanQuote(r.DB.QueryRow(ctx, query, rfqId, vendorId), &quote)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &quote, nil
}

// GetRFQQuotes returns all quotes for an RFQ in submission order.
func (r *PostgresQuoteRepository) GetRFQQuotes(ctx context.Context, rfqId string) ([]models.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quote WHERE rfq_id = $1 ORDER BY created_at`
	rows, err := r.DB.Query(ctx, query, rfqId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quotes []models.Quote
	for rows.Next() {
		var quote models.Quote
		if err := scanQuote(rows, &quote); err != nil {
			return nil, err
		}
		quotes = append(quotes, quote)
	}
	return quotes, nil
}

// Upsert inserts the vendor's quote or, if one exists for the (rfq, vendor)
// pair, updates its revisable fields in place. The original created_at is
// preserved on update since it carries the tie-break value.
func (r *PostgresQuoteRepository) Upsert(ctx context.Context, req models.QuoteRequest, ts time.Time) (*models.Quote, error) {
	query := `
		INSERT INTO quote (id, rfq_id, vendor_id, price, number_of_trucks, trucks_per_day, trucks_allotted, label, message, validity_period, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, '', $7, $8, $9)
		ON CONFLICT (rfq_id, vendor_id) DO UPDATE SET
			price = EXCLUDED.price,
			number_of_trucks = EXCLUDED.number_of_trucks,
			trucks_per_day = EXCLUDED.trucks_per_day,
			message = EXCLUDED.message,
			validity_period = EXCLUDED.validity_period
		RETURNING ` + quoteColumns
	var quote models.Quote
	err := scanQuote(r.DB.QueryRow(ctx, query,
		uuid.New().String(),
		req.RFQId,
		req.VendorId,
		req.Price,
		req.NumberOfTrucks,
		req.TrucksPerDay,
		req.Message,
		req.ValidityPeriod,
		ts), &quote)
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// UpdateAdjustment overwrites one quote's price and allotment and returns the
// updated row.
func (r *PostgresQuoteRepository) UpdateAdjustment(ctx context.Context, quoteId string, price float64, trucksAllotted int) (*models.Quote, error) {
	var quote models.Quote
	query := `UPDATE quote SET price = $1, trucks_allotted = $2 WHERE id = $3 RETURNING ` + quoteColumns
	if err := scanQuote(r.DB.QueryRow(ctx, query, price, trucksAllotted, quoteId), &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

// ApplyAllotments persists an allocation engine result in one transaction.
func (r *PostgresQuoteRepository) ApplyAllotments(ctx context.Context, allocs []models.Allocation) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, alloc := range allocs {
		if _, err = tx.Exec(ctx, `UPDATE quote SET label = $1, trucks_allotted = $2 WHERE id = $3`,
			alloc.Label, alloc.TrucksAllotted, alloc.QuoteID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// ApplyFinalAllocation overwrites price, allotment and label per vendor from
// the human-supplied final allocation, in one transaction.
func (r *PostgresQuoteRepository) ApplyFinalAllocation(ctx context.Context, rfqId string, lines []models.AllocationLine) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, line := range lines {
		if _, err = tx.Exec(ctx, `UPDATE quote SET price = $1, trucks_allotted = $2, label = $3 WHERE rfq_id = $4 AND vendor_id = $5`,
			line.Price, line.TrucksAllotted, line.Label, rfqId, line.VendorId); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
