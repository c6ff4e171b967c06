package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/leaf-logistics/rfq-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RFQRepository defines storage operations for RFQs.
type RFQRepository interface {
	CreateRFQ(ctx context.Context, req models.RFQRequest) (*models.RFQ, error)
	GetRFQs(ctx context.Context, limit, offset int) ([]models.RFQ, error)
	GetRFQ(ctx context.Context, rfqId string) (*models.RFQ, error)
	NextNumber(ctx context.Context) (int, error)
	UpdateStatusAndReason(ctx context.Context, rfqId string, status models.RFQStatus, reason string) error
	SetEvaluation(ctx context.Context, rfqId, lowestVendorId string, l1Price float64) error
	AddVendors(ctx context.Context, rfqId string, vendorIds []string, ts time.Time) error
	AppendVendorAction(ctx context.Context, rfqId, vendorId string, action models.VendorActionType, ts time.Time) error
	DeleteRFQ(ctx context.Context, rfqId string) error
}

// PostgresRFQRepository implements RFQRepository on PostgreSQL.
type PostgresRFQRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresRFQRepository creates a new PostgresRFQRepository.
func NewPostgresRFQRepository(db *pgxpool.Pool) *PostgresRFQRepository {
	return &PostgresRFQRepository{DB: db}
}

// CreateRFQ inserts a new RFQ with the next sequential number. The number is
// read and claimed inside one transaction holding a table lock, so concurrent
// creations cannot produce duplicates or gaps.
func (r *PostgresRFQRepository) CreateRFQ(ctx context.Context, req models.RFQRequest) (*models.RFQ, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err = tx.Exec(ctx, `LOCK TABLE rfq IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return nil, err
	}

	var maxNumber int
	if err = tx.QueryRow(ctx, `SELECT COALESCE(MAX(rfq_number), 0) FROM rfq`).Scan(&maxNumber); err != nil {
		return nil, err
	}

	newRFQ := models.RFQ{
		ID:                  uuid.New().String(),
		Number:              maxNumber + 1,
		RequiredTrucks:      req.RequiredTrucks,
		Status:              models.InitialRFQ,
		InitialQuoteEndTime: req.InitialQuoteEndTime,
		EvaluationEndTime:   req.EvaluationEndTime,
		SelectedVendors:     req.SelectedVendors,
		CreatedAt:           time.Now().UTC(),
	}

	_, err = tx.Exec(ctx, `
       INSERT INTO rfq (id, rfq_number, required_trucks, status, initial_quote_end_time, evaluation_end_time, lowest_vendor_id, l1_price, finalize_reason, created_at)
       VALUES ($1, $2, $3, $4, $5, $6, '', 0, '', $7)
   `,
		newRFQ.ID,
		newRFQ.Number,
		newRFQ.RequiredTrucks,
		newRFQ.Status,
		newRFQ.InitialQuoteEndTime,
		newRFQ.EvaluationEndTime,
		newRFQ.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert rfq: %w", err)
	}

	for _, vendorId := range req.SelectedVendors {
		if _, err = tx.Exec(ctx, `INSERT INTO rfq_vendor (rfq_id, vendor_id) VALUES ($1, $2)`, newRFQ.ID, vendorId); err != nil {
			return nil, err
		}
		action := models.VendorAction{
			ID:        uuid.New().String(),
			RFQId:     newRFQ.ID,
			Action:    models.VendorAddedAtCreation,
			VendorId:  vendorId,
			Timestamp: newRFQ.CreatedAt,
		}
		if _, err = tx.Exec(ctx, `INSERT INTO vendor_action (id, rfq_id, vendor_id, action, created_at) VALUES ($1, $2, $3, $4, $5)`,
			action.ID, action.RFQId, action.VendorId, action.Action, action.Timestamp); err != nil {
			return nil, err
		}
		newRFQ.VendorActions = append(newRFQ.VendorActions, action)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &newRFQ, nil
}

// GetRFQs returns a page of RFQs ordered by number, newest first.
func (r *PostgresRFQRepository) GetRFQs(ctx context.Context, limit, offset int) ([]models.RFQ, error) {
	query := `SELECT id, rfq_number, required_trucks, status, initial_quote_end_time, evaluation_end_time, lowest_vendor_id, l1_price, finalize_reason, created_at
	          FROM rfq ORDER BY rfq_number DESC LIMIT $1 OFFSET $2`
	rows, err := r.DB.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rfqs []models.RFQ
	for rows.Next() {
		var rfq models.RFQ
		if err := rows.Scan(
			&rfq.ID,
			&rfq.Number,
			&rfq.RequiredTrucks,
			&rfq.Status,
			&rfq.InitialQuoteEndTime,
			&rfq.EvaluationEndTime,
			&rfq.LowestVendorId,
			&rfq.L1Price,
			&rfq.FinalizeReason,
			&rfq.CreatedAt); err != nil {
			return nil, err
		}
		rfqs = append(rfqs, rfq)
	}
	return rfqs, nil
}

// GetRFQ returns one RFQ with its selected vendors and action log.
func (r *PostgresRFQRepository) GetRFQ(ctx context.Context, rfqId string) (*models.RFQ, error) {
	var rfq models.RFQ
	query := `SELECT id, rfq_number, required_trucks, status, initial_quote_end_time, evaluation_end_time, lowest_vendor_id, l1_price, finalize_reason, created_at
	          FROM rfq WHERE id = $1`
	err := r.DB.QueryRow(ctx, query, rfqId).Scan(
		&rfq.ID,
		&rfq.Number,
		&rfq.RequiredTrucks,
		&rfq.Status,
		&rfq.InitialQuoteEndTime,
		&rfq.EvaluationEndTime,
		&rfq.LowestVendorId,
		&rfq.L1Price,
		&rfq.FinalizeReason,
		&rfq.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	vendorRows, err := r.DB.Query(ctx, `SELECT vendor_id FROM rfq_vendor WHERE rfq_id = $1`, rfqId)
	if err != nil {
		return nil, err
	}
	defer vendorRows.Close()
	for vendorRows.Next() {
		var vendorId string
		if err := vendorRows.Scan(&vendorId); err != nil {
			return nil, err
		}
		rfq.SelectedVendors = append(rfq.SelectedVendors, vendorId)
	}

	actionRows, err := r.DB.Query(ctx, `SELECT id, vendor_id, action, created_at FROM vendor_action WHERE rfq_id = $1 ORDER BY created_at`, rfqId)
	if err != nil {
		return nil, err
	}
	defer actionRows.Close()
	for actionRows.Next() {
		action := models.VendorAction{RFQId: rfqId}
		if err := actionRows.Scan(&action.ID, &action.VendorId, &action.Action, &action.Timestamp); err != nil {
			return nil, err
		}
		rfq.VendorActions = append(rfq.VendorActions, action)
	}

	return &rfq, nil
}

// NextNumber returns the number the next created RFQ will receive.
func (r *PostgresRFQRepository) NextNumber(ctx context.Context) (int, error) {
	var maxNumber int
	err := r.DB.QueryRow(ctx, `SELECT COALESCE(MAX(rfq_number), 0) FROM rfq`).Scan(&maxNumber)
	if err != nil {
		return 0, err
	}
	return maxNumber + 1, nil
}

// UpdateStatusAndReason sets the RFQ status and, if given, the finalize reason.
func (r *PostgresRFQRepository) UpdateStatusAndReason(ctx context.Context, rfqId string, status models.RFQStatus, reason string) error {
	var err error
	if reason != "" {
		_, err = r.DB.Exec(ctx, `UPDATE rfq SET status = $1, finalize_reason = $2 WHERE id = $3`, status, reason, rfqId)
	} else {
		_, err = r.DB.Exec(ctx, `UPDATE rfq SET status = $1 WHERE id = $2`, status, rfqId)
	}
	return err
}

// SetEvaluation moves the RFQ into evaluation and freezes the lowest bidder.
func (r *PostgresRFQRepository) SetEvaluation(ctx context.Context, rfqId, lowestVendorId string, l1Price float64) error {
	_, err := r.DB.Exec(ctx, `UPDATE rfq SET status = $1, lowest_vendor_id = $2, l1_price = $3 WHERE id = $4`,
		models.EvaluationRFQ, lowestVendorId, l1Price, rfqId)
	return err
}

// AddVendors adds vendors to the selected list and records an "added" action
// for each. Callers pass only vendors not already selected.
func (r *PostgresRFQRepository) AddVendors(ctx context.Context, rfqId string, vendorIds []string, ts time.Time) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, vendorId := range vendorIds {
		if _, err = tx.Exec(ctx, `INSERT INTO rfq_vendor (rfq_id, vendor_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, rfqId, vendorId); err != nil {
			return err
		}
		if _, err = tx.Exec(ctx, `INSERT INTO vendor_action (id, rfq_id, vendor_id, action, created_at) VALUES ($1, $2, $3, $4, $5)`,
			uuid.New().String(), rfqId, vendorId, models.VendorAdded, ts); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// AppendVendorAction records one action in the RFQ's append-only log.
func (r *PostgresRFQRepository) AppendVendorAction(ctx context.Context, rfqId, vendorId string, action models.VendorActionType, ts time.Time) error {
	_, err := r.DB.Exec(ctx, `INSERT INTO vendor_action (id, rfq_id, vendor_id, action, created_at) VALUES ($1, $2, $3, $4, $5)`,
		uuid.New().String(), rfqId, vendorId, action, ts)
	return err
}

// DeleteRFQ removes an RFQ and its dependent rows. Used as the compensating
// action when vendor notification fails right after creation.
func (r *PostgresRFQRepository) DeleteRFQ(ctx context.Context, rfqId string) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err = tx.Exec(ctx, `DELETE FROM vendor_action WHERE rfq_id = $1`, rfqId); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `DELETE FROM rfq_vendor WHERE rfq_id = $1`, rfqId); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `DELETE FROM quote WHERE rfq_id = $1`, rfqId); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `DELETE FROM rfq WHERE id = $1`, rfqId); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
