package repository

import (
	"context"
	"errors"

	"github.com/leaf-logistics/rfq-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// VendorRepository defines storage operations for vendors.
type VendorRepository interface {
	GetVendors(ctx context.Context, limit, offset int) ([]models.Vendor, error)
	GetByIds(ctx context.Context, vendorIds []string) ([]models.Vendor, error)
	GetByName(ctx context.Context, vendorName string) (*models.Vendor, error)
	CreateVendor(ctx context.Context, vendor models.Vendor) (*models.Vendor, error)
}

// PostgresVendorRepository implements VendorRepository on PostgreSQL.
type PostgresVendorRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresVendorRepository creates a new PostgresVendorRepository.
func NewPostgresVendorRepository(db *pgxpool.Pool) *PostgresVendorRepository {
	return &PostgresVendorRepository{DB: db}
}

// GetVendors returns a page of vendors ordered by name.
func (r *PostgresVendorRepository) GetVendors(ctx context.Context, limit, offset int) ([]models.Vendor, error) {
	query := `SELECT id, username, vendor_name, email, contact_number FROM vendor ORDER BY vendor_name LIMIT $1 OFFSET $2`
	rows, err := r.DB.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vendors []models.Vendor
	for rows.Next() {
		var vendor models.Vendor
		if err := rows.Scan(&vendor.ID, &vendor.Username, &vendor.VendorName, &vendor.Email, &vendor.ContactNumber); err != nil {
			return nil, err
		}
		vendors = append(vendors, vendor)
	}
	return vendors, nil
}

// GetByIds returns the vendors with the given ids.
func (r *PostgresVendorRepository) GetByIds(ctx context.Context, vendorIds []string) ([]models.Vendor, error) {
	query := `SELECT id, username, vendor_name, email, contact_number FROM vendor WHERE id = ANY($1) ORDER BY vendor_name`
	rows, err := r.DB.Query(ctx, query, pq.Array(vendorIds))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vendors []models.Vendor
	for rows.Next() {
		var vendor models.Vendor
		if err := rows.Scan(&vendor.ID, &vendor.Username, &vendor.VendorName, &vendor.Email, &vendor.ContactNumber); err != nil {
			return nil, err
		}
		vendors = append(vendors, vendor)
	}
	return vendors, nil
}

// GetByName returns the vendor with the given display name, or nil if none exists.
func (r *PostgresVendorRepository) GetByName(ctx context.Context, vendorName string) (*models.Vendor, error) {
	var vendor models.Vendor
	query := `SELECT id, username, vendor_name, email, contact_number FROM vendor WHERE vendor_name = $1`
	err := r.DB.QueryRow(ctx, query, vendorName).Scan(&vendor.ID, &vendor.Username, &vendor.VendorName, &vendor.Email, &vendor.ContactNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &vendor, nil
}

// CreateVendor inserts a new vendor.
func (r *PostgresVendorRepository) CreateVendor(ctx context.Context, vendor models.Vendor) (*models.Vendor, error) {
	if vendor.ID == "" {
		vendor.ID = uuid.New().String()
	}
	_, err := r.DB.Exec(ctx, `INSERT INTO vendor (id, username, vendor_name, email, contact_number) VALUES ($1, $2, $3, $4, $5)`,
		vendor.ID, vendor.Username, vendor.VendorName, vendor.Email, vendor.ContactNumber)
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}
