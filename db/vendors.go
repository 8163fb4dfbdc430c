package db

import (
	"context"

	"procurement/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Vendor (Поставщик)

func (s *Storage) CreateVendor(ctx context.Context, v *models.Vendor) error {
	query := `
        INSERT INTO vendors (id, name, email, contact_person, phone, category, notes)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING created_at, updated_at`
	err := s.db.QueryRowContext(ctx, query,
		v.ID, v.Name, v.Email, v.ContactPerson, v.Phone, v.Category, v.Notes).
		Scan(&v.CreatedAt, &v.UpdatedAt)
	return mapErr(err)
}

func (s *Storage) GetVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	v := &models.Vendor{}
	query := `SELECT * FROM vendors WHERE id=$1`
	if err := s.db.GetContext(ctx, v, query, id); err != nil {
		return nil, mapErr(err)
	}
	return v, nil
}

// GetVendorsByIDs молча пропускает несуществующие id
func (s *Storage) GetVendorsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Vendor, error) {
	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}
	query := `SELECT * FROM vendors WHERE id = ANY($1::uuid[]) ORDER BY name ASC`
	vendors := []models.Vendor{}
	if err := s.db.SelectContext(ctx, &vendors, query, pq.StringArray(strIDs)); err != nil {
		return nil, mapErr(err)
	}
	return vendors, nil
}

func (s *Storage) ListVendors(ctx context.Context) ([]models.VendorSummary, error) {
	query := `
        SELECT v.*,
            (SELECT COUNT(1) FROM proposals p WHERE p.vendor_id = v.id) AS "count.proposals"
        FROM vendors v
        ORDER BY v.created_at DESC`
	vendors := []models.VendorSummary{}
	if err := s.db.SelectContext(ctx, &vendors, query); err != nil {
		return nil, mapErr(err)
	}
	return vendors, nil
}

func (s *Storage) UpdateVendor(ctx context.Context, v *models.Vendor) error {
	query := `
        UPDATE vendors
        SET name=$1, email=$2, contact_person=$3, phone=$4, category=$5, notes=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`
	err := s.db.QueryRowContext(ctx, query,
		v.Name, v.Email, v.ContactPerson, v.Phone, v.Category, v.Notes, v.ID).
		Scan(&v.UpdatedAt)
	return mapErr(err)
}

func (s *Storage) DeleteVendor(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM vendors WHERE id=$1`
	return expectRows(s.db.ExecContext(ctx, query, id))
}
