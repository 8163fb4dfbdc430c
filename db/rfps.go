package db

import (
	"context"
	"time"

	"procurement/models"

	"github.com/google/uuid"
)

// RFP

func (s *Storage) CreateRFP(ctx context.Context, r *models.RFP) error {
	query := `
        INSERT INTO rfps
            (id, title, raw_input, status, items, budget, timeline, terms, requirements)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING created_at, updated_at`
	err := s.db.QueryRowContext(ctx, query,
		r.ID, r.Title, r.RawInput, r.Status, r.Items, r.Budget, r.Timeline, r.Terms, r.Requirements).
		Scan(&r.CreatedAt, &r.UpdatedAt)
	return mapErr(err)
}

func (s *Storage) GetRFP(ctx context.Context, id uuid.UUID) (*models.RFP, error) {
	r := &models.RFP{}
	query := `SELECT * FROM rfps WHERE id=$1`
	if err := s.db.GetContext(ctx, r, query, id); err != nil {
		return nil, mapErr(err)
	}
	return r, nil
}

func (s *Storage) ListRFPs(ctx context.Context) ([]models.RFPSummary, error) {
	query := `
        SELECT r.*,
            (SELECT COUNT(1) FROM proposals p WHERE p.rfp_id = r.id) AS "count.proposals",
            (SELECT COUNT(1) FROM rfp_vendors rv WHERE rv.rfp_id = r.id) AS "count.vendors"
        FROM rfps r
        ORDER BY r.created_at DESC`
	rfps := []models.RFPSummary{}
	if err := s.db.SelectContext(ctx, &rfps, query); err != nil {
		return nil, mapErr(err)
	}
	return rfps, nil
}

// UpdateRFP перезаписывает поля и статус RFP одним запросом
func (s *Storage) UpdateRFP(ctx context.Context, r *models.RFP) error {
	query := `
        UPDATE rfps
        SET title=$1, status=$2, items=$3, budget=$4, timeline=$5, terms=$6, requirements=$7, updated_at=NOW()
        WHERE id=$8
        RETURNING updated_at`
	err := s.db.QueryRowContext(ctx, query,
		r.Title, r.Status, r.Items, r.Budget, r.Timeline, r.Terms, r.Requirements, r.ID).
		Scan(&r.UpdatedAt)
	return mapErr(err)
}

func (s *Storage) UpdateRFPStatus(ctx context.Context, id uuid.UUID, status models.RFPStatus) error {
	query := `UPDATE rfps SET status=$1, updated_at=NOW() WHERE id=$2`
	return expectRows(s.db.ExecContext(ctx, query, status, id))
}

func (s *Storage) DeleteRFP(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM rfps WHERE id=$1`
	return expectRows(s.db.ExecContext(ctx, query, id))
}

// RFPVendor (кому отправлен RFP)

// UpsertRFPVendor при повторной отправке обновляет sent_at, не создавая дубль
func (s *Storage) UpsertRFPVendor(ctx context.Context, rfpID, vendorID uuid.UUID, sentAt time.Time) error {
	query := `
        INSERT INTO rfp_vendors (id, rfp_id, vendor_id, sent_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (rfp_id, vendor_id) DO UPDATE SET sent_at = EXCLUDED.sent_at`
	_, err := s.db.ExecContext(ctx, query, uuid.New(), rfpID, vendorID, sentAt)
	return mapErr(err)
}

func (s *Storage) GetRFPVendors(ctx context.Context, rfpID uuid.UUID) ([]models.RFPVendor, error) {
	query := `
        SELECT rv.id, rv.rfp_id, rv.vendor_id, rv.sent_at,
            v.id AS "vendor.id", v.name AS "vendor.name", v.email AS "vendor.email",
            v.contact_person AS "vendor.contact_person", v.phone AS "vendor.phone",
            v.category AS "vendor.category", v.notes AS "vendor.notes",
            v.created_at AS "vendor.created_at", v.updated_at AS "vendor.updated_at"
        FROM rfp_vendors rv
        JOIN vendors v ON v.id = rv.vendor_id
        WHERE rv.rfp_id = $1
        ORDER BY rv.sent_at DESC`
	vendors := []models.RFPVendor{}
	if err := s.db.SelectContext(ctx, &vendors, query, rfpID); err != nil {
		return nil, mapErr(err)
	}
	return vendors, nil
}

// Dispatch (журнал отправок)

func (s *Storage) RecordDispatch(ctx context.Context, d *models.Dispatch) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	query := `
        INSERT INTO rfp_dispatches (id, rfp_id, vendor_id, success, message_id, error, attempted_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.db.ExecContext(ctx, query,
		d.ID, d.RFPID, d.VendorID, d.Success, d.MessageID, d.Error, d.AttemptedAt)
	return mapErr(err)
}

func (s *Storage) GetRFPDispatches(ctx context.Context, rfpID uuid.UUID) ([]models.Dispatch, error) {
	query := `SELECT * FROM rfp_dispatches WHERE rfp_id=$1 ORDER BY attempted_at DESC`
	dispatches := []models.Dispatch{}
	if err := s.db.SelectContext(ctx, &dispatches, query, rfpID); err != nil {
		return nil, mapErr(err)
	}
	return dispatches, nil
}
