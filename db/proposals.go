package db

import (
	"context"
	"fmt"

	"procurement/models"

	"github.com/google/uuid"
)

// Proposal (Предложение)

const proposalColumns = `
    p.id, p.rfp_id, p.vendor_id, p.raw_email, p.email_subject, p.parsed_data,
    p.score, p.evaluation, p.status, p.created_at, p.updated_at`

const vendorRefColumns = `
    v.id AS "vendor.id", v.name AS "vendor.name", v.email AS "vendor.email",
    v.contact_person AS "vendor.contact_person"`

func (s *Storage) CreateProposal(ctx context.Context, p *models.Proposal) error {
	query := `
        INSERT INTO proposals
            (id, rfp_id, vendor_id, raw_email, email_subject, parsed_data, status)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7)
        RETURNING created_at, updated_at`
	err := s.db.QueryRowContext(ctx, query,
		p.ID, p.RFPID, p.VendorID, p.RawEmail, p.EmailSubject, p.ParsedData, p.Status).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	return mapErr(err)
}

func (s *Storage) GetProposal(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	p := &models.Proposal{}
	query := `SELECT * FROM proposals WHERE id=$1`
	if err := s.db.GetContext(ctx, p, query, id); err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

func (s *Storage) GetProposalDetail(ctx context.Context, id uuid.UUID) (*models.ProposalDetail, error) {
	query := `
        SELECT` + proposalColumns + `,` + vendorRefColumns + `,
            r.id AS "rfp.id", r.title AS "rfp.title", r.status AS "rfp.status"
        FROM proposals p
        JOIN vendors v ON v.id = p.vendor_id
        JOIN rfps r ON r.id = p.rfp_id
        WHERE p.id = $1`
	p := &models.ProposalDetail{}
	if err := s.db.GetContext(ctx, p, query, id); err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

// ListProposalsByRFP сортирует по оценке, неоценённые предложения в конце
func (s *Storage) ListProposalsByRFP(ctx context.Context, rfpID uuid.UUID) ([]models.ProposalWithVendor, error) {
	query := `
        SELECT` + proposalColumns + `,` + vendorRefColumns + `
        FROM proposals p
        JOIN vendors v ON v.id = p.vendor_id
        WHERE p.rfp_id = $1
        ORDER BY p.score DESC NULLS LAST, p.created_at ASC`
	proposals := []models.ProposalWithVendor{}
	if err := s.db.SelectContext(ctx, &proposals, query, rfpID); err != nil {
		return nil, mapErr(err)
	}
	return proposals, nil
}

// ListComparableProposals возвращает предложения в статусах PARSED и EVALUATED
func (s *Storage) ListComparableProposals(ctx context.Context, rfpID uuid.UUID) ([]models.ProposalWithVendor, error) {
	query := `
        SELECT` + proposalColumns + `,` + vendorRefColumns + `
        FROM proposals p
        JOIN vendors v ON v.id = p.vendor_id
        WHERE p.rfp_id = $1 AND p.status IN ($2, $3)
        ORDER BY p.created_at ASC`
	proposals := []models.ProposalWithVendor{}
	err := s.db.SelectContext(ctx, &proposals, query,
		rfpID, models.ProposalStatusParsed, models.ProposalStatusEvaluated)
	if err != nil {
		return nil, mapErr(err)
	}
	return proposals, nil
}

func (s *Storage) ListProposalsByVendor(ctx context.Context, vendorID uuid.UUID) ([]models.VendorProposal, error) {
	query := `
        SELECT` + proposalColumns + `,
            r.id AS "rfp.id", r.title AS "rfp.title", r.status AS "rfp.status"
        FROM proposals p
        JOIN rfps r ON r.id = p.rfp_id
        WHERE p.vendor_id = $1
        ORDER BY p.created_at DESC`
	proposals := []models.VendorProposal{}
	if err := s.db.SelectContext(ctx, &proposals, query, vendorID); err != nil {
		return nil, mapErr(err)
	}
	return proposals, nil
}

// UpdateProposalParse записывает новые данные разбора и сбрасывает оценку
func (s *Storage) UpdateProposalParse(ctx context.Context, id uuid.UUID, data *models.ProposalData) error {
	query := `
        UPDATE proposals
        SET parsed_data=$1, status=$2, score=NULL, evaluation=NULL, updated_at=NOW()
        WHERE id=$3`
	return expectRows(s.db.ExecContext(ctx, query, data, models.ProposalStatusParsed, id))
}

func (s *Storage) UpdateProposalStatus(ctx context.Context, id uuid.UUID, status models.ProposalStatus) error {
	query := `UPDATE proposals SET status=$1, updated_at=NOW() WHERE id=$2`
	return expectRows(s.db.ExecContext(ctx, query, status, id))
}

func (s *Storage) DeleteProposal(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM proposals WHERE id=$1`
	return expectRows(s.db.ExecContext(ctx, query, id))
}

// ApplyEvaluations в одной транзакции записывает оценки и статус RFP
func (s *Storage) ApplyEvaluations(ctx context.Context, rfpID uuid.UUID, evals []models.ProposalEvaluation, status models.RFPStatus) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, e := range evals {
		query := `
            UPDATE proposals
            SET score=$1, evaluation=$2, status=$3, updated_at=NOW()
            WHERE id=$4 AND rfp_id=$5`
		res, execErr := tx.ExecContext(ctx, query,
			e.Evaluation.Score, e.Evaluation, models.ProposalStatusEvaluated, e.ProposalID, rfpID)
		if err = expectRows(res, execErr); err != nil {
			return fmt.Errorf("update proposal %s: %w", e.ProposalID, err)
		}
	}

	res, execErr := tx.ExecContext(ctx, `UPDATE rfps SET status=$1, updated_at=NOW() WHERE id=$2`, status, rfpID)
	if err = expectRows(res, execErr); err != nil {
		return fmt.Errorf("update rfp status: %w", err)
	}
	return tx.Commit()
}
