package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"procurement/internal/ai"
	"procurement/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InboundProposal - ответ поставщика, полученный вручную или из почты
type InboundProposal struct {
	RFPID        uuid.UUID
	VendorID     uuid.UUID
	EmailContent string
	EmailSubject *string
}

// ReceiveProposal извлекает структуру предложения и сохраняет его в статусе PARSED.
// Если модель не ответила корректно, предложение не создаётся.
func (m *Manager) ReceiveProposal(ctx context.Context, in InboundProposal) (*models.ProposalDetail, error) {
	content := in.EmailContent
	if utf8.RuneCountInString(strings.TrimSpace(content)) < ai.MinInputLength {
		return nil, invalid("emailContent", fmt.Sprintf("must be at least %d characters", ai.MinInputLength))
	}

	rfp, err := m.store.GetRFP(ctx, in.RFPID)
	if err != nil {
		return nil, storeErr(err, "RFP", in.RFPID)
	}
	if _, err := m.store.GetVendor(ctx, in.VendorID); err != nil {
		return nil, storeErr(err, "Vendor", in.VendorID)
	}

	data, err := m.ai.ExtractProposal(ctx, rfp, content)
	if err != nil {
		return nil, err
	}

	p := &models.Proposal{
		ID:           uuid.New(),
		RFPID:        rfp.ID,
		VendorID:     in.VendorID,
		RawEmail:     content,
		EmailSubject: in.EmailSubject,
		ParsedData:   data,
		Status:       models.ProposalStatusParsed,
	}
	if err := m.store.CreateProposal(ctx, p); err != nil {
		return nil, err
	}
	m.metrics.IncrementCounter("proposals_received", nil)
	m.logger.Info("Proposal received",
		zap.String("proposal_id", p.ID.String()),
		zap.String("rfp_id", rfp.ID.String()),
		zap.String("vendor_id", in.VendorID.String()),
		zap.Float64("total_price", data.TotalPrice),
		zap.Float64("confidence", data.Confidence))

	return m.GetProposal(ctx, p.ID)
}

// ListProposals сортирует по оценке по убыванию, неоценённые в конце
func (m *Manager) ListProposals(ctx context.Context, rfpID uuid.UUID) ([]models.ProposalWithVendor, error) {
	if _, err := m.store.GetRFP(ctx, rfpID); err != nil {
		return nil, storeErr(err, "RFP", rfpID)
	}
	return m.store.ListProposalsByRFP(ctx, rfpID)
}

func (m *Manager) GetProposal(ctx context.Context, id uuid.UUID) (*models.ProposalDetail, error) {
	p, err := m.store.GetProposalDetail(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Proposal", id)
	}
	return p, nil
}

// ReparseProposal повторно разбирает исходное письмо. Оценка сбрасывается,
// статус возвращается в PARSED.
func (m *Manager) ReparseProposal(ctx context.Context, id uuid.UUID) (*models.ProposalDetail, error) {
	ctx = context.WithoutCancel(ctx)
	p, err := m.store.GetProposal(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Proposal", id)
	}

	unlock := m.locks.Lock(p.RFPID)
	defer unlock()

	rfp, err := m.store.GetRFP(ctx, p.RFPID)
	if err != nil {
		return nil, storeErr(err, "RFP", p.RFPID)
	}
	data, err := m.ai.ExtractProposal(ctx, rfp, p.RawEmail)
	if err != nil {
		return nil, err
	}
	if err := m.store.UpdateProposalParse(ctx, id, data); err != nil {
		return nil, storeErr(err, "Proposal", id)
	}
	m.logger.Info("Proposal reparsed", zap.String("proposal_id", id.String()))
	return m.GetProposal(ctx, id)
}

// CompareProposals оценивает предложения в статусах PARSED и EVALUATED.
// Оценки и перевод RFP в EVALUATING записываются в одной транзакции.
func (m *Manager) CompareProposals(ctx context.Context, rfpID uuid.UUID) (*models.ComparisonResult, error) {
	// ответ модели записывается, даже если клиент уже отключился
	ctx = context.WithoutCancel(ctx)
	unlock := m.locks.Lock(rfpID)
	defer unlock()

	rfp, err := m.store.GetRFP(ctx, rfpID)
	if err != nil {
		return nil, storeErr(err, "RFP", rfpID)
	}
	next, err := advance(rfp.Status, models.RFPStatusEvaluating)
	if err != nil {
		return nil, err
	}

	proposals, err := m.store.ListComparableProposals(ctx, rfpID)
	if err != nil {
		return nil, err
	}
	if len(proposals) == 0 {
		return nil, ErrNoProposals
	}

	result, err := m.ai.ScoreProposals(ctx, rfp, proposals)
	if err != nil {
		return nil, err
	}

	evals, unmatched := matchRankings(result.Rankings, proposals)
	if unmatched > 0 {
		m.logger.Warn("Some rankings did not match any proposal",
			zap.String("rfp_id", rfpID.String()),
			zap.Int("rankings", len(result.Rankings)),
			zap.Int("unmatched", unmatched))
	}
	if err := m.store.ApplyEvaluations(ctx, rfpID, evals, next); err != nil {
		return nil, err
	}

	m.metrics.IncrementCounter("comparisons", nil)
	m.logger.Info("Proposals compared",
		zap.String("rfp_id", rfpID.String()),
		zap.Int("proposals", len(proposals)),
		zap.Int("evaluated", len(evals)),
		zap.String("recommended_vendor", result.Recommendation.VendorID))
	return result, nil
}

// matchRankings сопоставляет оценки с предложениями по vendorId. Оценка
// применяется ко всем подходящим предложениям поставщика, оценки без
// совпадения пропускаются и возвращаются счётчиком.
func matchRankings(rankings []models.Ranking, proposals []models.ProposalWithVendor) (evals []models.ProposalEvaluation, unmatched int) {
	byVendor := make(map[uuid.UUID][]uuid.UUID, len(proposals))
	for _, p := range proposals {
		byVendor[p.VendorID] = append(byVendor[p.VendorID], p.ID)
	}

	seen := make(map[uuid.UUID]bool)
	for _, r := range rankings {
		vendorID, err := uuid.Parse(strings.TrimSpace(r.VendorID))
		if err != nil || len(byVendor[vendorID]) == 0 {
			unmatched++
			continue
		}
		for _, pid := range byVendor[vendorID] {
			if seen[pid] {
				continue
			}
			seen[pid] = true
			evals = append(evals, models.ProposalEvaluation{ProposalID: pid, Evaluation: r.Evaluation()})
		}
	}
	return evals, unmatched
}

// OverrideProposalStatus - ручная смена статуса (например SELECTED или REJECTED)
func (m *Manager) OverrideProposalStatus(ctx context.Context, id uuid.UUID, status string) (*models.ProposalDetail, error) {
	next := models.ProposalStatus(status)
	if !next.Valid() {
		return nil, &InvalidStatusError{Status: status}
	}
	if err := m.store.UpdateProposalStatus(ctx, id, next); err != nil {
		return nil, storeErr(err, "Proposal", id)
	}
	m.logger.Info("Proposal status changed",
		zap.String("proposal_id", id.String()),
		zap.String("status", status))
	return m.GetProposal(ctx, id)
}

func (m *Manager) DeleteProposal(ctx context.Context, id uuid.UUID) error {
	if err := m.store.DeleteProposal(ctx, id); err != nil {
		return storeErr(err, "Proposal", id)
	}
	return nil
}
