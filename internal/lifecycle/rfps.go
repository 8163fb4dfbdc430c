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
	"golang.org/x/sync/errgroup"
)

// CreateRFP структурирует запрос через модель и сохраняет его в статусе DRAFT.
// При ошибке модели ничего не сохраняется. Исходный текст хранится без изменений.
func (m *Manager) CreateRFP(ctx context.Context, input string) (*models.RFP, error) {
	if utf8.RuneCountInString(strings.TrimSpace(input)) < ai.MinInputLength {
		return nil, invalid("input", fmt.Sprintf("must be at least %d characters", ai.MinInputLength))
	}

	structure, err := m.ai.StructureRequest(ctx, input)
	if err != nil {
		return nil, err
	}

	rfp := &models.RFP{
		ID:           uuid.New(),
		Title:        structure.Title,
		RawInput:     input,
		Status:       models.RFPStatusDraft,
		Items:        structure.Items,
		Budget:       structure.Budget,
		Timeline:     structure.Timeline,
		Terms:        structure.Terms,
		Requirements: structure.Requirements,
	}
	if err := m.store.CreateRFP(ctx, rfp); err != nil {
		return nil, err
	}
	m.metrics.IncrementCounter("rfps_created", nil)
	m.logger.Info("RFP created",
		zap.String("rfp_id", rfp.ID.String()),
		zap.String("title", rfp.Title),
		zap.Int("items", len(rfp.Items)))
	return rfp, nil
}

func (m *Manager) ListRFPs(ctx context.Context) ([]models.RFPSummary, error) {
	return m.store.ListRFPs(ctx)
}

// GetRFP возвращает RFP с поставщиками, предложениями и журналом отправок
func (m *Manager) GetRFP(ctx context.Context, id uuid.UUID) (*models.RFPDetail, error) {
	rfp, err := m.store.GetRFP(ctx, id)
	if err != nil {
		return nil, storeErr(err, "RFP", id)
	}
	vendors, err := m.store.GetRFPVendors(ctx, id)
	if err != nil {
		return nil, err
	}
	proposals, err := m.store.ListProposalsByRFP(ctx, id)
	if err != nil {
		return nil, err
	}
	dispatches, err := m.store.GetRFPDispatches(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.RFPDetail{
		RFP:        *rfp,
		Vendors:    vendors,
		Proposals:  proposals,
		Dispatches: dispatches,
	}, nil
}

// UpdateRFP применяет частичное обновление. status, если передан, - ручная
// установка статуса; поля и статус проверяются до записи и пишутся одним запросом.
func (m *Manager) UpdateRFP(ctx context.Context, id uuid.UUID, patch models.RFPPatch, status *string) (*models.RFP, error) {
	if status != nil && !models.RFPStatus(*status).Valid() {
		return nil, &InvalidStatusError{Status: *status}
	}
	if err := validateRFPPatch(patch); err != nil {
		return nil, err
	}

	unlock := m.locks.Lock(id)
	defer unlock()

	rfp, err := m.store.GetRFP(ctx, id)
	if err != nil {
		return nil, storeErr(err, "RFP", id)
	}
	patch.Apply(rfp)
	if status != nil && models.RFPStatus(*status) != rfp.Status {
		m.logger.Info("RFP status overridden",
			zap.String("rfp_id", id.String()),
			zap.String("from", string(rfp.Status)),
			zap.String("to", *status))
		rfp.Status = models.RFPStatus(*status)
	}
	if err := m.store.UpdateRFP(ctx, rfp); err != nil {
		return nil, storeErr(err, "RFP", id)
	}
	return rfp, nil
}

func validateRFPPatch(p models.RFPPatch) error {
	fields := map[string]string{}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		fields["title"] = "must not be empty"
	}
	if p.Items != nil {
		if len(*p.Items) == 0 {
			fields["items"] = "must contain at least one item"
		}
		for i, item := range *p.Items {
			if strings.TrimSpace(item.Name) == "" {
				fields[fmt.Sprintf("items[%d].name", i)] = "required"
			}
			if item.Quantity < 0 {
				fields[fmt.Sprintf("items[%d].quantity", i)] = "must be non-negative"
			}
		}
	}
	if p.Budget != nil && p.Budget.Amount < 0 {
		fields["budget.amount"] = "must be non-negative"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// OverrideRFPStatus - ручная установка статуса администратором, без проверки порядка стадий
func (m *Manager) OverrideRFPStatus(ctx context.Context, id uuid.UUID, status string) (*models.RFP, error) {
	next := models.RFPStatus(status)
	if !next.Valid() {
		return nil, &InvalidStatusError{Status: status}
	}

	unlock := m.locks.Lock(id)
	defer unlock()

	rfp, err := m.store.GetRFP(ctx, id)
	if err != nil {
		return nil, storeErr(err, "RFP", id)
	}
	if err := m.store.UpdateRFPStatus(ctx, id, next); err != nil {
		return nil, storeErr(err, "RFP", id)
	}
	m.logger.Info("RFP status overridden",
		zap.String("rfp_id", id.String()),
		zap.String("from", string(rfp.Status)),
		zap.String("to", string(next)))
	rfp.Status = next
	return rfp, nil
}

func (m *Manager) DeleteRFP(ctx context.Context, id uuid.UUID) error {
	if err := m.store.DeleteRFP(ctx, id); err != nil {
		return storeErr(err, "RFP", id)
	}
	m.logger.Info("RFP deleted", zap.String("rfp_id", id.String()))
	return nil
}

// SendRFP рассылает RFP выбранным поставщикам. Ошибка отправки одному
// поставщику не прерывает рассылку остальным и попадает в отчёт.
func (m *Manager) SendRFP(ctx context.Context, id uuid.UUID, vendorIDs []uuid.UUID) (*models.DispatchReport, error) {
	if len(vendorIDs) == 0 {
		return nil, invalid("vendorIds", "must contain at least one vendor")
	}
	// разосланные письма и перевод в SENT не должны теряться при обрыве запроса
	ctx = context.WithoutCancel(ctx)

	unlock := m.locks.Lock(id)
	defer unlock()

	rfp, err := m.store.GetRFP(ctx, id)
	if err != nil {
		return nil, storeErr(err, "RFP", id)
	}
	next, err := advance(rfp.Status, models.RFPStatusSent)
	if err != nil {
		return nil, err
	}

	vendors, err := m.store.GetVendorsByIDs(ctx, vendorIDs)
	if err != nil {
		return nil, err
	}
	if len(vendors) == 0 {
		return nil, &NotFoundError{Entity: "vendors"}
	}

	results := make([]models.DispatchResult, len(vendors))
	var g errgroup.Group
	g.SetLimit(m.concurrency)
	for i, v := range vendors {
		g.Go(func() error {
			results[i] = m.dispatch(ctx, rfp, v)
			return nil
		})
	}
	g.Wait()

	report := &models.DispatchReport{Results: results}
	for _, r := range results {
		if r.Success {
			report.SuccessCount++
		} else {
			report.FailureCount++
		}
	}
	report.Message = fmt.Sprintf("RFP sent to %d vendors", report.SuccessCount)

	if next != rfp.Status {
		if err := m.store.UpdateRFPStatus(ctx, id, next); err != nil {
			return nil, storeErr(err, "RFP", id)
		}
	}

	m.logger.Info("RFP dispatched",
		zap.String("rfp_id", id.String()),
		zap.String("status", string(next)),
		zap.Int("success", report.SuccessCount),
		zap.Int("failed", report.FailureCount))
	return report, nil
}

// dispatch отправляет письмо одному поставщику и записывает попытку в журнал
func (m *Manager) dispatch(ctx context.Context, rfp *models.RFP, v models.Vendor) models.DispatchResult {
	res := models.DispatchResult{VendorID: v.ID, VendorName: v.Name, Email: v.Email}
	log := m.logger.With(zap.String("rfp_id", rfp.ID.String()), zap.String("vendor_id", v.ID.String()))

	messageID, sendErr := m.notifier.SendRFP(ctx, v, rfp)
	now := m.now()

	record := &models.Dispatch{
		ID:          uuid.New(),
		RFPID:       rfp.ID,
		VendorID:    v.ID,
		Success:     sendErr == nil,
		AttemptedAt: now,
	}
	if sendErr != nil {
		msg := sendErr.Error()
		record.Error = &msg
		res.Error = msg
		m.metrics.IncrementCounter("rfp_dispatch", map[string]string{"outcome": "error"})
	} else {
		record.MessageID = &messageID
		res.Success = true
		res.MessageID = messageID
		m.metrics.IncrementCounter("rfp_dispatch", map[string]string{"outcome": "ok"})

		if err := m.store.UpsertRFPVendor(ctx, rfp.ID, v.ID, now); err != nil {
			log.Error("Failed to record RFP vendor association", zap.Error(err))
			res.Error = "sent, but association was not recorded: " + err.Error()
		}
	}

	if err := m.store.RecordDispatch(ctx, record); err != nil {
		log.Error("Failed to record dispatch attempt", zap.Error(err))
	}
	return res
}
