// Package lifecycle управляет жизненным циклом RFP и предложений: все переходы
// статусов и все записи в хранилище проходят через Manager.
package lifecycle

import (
	"context"
	"errors"
	"time"

	"procurement/db"
	"procurement/internal/ai"
	"procurement/internal/notify"
	"procurement/models"
	"procurement/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Store interface {
	CreateRFP(ctx context.Context, r *models.RFP) error
	GetRFP(ctx context.Context, id uuid.UUID) (*models.RFP, error)
	ListRFPs(ctx context.Context) ([]models.RFPSummary, error)
	UpdateRFP(ctx context.Context, r *models.RFP) error
	UpdateRFPStatus(ctx context.Context, id uuid.UUID, status models.RFPStatus) error
	DeleteRFP(ctx context.Context, id uuid.UUID) error

	UpsertRFPVendor(ctx context.Context, rfpID, vendorID uuid.UUID, sentAt time.Time) error
	GetRFPVendors(ctx context.Context, rfpID uuid.UUID) ([]models.RFPVendor, error)
	RecordDispatch(ctx context.Context, d *models.Dispatch) error
	GetRFPDispatches(ctx context.Context, rfpID uuid.UUID) ([]models.Dispatch, error)

	CreateVendor(ctx context.Context, v *models.Vendor) error
	GetVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	GetVendorsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Vendor, error)
	ListVendors(ctx context.Context) ([]models.VendorSummary, error)
	UpdateVendor(ctx context.Context, v *models.Vendor) error
	DeleteVendor(ctx context.Context, id uuid.UUID) error

	CreateProposal(ctx context.Context, p *models.Proposal) error
	GetProposal(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	GetProposalDetail(ctx context.Context, id uuid.UUID) (*models.ProposalDetail, error)
	ListProposalsByRFP(ctx context.Context, rfpID uuid.UUID) ([]models.ProposalWithVendor, error)
	ListComparableProposals(ctx context.Context, rfpID uuid.UUID) ([]models.ProposalWithVendor, error)
	ListProposalsByVendor(ctx context.Context, vendorID uuid.UUID) ([]models.VendorProposal, error)
	UpdateProposalParse(ctx context.Context, id uuid.UUID, data *models.ProposalData) error
	UpdateProposalStatus(ctx context.Context, id uuid.UUID, status models.ProposalStatus) error
	DeleteProposal(ctx context.Context, id uuid.UUID) error
	ApplyEvaluations(ctx context.Context, rfpID uuid.UUID, evals []models.ProposalEvaluation, status models.RFPStatus) error
}

// AI - три операции на границе с генеративной моделью
type AI interface {
	StructureRequest(ctx context.Context, input string) (*models.RFPStructure, error)
	ExtractProposal(ctx context.Context, rfp *models.RFP, email string) (*models.ProposalData, error)
	ScoreProposals(ctx context.Context, rfp *models.RFP, proposals []models.ProposalWithVendor) (*models.ComparisonResult, error)
}

type Notifier interface {
	SendRFP(ctx context.Context, vendor models.Vendor, rfp *models.RFP) (messageID string, err error)
	Verify(ctx context.Context) error
}

var (
	_ Store    = (*db.Storage)(nil)
	_ AI       = (*ai.Adapter)(nil)
	_ Notifier = (*notify.Mailer)(nil)
)

type Options struct {
	// DispatchConcurrency ограничивает число одновременных отправок писем
	DispatchConcurrency int
}

type Manager struct {
	store       Store
	ai          AI
	notifier    Notifier
	logger      *zap.Logger
	metrics     *metrics.Collector
	locks       *keyedMutex
	concurrency int
	now         func() time.Time
}

func NewManager(store Store, model AI, notifier Notifier, logger *zap.Logger, mc *metrics.Collector, opts Options) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.DispatchConcurrency <= 0 {
		opts.DispatchConcurrency = 8
	}
	return &Manager{
		store:       store,
		ai:          model,
		notifier:    notifier,
		logger:      logger,
		metrics:     mc,
		locks:       newKeyedMutex(),
		concurrency: opts.DispatchConcurrency,
		now:         time.Now,
	}
}

// VerifyEmail проверяет настройки и доступность SMTP-сервера
func (m *Manager) VerifyEmail(ctx context.Context) error {
	return m.notifier.Verify(ctx)
}

// storeErr переводит ошибки хранилища в ошибки жизненного цикла
func storeErr(err error, entity string, id uuid.UUID) error {
	if errors.Is(err, db.ErrNotFound) {
		return &NotFoundError{Entity: entity, ID: id.String()}
	}
	return err
}

// advance двигает статус RFP только вперёд; из финальных статусов выхода нет
func advance(current, target models.RFPStatus) (models.RFPStatus, error) {
	if current.Terminal() {
		return current, &InvalidTransitionError{From: string(current), To: string(target)}
	}
	if current.Stage() >= target.Stage() {
		return current, nil
	}
	return target, nil
}
