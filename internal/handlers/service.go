package handlers

import (
	"context"

	"procurement/internal/lifecycle"
	"procurement/models"

	"github.com/google/uuid"
)

// Service - операции жизненного цикла, которые вызывают обработчики.
// Реализуется lifecycle.Manager.
type Service interface {
	CreateRFP(ctx context.Context, input string) (*models.RFP, error)
	ListRFPs(ctx context.Context) ([]models.RFPSummary, error)
	GetRFP(ctx context.Context, id uuid.UUID) (*models.RFPDetail, error)
	UpdateRFP(ctx context.Context, id uuid.UUID, patch models.RFPPatch, status *string) (*models.RFP, error)
	OverrideRFPStatus(ctx context.Context, id uuid.UUID, status string) (*models.RFP, error)
	DeleteRFP(ctx context.Context, id uuid.UUID) error
	SendRFP(ctx context.Context, id uuid.UUID, vendorIDs []uuid.UUID) (*models.DispatchReport, error)
	CompareProposals(ctx context.Context, rfpID uuid.UUID) (*models.ComparisonResult, error)

	CreateVendor(ctx context.Context, in models.VendorPatch) (*models.Vendor, error)
	ListVendors(ctx context.Context) ([]models.VendorSummary, error)
	GetVendor(ctx context.Context, id uuid.UUID) (*models.VendorDetail, error)
	UpdateVendor(ctx context.Context, id uuid.UUID, patch models.VendorPatch) (*models.Vendor, error)
	DeleteVendor(ctx context.Context, id uuid.UUID) error

	ReceiveProposal(ctx context.Context, in lifecycle.InboundProposal) (*models.ProposalDetail, error)
	ListProposals(ctx context.Context, rfpID uuid.UUID) ([]models.ProposalWithVendor, error)
	GetProposal(ctx context.Context, id uuid.UUID) (*models.ProposalDetail, error)
	ReparseProposal(ctx context.Context, id uuid.UUID) (*models.ProposalDetail, error)
	OverrideProposalStatus(ctx context.Context, id uuid.UUID, status string) (*models.ProposalDetail, error)
	DeleteProposal(ctx context.Context, id uuid.UUID) error

	VerifyEmail(ctx context.Context) error
}

var _ Service = (*lifecycle.Manager)(nil)
