package lifecycle

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"procurement/db"
	"procurement/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const duplicateEmailMsg = "Vendor with this email already exists"

// CreateVendor требует name, email и contactPerson
func (m *Manager) CreateVendor(ctx context.Context, in models.VendorPatch) (*models.Vendor, error) {
	fields := map[string]string{}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		fields["name"] = "required"
	}
	if in.Email == nil || strings.TrimSpace(*in.Email) == "" {
		fields["email"] = "required"
	}
	if in.ContactPerson == nil || strings.TrimSpace(*in.ContactPerson) == "" {
		fields["contactPerson"] = "required"
	}
	validateVendorFields(in, fields)
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	v := &models.Vendor{ID: uuid.New()}
	in.Apply(v)
	normalizeVendor(v)
	if err := m.store.CreateVendor(ctx, v); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, &ConflictError{Msg: duplicateEmailMsg}
		}
		return nil, err
	}
	m.logger.Info("Vendor created", zap.String("vendor_id", v.ID.String()), zap.String("email", v.Email))
	return v, nil
}

func (m *Manager) ListVendors(ctx context.Context) ([]models.VendorSummary, error) {
	return m.store.ListVendors(ctx)
}

// GetVendor возвращает поставщика вместе с его предложениями
func (m *Manager) GetVendor(ctx context.Context, id uuid.UUID) (*models.VendorDetail, error) {
	v, err := m.store.GetVendor(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Vendor", id)
	}
	proposals, err := m.store.ListProposalsByVendor(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.VendorDetail{Vendor: *v, Proposals: proposals}, nil
}

func (m *Manager) UpdateVendor(ctx context.Context, id uuid.UUID, patch models.VendorPatch) (*models.Vendor, error) {
	fields := map[string]string{}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		fields["name"] = "must not be empty"
	}
	if patch.Email != nil && strings.TrimSpace(*patch.Email) == "" {
		fields["email"] = "must not be empty"
	}
	if patch.ContactPerson != nil && strings.TrimSpace(*patch.ContactPerson) == "" {
		fields["contactPerson"] = "must not be empty"
	}
	validateVendorFields(patch, fields)
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	v, err := m.store.GetVendor(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Vendor", id)
	}
	patch.Apply(v)
	normalizeVendor(v)
	if err := m.store.UpdateVendor(ctx, v); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, &ConflictError{Msg: duplicateEmailMsg}
		}
		return nil, storeErr(err, "Vendor", id)
	}
	return v, nil
}

// DeleteVendor каскадно удаляет связи с RFP и предложения поставщика
func (m *Manager) DeleteVendor(ctx context.Context, id uuid.UUID) error {
	if err := m.store.DeleteVendor(ctx, id); err != nil {
		return storeErr(err, "Vendor", id)
	}
	m.logger.Info("Vendor deleted", zap.String("vendor_id", id.String()))
	return nil
}

func validateVendorFields(in models.VendorPatch, fields map[string]string) {
	if in.Email != nil && strings.TrimSpace(*in.Email) != "" {
		if _, err := mail.ParseAddress(strings.TrimSpace(*in.Email)); err != nil {
			fields["email"] = "must be a valid email address"
		}
	}
}

func normalizeVendor(v *models.Vendor) {
	v.Name = strings.TrimSpace(v.Name)
	v.Email = strings.ToLower(strings.TrimSpace(v.Email))
	v.ContactPerson = strings.TrimSpace(v.ContactPerson)
}
