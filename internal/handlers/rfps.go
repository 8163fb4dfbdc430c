package handlers

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"procurement/internal/ai"
	"procurement/models"

	"github.com/google/uuid"
)

type createRFPRequest struct {
	Input string `json:"input"`
}

type updateRFPRequest struct {
	models.RFPPatch
	Status *string `json:"status"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type sendRFPRequest struct {
	VendorIDs []string `json:"vendorIds"`
}

// validateCreateRFPRequest проверяет длину описания потребности
func validateCreateRFPRequest(req *createRFPRequest) error {
	if utf8.RuneCountInString(strings.TrimSpace(req.Input)) < ai.MinInputLength {
		return errors.New("input must be at least 10 characters")
	}
	return nil
}

// CreateRFPHandler обрабатывает POST /api/rfps
func (h *Handler) CreateRFPHandler(w http.ResponseWriter, r *http.Request) {
	var req createRFPRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if err := validateCreateRFPRequest(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Validation error", Details: map[string]string{"input": err.Error()}})
		return
	}

	rfp, err := h.Svc.CreateRFP(r.Context(), req.Input)
	if err != nil {
		h.writeError(w, r, err, "Failed to create RFP")
		return
	}
	writeJSON(w, http.StatusCreated, rfp)
}

// GetRFPsHandler возвращает все RFP со счётчиками, новые первыми
func (h *Handler) GetRFPsHandler(w http.ResponseWriter, r *http.Request) {
	rfps, err := h.Svc.ListRFPs(r.Context())
	if err != nil {
		h.writeError(w, r, err, "Failed to fetch RFPs")
		return
	}
	writeJSON(w, http.StatusOK, rfps)
}

func (h *Handler) GetRFPHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "rfpId")
	if !ok {
		return
	}
	rfp, err := h.Svc.GetRFP(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err, "Failed to fetch RFP")
		return
	}
	writeJSON(w, http.StatusOK, rfp)
}

// UpdateRFPHandler обрабатывает PUT /api/rfps/{rfpId}. Поле status, если
// передано, применяется как ручная установка статуса вместе с полями.
func (h *Handler) UpdateRFPHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "rfpId")
	if !ok {
		return
	}
	var req updateRFPRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	rfp, err := h.Svc.UpdateRFP(r.Context(), id, req.RFPPatch, req.Status)
	if err != nil {
		h.writeError(w, r, err, "Failed to update RFP")
		return
	}
	writeJSON(w, http.StatusOK, rfp)
}

// UpdateRFPStatusHandler - административная смена статуса RFP
func (h *Handler) UpdateRFPStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "rfpId")
	if !ok {
		return
	}
	var req statusRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	rfp, err := h.Svc.OverrideRFPStatus(r.Context(), id, req.Status)
	if err != nil {
		h.writeError(w, r, err, "Failed to update RFP")
		return
	}
	writeJSON(w, http.StatusOK, rfp)
}

func (h *Handler) DeleteRFPHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "rfpId")
	if !ok {
		return
	}
	if err := h.Svc.DeleteRFP(r.Context(), id); err != nil {
		h.writeError(w, r, err, "Failed to delete RFP")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// validateSendRFPRequest: хотя бы один поставщик, все id - uuid
func validateSendRFPRequest(req *sendRFPRequest) ([]uuid.UUID, map[string]string) {
	if len(req.VendorIDs) == 0 {
		return nil, map[string]string{"vendorIds": "must contain at least one vendor"}
	}
	ids := make([]uuid.UUID, 0, len(req.VendorIDs))
	for _, s := range req.VendorIDs {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, map[string]string{"vendorIds": "invalid uuid: " + s}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// SendRFPHandler рассылает RFP; частичные ошибки отправки возвращаются в отчёте с кодом 200
func (h *Handler) SendRFPHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "rfpId")
	if !ok {
		return
	}
	var req sendRFPRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	vendorIDs, fields := validateSendRFPRequest(&req)
	if fields != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Validation error", Details: fields})
		return
	}

	report, err := h.Svc.SendRFP(r.Context(), id, vendorIDs)
	if err != nil {
		h.writeError(w, r, err, "Failed to send RFP")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) CompareProposalsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "rfpId")
	if !ok {
		return
	}
	result, err := h.Svc.CompareProposals(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err, "Failed to compare proposals")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
