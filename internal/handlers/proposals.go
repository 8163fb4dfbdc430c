package handlers

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"procurement/internal/ai"
	"procurement/internal/lifecycle"

	"github.com/google/uuid"
)

type inboundProposalRequest struct {
	RFPID    string  `json:"rfpId"`
	VendorID string  `json:"vendorId"`
	Email    string  `json:"email"`
	Subject  *string `json:"subject"`
}

// validateInboundProposalRequest проверяет id и минимальную длину письма
func validateInboundProposalRequest(req *inboundProposalRequest) (lifecycle.InboundProposal, map[string]string) {
	fields := map[string]string{}
	rfpID, err := uuid.Parse(req.RFPID)
	if err != nil {
		fields["rfpId"] = "must be a valid uuid"
	}
	vendorID, err := uuid.Parse(req.VendorID)
	if err != nil {
		fields["vendorId"] = "must be a valid uuid"
	}
	if err := validateEmailText(req.Email); err != nil {
		fields["email"] = err.Error()
	}
	if len(fields) > 0 {
		return lifecycle.InboundProposal{}, fields
	}
	return lifecycle.InboundProposal{
		RFPID:        rfpID,
		VendorID:     vendorID,
		EmailContent: req.Email,
		EmailSubject: req.Subject,
	}, nil
}

func validateEmailText(s string) error {
	if utf8.RuneCountInString(strings.TrimSpace(s)) < ai.MinInputLength {
		return errors.New("must be at least 10 characters")
	}
	return nil
}

// InboundProposalHandler обрабатывает POST /api/proposals/inbound
func (h *Handler) InboundProposalHandler(w http.ResponseWriter, r *http.Request) {
	var req inboundProposalRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	in, fields := validateInboundProposalRequest(&req)
	if fields != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Validation error", Details: fields})
		return
	}

	proposal, err := h.Svc.ReceiveProposal(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err, "Failed to receive proposal")
		return
	}
	writeJSON(w, http.StatusCreated, proposal)
}

// GetProposalsForRFPHandler - предложения по RFP, лучшие оценки первыми
func (h *Handler) GetProposalsForRFPHandler(w http.ResponseWriter, r *http.Request) {
	rfpID, ok := urlID(w, r, "rfpId")
	if !ok {
		return
	}
	proposals, err := h.Svc.ListProposals(r.Context(), rfpID)
	if err != nil {
		h.writeError(w, r, err, "Failed to fetch proposals")
		return
	}
	writeJSON(w, http.StatusOK, proposals)
}

func (h *Handler) GetProposalHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "proposalId")
	if !ok {
		return
	}
	proposal, err := h.Svc.GetProposal(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err, "Failed to fetch proposal")
		return
	}
	writeJSON(w, http.StatusOK, proposal)
}

func (h *Handler) ReparseProposalHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "proposalId")
	if !ok {
		return
	}
	proposal, err := h.Svc.ReparseProposal(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err, "Failed to re-parse proposal")
		return
	}
	writeJSON(w, http.StatusOK, proposal)
}

// UpdateProposalStatusHandler - ручная смена статуса, порядок переходов не проверяется
func (h *Handler) UpdateProposalStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "proposalId")
	if !ok {
		return
	}
	var req statusRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	proposal, err := h.Svc.OverrideProposalStatus(r.Context(), id, req.Status)
	if err != nil {
		h.writeError(w, r, err, "Failed to update proposal")
		return
	}
	writeJSON(w, http.StatusOK, proposal)
}

func (h *Handler) DeleteProposalHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "proposalId")
	if !ok {
		return
	}
	if err := h.Svc.DeleteProposal(r.Context(), id); err != nil {
		h.writeError(w, r, err, "Failed to delete proposal")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
