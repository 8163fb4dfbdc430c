package handlers

import (
	"net/http"

	"procurement/models"
)

// CreateVendorHandler обрабатывает POST /api/vendors
func (h *Handler) CreateVendorHandler(w http.ResponseWriter, r *http.Request) {
	var req models.VendorPatch
	if !h.decodeJSON(w, r, &req) {
		return
	}
	vendor, err := h.Svc.CreateVendor(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err, "Failed to create vendor")
		return
	}
	writeJSON(w, http.StatusCreated, vendor)
}

func (h *Handler) GetVendorsHandler(w http.ResponseWriter, r *http.Request) {
	vendors, err := h.Svc.ListVendors(r.Context())
	if err != nil {
		h.writeError(w, r, err, "Failed to fetch vendors")
		return
	}
	writeJSON(w, http.StatusOK, vendors)
}

func (h *Handler) GetVendorHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "vendorId")
	if !ok {
		return
	}
	vendor, err := h.Svc.GetVendor(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err, "Failed to fetch vendor")
		return
	}
	writeJSON(w, http.StatusOK, vendor)
}

// UpdateVendorHandler - частичное обновление, непереданные поля не меняются
func (h *Handler) UpdateVendorHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "vendorId")
	if !ok {
		return
	}
	var req models.VendorPatch
	if !h.decodeJSON(w, r, &req) {
		return
	}
	vendor, err := h.Svc.UpdateVendor(r.Context(), id, req)
	if err != nil {
		h.writeError(w, r, err, "Failed to update vendor")
		return
	}
	writeJSON(w, http.StatusOK, vendor)
}

func (h *Handler) DeleteVendorHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "vendorId")
	if !ok {
		return
	}
	if err := h.Svc.DeleteVendor(r.Context(), id); err != nil {
		h.writeError(w, r, err, "Failed to delete vendor")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
