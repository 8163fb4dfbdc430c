package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"procurement/internal/ai"
	"procurement/internal/lifecycle"
	"procurement/internal/schema"

	"go.uber.org/zap"
)

type errorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeError переводит ошибки жизненного цикла в HTTP-статусы.
// failMsg используется для неклассифицированных ошибок и ошибок модели.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, failMsg string) {
	var (
		validation *lifecycle.ValidationError
		notFound   *lifecycle.NotFoundError
		conflict   *lifecycle.ConflictError
		badStatus  *lifecycle.InvalidStatusError
		transition *lifecycle.InvalidTransitionError
		aiErr      *ai.AIResponseError
		schemaErr  *schema.SchemaError
	)

	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Validation error", Details: validation.Fields})
	case errors.Is(err, lifecycle.ErrNoProposals):
		writeMessage(w, http.StatusBadRequest, "No proposals to compare")
	case errors.As(err, &badStatus):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid status", Details: badStatus.Status})
	case errors.As(err, &notFound):
		writeMessage(w, http.StatusNotFound, notFoundMessage(notFound))
	case errors.As(err, &conflict):
		writeMessage(w, http.StatusConflict, conflict.Msg)
	case errors.As(err, &transition):
		writeMessage(w, http.StatusConflict, transition.Error())
	case errors.As(err, &aiErr), errors.As(err, &schemaErr):
		// причина уже залогирована адаптером, сообщение модели отдаём клиенту
		h.logger.Warn(failMsg, zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: failMsg, Details: err.Error()})
	default:
		h.logger.Error(failMsg, zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: failMsg, Details: err.Error()})
	}
}

func notFoundMessage(e *lifecycle.NotFoundError) string {
	if e.Entity == "vendors" {
		return "No vendors found"
	}
	return e.Entity + " not found"
}
