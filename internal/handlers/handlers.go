package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"procurement/internal/notify"
	"procurement/pkg/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultMaxBodyBytes = 10 << 20

// Pinger проверяет доступность хранилища для /health
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	// MaxBodyBytes ограничивает тело запроса, 0 - значение по умолчанию
	MaxBodyBytes int64
	// SMTP показывается в /api/email/test, пароль не выводится
	SMTP notify.SMTPConfig
	DB   Pinger
}

// Handler оборачивает Service для HTTP
type Handler struct {
	Svc     Service
	logger  *zap.Logger
	metrics *metrics.Collector
	opts    Options
}

func NewHandler(svc Service, logger *zap.Logger, mc *metrics.Collector, opts Options) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	return &Handler{Svc: svc, logger: logger, metrics: mc, opts: opts}
}

// PingHandler отвечает "ok" для проверки сервера
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ts := time.Now().UTC().Format(time.RFC3339)
	if h.opts.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.opts.DB.Ping(ctx); err != nil {
			h.logger.Warn("Health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":    "UNAVAILABLE",
				"timestamp": ts,
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK", "timestamp": ts})
}

// EmailTestHandler проверяет настройки SMTP и соединение с сервером
func (h *Handler) EmailTestHandler(w http.ResponseWriter, r *http.Request) {
	cfg := h.opts.SMTP
	if !cfg.Configured() {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"configured": false,
			"error":      "Email not configured",
			"message":    "Missing SMTP configuration",
			"required":   []string{"SMTP_HOST", "SMTP_USER", "SMTP_PASSWORD", "FROM_EMAIL"},
		})
		return
	}

	verified := true
	resp := map[string]any{
		"configured": true,
		"smtp": map[string]any{
			"host": cfg.Host,
			"port": cfg.Port,
			"user": cfg.User,
			"from": cfg.From,
		},
	}
	if err := h.Svc.VerifyEmail(r.Context()); err != nil {
		h.logger.Warn("SMTP verification failed", zap.Error(err))
		verified = false
		resp["details"] = err.Error()
	}
	resp["verified"] = verified
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) MetricsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.metrics.Snapshot())
}

// decodeJSON читает тело с ограничением размера и разбирает JSON
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMessage(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		writeMessage(w, http.StatusBadRequest, "Failed to read request body")
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid JSON format", Details: err.Error()})
		return false
	}
	return true
}

// urlID разбирает uuid из параметра пути
func urlID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
