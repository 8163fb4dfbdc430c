// Package ai строит промпты, вызывает внешнюю модель и проверяет её ответы.
// Хранилище отсюда недоступно: результат возвращается вызывающему коду.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"procurement/internal/schema"
	"procurement/models"
	"procurement/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const MinInputLength = 10

const (
	OpStructure = "structure"
	OpExtract   = "extract"
	OpScore     = "score"
)

var (
	ErrInputTooShort = fmt.Errorf("input must be at least %d characters", MinInputLength)
	ErrEmptyResponse = errors.New("no response from AI")
)

// AIResponseError - любой сбой обращения к модели: транспорт, пустой ответ,
// невалидный JSON или нарушение схемы
type AIResponseError struct {
	Op  string
	Err error
}

func (e *AIResponseError) Error() string {
	return fmt.Sprintf("ai %s failed: %v", e.Op, e.Err)
}

func (e *AIResponseError) Unwrap() error { return e.Err }

type Options struct {
	// Timeout ограничивает один вызов модели, 0 - без ограничения
	Timeout time.Duration
	// RequestsPerMinute ограничивает частоту вызовов, 0 - без ограничения
	RequestsPerMinute int
}

type Adapter struct {
	gen     Generator
	limiter *rate.Limiter
	timeout time.Duration
	logger  *zap.Logger
	metrics *metrics.Collector
}

func NewAdapter(gen Generator, logger *zap.Logger, mc *metrics.Collector, opts Options) *Adapter {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		gen:     gen,
		limiter: limiter,
		timeout: opts.Timeout,
		logger:  logger,
		metrics: mc,
	}
}

// StructureRequest превращает описание потребности в структурированный RFP
func (a *Adapter) StructureRequest(ctx context.Context, input string) (*models.RFPStructure, error) {
	if utf8.RuneCountInString(input) < MinInputLength {
		return nil, ErrInputTooShort
	}
	decoded, err := a.call(ctx, OpStructure, buildStructurePrompt(input))
	if err != nil {
		return nil, err
	}
	out, err := schema.RFPStructure(decoded)
	if err != nil {
		return nil, a.fail(OpStructure, err)
	}
	a.metrics.IncrementCounter("ai_calls", map[string]string{"op": OpStructure, "outcome": "ok"})
	return out, nil
}

// ExtractProposal извлекает предложение из текста письма поставщика
func (a *Adapter) ExtractProposal(ctx context.Context, rfp *models.RFP, email string) (*models.ProposalData, error) {
	prompt, err := buildExtractPrompt(rfp, email)
	if err != nil {
		return nil, a.fail(OpExtract, err)
	}
	decoded, err := a.call(ctx, OpExtract, prompt)
	if err != nil {
		return nil, err
	}
	out, err := schema.ProposalStructure(decoded)
	if err != nil {
		return nil, a.fail(OpExtract, err)
	}
	a.metrics.IncrementCounter("ai_calls", map[string]string{"op": OpExtract, "outcome": "ok"})
	return out, nil
}

// ScoreProposals сравнивает предложения по взвешенной шкале
func (a *Adapter) ScoreProposals(ctx context.Context, rfp *models.RFP, proposals []models.ProposalWithVendor) (*models.ComparisonResult, error) {
	prompt, err := buildScorePrompt(rfp, proposals)
	if err != nil {
		return nil, a.fail(OpScore, err)
	}
	decoded, err := a.call(ctx, OpScore, prompt)
	if err != nil {
		return nil, err
	}
	out, err := schema.ComparisonResult(decoded)
	if err != nil {
		return nil, a.fail(OpScore, err)
	}
	a.metrics.IncrementCounter("ai_calls", map[string]string{"op": OpScore, "outcome": "ok"})
	return out, nil
}

func (a *Adapter) call(ctx context.Context, op, prompt string) (any, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, a.fail(op, err)
	}

	start := time.Now()
	raw, err := a.gen.Generate(ctx, prompt)
	a.metrics.ObserveLatency("ai."+op, time.Since(start))
	if err != nil {
		return nil, a.fail(op, err)
	}

	text := StripCodeFences(raw)
	if text == "" {
		return nil, a.fail(op, ErrEmptyResponse)
	}

	var decoded any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return nil, a.fail(op, fmt.Errorf("invalid JSON in response: %w", err))
	}
	return decoded, nil
}

func (a *Adapter) fail(op string, err error) error {
	a.metrics.IncrementCounter("ai_calls", map[string]string{"op": op, "outcome": "error"})
	a.logger.Warn("AI call failed", zap.String("op", op), zap.Error(err))
	return &AIResponseError{Op: op, Err: err}
}

// StripCodeFences убирает обёртку ```json ... ``` вокруг ответа модели.
// Обратные кавычки внутри самого JSON не трогаются.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	rest, ok := strings.CutPrefix(s, "```")
	if !ok {
		return s
	}
	// первая строка после ``` - метка языка, если в ней нет начала JSON
	if i := strings.IndexByte(rest, '\n'); i >= 0 && !strings.ContainsAny(rest[:i], "{[") {
		rest = rest[i+1:]
	} else {
		rest = strings.TrimPrefix(rest, "json")
	}
	rest = strings.TrimSpace(rest)
	return strings.TrimSpace(strings.TrimSuffix(rest, "```"))
}
