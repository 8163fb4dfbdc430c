// Package schema проверяет и нормализует JSON, полученный от модели,
// до того как он попадёт в хранилище. Значения по умолчанию подставляются
// до проверки, поэтому отсутствие необязательного поля не является ошибкой.
package schema

import (
	"fmt"
	"maps"
	"strings"

	"procurement/models"
)

const (
	DefaultResponseDeadline = "TBD"
	DefaultPaymentTerms     = "To be negotiated"
	DefaultWarranty         = "Standard warranty"
	DefaultCurrency         = "USD"
	DefaultDeliveryTime     = "Not specified"
	DefaultConfidence       = 0.5
)

// SchemaError перечисляет все пути, не прошедшие проверку
type SchemaError struct {
	Schema string
	Paths  []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s schema violation: %s", e.Schema, strings.Join(e.Paths, "; "))
}

type checker struct {
	issues []string
}

func (c *checker) fail(path, format string, args ...any) {
	c.issues = append(c.issues, path+": "+fmt.Sprintf(format, args...))
}

func (c *checker) err(name string) error {
	if len(c.issues) == 0 {
		return nil
	}
	return &SchemaError{Schema: name, Paths: c.issues}
}

func join(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func index(parent string, i int) string {
	return fmt.Sprintf("%s[%d]", parent, i)
}

// object возвращает копию объекта, чтобы подстановка умолчаний не меняла вход
func (c *checker) object(path string, v any) map[string]any {
	obj, ok := v.(map[string]any)
	if !ok {
		c.fail(orRoot(path), "expected object, got %s", typeName(v))
		return nil
	}
	return maps.Clone(obj)
}

func (c *checker) field(obj map[string]any, path, key string) (any, bool) {
	v, ok := obj[key]
	if !ok || v == nil {
		c.fail(join(path, key), "required")
		return nil, false
	}
	return v, true
}

func (c *checker) str(obj map[string]any, path, key string) string {
	v, ok := c.field(obj, path, key)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		c.fail(join(path, key), "expected string, got %s", typeName(v))
	}
	return s
}

func (c *checker) num(obj map[string]any, path, key string) float64 {
	v, ok := c.field(obj, path, key)
	if !ok {
		return 0
	}
	n, ok := v.(float64)
	if !ok {
		c.fail(join(path, key), "expected number, got %s", typeName(v))
	}
	return n
}

func (c *checker) numRange(obj map[string]any, path, key string, lo, hi float64) float64 {
	n := c.num(obj, path, key)
	if n < lo || n > hi {
		c.fail(join(path, key), "must be within [%g, %g], got %g", lo, hi, n)
	}
	return n
}

func (c *checker) boolean(obj map[string]any, path, key string) bool {
	v, ok := c.field(obj, path, key)
	if !ok {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		c.fail(join(path, key), "expected boolean, got %s", typeName(v))
	}
	return b
}

func (c *checker) array(obj map[string]any, path, key string) []any {
	v, ok := c.field(obj, path, key)
	if !ok {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		c.fail(join(path, key), "expected array, got %s", typeName(v))
	}
	return arr
}

func (c *checker) strList(obj map[string]any, path, key string) []string {
	arr := c.array(obj, path, key)
	out := make([]string, 0, len(arr))
	for i, v := range arr {
		s, ok := v.(string)
		if !ok {
			c.fail(index(join(path, key), i), "expected string, got %s", typeName(v))
			continue
		}
		out = append(out, s)
	}
	return out
}

// withDefault подставляет значение, если ключ отсутствует или равен null
func withDefault(obj map[string]any, key string, def any) {
	if obj == nil {
		return
	}
	if v, ok := obj[key]; !ok || v == nil {
		obj[key] = def
	}
}

func orRoot(path string) string {
	if path == "" {
		return "$"
	}
	return path
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// RFPStructure проверяет структурированный запрос на закупку
func RFPStructure(v any) (*models.RFPStructure, error) {
	c := &checker{}
	root := c.object("", v)
	if root == nil {
		return nil, c.err("RFPStructure")
	}
	withDefault(root, "requirements", []any{})

	out := &models.RFPStructure{}
	out.Title = c.str(root, "", "title")

	items := c.array(root, "", "items")
	if items != nil && len(items) == 0 {
		c.fail("items", "must contain at least one item")
	}
	for i, raw := range items {
		path := index("items", i)
		item := c.object(path, raw)
		if item == nil {
			continue
		}
		withDefault(item, "specifications", map[string]any{})
		ri := models.RFPItem{
			Name:     c.str(item, path, "name"),
			Quantity: c.num(item, path, "quantity"),
		}
		if ri.Quantity < 0 {
			c.fail(join(path, "quantity"), "must be non-negative")
		}
		if specs := c.object(join(path, "specifications"), item["specifications"]); specs != nil {
			ri.Specifications = specs
		}
		out.Items = append(out.Items, ri)
	}

	if budget := c.object("budget", root["budget"]); budget != nil {
		out.Budget.Amount = c.num(budget, "budget", "amount")
		if out.Budget.Amount < 0 {
			c.fail("budget.amount", "must be non-negative")
		}
		out.Budget.Currency = c.str(budget, "budget", "currency")
	}

	if timeline := c.object("timeline", root["timeline"]); timeline != nil {
		withDefault(timeline, "responseDeadline", DefaultResponseDeadline)
		out.Timeline.DeliveryDeadline = c.str(timeline, "timeline", "deliveryDeadline")
		out.Timeline.ResponseDeadline = c.str(timeline, "timeline", "responseDeadline")
	}

	withDefault(root, "terms", map[string]any{})
	if terms := c.object("terms", root["terms"]); terms != nil {
		withDefault(terms, "paymentTerms", DefaultPaymentTerms)
		withDefault(terms, "warranty", DefaultWarranty)
		out.Terms.PaymentTerms = c.str(terms, "terms", "paymentTerms")
		out.Terms.Warranty = c.str(terms, "terms", "warranty")
	}

	out.Requirements = c.strList(root, "", "requirements")

	if err := c.err("RFPStructure"); err != nil {
		return nil, err
	}
	return out, nil
}

// ProposalStructure проверяет данные предложения поставщика
func ProposalStructure(v any) (*models.ProposalData, error) {
	c := &checker{}
	root := c.object("", v)
	if root == nil {
		return nil, c.err("ProposalStructure")
	}
	withDefault(root, "items", []any{})
	withDefault(root, "totalPrice", 0.0)
	withDefault(root, "currency", DefaultCurrency)
	withDefault(root, "deliveryTime", DefaultDeliveryTime)
	withDefault(root, "paymentTerms", DefaultPaymentTerms)
	withDefault(root, "warranty", DefaultWarranty)
	withDefault(root, "additionalNotes", []any{})
	withDefault(root, "confidence", DefaultConfidence)

	out := &models.ProposalData{Items: []models.ProposalItem{}}
	for i, raw := range c.array(root, "", "items") {
		path := index("items", i)
		item := c.object(path, raw)
		if item == nil {
			continue
		}
		out.Items = append(out.Items, models.ProposalItem{
			Name:       c.str(item, path, "name"),
			Quantity:   c.num(item, path, "quantity"),
			UnitPrice:  c.num(item, path, "unitPrice"),
			TotalPrice: c.num(item, path, "totalPrice"),
			MeetsSpecs: c.boolean(item, path, "meetsSpecs"),
		})
	}
	out.TotalPrice = c.num(root, "", "totalPrice")
	if out.TotalPrice < 0 {
		c.fail("totalPrice", "must be non-negative")
	}
	out.Currency = c.str(root, "", "currency")
	out.DeliveryTime = c.str(root, "", "deliveryTime")
	out.PaymentTerms = c.str(root, "", "paymentTerms")
	out.Warranty = c.str(root, "", "warranty")
	out.AdditionalNotes = c.strList(root, "", "additionalNotes")
	out.Confidence = c.numRange(root, "", "confidence", 0, 1)

	if err := c.err("ProposalStructure"); err != nil {
		return nil, err
	}
	return out, nil
}

// ComparisonResult проверяет ответ модели со сравнением предложений.
// Все оценки должны лежать в диапазоне 0..100.
func ComparisonResult(v any) (*models.ComparisonResult, error) {
	c := &checker{}
	root := c.object("", v)
	if root == nil {
		return nil, c.err("ComparisonResult")
	}
	withDefault(root, "summary", "")

	out := &models.ComparisonResult{Rankings: []models.Ranking{}}
	for i, raw := range c.array(root, "", "rankings") {
		path := index("rankings", i)
		r := c.object(path, raw)
		if r == nil {
			continue
		}
		withDefault(r, "strengths", []any{})
		withDefault(r, "weaknesses", []any{})
		out.Rankings = append(out.Rankings, models.Ranking{
			VendorID:        c.str(r, path, "vendorId"),
			VendorName:      c.str(r, path, "vendorName"),
			Score:           c.numRange(r, path, "score", 0, 100),
			PriceScore:      c.numRange(r, path, "priceScore", 0, 100),
			DeliveryScore:   c.numRange(r, path, "deliveryScore", 0, 100),
			ComplianceScore: c.numRange(r, path, "complianceScore", 0, 100),
			TermsScore:      c.numRange(r, path, "termsScore", 0, 100),
			Strengths:       c.strList(r, path, "strengths"),
			Weaknesses:      c.strList(r, path, "weaknesses"),
		})
	}

	if rec := c.object("recommendation", root["recommendation"]); rec != nil {
		out.Recommendation = models.Recommendation{
			VendorID:   c.str(rec, "recommendation", "vendorId"),
			VendorName: c.str(rec, "recommendation", "vendorName"),
			Reasoning:  c.str(rec, "recommendation", "reasoning"),
		}
	}
	out.Summary = c.str(root, "", "summary")

	if err := c.err("ComparisonResult"); err != nil {
		return nil, err
	}
	return out, nil
}
