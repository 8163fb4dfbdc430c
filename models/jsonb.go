package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Значения JSONB передаются в pq строкой: []byte драйвер кодирует как bytea
func jsonValue(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonScan(src any, dst any) error {
	switch s := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(s, dst)
	case string:
		return json.Unmarshal([]byte(s), dst)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}
}

type RFPItems []RFPItem

func (i RFPItems) Value() (driver.Value, error) {
	if i == nil {
		return jsonValue([]RFPItem{})
	}
	return jsonValue([]RFPItem(i))
}

func (i *RFPItems) Scan(src any) error { return jsonScan(src, (*[]RFPItem)(i)) }

// StringList хранит массив строк в jsonb, nil сохраняется как []
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return jsonValue([]string{})
	}
	return jsonValue([]string(l))
}

func (l *StringList) Scan(src any) error { return jsonScan(src, (*[]string)(l)) }

func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

func (b Budget) Value() (driver.Value, error) { return jsonValue(b) }
func (b *Budget) Scan(src any) error { return jsonScan(src, b) }

func (t Timeline) Value() (driver.Value, error) { return jsonValue(t) }
func (t *Timeline) Scan(src any) error { return jsonScan(src, t) }

func (t Terms) Value() (driver.Value, error) { return jsonValue(t) }
func (t *Terms) Scan(src any) error { return jsonScan(src, t) }

func (d ProposalData) Value() (driver.Value, error) { return jsonValue(d) }
func (d *ProposalData) Scan(src any) error { return jsonScan(src, d) }

func (e Evaluation) Value() (driver.Value, error) { return jsonValue(e) }
func (e *Evaluation) Scan(src any) error { return jsonScan(src, e) }

// Category принимает строку или массив строк, массив склеивается через ", "
type Category string

func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = Category(strings.TrimSpace(s))
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("category must be a string or an array of strings")
	}
	parts := make([]string, 0, len(list))
	for _, v := range list {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	*c = Category(strings.Join(parts, ", "))
	return nil
}

// Ptr возвращает nil для пустой категории
func (c Category) Ptr() *string {
	if c == "" {
		return nil
	}
	s := string(c)
	return &s
}
