package models

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotScalar возвращается, если вместо скалярного значения пришел объект или массив.
var ErrNotScalar = errors.New("ожидалось скалярное значение")

//nolint:gochecknoglobals // Константный литерал.
var jsonNull = []byte("null")

// Text - nullable текстовое значение.
// Из JSON принимает строку, число или bool; число и bool сохраняются в текстовом виде.
// Отсутствующее поле и null дают NULL в БД.
type Text struct {
	sql.NullString
}

// NewText создает заполненное значение Text.
func NewText(s string) Text {
	return Text{sql.NullString{String: s, Valid: true}}
}

// UnmarshalJSON реализует json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, jsonNull) {
		*t = Text{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = NewText(s)
	case '{', '[':
		return ErrNotScalar
	default:
		// Число или true/false - сохраняем как есть.
		*t = NewText(string(data))
	}
	return nil
}

// MarshalJSON реализует json.Marshaler.
func (t Text) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return jsonNull, nil
	}
	return json.Marshal(t.String)
}

// Ptr возвращает значение как *string (nil для NULL).
func (t Text) Ptr() *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

// Number - nullable числовое значение (NUMERIC в БД).
// Из JSON принимает число или строку с числом; пустая строка считается NULL.
// В JSON всегда выводится числом.
type Number struct {
	decimal.NullDecimal
}

// NewNumber создает заполненное значение Number.
func NewNumber(d decimal.Decimal) Number {
	return Number{decimal.NullDecimal{Decimal: d, Valid: true}}
}

// UnmarshalJSON реализует json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, jsonNull) || bytes.Equal(data, []byte(`""`)) {
		*n = Number{}
		return nil
	}
	if data[0] == '{' || data[0] == '[' {
		return ErrNotScalar
	}

	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("некорректное числовое значение %s: %w", string(data), err)
	}
	*n = NewNumber(d)
	return nil
}

// MarshalJSON реализует json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return jsonNull, nil
	}
	return []byte(n.Decimal.String()), nil
}

// Float возвращает значение как *float64 (nil для NULL).
func (n Number) Float() *float64 {
	if !n.Valid {
		return nil
	}
	f := n.Decimal.InexactFloat64()
	return &f
}
