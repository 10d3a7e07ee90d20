// SPDX-License-Identifier: MIT

package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

const seatIDKey = "seatId"

// Seat is an opaque point-of-interest record. Only seatId is interpreted;
// every other field is passed through unmodified.
type Seat struct {
	ID    string
	Attrs map[string]any
}

// NewSeat builds a seat from an id and optional extra attributes.
func NewSeat(id string, attrs map[string]any) Seat {
	m := make(map[string]any, len(attrs)+1)
	for k, v := range attrs {
		m[k] = v
	}
	m[seatIDKey] = id
	return Seat{ID: id, Attrs: m}
}

// Label returns a human readable name for the seat, falling back to its id.
func (s Seat) Label() string {
	for _, k := range []string{"title", "name", "seatName"} {
		if v, ok := s.Attrs[k].(string); ok && v != "" {
			return v
		}
	}
	return s.ID
}

func (s Seat) fields() map[string]any {
	if s.Attrs == nil {
		return map[string]any{seatIDKey: s.ID}
	}
	return s.Attrs
}

func (s Seat) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.fields())
}

// UnmarshalJSON keeps a numeric seatId digit for digit. Other numbers become
// int64 when integral and float64 otherwise.
func (s *Seat) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return fmt.Errorf("seat: %w", err)
	}
	for k, v := range m {
		if n, ok := v.(json.Number); ok && k == seatIDKey {
			m[k] = n.String()
			continue
		}
		m[k] = plainNumbers(v)
	}
	return s.fromMap(m)
}

func plainNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		for k, e := range t {
			t[k] = plainNumbers(e)
		}
	case []any:
		for i, e := range t {
			t[i] = plainNumbers(e)
		}
	}
	return v
}

func (s Seat) MarshalYAML() (any, error) {
	return s.fields(), nil
}

func (s *Seat) UnmarshalYAML(node *yaml.Node) error {
	var m map[string]any
	if err := node.Decode(&m); err != nil {
		return fmt.Errorf("seat: %w", err)
	}
	return s.fromMap(m)
}

var errMissingSeatID = errors.New("seat: missing seatId")

func (s *Seat) fromMap(m map[string]any) error {
	if m == nil {
		return errMissingSeatID
	}
	id, err := seatIDString(m[seatIDKey])
	if err != nil {
		return err
	}
	m[seatIDKey] = id
	s.ID = id
	s.Attrs = m
	return nil
}

func seatIDString(v any) (string, error) {
	switch id := v.(type) {
	case string:
		if id == "" {
			return "", errMissingSeatID
		}
		return id, nil
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(id), nil
	case int64:
		return strconv.FormatInt(id, 10), nil
	case uint64:
		return strconv.FormatUint(id, 10), nil
	case nil:
		return "", errMissingSeatID
	default:
		return "", fmt.Errorf("seat: unsupported seatId type %T", v)
	}
}
