package apierror

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PathElement is one step of a field location: an object key or an array index.
type PathElement struct {
	Key     string
	Index   int
	IsIndex bool
}

// UnmarshalJSON accepts either a JSON string or a JSON integer.
func (p *PathElement) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var key string
		if err := json.Unmarshal(data, &key); err != nil {
			return err
		}
		*p = PathElement{Key: key}
		return nil
	}
	var idx int
	if err := json.Unmarshal(data, &idx); err != nil {
		return fmt.Errorf("location element must be string or integer: %w", err)
	}
	*p = PathElement{Index: idx, IsIndex: true}
	return nil
}

// MarshalJSON writes the element back in its original form.
func (p PathElement) MarshalJSON() ([]byte, error) {
	if p.IsIndex {
		return json.Marshal(p.Index)
	}
	return json.Marshal(p.Key)
}

// Location addresses the offending field, e.g. body.payouts[0].amount.
type Location []PathElement

func (l Location) String() string {
	var b strings.Builder
	for i, el := range l {
		if el.IsIndex {
			b.WriteString("[" + strconv.Itoa(el.Index) + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(el.Key)
	}
	return b.String()
}

// FieldError describes a single field-level rejection.
type FieldError struct {
	Loc     Location       `json:"loc"`
	Msg     string         `json:"msg"`
	Type    string         `json:"type,omitempty"`
	Context map[string]any `json:"ctx,omitempty"`
}

func (f FieldError) String() string {
	if len(f.Loc) == 0 {
		return f.Msg
	}
	return f.Loc.String() + ": " + f.Msg
}
