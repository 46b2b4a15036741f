package models

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/turtacn/ueba/pkg/constants"
	"github.com/turtacn/ueba/pkg/errors"
)

// Event is a single telemetry record submitted for scoring. Known fields are
// typed; everything else lands in Extra so that producers can attach feature
// columns without schema changes. An Event is immutable once received and
// lives for the duration of one scoring call.
type Event struct {
	User           string   `json:"user"`
	Timestamp      string   `json:"timestamp,omitempty"`
	Type           string   `json:"type,omitempty"`
	Action         string   `json:"action,omitempty"`
	Device         string   `json:"device,omitempty"`
	RecentSequence string   `json:"recent_sequence,omitempty"`
	KnownDevices   []string `json:"known_devices,omitempty"`

	// Extra holds unrecognized fields, typically the numeric feature columns.
	Extra map[string]interface{} `json:"-"`
}

// knownEventFields are stripped from the raw document before the remainder is
// stored in Extra.
var knownEventFields = map[string]struct{}{
	"user":            {},
	"timestamp":       {},
	"type":            {},
	"action":          {},
	"device":          {},
	"recent_sequence": {},
	"known_devices":   {},
}

// UnmarshalJSON decodes the typed fields and preserves all unknown fields in
// Extra. Unknown fields are never rejected.
func (e *Event) UnmarshalJSON(data []byte) error {
	type alias Event
	var known alias
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for name := range knownEventFields {
		delete(raw, name)
	}

	*e = Event(known)
	if len(raw) > 0 {
		e.Extra = raw
	}
	return nil
}

// MarshalJSON emits the typed fields and the preserved extras as one flat
// document.
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	flat := make(map[string]interface{}, len(e.Extra)+7)
	for k, v := range e.Extra {
		flat[k] = v
	}

	typed, err := json.Marshal(alias(e))
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(typed, &flat); err != nil {
		return nil, err
	}
	return json.Marshal(flat)
}

// Validate checks the invariants a request must satisfy before scoring.
func (e *Event) Validate() error {
	if strings.TrimSpace(e.User) == "" {
		return errors.ErrMissingField("user")
	}
	if _, err := e.SequenceTokens(); err != nil {
		return err
	}
	return nil
}

// Numeric returns the named feature value coerced to float64. Missing fields
// and values that cannot be coerced report ok=false; callers treat both as 0.
func (e *Event) Numeric(name string) (float64, bool) {
	v, present := e.Extra[name]
	if !present {
		return 0, false
	}
	return CoerceFloat(v)
}

// SequenceTokens splits recent_sequence on the token delimiter. An empty
// sequence yields no tokens; a sequence with an empty token between
// delimiters is malformed and rejected.
func (e *Event) SequenceTokens() ([]string, error) {
	raw := strings.TrimSpace(e.RecentSequence)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, constants.SequenceDelimiter)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		token := strings.TrimSpace(p)
		if token == "" {
			return nil, errors.ErrValidation("malformed recent_sequence: empty token between delimiters").
				WithMetadata("recent_sequence", raw)
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

// CoerceFloat converts JSON-decoded values to float64. Booleans map to 0/1
// and numeric strings are parsed; anything else fails the coercion.
func CoerceFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
