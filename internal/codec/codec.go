// Package codec validates and converts backend JSON payloads into domain
// records. Validation is an explicit shape check that reports which field
// failed; it never panics and never relies on a boolean guard.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"coachline/internal/domain"
)

// ValidationError reports a payload that does not match an entity's shape.
type ValidationError struct {
	Entity string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("Invalid %s data: %s", e.Entity, e.Reason)
	}
	return fmt.Sprintf("Invalid %s data: field %s %s", e.Entity, e.Field, e.Reason)
}

type fieldKind int

const (
	kindString fieldKind = iota
	kindTime
	kindStatus
)

type field struct {
	name     string
	kind     fieldKind
	optional bool
}

type shape struct {
	entity string
	fields []field
}

func req(name string, kind fieldKind) field { return field{name: name, kind: kind} }
func opt(name string, kind fieldKind) field { return field{name: name, kind: kind, optional: true} }

var timestamps = []field{req("created_at", kindTime), req("updated_at", kindTime)}

func withTimestamps(fields ...field) []field {
	return append(fields, timestamps...)
}

var (
	organizationShape = shape{"Organization", withTimestamps(
		req("id", kindString), req("name", kindString), opt("logo", kindString), opt("slug", kindString),
	)}
	relationshipShape = shape{"CoachingRelationship", withTimestamps(
		req("id", kindString), req("coach_id", kindString), req("coachee_id", kindString),
		req("coach_first_name", kindString), req("coach_last_name", kindString),
		req("coachee_first_name", kindString), req("coachee_last_name", kindString),
	)}
	sessionShape = shape{"CoachingSession", withTimestamps(
		req("id", kindString), req("coaching_relationship_id", kindString),
		req("date", kindTime), opt("timezone", kindString),
	)}
	noteShape = shape{"Note", withTimestamps(
		req("id", kindString), req("coaching_session_id", kindString), req("body", kindString), req("user_id", kindString),
	)}
	agreementShape = shape{"Agreement", withTimestamps(
		req("id", kindString), req("coaching_session_id", kindString), req("body", kindString), req("user_id", kindString),
	)}
	actionShape = shape{"Action", withTimestamps(
		req("id", kindString), req("coaching_session_id", kindString), req("body", kindString), req("user_id", kindString),
		req("status", kindStatus), opt("status_changed_at", kindTime), opt("due_by", kindTime),
	)}
	goalShape = shape{"OverarchingGoal", withTimestamps(
		req("id", kindString), req("coaching_session_id", kindString), req("user_id", kindString),
		req("title", kindString), opt("body", kindString), req("status", kindStatus),
		opt("status_changed_at", kindTime), opt("completed_at", kindTime),
	)}
	userSessionShape = shape{"UserSession", []field{
		req("id", kindString), req("email", kindString), opt("first_name", kindString),
		opt("last_name", kindString), opt("display_name", kindString),
	}}
)

// validate checks raw against s without decoding it.
func (s shape) validate(raw []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return &ValidationError{Entity: s.entity, Reason: "payload is not a JSON object"}
	}
	if obj == nil {
		return &ValidationError{Entity: s.entity, Reason: "payload is null"}
	}
	for _, f := range s.fields {
		v, ok := obj[f.name]
		if !ok || isNull(v) {
			if f.optional {
				continue
			}
			return &ValidationError{Entity: s.entity, Field: f.name, Reason: "is missing"}
		}
		var str string
		if err := json.Unmarshal(v, &str); err != nil {
			return &ValidationError{Entity: s.entity, Field: f.name, Reason: "must be a string"}
		}
		switch f.kind {
		case kindTime:
			if _, err := time.Parse(time.RFC3339Nano, str); err != nil {
				return &ValidationError{Entity: s.entity, Field: f.name, Reason: "must be an ISO-8601 timestamp"}
			}
		case kindStatus:
			if !domain.ItemStatus(str).Valid() {
				return &ValidationError{Entity: s.entity, Field: f.name, Reason: fmt.Sprintf("has unknown status %q", str)}
			}
		}
	}
	return nil
}

var shapes = map[string]shape{}

func init() {
	for _, s := range []shape{
		organizationShape, relationshipShape, sessionShape, noteShape,
		agreementShape, actionShape, goalShape, userSessionShape,
	} {
		shapes[s.entity] = s
	}
}

// Validate checks raw against the named entity's shape, e.g. "Agreement".
func Validate(entity string, raw []byte) error {
	s, ok := shapes[entity]
	if !ok {
		return fmt.Errorf("unknown entity %q", entity)
	}
	return s.validate(raw)
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

func parse[T any](s shape, raw []byte) (T, error) {
	var out T
	if err := s.validate(raw); err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, &ValidationError{Entity: s.entity, Reason: err.Error()}
	}
	return out, nil
}

func parseList[T any](s shape, raw []byte) ([]T, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &ValidationError{Entity: s.entity, Reason: "payload is not a JSON array"}
	}
	out := make([]T, 0, len(items))
	for i, item := range items {
		v, err := parse[T](s, item)
		if err != nil {
			if ve, ok := err.(*ValidationError); ok {
				ve.Reason = fmt.Sprintf("%s (item %d)", ve.Reason, i)
			}
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func stringify(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
