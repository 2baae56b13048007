// Package session maintains the accumulated, corrected-over-time knowledge
// about each ongoing conversation.
package session

import (
	"context"
	"reflect"
	"strings"
)

// Slots is the named structured information accumulated about one
// conversation: symptom, age_months, temperature, duration and so on.
type Slots map[string]interface{}

// Store owns slot state per conversation. Implementations must apply merges
// for the same conversation atomically in arrival order, while conversations
// never contend with each other. Reading an unknown conversation yields empty
// slots, and clearing is idempotent.
type Store interface {
	// MergeEntities folds entities into the conversation's slots and returns
	// the full post-merge slot set, creating the conversation on first use.
	MergeEntities(ctx context.Context, conversationID string, entities Slots) (Slots, error)

	// GetEntities returns a snapshot of the conversation's slots.
	GetEntities(ctx context.Context, conversationID string) (Slots, error)

	// ClearEntities removes all state for the conversation.
	ClearEntities(ctx context.Context, conversationID string) error
}

// Merge returns a new slot set combining existing and incoming values. An
// empty incoming value never erases an existing one; a non-empty incoming
// value always overwrites, so a caregiver can correct earlier answers; keys
// absent from incoming are untouched.
func Merge(existing, incoming Slots) Slots {
	merged := existing.Clone()
	for k, v := range incoming {
		if isEmpty(v) {
			continue
		}
		merged[k] = v
	}
	return merged
}

// Clone returns a shallow copy, never nil.
func (s Slots) Clone() Slots {
	out := make(Slots, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// isEmpty reports whether v is a value that must not overwrite existing
// knowledge: nil, blank string, numeric zero, false, or an empty collection.
func isEmpty(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case bool:
		return !val
	case int:
		return val == 0
	case int32:
		return val == 0
	case int64:
		return val == 0
	case float32:
		return val == 0
	case float64:
		return val == 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
