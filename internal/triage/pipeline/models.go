package pipeline

import (
	"pediatric-triage/internal/triage/decision"
	"pediatric-triage/internal/triage/session"
)

// Request is one caregiver utterance. ConversationID must already be minted
// by the caller; the core never invents ids.
type Request struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id,omitempty"`
	Message        string `json:"message"`
}

// Result is the pipeline outcome for one utterance. When IsDanger is true
// only the danger fields are populated; intent classification, slot merge and
// triage decisioning are all bypassed.
type Result struct {
	IsDanger          bool     `json:"is_danger"`
	Category          string   `json:"category,omitempty"`
	Action            string   `json:"action,omitempty"`
	Reason            string   `json:"reason,omitempty"`
	MatchedConditions []string `json:"matched_conditions,omitempty"`
	Warning           string   `json:"warning,omitempty"`

	Intent       string             `json:"intent,omitempty"`
	Confidence   float64            `json:"confidence,omitempty"`
	Triage       *decision.Decision `json:"triage,omitempty"`
	Slots        session.Slots      `json:"slots,omitempty"`
	MissingSlots []string           `json:"missing_slots,omitempty"`
}
