// Package decision maps a primary symptom plus the accumulated slot set to a
// triage level with an auditable reason. The engine is stateless: everything
// it needs arrives in its arguments.
package decision

import (
	"strings"

	"pediatric-triage/internal/common/logger"
	"pediatric-triage/internal/triage/normalize"
)

type Level string

const (
	LevelEmergency Level = "emergency"
	LevelObserve   Level = "observe"
	LevelRoutine   Level = "routine"
)

// Decision is a terminal value object, never mutated after construction.
type Decision struct {
	Level  Level  `json:"level"`
	Reason string `json:"reason"`
	Action string `json:"action"`
}

// facts holds the normalized slot values handler predicates test. A missing
// slot shows up as its has-flag being false and is treated as unknown, never
// as a zero-value observation.
type facts struct {
	ageMonths     float64
	hasAge        bool
	temperature   float64
	hasTemp       bool
	durationHours float64
	hasDuration   bool
	mentalState   string
	accompanying  string
}

// rule is one step of a symptom handler: first matching rule wins, so each
// handler lists its most severe, most specific rules first. Order is the
// tie-break policy and must be preserved.
type rule struct {
	when   func(f facts) bool
	level  Level
	reason string
	action string
}

type Engine struct {
	handlers map[string][]rule
	logger   logger.Logger
}

func NewEngine(log logger.Logger) *Engine {
	return &Engine{
		handlers: symptomHandlers(),
		logger:   log.With(map[string]interface{}{"component": "decision-engine"}),
	}
}

// fallback covers symptoms without a dedicated handler. Under uncertainty the
// engine observes rather than dismisses.
var fallback = Decision{
	Level:  LevelObserve,
	Reason: "暂无法根据现有信息判断风险程度，建议补充年龄、体温和持续时间",
	Action: "密切观察，如精神状态变差或症状加重请及时就医",
}

// Decide applies the handler registered for the primary symptom to the
// accumulated entities. Unknown symptoms and missing slots degrade to the
// conservative observe fallback; Decide never fails.
func (e *Engine) Decide(primarySymptom string, entities map[string]interface{}) Decision {
	symptom, ok := normalize.CanonicalSymptom(primarySymptom)
	if !ok {
		return fallback
	}

	rules, ok := e.handlers[symptom]
	if !ok {
		return fallback
	}

	f := gatherFacts(entities)
	for _, r := range rules {
		if !r.when(f) {
			continue
		}
		e.logger.Info("triage decision", map[string]interface{}{
			"symptom": symptom,
			"level":   r.level,
			"reason":  r.reason,
		})
		return Decision{Level: r.level, Reason: r.reason, Action: r.action}
	}

	return fallback
}

// gatherFacts normalizes raw slot values. Values arrive as numbers from the
// extractor or as strings after a round trip through Redis or caller-supplied
// payloads, so every numeric fact accepts both.
func gatherFacts(entities map[string]interface{}) facts {
	var f facts

	f.ageMonths, f.hasAge = numericSlot(entities[normalize.SlotAgeMonths])

	if v, present := entities[normalize.SlotTemperature]; present {
		switch t := v.(type) {
		case string:
			if temp, ok := normalize.ParseTemperature(t); ok {
				f.temperature, f.hasTemp = temp, true
			} else if temp, ok := normalize.ParseNumber(t); ok {
				f.temperature, f.hasTemp = temp, true
			}
		default:
			f.temperature, f.hasTemp = numericSlot(v)
		}
	}

	if v, present := entities[normalize.SlotDuration]; present {
		switch d := v.(type) {
		case string:
			if hours := normalize.ParseDurationHours(d); hours > 0 {
				f.durationHours, f.hasDuration = hours, true
			}
		default:
			if hours, ok := numericSlot(v); ok && hours > 0 {
				f.durationHours, f.hasDuration = hours, true
			}
		}
	}

	if v, ok := entities[normalize.SlotMentalState].(string); ok {
		f.mentalState = v
	}
	if v, ok := entities[normalize.SlotAccompanying].(string); ok {
		f.accompanying = v
	}

	return f
}

func numericSlot(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		return normalize.ParseNumber(n)
	}
	return 0, false
}

var listlessTerms = []string{"萎靡", "嗜睡", "昏睡", "精神差", "没精神", "精神不好", "反应迟钝", "烦躁"}

// listless reports whether the recorded mental state indicates lethargy or
// abnormal irritability.
func listless(f facts) bool {
	for _, term := range listlessTerms {
		if strings.Contains(f.mentalState, term) {
			return true
		}
	}
	return false
}

func accompaniedBy(f facts, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(f.accompanying, term) {
			return true
		}
	}
	return false
}

func dehydrated(f facts) bool {
	return accompaniedBy(f, "尿少", "口干", "无泪", "囟门凹陷")
}
