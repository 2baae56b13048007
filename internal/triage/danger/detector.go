// Package danger intercepts utterances matching known life-threatening
// patterns before any classification or downstream handling runs.
package danger

import (
	"strings"

	"pediatric-triage/internal/common/logger"
	"pediatric-triage/pkg/ruleset"
)

// Result describes the first matching danger signal. MatchedConditions carries
// the literal condition strings found in the input, not the trigger keywords.
type Result struct {
	Category          string   `json:"category"`
	Action            string   `json:"action"`
	Reason            string   `json:"reason"`
	MatchedConditions []string `json:"matched_conditions"`
}

// Detector checks utterances against the active rule table. It reads the
// table through the registry so a reload never tears a request.
type Detector struct {
	rules  *ruleset.Registry[[]Category]
	logger logger.Logger
}

func NewDetector(rules *ruleset.Registry[[]Category], log logger.Logger) *Detector {
	return &Detector{
		rules:  rules,
		logger: log.With(map[string]interface{}{"component": "danger-detector"}),
	}
}

// Detect returns the first signal whose keyword set AND danger-condition set
// both intersect the lowercased input, walking categories and signals in file
// order. Nil means no danger signal, which is not an error.
func (d *Detector) Detect(text string) *Result {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	lowered := strings.ToLower(text)
	rules, version := d.rules.Current()

	for _, cat := range rules {
		for _, sig := range cat.Signals {
			if !anyContained(lowered, sig.Keywords) {
				continue
			}

			matched := allContained(lowered, sig.DangerConditions)
			if len(matched) == 0 {
				continue
			}

			d.logger.Warn("danger signal detected", map[string]interface{}{
				"category":     cat.Category,
				"conditions":   matched,
				"rulesVersion": version,
			})

			return &Result{
				Category:          cat.Category,
				Action:            sig.Action,
				Reason:            sig.Reason,
				MatchedConditions: matched,
			}
		}
	}

	return nil
}

func anyContained(text string, terms []string) bool {
	for _, t := range terms {
		if t != "" && strings.Contains(text, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

func allContained(text string, terms []string) []string {
	var matched []string
	for _, t := range terms {
		if t != "" && strings.Contains(text, strings.ToLower(t)) {
			matched = append(matched, t)
		}
	}
	return matched
}

// FormatWarning renders the user-facing danger message. The closing liability
// sentence is part of the contract and must always be present.
func FormatWarning(r *Result) string {
	var b strings.Builder
	b.WriteString("⚠️ 检测到危险信号：")
	b.WriteString(strings.Join(r.MatchedConditions, "、"))
	b.WriteString("。\n建议措施：")
	b.WriteString(r.Action)
	b.WriteString("\n判断依据：")
	b.WriteString(r.Reason)
	b.WriteString("\n本提示不能替代专业医疗诊断，情况危急请立即拨打120或前往最近的儿科急诊。")
	return b.String()
}
