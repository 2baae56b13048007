package danger

import (
	"encoding/json"
	"os"

	commonerrors "pediatric-triage/internal/common/errors"
	"pediatric-triage/internal/common/logger"

	"github.com/xeipuuv/gojsonschema"
)

// Signal pairs trigger keywords with the danger conditions that must also be
// present for the signal to fire.
type Signal struct {
	Keywords         []string `json:"keywords"`
	DangerConditions []string `json:"danger_conditions"`
	Action           string   `json:"action"`
	Reason           string   `json:"reason"`
}

// Category is one ordered block of the rule file. File order is priority
// order: the first matching category and signal wins.
type Category struct {
	Category string   `json:"category"`
	Signals  []Signal `json:"signals"`
}

// ruleSchema is the shape the rule file must satisfy. A file that decodes but
// fails this schema degrades to the empty rule set instead of failing requests.
const ruleSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["category", "signals"],
		"properties": {
			"category": {"type": "string", "minLength": 1},
			"signals": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["keywords", "danger_conditions", "action", "reason"],
					"properties": {
						"keywords": {"type": "array", "items": {"type": "string"}, "minItems": 1},
						"danger_conditions": {"type": "array", "items": {"type": "string"}, "minItems": 1},
						"action": {"type": "string"},
						"reason": {"type": "string"}
					}
				}
			}
		}
	}
}`

// LoadRules reads the danger-signal rule table.
//
//   - absent file: empty rule set, nil error (degraded, logged)
//   - unreadable or syntactically corrupt file: error, callers treat this as
//     fatal at startup
//   - well-formed JSON failing schema validation: empty rule set, nil error
func LoadRules(path string, log logger.Logger) ([]Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("danger rule file absent, running with empty rule set", map[string]interface{}{
				"path": path,
			})
			return []Category{}, nil
		}
		return nil, commonerrors.NewRuleFileUnreadableError(path, err)
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, commonerrors.NewRuleFileUnreadableError(path, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(ruleSchema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return nil, commonerrors.NewRuleFileUnreadableError(path, err)
	}
	if !result.Valid() {
		details := ""
		for _, e := range result.Errors() {
			if details != "" {
				details += "; "
			}
			details += e.String()
		}
		log.Error("danger rule file failed schema validation, running with empty rule set", map[string]interface{}{
			"path":  path,
			"error": commonerrors.NewRuleFileMalformedError(path, details).Error(),
		})
		return []Category{}, nil
	}

	var rules []Category
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, commonerrors.NewRuleFileUnreadableError(path, err)
	}

	log.Info("danger rules loaded", map[string]interface{}{
		"path":       path,
		"categories": len(rules),
	})
	return rules, nil
}
