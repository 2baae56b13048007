// Package intent routes non-emergency utterances to downstream handling. It
// only runs after the danger detector has come up empty.
package intent

import (
	"math"
	"strings"

	"pediatric-triage/internal/common/logger"
)

type Intent string

const (
	IntentEmergencyTriage Intent = "emergency_triage"
	IntentMedication      Intent = "medication"
	IntentDailyCare       Intent = "daily_care"
	IntentUnknown         Intent = "unknown"
)

// Classification is the routing verdict for one utterance.
type Classification struct {
	Intent      Intent  `json:"intent"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description"`
}

type intentRule struct {
	intent      Intent
	description string
	keywords    []string
}

// intentTable declaration order is the tie-break: when two intents score the
// same nonzero count, the one listed first wins.
var intentTable = []intentRule{
	{
		intent:      IntentEmergencyTriage,
		description: "症状分诊咨询",
		keywords: []string{
			"发烧", "高烧", "发热", "咳嗽", "呕吐", "腹泻", "拉肚子",
			"皮疹", "抽搐", "呼吸困难", "精神", "烫", "难受", "严重",
			"怎么办", "要不要去医院", "急诊",
		},
	},
	{
		intent:      IntentMedication,
		description: "用药咨询",
		keywords: []string{
			"药", "用药", "吃药", "剂量", "药量", "退烧药",
			"布洛芬", "对乙酰氨基酚", "美林", "泰诺林", "能不能吃",
		},
	},
	{
		intent:      IntentDailyCare,
		description: "日常护理咨询",
		keywords: []string{
			"护理", "喂养", "辅食", "睡眠", "洗澡", "穿衣",
			"疫苗", "奶粉", "母乳", "物理降温", "日常",
		},
	},
}

type Classifier struct {
	logger logger.Logger
}

func NewClassifier(log logger.Logger) *Classifier {
	return &Classifier{
		logger: log.With(map[string]interface{}{"component": "intent-classifier"}),
	}
}

// Route scores each intent by counting its keywords contained in the
// lowercased text. Substring containment, not tokenization: a longer and a
// shorter keyword can both match and both count. A zero maximum yields
// unknown with confidence 0.
func (c *Classifier) Route(text string) Classification {
	lowered := strings.ToLower(text)

	best := Classification{
		Intent:      IntentUnknown,
		Confidence:  0,
		Description: "未能识别的咨询意图",
	}
	bestScore := 0

	for _, rule := range intentTable {
		score := 0
		for _, kw := range rule.keywords {
			if strings.Contains(lowered, strings.ToLower(kw)) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = Classification{
				Intent:      rule.intent,
				Confidence:  confidence(score),
				Description: rule.description,
			}
		}
	}

	c.logger.Debug("intent routed", map[string]interface{}{
		"intent":     best.Intent,
		"score":      bestScore,
		"confidence": best.Confidence,
	})
	return best
}

// confidence maps a keyword count to min(score/3, 1.0), reproducible to two
// decimal digits.
func confidence(score int) float64 {
	c := float64(score) / 3
	if c > 1 {
		c = 1
	}
	return math.Round(c*100) / 100
}
