package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pediatric-triage/internal/common/logger"
)

func TestClassifier_Route(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		wantIntent     Intent
		wantConfidence float64
	}{
		{
			name:           "symptom consultation",
			text:           "孩子发烧呕吐怎么办",
			wantIntent:     IntentEmergencyTriage,
			wantConfidence: 1.0, // 发烧 + 呕吐 + 怎么办 = 3 keywords
		},
		{
			name:           "medication question",
			text:           "布洛芬的剂量是多少",
			wantIntent:     IntentMedication,
			wantConfidence: 0.67, // 布洛芬 + 剂量 (药 inside 布洛芬? no) = 2
		},
		{
			name:           "daily care question",
			text:           "辅食应该怎么加",
			wantIntent:     IntentDailyCare,
			wantConfidence: 0.33,
		},
		{
			name:           "no keywords at all",
			text:           "今天天气不错",
			wantIntent:     IntentUnknown,
			wantConfidence: 0,
		},
		{
			name:           "empty text",
			text:           "",
			wantIntent:     IntentUnknown,
			wantConfidence: 0,
		},
		{
			name:           "confidence caps at one",
			text:           "发烧咳嗽呕吐腹泻皮疹",
			wantIntent:     IntentEmergencyTriage,
			wantConfidence: 1.0,
		},
	}

	classifier := NewClassifier(logger.NewNoOpLogger())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.Route(tt.text)
			assert.Equal(t, tt.wantIntent, got.Intent)
			assert.InDelta(t, tt.wantConfidence, got.Confidence, 1e-9)
			assert.NotEmpty(t, got.Description)
		})
	}
}

// A tie on the maximum nonzero score must resolve to the intent declared
// first in the table, deterministically.
func TestClassifier_TieBreaksByDeclarationOrder(t *testing.T) {
	classifier := NewClassifier(logger.NewNoOpLogger())

	// 发烧 → emergency_triage 1; 美林 → medication 1. Emergency is declared first.
	got := classifier.Route("发烧能吃美林吗")
	assert.Equal(t, IntentEmergencyTriage, got.Intent)

	for i := 0; i < 10; i++ {
		again := classifier.Route("发烧能吃美林吗")
		assert.Equal(t, got.Intent, again.Intent)
		assert.Equal(t, got.Confidence, again.Confidence)
	}
}

// Substring containment means a longer and a shorter keyword both count.
func TestClassifier_OverlappingKeywordsBothCount(t *testing.T) {
	classifier := NewClassifier(logger.NewNoOpLogger())

	// 退烧药 contains both the 药 and 退烧药 keywords.
	got := classifier.Route("退烧药怎么选")
	assert.Equal(t, IntentMedication, got.Intent)
	assert.InDelta(t, 0.67, got.Confidence, 1e-9)
}
