package danger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "pediatric-triage/internal/common/errors"
	"pediatric-triage/internal/common/logger"
)

func writeRuleFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRules_Valid(t *testing.T) {
	path := writeRuleFile(t, `[
		{
			"category": "呼吸系统",
			"signals": [
				{
					"keywords": ["呼吸"],
					"danger_conditions": ["呼吸困难"],
					"action": "立即拨打120",
					"reason": "呼吸道梗阻风险"
				}
			]
		}
	]`)

	rules, err := LoadRules(path, logger.NewTestLogger(t))
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "呼吸系统", rules[0].Category)
	require.Len(t, rules[0].Signals, 1)
	assert.Equal(t, []string{"呼吸困难"}, rules[0].Signals[0].DangerConditions)
}

func TestLoadRules_MissingFileDegradesToEmpty(t *testing.T) {
	rules, err := LoadRules(filepath.Join(t.TempDir(), "absent.json"), logger.NewTestLogger(t))
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestLoadRules_CorruptJSONIsFatal(t *testing.T) {
	path := writeRuleFile(t, `[{"category": "呼吸系统",`)

	_, err := LoadRules(path, logger.NewTestLogger(t))
	require.Error(t, err)
	assert.Equal(t, commonerrors.ErrCodeRuleFileUnreadable, commonerrors.CodeOf(err))
}

func TestLoadRules_SchemaViolationDegradesToEmpty(t *testing.T) {
	// signals missing the required action/reason fields
	path := writeRuleFile(t, `[
		{
			"category": "呼吸系统",
			"signals": [{"keywords": ["呼吸"], "danger_conditions": ["呼吸困难"]}]
		}
	]`)

	rules, err := LoadRules(path, logger.NewTestLogger(t))
	require.NoError(t, err)
	assert.Empty(t, rules)
}
