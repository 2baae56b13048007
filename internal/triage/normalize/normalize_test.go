package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected float64
		found    bool
	}{
		{name: "arabic integer", text: "38个月", expected: 38, found: true},
		{name: "arabic decimal", text: "体温38.5左右", expected: 38.5, found: true},
		{name: "chinese tens with digit", text: "三十六个月", expected: 36, found: true},
		{name: "chinese teens", text: "十二个月", expected: 12, found: true},
		{name: "bare ten", text: "十个月", expected: 10, found: true},
		{name: "chinese twenty-three", text: "二十三", expected: 23, found: true},
		{name: "nian twenty", text: "廿三天", expected: 23, found: true},
		{name: "liang as two", text: "两天", expected: 2, found: true},
		{name: "single digit", text: "五天了", expected: 5, found: true},
		{name: "arabic before chinese", text: "3天前吃了一次药", expected: 3, found: true},
		{name: "empty", text: "", found: false},
		{name: "no number", text: "一直哭闹", expected: 1, found: true},
		{name: "pure prose", text: "没什么胃口", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNumber(tt.text)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.InDelta(t, tt.expected, got, 1e-9)
			}
		})
	}
}

func TestParseDurationHours(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected float64
	}{
		{name: "minutes", text: "30分钟", expected: 0.5},
		{name: "hours", text: "2小时", expected: 2.0},
		{name: "days", text: "3天", expected: 72.0},
		{name: "chinese number of days", text: "三天", expected: 72.0},
		{name: "one day", text: "1天", expected: 24.0},
		{name: "unknown unit is the zero sentinel", text: "5周", expected: 0.0},
		{name: "no number no unit", text: "很久了", expected: 0.0},
		{name: "empty", text: "", expected: 0.0},
		{name: "unit without number", text: "几个小时", expected: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, ParseDurationHours(tt.text), 1e-9)
		})
	}
}

func TestParseTemperature(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected float64
		found    bool
	}{
		{name: "du marker", text: "烧到38.5度", expected: 38.5, found: true},
		{name: "celsius marker", text: "体温39℃", expected: 39, found: true},
		{name: "degree c marker", text: "40.2°C", expected: 40.2, found: true},
		{name: "integer", text: "量了是39度", expected: 39, found: true},
		{name: "number without marker", text: "38.5", found: false},
		{name: "no number", text: "有点烫", found: false},
		{name: "empty", text: "", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTemperature(tt.text)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.InDelta(t, tt.expected, got, 1e-9)
			}
		})
	}
}
