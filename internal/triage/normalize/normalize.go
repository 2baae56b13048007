// Package normalize converts free-form caregiver text into canonical values
// the decision engine can compare. All functions are pure and total: any
// input, including the empty string, yields a value or a "not found" result,
// never an error.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	arabicNumberRe = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)

	// Chinese numerals 1-99: an optional digit, a tens marker (十 or the
	// rarer 廿 = 20), an optional trailing digit; or a bare digit.
	// The tens alternative comes first so 三十六 is not read as 三.
	chineseNumberRe = regexp.MustCompile(`[一二两三四五六七八九]?[十廿][一二两三四五六七八九]?|[一二两三四五六七八九]`)

	temperatureRe = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)\s*(?:°C|℃|度|°)`)
)

var chineseDigits = map[rune]float64{
	'一': 1, '二': 2, '两': 2, '三': 3, '四': 4,
	'五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
}

// ParseNumber extracts the leading number in text, understanding both Arabic
// digits and Chinese numerals up to 99. Returns false when text contains no
// recognizable number.
func ParseNumber(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}

	arabic := arabicNumberRe.FindStringIndex(text)
	chinese := chineseNumberRe.FindStringIndex(text)

	switch {
	case arabic == nil && chinese == nil:
		return 0, false
	case arabic != nil && (chinese == nil || arabic[0] <= chinese[0]):
		v, err := strconv.ParseFloat(text[arabic[0]:arabic[1]], 64)
		if err != nil {
			return 0, false
		}
		return v, true
	default:
		return parseChineseNumber(text[chinese[0]:chinese[1]])
	}
}

// parseChineseNumber evaluates a match of chineseNumberRe: [digit]十[digit],
// 十[digit], 廿[digit], or a bare digit. A bare 十 is 10.
func parseChineseNumber(s string) (float64, bool) {
	runes := []rune(s)
	if len(runes) == 0 {
		return 0, false
	}

	tensAt := -1
	base := 0.0
	for i, r := range runes {
		if r == '十' {
			tensAt, base = i, 10
			break
		}
		if r == '廿' {
			tensAt, base = i, 20
			break
		}
	}

	if tensAt == -1 {
		v, ok := chineseDigits[runes[0]]
		return v, ok
	}

	total := base
	if tensAt > 0 {
		d, ok := chineseDigits[runes[tensAt-1]]
		if !ok {
			return 0, false
		}
		total = d * 10
	}
	if tensAt < len(runes)-1 {
		d, ok := chineseDigits[runes[tensAt+1]]
		if !ok {
			return 0, false
		}
		total += d
	}
	return total, true
}

// ParseDurationHours extracts a duration expressed as number+unit and
// normalizes it to hours. An unrecognized or missing unit yields 0.0, the
// explicit "unknown duration" sentinel.
func ParseDurationHours(text string) float64 {
	if text == "" {
		return 0
	}

	n, ok := ParseNumber(text)
	if !ok {
		n = 0
	}

	switch {
	case strings.Contains(text, "分钟") || strings.Contains(text, "minute") || strings.Contains(text, "min"):
		return n / 60
	case strings.Contains(text, "小时") || strings.Contains(text, "钟头") || strings.Contains(text, "hour"):
		return n
	case strings.Contains(text, "天") || strings.Contains(text, "day"):
		return n * 24
	default:
		return 0
	}
}

// ParseTemperature extracts the first number immediately preceding a degree
// marker. Returns false when the text carries no marked temperature.
func ParseTemperature(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}

	m := temperatureRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}

	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
