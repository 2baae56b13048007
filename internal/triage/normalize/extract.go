package normalize

import (
	"regexp"
	"strings"
)

// Slot names shared by the extractor, the session store and the decision
// engine.
const (
	SlotSymptom      = "symptom"
	SlotAgeMonths    = "age_months"
	SlotTemperature  = "temperature"
	SlotDuration     = "duration"
	SlotMentalState  = "mental_state"
	SlotAccompanying = "accompanying_symptoms"
)

const numberPattern = `(?:[0-9]+(?:\.[0-9]+)?|[一二两三四五六七八九]?[十廿][一二两三四五六七八九]?|[一二两三四五六七八九])`

var (
	ageMonthsRe = regexp.MustCompile(numberPattern + `\s*个月`)
	ageYearsRe  = regexp.MustCompile(numberPattern + `\s*(?:周岁|岁)`)
	durationRe  = regexp.MustCompile(numberPattern + `\s*(?:分钟|个?半?小时|天)`)
)

// symptomAliases maps utterance phrasings to the canonical symptom tags the
// decision engine dispatches on. Order matters: the first alias found in the
// text names the primary symptom.
var symptomAliases = []struct {
	alias     string
	canonical string
}{
	{"抽搐", "抽搐"},
	{"惊厥", "抽搐"},
	{"发烧", "发烧"},
	{"发热", "发烧"},
	{"高烧", "发烧"},
	{"低烧", "发烧"},
	{"烧", "发烧"},
	{"咳嗽", "咳嗽"},
	{"呕吐", "呕吐"},
	{"吐了", "呕吐"},
	{"腹泻", "腹泻"},
	{"拉肚子", "腹泻"},
	{"皮疹", "皮疹"},
	{"出疹", "皮疹"},
	{"疹子", "皮疹"},
}

var mentalStateKeywords = []string{
	"精神萎靡", "萎靡", "嗜睡", "昏睡", "精神差", "没精神",
	"精神不好", "烦躁", "哭闹不止", "反应迟钝",
}

var accompanyingKeywords = []string{
	"流鼻涕", "鼻塞", "咽痛", "喉咙痛", "呼吸困难", "喘",
	"便血", "血便", "出血点", "瘀斑", "尿少", "口干", "无泪",
	"喷射状", "耳痛", "食欲不振", "不吃奶", "口唇发紫", "发绀",
}

// CanonicalSymptom maps a free-form symptom mention to its canonical tag.
func CanonicalSymptom(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	for _, a := range symptomAliases {
		if a.alias == s || a.canonical == s || strings.Contains(s, a.alias) {
			return a.canonical, true
		}
	}
	return "", false
}

// Extract pulls the entities the triage core tracks out of one utterance.
// Only slots the utterance actually mentions appear in the result; merging
// partial maps across turns is the session store's job.
func Extract(text string) map[string]interface{} {
	entities := make(map[string]interface{})
	if strings.TrimSpace(text) == "" {
		return entities
	}

	primary := ""
	var secondary []string
	for _, a := range symptomAliases {
		if !strings.Contains(text, a.alias) {
			continue
		}
		switch {
		case primary == "":
			primary = a.canonical
		case a.canonical != primary && !contains(secondary, a.canonical):
			secondary = append(secondary, a.canonical)
		}
	}
	if primary != "" {
		entities[SlotSymptom] = primary
	}

	if months, ok := extractAgeMonths(text); ok {
		entities[SlotAgeMonths] = months
	}

	if temp, ok := ParseTemperature(text); ok {
		entities[SlotTemperature] = temp
	}

	if m := durationRe.FindString(text); m != "" {
		entities[SlotDuration] = m
	}

	for _, kw := range mentalStateKeywords {
		if strings.Contains(text, kw) {
			entities[SlotMentalState] = kw
			break
		}
	}

	accompanying := secondary
	for _, kw := range accompanyingKeywords {
		if strings.Contains(text, kw) && !contains(accompanying, kw) {
			accompanying = append(accompanying, kw)
		}
	}
	if len(accompanying) > 0 {
		entities[SlotAccompanying] = strings.Join(accompanying, ",")
	}

	return entities
}

// extractAgeMonths reads ages phrased in months or years, normalized to
// months. A month phrasing wins over a year phrasing in the same utterance.
func extractAgeMonths(text string) (float64, bool) {
	if m := ageMonthsRe.FindString(text); m != "" {
		if n, ok := ParseNumber(m); ok {
			return n, true
		}
	}
	if m := ageYearsRe.FindString(text); m != "" {
		if n, ok := ParseNumber(m); ok {
			return n * 12, true
		}
	}
	return 0, false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
