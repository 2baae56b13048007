package decision

// symptomHandlers builds the per-symptom dispatch table. Keys are the
// canonical symptom tags produced by normalize.CanonicalSymptom.
func symptomHandlers() map[string][]rule {
	return map[string][]rule{
		"发烧": feverRules(),
		"咳嗽": coughRules(),
		"呕吐": vomitingRules(),
		"皮疹": rashRules(),
		"腹泻": diarrheaRules(),
		"抽搐": convulsionRules(),
	}
}

func feverRules() []rule {
	return []rule{
		{
			// The youngest-age rule dominates everything else: with fever as
			// the primary symptom, an infant under 3 months escalates no
			// matter what the temperature or mental state says.
			when: func(f facts) bool {
				return f.hasAge && f.ageMonths < 3
			},
			level:  LevelEmergency,
			reason: "3月龄以下婴儿出现发热",
			action: "立即就医，3个月以下婴儿发热必须由医生当面评估",
		},
		{
			// Threshold is inclusive: exactly 39.0°C with listlessness fires.
			when: func(f facts) bool {
				return f.hasTemp && f.temperature >= 39.0 && listless(f)
			},
			level:  LevelEmergency,
			reason: "高热（≥39°C）伴精神萎靡",
			action: "尽快前往儿科急诊",
		},
		{
			when: func(f facts) bool {
				return f.hasDuration && f.durationHours >= 72
			},
			level:  LevelEmergency,
			reason: "发热持续超过72小时",
			action: "尽快就医查明病因，持续发热需排除细菌感染",
		},
		{
			when:   func(facts) bool { return true },
			level:  LevelObserve,
			reason: "目前未见危急征象。需警惕：精神状态变差、体温升至39°C以上、发热超过3天、出现皮疹或抽搐",
			action: "在家观察，多补充水分，体温超过38.5°C可物理降温或遵医嘱用退烧药；出现上述任一情况请及时就医",
		},
	}
}

func coughRules() []rule {
	return []rule{
		{
			when: func(f facts) bool {
				return accompaniedBy(f, "呼吸困难", "喘", "发绀", "口唇发紫")
			},
			level:  LevelEmergency,
			reason: "咳嗽伴呼吸困难或缺氧表现",
			action: "立即前往儿科急诊",
		},
		{
			when: func(f facts) bool {
				return f.hasAge && f.ageMonths < 3 && f.hasTemp
			},
			level:  LevelEmergency,
			reason: "3月龄以下婴儿咳嗽伴发热",
			action: "立即就医，小月龄呼吸道感染进展快",
		},
		{
			when: func(f facts) bool {
				return f.hasDuration && f.durationHours >= 14*24
			},
			level:  LevelObserve,
			reason: "咳嗽持续超过两周",
			action: "建议就诊评估是否存在气道高反应或迁延性感染",
		},
		{
			when:   func(facts) bool { return true },
			level:  LevelObserve,
			reason: "目前未见危急征象。需警惕：呼吸急促、喘息、口唇发紫、精神变差",
			action: "保持室内湿度，少量多次饮水；如咳嗽加重或出现上述表现请及时就医",
		},
	}
}

func vomitingRules() []rule {
	return []rule{
		{
			when: func(f facts) bool {
				return dehydrated(f) || listless(f)
			},
			level:  LevelEmergency,
			reason: "呕吐伴脱水或精神差表现",
			action: "立即就医，必要时需静脉补液",
		},
		{
			when: func(f facts) bool {
				return accompaniedBy(f, "喷射状")
			},
			level:  LevelEmergency,
			reason: "喷射状呕吐",
			action: "立即就医，需排除颅内压增高",
		},
		{
			when: func(f facts) bool {
				return f.hasDuration && f.durationHours >= 24
			},
			level:  LevelObserve,
			reason: "呕吐持续超过24小时",
			action: "建议就诊，注意记录呕吐次数和性状",
		},
		{
			when:   func(facts) bool { return true },
			level:  LevelObserve,
			reason: "目前未见危急征象。需警惕：尿量减少、口干无泪、精神萎靡、呕吐物带血或呈喷射状",
			action: "暂禁食1-2小时后少量多次补液；出现上述任一情况请及时就医",
		},
	}
}

func rashRules() []rule {
	return []rule{
		{
			when: func(f facts) bool {
				return accompaniedBy(f, "出血点", "瘀斑", "紫癜")
			},
			level:  LevelEmergency,
			reason: "皮疹呈出血点或瘀斑样",
			action: "立即就医，需排除血液系统疾病和重症感染",
		},
		{
			when: func(f facts) bool {
				return f.hasTemp && f.temperature >= 38.5 && listless(f)
			},
			level:  LevelEmergency,
			reason: "皮疹伴高热和精神差",
			action: "尽快前往儿科急诊",
		},
		{
			when: func(f facts) bool {
				return f.hasTemp
			},
			level:  LevelObserve,
			reason: "皮疹伴发热，需鉴别幼儿急疹和其他出疹性疾病",
			action: "建议就诊确认皮疹性质，观察期间避免抓挠",
		},
		{
			when:   func(facts) bool { return true },
			level:  LevelRoutine,
			reason: "单纯皮疹且无发热等伴随表现",
			action: "保持皮肤清洁干燥，避免已知过敏原；如皮疹扩散或出现发热请就医",
		},
	}
}

func diarrheaRules() []rule {
	return []rule{
		{
			when: func(f facts) bool {
				return accompaniedBy(f, "便血", "血便")
			},
			level:  LevelEmergency,
			reason: "腹泻伴血便",
			action: "立即就医，需排除肠套叠和细菌性肠炎",
		},
		{
			when: func(f facts) bool {
				return dehydrated(f) || listless(f)
			},
			level:  LevelEmergency,
			reason: "腹泻伴脱水或精神差表现",
			action: "立即就医，必要时需静脉补液",
		},
		{
			when: func(f facts) bool {
				return f.hasDuration && f.durationHours >= 48
			},
			level:  LevelObserve,
			reason: "腹泻持续超过48小时",
			action: "建议就诊，可留取大便标本送检",
		},
		{
			when: func(f facts) bool {
				return f.hasDuration && f.durationHours <= 24
			},
			level:  LevelRoutine,
			reason: "病程尚短且无脱水或血便等危险征象",
			action: "口服补液盐少量多次补充，清淡饮食；如出现血便、尿少或精神差请就医",
		},
		{
			when:   func(facts) bool { return true },
			level:  LevelObserve,
			reason: "腹泻持续时间不明。需警惕：血便、尿量减少、口干无泪、精神萎靡",
			action: "注意补液并记录腹泻起始时间和次数；出现上述任一情况请及时就医",
		},
	}
}

func convulsionRules() []rule {
	return []rule{
		{
			when:   func(facts) bool { return true },
			level:  LevelEmergency,
			reason: "出现抽搐",
			action: "立即拨打120，发作时让孩子侧卧防止误吸，不要往口中塞任何东西",
		},
	}
}
