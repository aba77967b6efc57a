package services

import "rewind-bknd/internal/models"

// DesignGuidelines returns the rule-of-thumb ranges shown beside the reference tables.
func DesignGuidelines() []models.DesignGuideline {
	return []models.DesignGuideline{
		{
			Parameter: "current_density",
			Unit:      "A/mm²",
			Ranges: []models.GuidelineRange{
				{Label: "Natural cooling (S1)", Range: "3-4"},
				{Label: "Forced ventilation", Range: "4-5"},
				{Label: "Intermittent duty (S2-S3)", Range: "5-6"},
			},
		},
		{
			Parameter: "magnetic_induction",
			Unit:      "T",
			Ranges: []models.GuidelineRange{
				{Label: "Asynchronous motors", Range: "0.8-1.2"},
				{Label: "Synchronous motors", Range: "1.0-1.4"},
				{Label: "Electric brakes", Range: "0.6-0.9"},
				{Label: "Electromagnets", Range: "1.2-1.6"},
			},
		},
		{
			Parameter: "efficiency",
			Unit:      "%",
			Ranges: []models.GuidelineRange{
				{Label: "Motors < 1 kW", Range: "70-80"},
				{Label: "Motors 1-10 kW", Range: "80-88"},
				{Label: "Motors > 10 kW", Range: "88-93"},
			},
		},
		{
			Parameter: "power_factor",
			Unit:      "cos φ",
			Ranges: []models.GuidelineRange{
				{Label: "2-pole motors", Range: "0.80-0.85"},
				{Label: "4-pole motors", Range: "0.85-0.90"},
				{Label: "6-8 pole motors", Range: "0.75-0.85"},
			},
		},
	}
}

// Safety returns the professional disclaimer attached to every result.
func Safety() models.SafetyNotice {
	return models.SafetyNotice{
		Title:   "Professional warning",
		Summary: "These calculations are indicative only. A motor rewind must be:",
		Checks: []string{
			"Validated by on-site measurements (existing turn count, wire diameter)",
			"Tested without load before being put under load",
			"Checked for temperature rise",
			"Checked for electrical insulation (megohmmeter)",
			"Compliant with applicable standards (NF, IEC)",
			"Carried out by a qualified professional",
		},
		Warning: "Commissioning a badly rewound motor carries serious risks: fire, electrocution, material damage and injury.",
		Disclaimers: []string{
			"The user is solely responsible for the implementation.",
		},
	}
}
