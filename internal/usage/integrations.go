package usage

// Integration describes how usage of a third-party app is observed.
type Integration struct {
	Supported string `json:"supported"`
	Method    string `json:"method"`
	Note      string `json:"note"`
}

// Integrations returns the catalog of supported app integrations.
func Integrations() map[string]Integration {
	return map[string]Integration{
		"instagram": {
			Supported: "partial",
			Method:    "OS usage stats + foreground app detection",
			Note:      "No direct content/feed API is used; behavior is inferred from app usage metadata.",
		},
		"facebook": {
			Supported: "partial",
			Method:    "OS usage stats + foreground app detection",
			Note:      "Direct timeline-content analytics are not available through this MVP.",
		},
		"youtube_shorts": {
			Supported: "partial",
			Method:    "OS usage stats + category/session heuristics",
			Note:      "Shorts-specific segmentation is heuristic-based unless native accessibility hooks are approved.",
		},
		"tiktok": {
			Supported: "partial",
			Method:    "OS usage stats + session pattern heuristics",
			Note:      "No API-level content inspection; app-level time monitoring only.",
		},
	}
}
