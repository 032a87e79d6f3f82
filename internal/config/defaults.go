package config

import "time"

// Default returns the built-in configuration.
func Default() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Workflow: WorkflowConfig{
			MaxRetries:              3,
			RetryDelaySeconds:       5,
			ContinueOnFailure:       true,
			SaveIntermediateResults: true,
		},
		News: NewsConfig{
			Keywords: []string{
				"AI policy", "algorithmic accountability", "data privacy",
				"AI regulation", "responsible AI", "online safety",
			},
			DaysBack:      14,
			MaxResults:    5,
			Language:      "en",
			CountryFocus:  "US",
			SourceDomains: []string{"gov", "edu", "org"},
			ResourceLinks: []string{
				"https://www.oecd.ai",
				"https://ai.gov",
				"https://data.gov",
				"https://www.whitehouse.gov/ostp/",
				"https://www.europa.eu",
			},
			EventCalendars: []string{"https://oecd.ai/en/events"},
			SearchWorkers:  4,
			EnrichWorkers:  4,
		},
		Social: SocialConfig{
			Accounts: map[string][]string{
				"twitter":  {"https://twitter.com/OECDinnovation"},
				"linkedin": {"https://www.linkedin.com/company/oecd"},
			},
			Keywords:           []string{"AI", "policy", "regulation", "privacy", "governance"},
			MaxPostsPerAccount: 5,
			LookbackDays:       7,
			PriorityCategories: []string{"product_launch", "announcement", "technical"},
		},
		Generation: GenerationConfig{
			BrandName:    "AI-Curation",
			BrandTagline: "Curated insights on responsible technology",
			BrandVoice: map[string]string{
				"tone":        "informative",
				"style":       "clear and concise",
				"perspective": "neutral",
				"avoid":       "hype and speculation",
			},
			TargetAudience: map[string]string{
				"primary":         "policy professionals",
				"knowledge_level": "intermediate",
			},
			DefaultContentType: "blog_post",
			SummaryLength:      "medium",
			BlogPostLength:     "800-1200 words",
			IncludeSEO:         true,
			IncludeCTA:         true,
		},
		Search: SearchConfig{},
		LLM: LLMConfig{
			Endpoint: "https://api.openai.com/v1/chat/completions",
			Model:    "gpt-4o-mini",
		},
		Paths: PathsConfig{
			Output:  "output",
			Content: "output/content",
			Logs:    "output/logs",
		},
		Scheduler: SchedulerConfig{CronExpression: "0 6 * * *", Timezone: defaultTimezone, location: tz},
		Logging:   LoggingConfig{Level: "info", Format: "text"},
	}
}
