package signals

import (
	"regexp"
	"unicode/utf8"

	"github.com/clientpulse/kb/core"
)

// quoteLimit caps the excerpt carried on an alert.
const quoteLimit = 200

// rule pairs a signal type with its ordered keyword patterns.
// The first matching pattern fires the rule; later patterns are not tried.
type rule struct {
	signal   core.SignalType
	patterns []*regexp.Regexp
}

func compile(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		compiled = append(compiled, regexp.MustCompile("(?i)"+pattern))
	}
	return compiled
}

// catalog holds the keyword rules in a fixed order so detection output is
// deterministic. RiskSentiment has no keyword patterns; it is only ever
// raised by the classifier.
var catalog = []rule{
	{
		signal: core.SignalRiskBudget,
		patterns: compile(
			`\bbudget\b.*\b(concern|issue|problem|tight|over|exceed)`,
			`\bcost\b.*\b(concern|issue|overrun|too high)`,
			`\bexpensive\b`,
			`\bcan't afford\b`,
			`\bout of budget\b`,
		),
	},
	{
		signal: core.SignalRiskSchedule,
		patterns: compile(
			`\bdeadline\b.*\b(miss|slip|delay|concern)`,
			`\bbehind schedule\b`,
			`\bdelayed?\b`,
			`\btimeline\b.*\b(concern|issue|slip)`,
			`\bwon't make it\b`,
			`\bpushed back\b`,
		),
	},
	{
		signal: core.SignalRiskScope,
		patterns: compile(
			`\bscope\b.*\b(creep|change|expand|grow)`,
			`\badditional requirements\b`,
			`\bmore than expected\b`,
			`\bkeep adding\b`,
			`\bout of scope\b`,
		),
	},
	{
		signal: core.SignalOpportunityAdditionalWork,
		patterns: compile(
			`\badditional (work|project|phase)\b`,
			`\bnext phase\b`,
			`\bfollow-?up (project|work)\b`,
			`\bmore work\b`,
			`\bexpand.*scope\b`,
			`\banother project\b`,
		),
	},
	{
		signal: core.SignalOpportunityReferral,
		patterns: compile(
			`\brecommend\b.*\b(you|your team)\b`,
			`\breferr?(al|ed)\b`,
			`\bknow (someone|people|others)\b`,
			`\bintroduce\b.*\bto\b`,
		),
	},
	{
		signal: core.SignalOpportunityExpansion,
		patterns: compile(
			`\bother (teams?|departments?|areas?)\b`,
			`\bcompany-?wide\b`,
			`\broll out\b.*\b(broader|wider)\b`,
			`\bexpand\b.*\b(to|across)\b`,
		),
	},
}

// titles maps each signal type to its alert headline.
var titles = map[core.SignalType]string{
	core.SignalRiskBudget:                "Budget Concern Detected",
	core.SignalRiskSchedule:              "Schedule Risk Detected",
	core.SignalRiskScope:                 "Scope Creep Detected",
	core.SignalRiskSentiment:             "Client Sentiment Concern",
	core.SignalOpportunityAdditionalWork: "Additional Work Opportunity",
	core.SignalOpportunityReferral:       "Referral Opportunity",
	core.SignalOpportunityExpansion:      "Expansion Opportunity",
}

// titleFor returns the headline for a signal type.
func titleFor(signal core.SignalType) string {
	if title, ok := titles[signal]; ok {
		return title
	}
	return "Signal: " + signal.String()
}

// makeQuote extracts the leading excerpt of the chunk text.
func makeQuote(text string) string {
	if len(text) <= quoteLimit {
		return text
	}
	end := quoteLimit
	// Never cut mid-rune.
	for end > 0 && !utf8.RuneStart(text[end]) {
		end--
	}
	return text[:end] + "..."
}
