package openai

import (
	"fmt"
	"strings"

	"github.com/clientpulse/kb/core"
)

const classifierPromptTemplate = `You review excerpts of client communication for a consulting firm and flag
signals worth a human look. The possible signal codes are:

%s

Reply with ONLY the matching codes, comma-separated, in one line. If the text
carries no signal, reply with exactly NONE. Do not include any preamble,
explanation, or other text.

Examples:

Input: "honestly I'm worried we'll blow through the budget this quarter"
Output: RISK_BUDGET

Input: "the deadline is slipping and they keep asking for new dashboards"
Output: RISK_SCHEDULE, RISK_SCOPE

Input: "my colleague at Acme could use your help, want an intro?"
Output: OPPORTUNITY_REFERRAL

Input: "attached are the meeting notes from Tuesday"
Output: NONE`

const summarizerSystemPrompt = `Summarize the excerpt of client communication in one or two short plain
sentences. State what happened, not your opinion of it. Do not include any
preamble or formatting.`

// classifierSystemPrompt builds the classifier prompt with the signal codes
// and their meanings embedded.
func classifierSystemPrompt() string {
	lines := make([]string, 0, len(core.SignalTypes))
	for _, t := range core.SignalTypes {
		lines = append(lines, fmt.Sprintf("- %s: %s", t.Code(), signalHint(t)))
	}
	return fmt.Sprintf(classifierPromptTemplate, strings.Join(lines, "\n"))
}

// signalHint gives the model a one-line gloss for each code.
func signalHint(t core.SignalType) string {
	switch t {
	case core.SignalRiskBudget:
		return "concern about cost, budget, or invoices"
	case core.SignalRiskSchedule:
		return "concern about deadlines, delays, or timeline"
	case core.SignalRiskScope:
		return "scope creep or changing requirements"
	case core.SignalRiskSentiment:
		return "frustration, disappointment, or dissatisfaction"
	case core.SignalOpportunityAdditionalWork:
		return "interest in additional or follow-on work"
	case core.SignalOpportunityReferral:
		return "offering to refer or introduce other clients"
	case core.SignalOpportunityExpansion:
		return "interest in expanding to other teams or areas"
	default:
		return "unspecified"
	}
}
