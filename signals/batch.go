package signals

import (
	"strings"

	"github.com/clientpulse/kb/core"
)

// batchRule is a named keyword list for batch scoring.
// Unlike the per-chunk catalog these are plain substrings, not patterns,
// and every occurrence counts toward the score.
type batchRule struct {
	name     string
	keywords []string
}

// batchRules holds the batch scoring rules in a fixed order.
var batchRules = []batchRule{
	{
		name: "budget_risk",
		keywords: []string{
			"budget",
			"over budget",
			"too expensive",
			"cost overrun",
			"scope creep",
			"out of scope",
			"change order",
			"cannot afford",
		},
	},
	{
		name: "schedule_risk",
		keywords: []string{
			"slipping",
			"behind schedule",
			"delay",
			"deadline",
			"blocked",
			"pushed back",
			"need more time",
			"not ready",
		},
	},
	{
		name: "satisfaction_risk",
		keywords: []string{
			"frustrated",
			"unhappy",
			"concerned",
			"not working",
			"quality issue",
			"rework",
		},
	},
	{
		name: "opportunity",
		keywords: []string{
			"can you also",
			"additional work",
			"phase two",
			"expansion",
			"maintenance",
			"support retainer",
			"new project",
			"integration",
			"referral",
		},
	},
}

// BatchAlert is the outcome of batch scoring: the single highest-scoring
// chunk for one rule across the whole batch.
type BatchAlert struct {
	// Rule is the batch rule name, e.g. "budget_risk".
	Rule string

	// Score is the keyword occurrence total of the best chunk.
	// Always strictly positive.
	Score float32

	// Chunk is the best chunk for this rule.
	Chunk *core.Chunk
}

// ScoreBatch runs keyword scoring over a batch of chunks, typically all
// chunks of one document. For each rule only the single best chunk is
// promoted, and only when its score is strictly positive. Ties keep the
// earlier chunk.
func ScoreBatch(chunks []*core.Chunk) []*BatchAlert {
	var alerts []*BatchAlert
	for _, rule := range batchRules {
		var best *core.Chunk
		var bestScore float32

		for _, chunk := range chunks {
			if chunk == nil {
				continue
			}
			text := strings.ToLower(chunk.Text)
			var score float32
			for _, keyword := range rule.keywords {
				score += float32(strings.Count(text, keyword))
			}
			if score > bestScore {
				bestScore = score
				best = chunk
			}
		}

		if bestScore > 0 && best != nil {
			alerts = append(alerts, &BatchAlert{
				Rule:  rule.name,
				Score: bestScore,
				Chunk: best,
			})
		}
	}
	return alerts
}
