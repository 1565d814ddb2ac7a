// Package signals detects risk and opportunity signals in indexed content.
//
// Two modes are provided. The Detector analyzes single chunks at ingestion
// time with ordered regex rules plus an optional LLM classifier, producing
// one alert per detected signal type. ScoreBatch analyzes a whole batch of
// chunks with plain keyword counting and promotes only the best chunk per
// rule, which suits digest-style reporting over a full document.
package signals
