package search

import (
	"github.com/clientpulse/kb/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterCandidateSelection(ids []core.ID)
	AfterLexicalScoring(scores map[core.ID]float32)
	AfterVectorScoring(scores map[core.ID]float32)
	VectorScoringSkipped(err error)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                           {}
func (n *noopMonitor) AfterCandidateSelection(_ []core.ID)      {}
func (n *noopMonitor) AfterLexicalScoring(_ map[core.ID]float32) {}
func (n *noopMonitor) AfterVectorScoring(_ map[core.ID]float32)  {}
func (n *noopMonitor) VectorScoringSkipped(_ error)             {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)            {}
