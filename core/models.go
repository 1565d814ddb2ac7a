package core

//go:generate go run ../cmd/musgen

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a deterministic identifier for domain entities.
// IDs are derived from source coordinates and content digests, so re-deriving
// an ID from identical inputs always yields the identical value. Upserts keyed
// by ID are therefore idempotent.
type ID string

// ContentDigest returns a short hex digest of text using BLAKE2b.
// Identical content produces identical digests.
func ContentDigest(text string) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// DocumentIDFor derives the ID of a document from its source coordinates.
func DocumentIDFor(kind SourceKind, sourceID string) ID {
	return ID(kind.String() + ":" + sourceID)
}

// ChunkIDFor derives the ID of a chunk from its owning document, position,
// and a digest of its text. Re-chunking identical input yields identical IDs.
func ChunkIDFor(documentID ID, seq int, text string) ID {
	return ID(fmt.Sprintf("%s:%d:%s", documentID, seq, ContentDigest(text)))
}

// SourceKind identifies the upstream system a document came from.
type SourceKind int

const (
	// SourceSlack is chat messages from Slack.
	SourceSlack SourceKind = iota + 1
	// SourceFathom is call transcripts from Fathom.
	SourceFathom
	// SourceDrive is documents from Google Drive.
	SourceDrive
	// SourceTeamwork is issues/tasks from Teamwork.
	SourceTeamwork
	// SourceGitHub is issues and pull requests from GitHub.
	SourceGitHub
	// SourceHarvest is time entries from Harvest.
	SourceHarvest
)

// String returns the wire code for the source kind.
func (k SourceKind) String() string {
	switch k {
	case SourceSlack:
		return "slack"
	case SourceFathom:
		return "fathom"
	case SourceDrive:
		return "drive"
	case SourceTeamwork:
		return "teamwork"
	case SourceGitHub:
		return "github"
	case SourceHarvest:
		return "harvest"
	default:
		return fmt.Sprintf("source(%d)", int(k))
	}
}

// ParseSourceKind converts a wire code back into a SourceKind.
func ParseSourceKind(s string) (SourceKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "slack":
		return SourceSlack, nil
	case "fathom":
		return SourceFathom, nil
	case "drive":
		return SourceDrive, nil
	case "teamwork":
		return SourceTeamwork, nil
	case "github":
		return SourceGitHub, nil
	case "harvest":
		return SourceHarvest, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidSourceKind, s)
	}
}

// Segment is an ordered atomic unit of source text, produced by an upstream
// loader. Offsets are milliseconds for transcripts and byte positions for
// plain documents; the core treats them as opaque.
type Segment struct {
	StartMS int64
	EndMS   int64
	Speaker string
	Text    string
}

// Blank reports whether the segment carries no usable text.
func (s Segment) Blank() bool {
	return strings.TrimSpace(s.Text) == ""
}

// Chunk is the addressable unit of retrieval: a bounded window of consecutive
// segment text belonging to one document.
type Chunk struct {
	Id            ID
	DocumentId    ID
	Seq           int    // 0-based position within the document
	Speaker       string // speaker/author of the first contributing segment
	StartMS       int64
	EndMS         int64
	Text          string
	TokenEstimate int       // max(1, word count); a coarse proxy, not a tokenizer call
	InsertedAt    time.Time // When the chunk was inserted into the index
	UpdatedAt     time.Time // When the chunk was last updated
}

// Document is the owning entity for chunks. An empty AllowedViewers list
// means the document is visible to all viewers (default-allow).
type Document struct {
	Id             ID
	Source         SourceKind
	SourceId       string // ID in the source system (channel ID, call ID, ...)
	Title          string
	Project        string
	WorkspaceId    string
	AllowedViewers []string
	InsertedAt     time.Time
	UpdatedAt      time.Time
}

// VisibleTo reports whether a viewer may see this document's chunks.
// An empty allow-list grants universal visibility; this favors availability
// over confidentiality and is a policy choice, not a security boundary.
// An empty viewer identity is the admin/internal query mode: no filtering.
func (d *Document) VisibleTo(viewer string) bool {
	if viewer == "" || len(d.AllowedViewers) == 0 {
		return true
	}
	for _, allowed := range d.AllowedViewers {
		if strings.EqualFold(allowed, viewer) {
			return true
		}
	}
	return false
}

// EmbeddingVector is a stored embedding for a (chunk, model) pair.
// Vectors are L2-normalized at creation time, so dot product equals cosine
// similarity. Re-embedding under a new model identifier does not invalidate
// the old vector; both may coexist.
type EmbeddingVector struct {
	ChunkId    ID
	Model      string
	Vector     []float32
	InsertedAt time.Time
}

// SearchResult is one ranked hit from a hybrid search.
type SearchResult struct {
	ChunkId     ID
	DocumentId  ID
	Score       float32 // fused lexical + vector score, non-negative
	Rank        int     // 1-based, dense
	Text        string
	Speaker     string
	StartMS     int64
	EndMS       int64
	Project     string
	WorkspaceId string
}

// SignalType classifies a detected risk or opportunity.
type SignalType int

const (
	// SignalRiskBudget is a client expressing budget or cost concerns.
	SignalRiskBudget SignalType = iota + 1
	// SignalRiskSchedule is a concern about timeline or deadlines.
	SignalRiskSchedule
	// SignalRiskScope is scope creep or changing requirements.
	SignalRiskScope
	// SignalRiskSentiment is general frustration or dissatisfaction.
	SignalRiskSentiment
	// SignalOpportunityAdditionalWork is interest in more work.
	SignalOpportunityAdditionalWork
	// SignalOpportunityReferral is a client offering to refer others.
	SignalOpportunityReferral
	// SignalOpportunityExpansion is interest in expanding to other areas.
	SignalOpportunityExpansion
)

// SignalTypes lists every signal type in catalog order.
var SignalTypes = []SignalType{
	SignalRiskBudget,
	SignalRiskSchedule,
	SignalRiskScope,
	SignalRiskSentiment,
	SignalOpportunityAdditionalWork,
	SignalOpportunityReferral,
	SignalOpportunityExpansion,
}

// String returns the lowercase wire code for the signal type.
func (t SignalType) String() string {
	switch t {
	case SignalRiskBudget:
		return "risk_budget"
	case SignalRiskSchedule:
		return "risk_schedule"
	case SignalRiskScope:
		return "risk_scope"
	case SignalRiskSentiment:
		return "risk_sentiment"
	case SignalOpportunityAdditionalWork:
		return "opportunity_additional_work"
	case SignalOpportunityReferral:
		return "opportunity_referral"
	case SignalOpportunityExpansion:
		return "opportunity_expansion"
	default:
		return fmt.Sprintf("signal(%d)", int(t))
	}
}

// Code returns the uppercase classifier code for the signal type,
// e.g. "RISK_BUDGET". This is the contract spoken by LLM classifiers.
func (t SignalType) Code() string {
	return strings.ToUpper(t.String())
}

// Severity returns the alert severity assigned to this signal type.
// Budget risks are high; all other risk and opportunity types are medium.
// SeverityLow is reserved and currently unmapped by any type.
func (t SignalType) Severity() Severity {
	switch t {
	case SignalRiskBudget:
		return SeverityHigh
	case SignalRiskSchedule, SignalRiskScope, SignalRiskSentiment,
		SignalOpportunityAdditionalWork, SignalOpportunityReferral, SignalOpportunityExpansion:
		return SeverityMedium
	default:
		return SeverityMedium
	}
}

// Severity grades how urgent an alert is.
type Severity int

const (
	// SeverityLow is reserved for future rules; no catalog entry uses it.
	SeverityLow Severity = iota + 1
	// SeverityMedium is the default for risks and opportunities.
	SeverityMedium
	// SeverityHigh marks budget risks.
	SeverityHigh
)

// String returns the wire code for the severity.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Alert is a detected risk or opportunity signal in a chunk.
// Alerts are created once per (chunk, signal type) pair per detection pass;
// re-detection yields a new, independent instance.
type Alert struct {
	Id            string
	Signal        SignalType
	Severity      Severity
	Title         string
	Summary       string
	Quote         string // bounded-length excerpt of the chunk text
	SourceChunkId ID
	CreatedAt     time.Time
}
