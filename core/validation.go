// Copyright 2025 ClientPulse Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "fmt"

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Id and DocumentId must not be empty
//   - Text must not be empty
//   - TokenEstimate must be at least 1
//   - Seq must not be negative
//
// NOT validated (populated by the index):
//   - InsertedAt / UpdatedAt (set on upsert)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Id == "" || chunk.DocumentId == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyID)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyText)
	}

	if chunk.TokenEstimate < 1 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrInvalidTokenEstimate)
	}

	if chunk.Seq < 0 {
		return fmt.Errorf("%w: negative sequence index %d", ErrInvalidChunk, chunk.Seq)
	}

	return nil
}

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Id must not be empty
//   - Source must be a known SourceKind
//
// NOT validated:
//   - AllowedViewers (empty means default-allow, which is legal)
//   - Title / Project / WorkspaceId (optional metadata)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Id == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyID)
	}

	if err := ValidateSourceKind(doc.Source); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	return nil
}

// ValidateEmbedding validates an EmbeddingVector according to domain rules.
func ValidateEmbedding(emb *EmbeddingVector) error {
	if emb == nil {
		return fmt.Errorf("%w: embedding is nil", ErrInvalidEmbedding)
	}

	if emb.ChunkId == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEmbedding, ErrEmptyID)
	}

	if emb.Model == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEmbedding, ErrEmptyModel)
	}

	return nil
}

// ValidateSourceKind validates that a SourceKind has a known value.
func ValidateSourceKind(kind SourceKind) error {
	switch kind {
	case SourceSlack, SourceFathom, SourceDrive, SourceTeamwork, SourceGitHub, SourceHarvest:
		return nil
	default:
		return fmt.Errorf("%w: value %d", ErrInvalidSourceKind, kind)
	}
}
