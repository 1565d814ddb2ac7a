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

import "errors"

// Domain validation errors
var (
	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidEmbedding indicates an EmbeddingVector failed validation.
	ErrInvalidEmbedding = errors.New("invalid embedding")

	// ErrEmptyText indicates the Text field is empty.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrInvalidSourceKind indicates an unknown SourceKind value.
	ErrInvalidSourceKind = errors.New("invalid source kind")

	// ErrInvalidTokenEstimate indicates a token estimate below 1.
	ErrInvalidTokenEstimate = errors.New("token estimate must be at least 1")

	// ErrEmptyID indicates a required identifier is empty.
	ErrEmptyID = errors.New("id cannot be empty")

	// ErrEmptyModel indicates an embedding has no model identifier.
	ErrEmptyModel = errors.New("model identifier cannot be empty")
)
