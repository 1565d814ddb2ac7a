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


// Package search provides hybrid lexical and vector search over indexed chunks.
//
// The Searcher combines:
//   - Lexical scoring: summed occurrence counts of the query tokens
//   - Vector scoring: dot product against stored embeddings of the active model
//   - Access filtering: per-document viewer allow-lists and request filters
//
// The two scores are fused additively without normalization, sorted with a
// stable descending sort, and assigned dense 1-based ranks, so identical
// inputs always produce identical output.
package search
