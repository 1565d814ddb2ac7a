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


// Package chunk splits ordered source segments into bounded text windows.
//
// The Chunker uses a rolling character buffer rather than a tokenizer: it is
// fast, deterministic, and good enough as an embedding window. Segments are
// the atomic unit; a segment longer than the target budget becomes an
// oversized chunk on its own rather than being split mid-segment.
package chunk
