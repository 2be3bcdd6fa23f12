// Copyright 2025 Poiesic Systems
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


// Package search provides hybrid lexical and semantic retrieval of
// writing references.
//
// The Retriever type implements a two-pathway retrieval algorithm:
//   - A lexical pass over the content store's keyword search, scored by
//     title/body overlap with the prompt plus type and difficulty bonuses
//   - A semantic pass over the vector index
//
// Candidates from both pathways are fused by content ID with a
// max-then-weighted-sum rule, sorted, and split into capped material and
// essay lists. A pathway that fails contributes nothing instead of
// failing the run; an empty result is a valid outcome.
//
// The Indexer type rebuilds the vector index from the full content
// store. Rebuilds are exclusive against in-flight retrieval when both
// share a lock via WithExclusion/WithIndexerExclusion.
package search
