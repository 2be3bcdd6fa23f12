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


// Package index provides the vector index for embedded content chunks.
//
// Two backends implement the Index interface:
//
//   - memory: chunks and vectors held in process memory, cosine similarity
//   - badger: chunks and vectors persisted in BadgerDB, Euclidean distance
//     converted to 1/(1+d)
//
// Both backends report scores in (0, 1] with higher meaning more similar,
// so the retrieval layer fuses results without caring which backend is
// active.
//
// Backend selection happens once, at Open time. A persistent path that
// cannot be opened degrades to the memory backend with a warning instead
// of failing; per-query fallback is deliberately not supported because
// the two backends return differently scaled raw distances.
//
// The corpus is small (hundreds of chunks), so both backends scan
// linearly. Approximate nearest neighbor structures would cost more in
// build complexity than they save at this scale.
package index
