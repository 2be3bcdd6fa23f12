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


package search

import "errors"

var (
	// ErrMaterialRepositoryRequired is returned when a material repository is not provided.
	ErrMaterialRepositoryRequired = errors.New("material repository required")

	// ErrEssayRepositoryRequired is returned when an essay repository is not provided.
	ErrEssayRepositoryRequired = errors.New("essay repository required")

	// ErrIndexRequired is returned when a vector index is not provided.
	ErrIndexRequired = errors.New("vector index required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrInvalidPrompt is returned when a prompt fails validation.
	ErrInvalidPrompt = errors.New("invalid prompt")
)
