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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidMaterial indicates a Material failed validation.
	ErrInvalidMaterial = errors.New("invalid material")

	// ErrInvalidEssay indicates a SampleEssay failed validation.
	ErrInvalidEssay = errors.New("invalid sample essay")

	// ErrInvalidPrompt indicates an EssayPrompt failed validation.
	ErrInvalidPrompt = errors.New("invalid essay prompt")

	// ErrEmptyTitle indicates the Title field is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrEmptyContent indicates the Content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidEssayType indicates an unknown EssayType value.
	ErrInvalidEssayType = errors.New("invalid essay type")

	// ErrInvalidDifficulty indicates an unknown DifficultyLevel value.
	ErrInvalidDifficulty = errors.New("invalid difficulty level")

	// ErrInvalidContentType indicates an unknown ContentType value.
	ErrInvalidContentType = errors.New("invalid content type")

	// ErrTruncatedData indicates that serialized data was truncated during reading.
	ErrTruncatedData = errors.New("truncated data")
)
