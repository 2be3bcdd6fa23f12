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

import "fmt"

// ValidateMaterial validates a Material according to domain rules.
//
// Validation rules:
//   - Title must not be empty
//   - Content must not be empty
//   - Difficulty must be a known level
//
// NOT validated:
//   - ID (0 is valid before ContentID assignment)
//   - Keywords, Category, Source (optional)
func ValidateMaterial(material *Material) error {
	if material == nil {
		return fmt.Errorf("%w: material is nil", ErrInvalidMaterial)
	}

	if material.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidMaterial, ErrEmptyTitle)
	}

	if material.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidMaterial, ErrEmptyContent)
	}

	if err := ValidateDifficulty(material.Difficulty); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMaterial, err)
	}

	return nil
}

// ValidateSampleEssay validates a SampleEssay according to domain rules.
//
// Validation rules:
//   - Title must not be empty
//   - Content must not be empty
//   - EssayType must be a known type
//   - Difficulty must be a known level
//
// NOT validated:
//   - Score (0 means ungraded), Highlights (optional)
func ValidateSampleEssay(essay *SampleEssay) error {
	if essay == nil {
		return fmt.Errorf("%w: essay is nil", ErrInvalidEssay)
	}

	if essay.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEssay, ErrEmptyTitle)
	}

	if essay.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEssay, ErrEmptyContent)
	}

	if err := ValidateEssayType(essay.EssayType); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEssay, err)
	}

	if err := ValidateDifficulty(essay.Difficulty); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEssay, err)
	}

	return nil
}

// ValidateEssayPrompt validates an EssayPrompt before query construction.
func ValidateEssayPrompt(prompt *EssayPrompt) error {
	if prompt == nil {
		return fmt.Errorf("%w: prompt is nil", ErrInvalidPrompt)
	}

	if prompt.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPrompt, ErrEmptyTitle)
	}

	if err := ValidateEssayType(prompt.EssayType); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPrompt, err)
	}

	if err := ValidateDifficulty(prompt.Difficulty); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPrompt, err)
	}

	return nil
}

// ValidateEssayType validates that an EssayType has a known value.
func ValidateEssayType(essayType EssayType) error {
	switch essayType {
	case EssayTypeNarrative, EssayTypeDescriptive, EssayTypeArgumentative, EssayTypeExpository:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidEssayType, essayType)
}

// ValidateDifficulty validates that a DifficultyLevel has a known value.
func ValidateDifficulty(level DifficultyLevel) error {
	switch level {
	case DifficultyElementary, DifficultyMiddle, DifficultyHigh, DifficultyAdvanced:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidDifficulty, level)
}

// ValidateContentType validates that a ContentType has a known value.
func ValidateContentType(contentType ContentType) error {
	switch contentType {
	case ContentTypeMaterial, ContentTypeEssay:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidContentType, contentType)
}
