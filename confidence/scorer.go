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


// Package confidence derives a single [0,1] trust score from retrieval
// coverage and the shape of generated guidance. The score is purely
// descriptive: it never feeds back into retrieval or generation.
package confidence

import (
	"math"

	"github.com/poiesic/essayguide/core"
)

// Config holds the scoring weights and thresholds.
type Config struct {
	// MaterialWeight is earned in proportion to min(materials/MaterialTarget, 1).
	MaterialWeight float64
	MaterialTarget int

	// EssayWeight is earned in proportion to min(essays/EssayTarget, 1).
	EssayWeight float64
	EssayTarget int

	// CompletenessWeight is earned per satisfied guidance condition:
	// theme analysis longer than MinThemeLength characters, and at least
	// MinListEntries entries in each of the three suggestion lists.
	CompletenessWeight float64
	MinThemeLength     int
	MinListEntries     int
}

// DefaultConfig returns the standard scoring weights: 0.4 total for
// retrieval coverage, 0.6 total for guidance completeness.
func DefaultConfig() Config {
	return Config{
		MaterialWeight:     0.2,
		MaterialTarget:     3,
		EssayWeight:        0.2,
		EssayTarget:        2,
		CompletenessWeight: 0.15,
		MinThemeLength:     10,
		MinListEntries:     3,
	}
}

// Scorer computes confidence scores from retrieval counts and guidance shape.
type Scorer struct {
	cfg Config
}

// NewScorer creates a scorer. A zero-valued config selects the defaults.
func NewScorer(cfg Config) *Scorer {
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	return &Scorer{cfg: cfg}
}

// Score combines retrieval coverage and guidance completeness into one
// value in [0,1]. The sum cannot exceed 1 with the default weights, but
// the result is clipped anyway since weights are reconfigurable.
func (s *Scorer) Score(materialsFound, essaysFound int, guidance *core.WritingGuidance) float64 {
	score := s.cfg.MaterialWeight*coverage(materialsFound, s.cfg.MaterialTarget) +
		s.cfg.EssayWeight*coverage(essaysFound, s.cfg.EssayTarget)

	if guidance != nil {
		if len([]rune(guidance.ThemeAnalysis)) > s.cfg.MinThemeLength {
			score += s.cfg.CompletenessWeight
		}
		if len(guidance.StructureSuggestions) >= s.cfg.MinListEntries {
			score += s.cfg.CompletenessWeight
		}
		if len(guidance.WritingTips) >= s.cfg.MinListEntries {
			score += s.cfg.CompletenessWeight
		}
		if len(guidance.KeyPoints) >= s.cfg.MinListEntries {
			score += s.cfg.CompletenessWeight
		}
	}

	return math.Max(0, math.Min(score, 1))
}

// coverage is the fraction of the target count reached, capped at 1.
func coverage(found, target int) float64 {
	if target <= 0 || found <= 0 {
		return 0
	}
	return math.Min(float64(found)/float64(target), 1)
}
