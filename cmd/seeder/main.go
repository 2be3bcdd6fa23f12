package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"

	"github.com/poiesic/essayguide"
	"github.com/poiesic/essayguide/core"
)

var materials = []*core.Material{
	{
		Title:      "Friendship in Hard Times",
		Content:    "True friendship shows itself when times are hard. A friend who stays through failure is worth more than a crowd that cheers success.",
		Category:   "relationships",
		Keywords:   []string{"friendship", "loyalty", "adversity"},
		Difficulty: core.DifficultyMiddle,
		Source:     "editorial corpus",
	},
	{
		Title:      "The Courage to Begin Again",
		Content:    "Every setback carries the seed of a new start. Courage is not the absence of fear but the decision to act despite it.",
		Category:   "growth",
		Keywords:   []string{"courage", "perseverance", "failure"},
		Difficulty: core.DifficultyMiddle,
		Source:     "editorial corpus",
	},
	{
		Title:      "Nature as a Quiet Teacher",
		Content:    "A river does not argue with the stone in its path; it finds a way around. Observation of nature rewards the patient writer with images no textbook supplies.",
		Category:   "nature",
		Keywords:   []string{"nature", "patience", "observation"},
		Difficulty: core.DifficultyHigh,
		Source:     "editorial corpus",
	},
	{
		Title:      "Small Acts of Kindness",
		Content:    "Kindness costs little and compounds. The bus seat offered, the door held, the honest compliment: these small acts shape a community more than grand gestures.",
		Category:   "values",
		Keywords:   []string{"kindness", "community", "empathy"},
		Difficulty: core.DifficultyElementary,
		Source:     "editorial corpus",
	},
	{
		Title:      "On Reading Widely",
		Content:    "A reader lives a thousand lives. Wide reading furnishes the mind with examples, counterexamples, and the cadence of good prose.",
		Category:   "learning",
		Keywords:   []string{"reading", "knowledge", "habit"},
		Difficulty: core.DifficultyHigh,
		Source:     "editorial corpus",
	},
	{
		Title:      "Quotes on Perseverance",
		Content:    "Fall seven times, stand up eight. The drop hollows the stone not by force but by falling often.",
		Category:   "quotes",
		Keywords:   []string{"perseverance", "persistence"},
		Difficulty: core.DifficultyMiddle,
		Source:     "editorial corpus",
	},
	{
		Title:      "Technology and Attention",
		Content:    "The notification is a tollbooth on the road of thought. Guarding attention has become a modern discipline as real as any older virtue.",
		Category:   "society",
		Keywords:   []string{"technology", "attention", "discipline"},
		Difficulty: core.DifficultyAdvanced,
		Source:     "editorial corpus",
	},
	{
		Title:      "The Family Dinner Table",
		Content:    "Around the dinner table, ordinary days become shared history. Family rituals anchor us when everything else moves.",
		Category:   "family",
		Keywords:   []string{"family", "tradition", "belonging"},
		Difficulty: core.DifficultyElementary,
		Source:     "editorial corpus",
	},
}

var essays = []*core.SampleEssay{
	{
		Title:      "The Friendship That Changed Me",
		Content:    "Our friendship began over a dropped lunch tray and a shared laugh. Through the years that followed, I learned that friendship is less about constant company than about dependable presence.",
		EssayType:  core.EssayTypeNarrative,
		Difficulty: core.DifficultyMiddle,
		Score:      88,
		Highlights: []string{"vivid opening scene", "clear narrative arc"},
	},
	{
		Title:      "Why We Should Keep Handwriting",
		Content:    "Keyboards are faster, but the hand remembers what the fingers type and forget. I argue that handwriting deserves a place in every classroom for three reasons.",
		EssayType:  core.EssayTypeArgumentative,
		Difficulty: core.DifficultyHigh,
		Score:      92,
		Highlights: []string{"strong thesis", "well-ordered supporting points"},
	},
	{
		Title:      "Morning at the Harbor",
		Content:    "The harbor wakes in grays and golds. Gulls stitch the sky above masts that creak like old floorboards, and the smell of salt and diesel hangs in the cold air.",
		EssayType:  core.EssayTypeDescriptive,
		Difficulty: core.DifficultyMiddle,
		Score:      85,
		Highlights: []string{"sensory detail", "consistent mood"},
	},
	{
		Title:      "How Photosynthesis Feeds the World",
		Content:    "Every meal traces back to a leaf. This essay explains the process by which plants turn light into food, and why that process underwrites every food chain on Earth.",
		EssayType:  core.EssayTypeExpository,
		Difficulty: core.DifficultyHigh,
		Score:      90,
		Highlights: []string{"clear sequencing", "accurate terminology"},
	},
	{
		Title:      "The Day I Stood Up",
		Content:    "I had rehearsed silence for years. The day I finally spoke up for a classmate, my voice shook, but the room changed, and so did I.",
		EssayType:  core.EssayTypeNarrative,
		Difficulty: core.DifficultyMiddle,
		Score:      87,
		Highlights: []string{"emotional honesty", "strong resolution"},
	},
	{
		Title:      "Less Screen, More Green",
		Content:    "Schools should trade one screen hour for one outdoor hour. The evidence on mood, focus, and health points the same direction, and the cost is nearly zero.",
		EssayType:  core.EssayTypeArgumentative,
		Difficulty: core.DifficultyMiddle,
		Score:      84,
		Highlights: []string{"persuasive framing", "concrete proposal"},
	},
}

var (
	dbPath       = flag.String("db", "./guide_db", "path to the content database")
	seedFileName = flag.String("src", "", "JSON file of seed data")
)

// seedFile is the on-disk layout accepted by the -src flag.
type seedFile struct {
	Materials []*core.Material    `json:"materials"`
	Essays    []*core.SampleEssay `json:"essays"`
}

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

func loadSeedFile(filename string) (*seedFile, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var seed seedFile
	if err := json.NewDecoder(f).Decode(&seed); err != nil {
		return nil, err
	}
	return &seed, nil
}

func main() {
	system, err := essayguide.NewSystem(*dbPath,
		essayguide.WithIndexPath(*dbPath+".index"))
	if err != nil {
		panic(err)
	}
	defer system.Close()

	seed := &seedFile{Materials: materials, Essays: essays}
	if *seedFileName != "" {
		seed, err = loadSeedFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	}

	ctx := context.Background()
	for _, material := range seed.Materials {
		if _, err := system.AddMaterial(ctx, material); err != nil {
			panic(err)
		}
	}
	for _, essay := range seed.Essays {
		if _, err := system.AddEssay(ctx, essay); err != nil {
			panic(err)
		}
	}

	slog.Info("seed complete",
		"materials", len(seed.Materials),
		"essays", len(seed.Essays))
}
