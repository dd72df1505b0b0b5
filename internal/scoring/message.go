package scoring

import (
	"math"
	"sort"
	"strings"

	"github.com/trollornot/troll-analyzer/pkg/models"
)

const (
	// Verdict thresholds, shared by message and conversation scoring.
	genuineMax    = 25
	suspiciousMax = 55

	maxHighlights   = 20
	normalizerWords = 10

	// A category counts toward the co-occurrence bonus at this intensity.
	coOccurrenceMin = 30
)

// VerdictForScore maps a 0-100 score to a verdict using the fixed
// thresholds: <=25 genuine, <=55 suspicious, otherwise trolling.
func VerdictForScore(score int) models.Verdict {
	switch {
	case score <= genuineMax:
		return models.VerdictGenuine
	case score <= suspiciousMax:
		return models.VerdictSuspicious
	default:
		return models.VerdictTrolling
	}
}

// ScoreMessage scores a single message's content. It is a pure function:
// total over any input, no side effects, and empty or whitespace-only
// content yields a zero score with a genuine verdict.
func ScoreMessage(text string) *models.MessageScoreResult {
	wordCount := len(strings.Fields(text))

	rawCounts := make(map[models.SignalCategory]int, len(dictionaries))
	var allHighlights []models.Highlight

	for _, category := range models.Categories() {
		count, highlights := findMatches(text, dictionaries[category], category)
		rawCounts[category] = count
		allHighlights = append(allHighlights, highlights...)
	}

	// Sort by start offset and greedily drop any highlight that overlaps
	// the previously kept one, so spans from different categories never
	// overlap in the output.
	sort.SliceStable(allHighlights, func(i, j int) bool {
		return allHighlights[i].Start < allHighlights[j].Start
	})

	deduped := make([]models.Highlight, 0, len(allHighlights))
	lastEnd := -1
	for _, h := range allHighlights {
		if h.Start >= lastEnd {
			deduped = append(deduped, h)
			lastEnd = h.End
		}
	}
	if len(deduped) > maxHighlights {
		deduped = deduped[:maxHighlights]
	}

	// Short messages are not normalized as heavily: one flagged phrase in
	// a ten-word message should register, but long messages must not be
	// penalized for length alone.
	normalizer := 1.0
	if wordCount > normalizerWords {
		normalizer = float64(wordCount) / normalizerWords
	}

	var signals models.SignalBreakdown
	for _, category := range models.Categories() {
		intensity := float64(rawCounts[category]) / normalizer * categoryMultipliers[category]
		signals.Set(category, math.Min(100, intensity))
	}

	score := 0.0
	for _, category := range models.Categories() {
		score += signals.Value(category) / 100 * categoryWeights[category]
	}

	// Co-occurrence bonus: one strong category alone is weak evidence,
	// several at once is much stronger.
	strong := 0
	for _, category := range models.Categories() {
		if signals.Value(category) >= coOccurrenceMin {
			strong++
		}
	}
	switch {
	case strong >= 3:
		score += 15
	case strong == 2:
		score += 8
	}

	final := int(math.Min(100, math.Max(0, math.Round(score))))

	return &models.MessageScoreResult{
		Score:      final,
		Verdict:    VerdictForScore(final),
		Signals:    signals,
		Highlights: deduped,
	}
}
