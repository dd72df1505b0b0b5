package scoring

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/trollornot/troll-analyzer/pkg/models"
)

const (
	// Authors whose average message score exceeds this are flagged.
	// Intentionally looser than the suspicious threshold: it targets
	// sustained behavior, not a single bad message.
	flaggedUserMin = 40

	// Mean score increase from the first half of a conversation to the
	// second half that counts as escalation.
	escalationDelta = 15

	dominantSignalMin = 40
	singleOffenderMin = 3
)

// ScoreConversation folds a sequence of messages into a conversation-level
// verdict plus behavioral diagnostics. It is deterministic: identical input
// yields an identical result, and per-author ordering ties are broken by
// first appearance in the message sequence.
func ScoreConversation(messages []models.Message) *models.ConversationScoreResult {
	results := make(map[string]*models.MessageScoreResult, len(messages))
	scores := make([]float64, 0, len(messages))

	type authorTally struct {
		total int
		count int
	}
	tallies := make(map[string]*authorTally)
	var authorOrder []string

	for _, msg := range messages {
		result := ScoreMessage(msg.Content)
		results[msg.ID] = result
		scores = append(scores, float64(result.Score))

		tally, ok := tallies[msg.Author]
		if !ok {
			tally = &authorTally{}
			tallies[msg.Author] = tally
			authorOrder = append(authorOrder, msg.Author)
		}
		tally.total += result.Score
		tally.count++
	}

	var aggregate models.SignalBreakdown
	overallScore := 0
	if len(messages) > 0 {
		for _, category := range models.Categories() {
			values := make([]float64, 0, len(messages))
			for _, msg := range messages {
				values = append(values, results[msg.ID].Signals.Value(category))
			}
			aggregate.Set(category, math.Round(stat.Mean(values, nil)))
		}
		overallScore = int(math.Round(stat.Mean(scores, nil)))
	}

	flagged := make([]models.FlaggedUser, 0)
	for _, author := range authorOrder {
		tally := tallies[author]
		avg := int(math.Round(float64(tally.total) / float64(tally.count)))
		if avg > flaggedUserMin {
			flagged = append(flagged, models.FlaggedUser{
				Author:       author,
				AvgScore:     avg,
				MessageCount: tally.count,
			})
		}
	}
	// Stable sort keeps first-seen order on equal averages.
	sort.SliceStable(flagged, func(i, j int) bool {
		return flagged[i].AvgScore > flagged[j].AvgScore
	})

	patterns := detectPatterns(scores, aggregate, flagged)

	return &models.ConversationScoreResult{
		OverallScore:     overallScore,
		Verdict:          VerdictForScore(overallScore),
		MessageResults:   results,
		AggregateSignals: aggregate,
		FlaggedUsers:     flagged,
		Patterns:         patterns,
	}
}

// detectPatterns evaluates the conversation-level patterns independently;
// any subset may fire.
func detectPatterns(scores []float64, aggregate models.SignalBreakdown, flagged []models.FlaggedUser) []string {
	patterns := make([]string, 0)

	// Escalation: second half meaningfully hotter than the first. With an
	// odd message count the extra message goes to the second half.
	if len(scores) >= 3 {
		mid := len(scores) / 2
		firstAvg := stat.Mean(scores[:mid], nil)
		secondAvg := stat.Mean(scores[mid:], nil)
		if secondAvg > firstAvg+escalationDelta {
			patterns = append(patterns, "Escalating hostility detected")
		}
	}

	// Dominant signal: strict > keeps the first category in enumeration
	// order on exact ties.
	dominant := models.SignalBadFaith
	for _, category := range models.Categories() {
		if aggregate.Value(category) > aggregate.Value(dominant) {
			dominant = category
		}
	}
	if aggregate.Value(dominant) > dominantSignalMin {
		patterns = append(patterns, "High "+CategoryDescriptions[dominant])
	}

	// Single offender: exactly one flagged user doing the sustained damage.
	if len(flagged) == 1 && flagged[0].MessageCount >= singleOffenderMin {
		patterns = append(patterns, fmt.Sprintf("Single user (@%s) driving conflict", flagged[0].Author))
	}

	return patterns
}
