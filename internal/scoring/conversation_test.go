package scoring

import (
	"fmt"
	"testing"

	"github.com/trollornot/troll-analyzer/pkg/models"
)

func makeMessages(pairs ...[2]string) []models.Message {
	messages := make([]models.Message, len(pairs))
	for i, p := range pairs {
		messages[i] = models.Message{
			ID:      fmt.Sprintf("m%d", i+1),
			Author:  p[0],
			Content: p[1],
		}
	}
	return messages
}

func hasPattern(patterns []string, want string) bool {
	for _, p := range patterns {
		if p == want {
			return true
		}
	}
	return false
}

func TestScoreConversation_Empty(t *testing.T) {
	result := ScoreConversation(nil)
	if result.OverallScore != 0 {
		t.Errorf("expected score 0, got %d", result.OverallScore)
	}
	if result.Verdict != models.VerdictGenuine {
		t.Errorf("expected genuine, got %s", result.Verdict)
	}
	if len(result.FlaggedUsers) != 0 {
		t.Errorf("expected no flagged users, got %d", len(result.FlaggedUsers))
	}
	if len(result.Patterns) != 0 {
		t.Errorf("expected no patterns, got %v", result.Patterns)
	}
}

func TestScoreConversation_PerMessageResults(t *testing.T) {
	messages := makeMessages(
		[2]string{"alice", "hello there friend"},
		[2]string{"bob", "cope"},
	)

	result := ScoreConversation(messages)

	if len(result.MessageResults) != 2 {
		t.Fatalf("expected 2 message results, got %d", len(result.MessageResults))
	}
	if result.MessageResults["m1"].Score != 0 {
		t.Errorf("expected m1 score 0, got %d", result.MessageResults["m1"].Score)
	}
	if result.MessageResults["m2"].Score != 6 {
		t.Errorf("expected m2 score 6, got %d", result.MessageResults["m2"].Score)
	}
	// Overall is the mean of message scores, rounded.
	if result.OverallScore != 3 {
		t.Errorf("expected overall 3, got %d", result.OverallScore)
	}
}

func TestScoreConversation_Escalation(t *testing.T) {
	calm := "hello there friend"
	hot := "cope and seethe lol touch grass"

	escalating := makeMessages(
		[2]string{"a", calm},
		[2]string{"b", calm},
		[2]string{"a", calm},
		[2]string{"b", hot},
		[2]string{"a", hot},
		[2]string{"b", hot},
	)
	result := ScoreConversation(escalating)
	if !hasPattern(result.Patterns, "Escalating hostility detected") {
		t.Errorf("expected escalation pattern, got %v", result.Patterns)
	}

	cooling := makeMessages(
		[2]string{"a", hot},
		[2]string{"b", hot},
		[2]string{"a", hot},
		[2]string{"b", calm},
		[2]string{"a", calm},
		[2]string{"b", calm},
	)
	result = ScoreConversation(cooling)
	if hasPattern(result.Patterns, "Escalating hostility detected") {
		t.Errorf("did not expect escalation pattern for cooling scores, got %v", result.Patterns)
	}
}

func TestScoreConversation_EscalationNeedsThreeMessages(t *testing.T) {
	messages := makeMessages(
		[2]string{"a", "hello there friend"},
		[2]string{"b", "cope and seethe lol touch grass"},
	)
	result := ScoreConversation(messages)
	if hasPattern(result.Patterns, "Escalating hostility detected") {
		t.Errorf("escalation should require at least 3 messages, got %v", result.Patterns)
	}
}

func TestScoreConversation_FlaggedUsersAndSingleOffender(t *testing.T) {
	hot := "cope seethe lol touch grass ratio didn't ask"

	messages := makeMessages(
		[2]string{"troll", hot},
		[2]string{"calm", "hello there friend"},
		[2]string{"troll", hot},
		[2]string{"calm", "that seems unfair to me"},
		[2]string{"troll", hot},
	)

	result := ScoreConversation(messages)

	if len(result.FlaggedUsers) != 1 {
		t.Fatalf("expected 1 flagged user, got %d", len(result.FlaggedUsers))
	}
	flagged := result.FlaggedUsers[0]
	if flagged.Author != "troll" {
		t.Errorf("expected author troll, got %s", flagged.Author)
	}
	if flagged.AvgScore != 47 {
		t.Errorf("expected avg score 47, got %d", flagged.AvgScore)
	}
	if flagged.MessageCount != 3 {
		t.Errorf("expected 3 messages, got %d", flagged.MessageCount)
	}

	if !hasPattern(result.Patterns, "Single user (@troll) driving conflict") {
		t.Errorf("expected single offender pattern, got %v", result.Patterns)
	}
}

func TestScoreConversation_DominantSignal(t *testing.T) {
	messages := makeMessages(
		[2]string{"a", "cope seethe lol touch grass"},
		[2]string{"b", "cope seethe lol touch grass"},
	)

	result := ScoreConversation(messages)

	want := "High " + CategoryDescriptions[models.SignalProvocation]
	if !hasPattern(result.Patterns, want) {
		t.Errorf("expected dominant signal pattern %q, got %v", want, result.Patterns)
	}
}

func TestScoreConversation_FlaggedUserOrdering(t *testing.T) {
	hotter := "cope seethe lol touch grass ratio didn't ask nobody asked"
	hot := "cope seethe lol touch grass ratio didn't ask"

	messages := makeMessages(
		[2]string{"first", hot},
		[2]string{"second", hotter},
		[2]string{"first", hot},
		[2]string{"second", hotter},
	)

	result := ScoreConversation(messages)

	if len(result.FlaggedUsers) != 2 {
		t.Fatalf("expected 2 flagged users, got %d", len(result.FlaggedUsers))
	}
	if result.FlaggedUsers[0].Author != "second" {
		t.Errorf("expected highest average first, got %s", result.FlaggedUsers[0].Author)
	}
	if result.FlaggedUsers[0].AvgScore < result.FlaggedUsers[1].AvgScore {
		t.Errorf("flagged users not sorted by average: %+v", result.FlaggedUsers)
	}
}

func TestScoreConversation_OrderInsensitiveAggregates(t *testing.T) {
	forward := makeMessages(
		[2]string{"a", "hello there friend"},
		[2]string{"b", "cope seethe lol touch grass"},
		[2]string{"c", "just asking, source?"},
	)
	backward := makeMessages(
		[2]string{"c", "just asking, source?"},
		[2]string{"b", "cope seethe lol touch grass"},
		[2]string{"a", "hello there friend"},
	)

	f := ScoreConversation(forward)
	r := ScoreConversation(backward)

	if f.OverallScore != r.OverallScore {
		t.Errorf("overall score order-sensitive: %d vs %d", f.OverallScore, r.OverallScore)
	}
	if f.AggregateSignals != r.AggregateSignals {
		t.Errorf("aggregate signals order-sensitive: %+v vs %+v", f.AggregateSignals, r.AggregateSignals)
	}
}

func TestScoreConversation_Deterministic(t *testing.T) {
	messages := makeMessages(
		[2]string{"a", "cope seethe lol touch grass"},
		[2]string{"b", "just asking, source?"},
		[2]string{"a", "ratio, didn't ask"},
	)

	first := ScoreConversation(messages)
	second := ScoreConversation(messages)

	if first.OverallScore != second.OverallScore {
		t.Errorf("overall score not deterministic: %d vs %d", first.OverallScore, second.OverallScore)
	}
	if first.Verdict != second.Verdict {
		t.Errorf("verdict not deterministic: %s vs %s", first.Verdict, second.Verdict)
	}
	if first.AggregateSignals != second.AggregateSignals {
		t.Errorf("aggregate signals not deterministic: %+v vs %+v", first.AggregateSignals, second.AggregateSignals)
	}
	if len(first.Patterns) != len(second.Patterns) {
		t.Errorf("patterns not deterministic: %v vs %v", first.Patterns, second.Patterns)
	}
}
