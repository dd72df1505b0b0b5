// Package parser turns raw pasted chat transcripts into discrete messages.
// It guesses the source platform from structural patterns in the first few
// lines, then reconstructs author/content/timestamp messages with a
// stateful line-by-line scan for that platform's layout.
package parser

import (
	"strings"

	"github.com/trollornot/troll-analyzer/pkg/models"
)

// Parse segments raw text into an ordered message sequence. It never
// fails: unparseable input yields a conversation with zero messages,
// which the caller treats as a boundary error. If the detected platform's
// segmenter produces nothing, the generic segmenter runs as a fallback to
// cover misdetection.
func Parse(text string) models.Conversation {
	platform := detectPlatform(text)

	var messages []models.Message
	switch platform {
	case models.PlatformDiscord:
		messages = segmentDiscord(text)
	case models.PlatformSlack:
		messages = segmentSlack(text)
	case models.PlatformTwitter:
		messages = segmentTwitter(text)
	default:
		messages = segmentGeneric(text)
	}

	if len(messages) == 0 {
		messages = segmentGeneric(text)
	}

	// Participants are distinct authors, compared case-insensitively.
	participants := make(map[string]struct{}, len(messages))
	for _, msg := range messages {
		participants[strings.ToLower(msg.Author)] = struct{}{}
	}

	reported := models.PlatformGeneric
	if len(messages) > 0 && messages[0].Platform != "" {
		reported = messages[0].Platform
	}

	return models.Conversation{
		Messages:         messages,
		Platform:         reported,
		ParticipantCount: len(participants),
	}
}
