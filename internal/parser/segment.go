package parser

import (
	"strings"

	"github.com/google/uuid"

	"github.com/trollornot/troll-analyzer/pkg/models"
)

// anonymousAuthor is attributed to standalone lines in generic mode that
// appear before any "Username: message" header.
const anonymousAuthor = "Unknown"

// pendingMessage is the in-progress message carried through a segmentation
// scan. It is flushed into the output when the next header line arrives or
// the input ends, and only if it has both an author and content.
type pendingMessage struct {
	author    string
	timestamp string
	content   string
}

func (p *pendingMessage) appendLine(line string) {
	p.content += "\n" + line
}

func newMessage(author, content, timestamp string, platform models.Platform) models.Message {
	return models.Message{
		ID:        uuid.New().String(),
		Author:    author,
		Content:   strings.TrimSpace(content),
		Timestamp: timestamp,
		Platform:  platform,
	}
}

func flush(messages []models.Message, pending *pendingMessage, platform models.Platform) []models.Message {
	if pending == nil || pending.author == "" || pending.content == "" {
		return messages
	}
	return append(messages, newMessage(pending.author, pending.content, pending.timestamp, platform))
}

func segmentDiscord(text string) []models.Message {
	var messages []models.Message
	var pending *pendingMessage

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if m := discordHeaderRe.FindStringSubmatch(trimmed); m != nil {
			messages = flush(messages, pending, models.PlatformDiscord)
			pending = &pendingMessage{
				author:    strings.TrimSpace(m[1]),
				timestamp: strings.TrimSpace(m[2]),
			}
			continue
		}

		// The compact header carries its content inline, so it is emitted
		// immediately instead of waiting for continuation lines.
		if m := discordInlineRe.FindStringSubmatch(trimmed); m != nil {
			messages = flush(messages, pending, models.PlatformDiscord)
			messages = append(messages, newMessage(
				strings.TrimSpace(m[2]),
				strings.TrimSpace(m[3]),
				strings.TrimSpace(m[1]),
				models.PlatformDiscord,
			))
			pending = nil
			continue
		}

		if pending != nil {
			pending.appendLine(trimmed)
		}
	}

	return flush(messages, pending, models.PlatformDiscord)
}

func segmentSlack(text string) []models.Message {
	var messages []models.Message
	var pending *pendingMessage

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if m := slackHeaderRe.FindStringSubmatch(trimmed); m != nil {
			messages = flush(messages, pending, models.PlatformSlack)
			pending = &pendingMessage{
				author:    strings.TrimSpace(m[1]),
				timestamp: strings.TrimSpace(m[2]),
			}
			continue
		}

		if pending != nil {
			pending.appendLine(trimmed)
			continue
		}

		// No open message: a "Username: message" line still counts.
		if m := genericHeaderRe.FindStringSubmatch(trimmed); m != nil {
			messages = append(messages, newMessage(
				strings.TrimSpace(m[1]),
				strings.TrimSpace(m[2]),
				"",
				models.PlatformSlack,
			))
		}
	}

	return flush(messages, pending, models.PlatformSlack)
}

func segmentTwitter(text string) []models.Message {
	var messages []models.Message
	var pending *pendingMessage

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, "Replying to") {
			continue
		}

		if m := twitterHeaderRe.FindStringSubmatch(trimmed); m != nil {
			messages = flush(messages, pending, models.PlatformTwitter)
			pending = &pendingMessage{
				author:    "@" + m[1],
				timestamp: m[2],
			}
			continue
		}

		// A bare handle on its own line also opens a message.
		if strings.HasPrefix(trimmed, "@") && !strings.Contains(trimmed, " ") {
			messages = flush(messages, pending, models.PlatformTwitter)
			pending = &pendingMessage{author: trimmed}
			continue
		}

		if pending != nil {
			pending.appendLine(trimmed)
		}
	}

	return flush(messages, pending, models.PlatformTwitter)
}

func segmentGeneric(text string) []models.Message {
	var messages []models.Message
	var pending *pendingMessage

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if m := genericHeaderRe.FindStringSubmatch(trimmed); m != nil {
			messages = flush(messages, pending, models.PlatformGeneric)
			pending = &pendingMessage{
				author:  strings.TrimSpace(m[1]),
				content: strings.TrimSpace(m[2]),
			}
			continue
		}

		if pending != nil {
			pending.appendLine(trimmed)
			continue
		}

		// Standalone line before any header: anonymous message.
		messages = append(messages, newMessage(anonymousAuthor, trimmed, "", models.PlatformGeneric))
	}

	return flush(messages, pending, models.PlatformGeneric)
}
