package parser

import (
	"regexp"
	"strings"

	"github.com/trollornot/troll-analyzer/pkg/models"
)

// Header patterns for the supported platform layouts.
var (
	// Discord: "Username#1234 — Today at 12:34 PM"
	discordHeaderRe = regexp.MustCompile(`^(.+?)(?:#\d{4})?\s*[—–-]\s*(.+)$`)
	// Discord compact: "[12:34 PM] Username: message"
	discordInlineRe = regexp.MustCompile(`^\[([^\]]+)\]\s*([^:]+):\s*(.*)$`)
	// Slack: "Username  12:34 PM" (double space before the time)
	slackHeaderRe = regexp.MustCompile(`(?i)^(\S+)\s{2,}(\d{1,2}:\d{2}\s*(?:AM|PM)?)\s*$`)
	// Twitter/X: "@username · 2h" or "username · 3/14"
	twitterHeaderRe = regexp.MustCompile(`^@?(\w+)\s*·\s*(\d+[hmdw]|[\d/]+)$`)
	// Generic: "Username: message"
	genericHeaderRe = regexp.MustCompile(`^([^:]+):\s*(.*)$`)

	// Strong platform-specific tells, worth extra detection weight.
	discordTagRe      = regexp.MustCompile(`#\d{4}`)
	slackTimeRe       = regexp.MustCompile(`\s{2,}\d{1,2}:\d{2}`)
	twitterDurationRe = regexp.MustCompile(`·\s*\d+[hmdw]`)
	twitterReplyRe    = regexp.MustCompile(`Replying to @`)
)

// detectionLines is how many non-blank lines each hypothesis examines.
const detectionLines = 10

// detectPlatform scores each platform hypothesis over the first few
// non-blank lines and picks the highest. Ties resolve positionally:
// discord over slack over twitter. All-zero scores fall back to generic.
func detectPlatform(text string) models.Platform {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == detectionLines {
			break
		}
	}

	discordScore := scoreDiscordHint(lines)
	slackScore := scoreSlackHint(lines)
	twitterScore := scoreTwitterHint(lines)

	if discordScore >= slackScore && discordScore >= twitterScore && discordScore > 0 {
		return models.PlatformDiscord
	}
	if slackScore >= discordScore && slackScore >= twitterScore && slackScore > 0 {
		return models.PlatformSlack
	}
	if twitterScore >= discordScore && twitterScore >= slackScore && twitterScore > 0 {
		return models.PlatformTwitter
	}

	return models.PlatformGeneric
}

func scoreDiscordHint(lines []string) int {
	score := 0
	for _, line := range lines {
		if discordHeaderRe.MatchString(line) || discordInlineRe.MatchString(line) {
			score++
		}
		if strings.Contains(line, "Today at") || strings.Contains(line, "Yesterday at") || discordTagRe.MatchString(line) {
			score += 2
		}
	}
	return score
}

func scoreSlackHint(lines []string) int {
	score := 0
	for _, line := range lines {
		if slackHeaderRe.MatchString(line) {
			score++
		}
		if slackTimeRe.MatchString(line) {
			score += 2
		}
	}
	return score
}

func scoreTwitterHint(lines []string) int {
	score := 0
	for _, line := range lines {
		if twitterHeaderRe.MatchString(line) || strings.HasPrefix(line, "@") {
			score++
		}
		if twitterDurationRe.MatchString(line) || twitterReplyRe.MatchString(line) {
			score += 2
		}
	}
	return score
}
