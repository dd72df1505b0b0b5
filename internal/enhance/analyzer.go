// Package enhance re-scores conversations with the Claude API, layering
// contextual judgment over the deterministic lexical scorer, and extracts
// conversation text from chat screenshots.
package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/trollornot/troll-analyzer/pkg/models"
)

// ErrNotAConversation is returned when the submitted screenshot does not
// contain a chat conversation.
var ErrNotAConversation = errors.New("image does not contain a conversation")

// Analyzer calls the Claude messages API for conversation re-scoring and
// screenshot extraction.
type Analyzer struct {
	apiKey      string
	baseURL     string
	model       string
	visionModel string
	httpClient  *http.Client
}

// Config holds analyzer configuration.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	VisionModel string
	Timeout     time.Duration
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:     "https://api.anthropic.com/v1",
		Model:       "claude-3-5-haiku-20241022",
		VisionModel: "claude-sonnet-4-20250514",
		Timeout:     30 * time.Second,
	}
}

// NewAnalyzer creates a new analyzer.
func NewAnalyzer(config Config) *Analyzer {
	if config.BaseURL == "" {
		config.BaseURL = DefaultConfig().BaseURL
	}
	if config.Model == "" {
		config.Model = DefaultConfig().Model
	}
	if config.VisionModel == "" {
		config.VisionModel = DefaultConfig().VisionModel
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig().Timeout
	}

	return &Analyzer{
		apiKey:      config.APIKey,
		baseURL:     config.BaseURL,
		model:       config.Model,
		visionModel: config.VisionModel,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

const systemPrompt = `You are an expert at detecting trolling behavior in online conversations. Your job is to analyze chat logs and identify patterns of trolling, bad faith engagement, and provocation.

You are NOT judging opinions or political views. You detect BEHAVIOR PATTERNS regardless of the topic being discussed.

Key trolling indicators:
1. **Bad Faith**: Sealioning (endless "just asking questions"), moving goalposts, feigning ignorance, never actually engaging with responses
2. **Provocation**: Intentionally inflammatory language, seeking emotional reactions over discussion ("cope", "seethe", "cry more", insults)
3. **Engagement Bait**: Performative responses designed to provoke ("ratio", "L", "who asked"), not genuine engagement
4. **Strawmanning**: Deliberately misrepresenting others' positions ("so you're saying...", "you people")
5. **Derailing**: Topic hijacking, whataboutism, deflection from the actual discussion

IMPORTANT CONTEXT:
- Friends using casual language with each other is NOT trolling
- Genuine disagreement, even heated, is NOT trolling
- Strong opinions are NOT trolling
- One rude message doesn't make someone a troll - look for PATTERNS
- Sarcasm in context is NOT trolling
- The key question: Is this person trying to have a conversation, or trying to provoke a reaction?

Respond in JSON format only.`

const extractionPrompt = `Extract the conversation from this screenshot. Output ONLY the conversation text in a clean format like:

Username: message text
Username: message text

Rules:
- Include all messages visible in the screenshot
- Preserve the original usernames/handles exactly as shown
- Include timestamps if visible (in brackets before the message)
- Don't add any commentary, headers, or explanations
- If this is not a conversation/chat screenshot, respond with: NOT_A_CONVERSATION

Output the raw conversation text only:`

// maxConversationChars bounds the transcript sent to the model.
const maxConversationChars = 4000

// Enhance asks the model to re-score the conversation given the rule-based
// findings. On any failure the caller falls back to the rule-based result.
func (a *Analyzer) Enhance(ctx context.Context, req Request) (*Analysis, error) {
	response, err := a.callClaude(ctx, claudeRequest{
		Model:     a.model,
		MaxTokens: 1000,
		System:    systemPrompt,
		Messages: []claudeMessage{
			{Role: "user", Content: buildPrompt(req)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("call claude: %w", err)
	}

	analysis, err := parseAnalysis(response, req.RuleVerdict)
	if err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return analysis, nil
}

// ExtractConversation pulls conversation text out of a chat screenshot.
func (a *Analyzer) ExtractConversation(ctx context.Context, imageBase64, mediaType string) (string, error) {
	response, err := a.callClaude(ctx, claudeRequest{
		Model:     a.visionModel,
		MaxTokens: 4000,
		Messages: []claudeMessage{
			{
				Role: "user",
				Content: []contentBlock{
					{
						Type: "image",
						Source: &imageSource{
							Type:      "base64",
							MediaType: mediaType,
							Data:      imageBase64,
						},
					},
					{Type: "text", Text: extractionPrompt},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("call claude: %w", err)
	}

	text := strings.TrimSpace(response)
	if strings.Contains(text, "NOT_A_CONVERSATION") {
		return "", ErrNotAConversation
	}

	return text, nil
}

func buildPrompt(req Request) string {
	var conversation strings.Builder
	for i, msg := range req.Messages {
		if i > 0 {
			conversation.WriteString("\n\n")
		}
		conversation.WriteString("[" + msg.Author + "]: " + msg.Content)
	}

	transcript := conversation.String()
	if len(transcript) > maxConversationChars {
		transcript = transcript[:maxConversationChars] + "\n\n[...truncated...]"
	}

	flagged := "No users flagged by rules"
	if len(req.FlaggedUsers) > 0 {
		parts := make([]string, len(req.FlaggedUsers))
		for i, u := range req.FlaggedUsers {
			parts[i] = fmt.Sprintf("@%s (avg %d, %d msgs)", u.Author, u.AvgScore, u.MessageCount)
		}
		flagged = "Flagged users: " + strings.Join(parts, ", ")
	}

	ruleContext := fmt.Sprintf(`Rule-based analysis found:
- Bad Faith: %.0f/100
- Provocation: %.0f/100
- Engagement Bait: %.0f/100
- Strawmanning: %.0f/100
- Derailing: %.0f/100
- Overall score: %d/100 (%s)

%s`,
		req.Signals.BadFaith,
		req.Signals.Provocation,
		req.Signals.EngagementBait,
		req.Signals.Strawmanning,
		req.Signals.Derailing,
		req.RuleScore,
		req.RuleVerdict,
		flagged,
	)

	return fmt.Sprintf(`Analyze this conversation for trolling behavior:

CONVERSATION:
%s

%s

Consider:
1. Is anyone in this conversation acting in bad faith?
2. Is the flagged language genuine frustration vs. deliberate provocation?
3. Are there patterns the rules missed (or false positives)?
4. What's the likely intent of each participant?

Respond with this exact JSON structure:
{
  "adjustedScore": <number 0-100, may adjust rule score based on context>,
  "adjustedVerdict": "<genuine|suspicious|trolling>",
  "reasoning": ["<3-5 concise observations about the conversation>"],
  "recommendation": "<1-2 sentence advice for how to respond>",
  "contextNotes": "<optional: explain if rule score was misleading>",
  "flaggedUserAnalysis": [{"author": "<username>", "assessment": "<brief assessment>"}]
}`, transcript, ruleContext)
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system,omitempty"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (a *Analyzer) callClaude(ctx context.Context, reqBody claudeRequest) (string, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error: status %d", resp.StatusCode)
	}

	var cr claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", err
	}

	if len(cr.Content) == 0 {
		return "", fmt.Errorf("empty response")
	}

	return cr.Content[0].Text, nil
}

var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

type analysisResponse struct {
	AdjustedScore       float64          `json:"adjustedScore"`
	AdjustedVerdict     string           `json:"adjustedVerdict"`
	Reasoning           []string         `json:"reasoning"`
	Recommendation      string           `json:"recommendation"`
	ContextNotes        string           `json:"contextNotes"`
	FlaggedUserAnalysis []UserAssessment `json:"flaggedUserAnalysis"`
}

// parseAnalysis extracts and validates the model's JSON reply. Scores are
// clamped into range and an unrecognized verdict falls back to the
// rule-based one.
func parseAnalysis(response string, ruleVerdict models.Verdict) (*Analysis, error) {
	raw := jsonObjectRe.FindString(response)
	if raw == "" {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var ar analysisResponse
	if err := json.Unmarshal([]byte(raw), &ar); err != nil {
		return nil, err
	}

	verdict := ruleVerdict
	switch models.Verdict(ar.AdjustedVerdict) {
	case models.VerdictGenuine, models.VerdictSuspicious, models.VerdictTrolling:
		verdict = models.Verdict(ar.AdjustedVerdict)
	}

	score := int(ar.AdjustedScore)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	recommendation := ar.Recommendation
	if recommendation == "" {
		recommendation = "Consider the context before responding."
	}

	reasoning := ar.Reasoning
	if reasoning == nil {
		reasoning = []string{}
	}

	return &Analysis{
		AdjustedScore:       score,
		AdjustedVerdict:     verdict,
		Reasoning:           reasoning,
		Recommendation:      recommendation,
		ContextNotes:        ar.ContextNotes,
		FlaggedUserAnalysis: ar.FlaggedUserAnalysis,
	}, nil
}

// DefaultRecommendation is the advice shown when no model adjustment ran.
func DefaultRecommendation(verdict models.Verdict) string {
	switch verdict {
	case models.VerdictGenuine:
		return "This conversation appears to be genuine engagement. Feel free to continue the discussion."
	case models.VerdictSuspicious:
		return "Some patterns suggest potential trolling. Proceed with caution and don't feed into provocation."
	default:
		return "This conversation shows strong trolling patterns. Consider disengaging - don't feed the troll."
	}
}
