package models

// Platform identifies the chat layout a conversation was pasted from.
type Platform string

const (
	PlatformDiscord Platform = "discord"
	PlatformSlack   Platform = "slack"
	PlatformTwitter Platform = "twitter"
	PlatformGeneric Platform = "generic"
)

// Message is a single chat message reconstructed from pasted text.
type Message struct {
	ID        string   `json:"id"`
	Author    string   `json:"author"`
	Content   string   `json:"content"`
	Timestamp string   `json:"timestamp,omitempty"`
	Platform  Platform `json:"platform,omitempty"`
}

// Conversation is the result of parsing raw pasted text.
type Conversation struct {
	Messages         []Message `json:"messages"`
	Platform         Platform  `json:"platform"`
	ParticipantCount int       `json:"participant_count"`
}

// SignalCategory is one of the five behavioral signal tags.
type SignalCategory string

const (
	SignalBadFaith       SignalCategory = "badFaith"
	SignalProvocation    SignalCategory = "provocation"
	SignalEngagementBait SignalCategory = "engagementBait"
	SignalStrawmanning   SignalCategory = "strawmanning"
	SignalDerailing      SignalCategory = "derailing"
)

// Categories returns all signal categories in their canonical order.
// Folds that break ties positionally (e.g. dominant-signal detection)
// rely on this order being stable.
func Categories() []SignalCategory {
	return []SignalCategory{
		SignalBadFaith,
		SignalProvocation,
		SignalEngagementBait,
		SignalStrawmanning,
		SignalDerailing,
	}
}

// Verdict classifies a message or conversation.
type Verdict string

const (
	VerdictGenuine    Verdict = "genuine"
	VerdictSuspicious Verdict = "suspicious"
	VerdictTrolling   Verdict = "trolling"
)

// SignalBreakdown holds the intensity of each signal category on a 0-100
// scale. Every category is always present, even at zero.
type SignalBreakdown struct {
	BadFaith       float64 `json:"badFaith"`
	Provocation    float64 `json:"provocation"`
	EngagementBait float64 `json:"engagementBait"`
	Strawmanning   float64 `json:"strawmanning"`
	Derailing      float64 `json:"derailing"`
}

// Value returns the intensity for a category.
func (s SignalBreakdown) Value(c SignalCategory) float64 {
	switch c {
	case SignalBadFaith:
		return s.BadFaith
	case SignalProvocation:
		return s.Provocation
	case SignalEngagementBait:
		return s.EngagementBait
	case SignalStrawmanning:
		return s.Strawmanning
	case SignalDerailing:
		return s.Derailing
	}
	return 0
}

// Set assigns the intensity for a category.
func (s *SignalBreakdown) Set(c SignalCategory, v float64) {
	switch c {
	case SignalBadFaith:
		s.BadFaith = v
	case SignalProvocation:
		s.Provocation = v
	case SignalEngagementBait:
		s.EngagementBait = v
	case SignalStrawmanning:
		s.Strawmanning = v
	case SignalDerailing:
		s.Derailing = v
	}
}

// Slice returns the breakdown as a float32 vector in canonical category
// order, suitable for storage as a signal profile.
func (s SignalBreakdown) Slice() []float32 {
	return []float32{
		float32(s.BadFaith),
		float32(s.Provocation),
		float32(s.EngagementBait),
		float32(s.Strawmanning),
		float32(s.Derailing),
	}
}

// BreakdownFromSlice rebuilds a SignalBreakdown from a stored vector.
func BreakdownFromSlice(v []float32) SignalBreakdown {
	var s SignalBreakdown
	for i, c := range Categories() {
		if i < len(v) {
			s.Set(c, float64(v[i]))
		}
	}
	return s
}

// Highlight is a located, categorized phrase match within a message,
// used for explanation. End is exclusive.
type Highlight struct {
	Start    int            `json:"start"`
	End      int            `json:"end"`
	Category SignalCategory `json:"category"`
	Text     string         `json:"text"`
}

// MessageScoreResult is the scoring outcome for a single message.
type MessageScoreResult struct {
	Score      int             `json:"score"`
	Verdict    Verdict         `json:"verdict"`
	Signals    SignalBreakdown `json:"signals"`
	Highlights []Highlight     `json:"highlights"`
}

// FlaggedUser is a participant whose average message score exceeds the
// sustained-behavior threshold.
type FlaggedUser struct {
	Author       string `json:"author"`
	AvgScore     int    `json:"avgScore"`
	MessageCount int    `json:"messageCount"`
}

// ConversationScoreResult is the scoring outcome for a whole conversation.
type ConversationScoreResult struct {
	OverallScore     int                            `json:"overallScore"`
	Verdict          Verdict                        `json:"verdict"`
	MessageResults   map[string]*MessageScoreResult `json:"-"`
	AggregateSignals SignalBreakdown                `json:"aggregateSignals"`
	FlaggedUsers     []FlaggedUser                  `json:"flaggedUsers"`
	Patterns         []string                       `json:"patterns"`
}
