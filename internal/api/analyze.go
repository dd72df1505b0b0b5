package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"github.com/trollornot/troll-analyzer/internal/enhance"
	"github.com/trollornot/troll-analyzer/internal/parser"
	"github.com/trollornot/troll-analyzer/internal/scoring"
	"github.com/trollornot/troll-analyzer/internal/storage"
	"github.com/trollornot/troll-analyzer/pkg/models"
)

// minConversationLength is the shortest trimmed input worth analyzing.
const minConversationLength = 10

// logTimeout bounds the fire-and-forget persistence writes.
const logTimeout = 5 * time.Second

// AnalyzeRequest is the analyze endpoint's request body.
type AnalyzeRequest struct {
	Conversation string `json:"conversation"`
}

// MessageAnalysis is one message with its scoring outcome, in
// conversation order.
type MessageAnalysis struct {
	ID         string                 `json:"id"`
	Author     string                 `json:"author"`
	Content    string                 `json:"content"`
	Timestamp  string                 `json:"timestamp,omitempty"`
	Score      int                    `json:"score"`
	Verdict    models.Verdict         `json:"verdict"`
	Signals    models.SignalBreakdown `json:"signals"`
	Highlights []models.Highlight     `json:"highlights"`
}

// AnalyzeResponse is the analyze endpoint's response body. Score, verdict,
// recommendation and reasoning reflect the LLM adjustment when it ran;
// the rule-based patterns and signals are always the core's own output.
type AnalyzeResponse struct {
	Success          bool                     `json:"success"`
	Error            string                   `json:"error,omitempty"`
	OverallScore     int                      `json:"overallScore"`
	Verdict          models.Verdict           `json:"verdict"`
	Messages         []MessageAnalysis        `json:"messages"`
	AggregateSignals models.SignalBreakdown   `json:"aggregateSignals"`
	FlaggedUsers     []models.FlaggedUser     `json:"flaggedUsers"`
	Patterns         []string                 `json:"patterns"`
	Recommendation   string                   `json:"recommendation"`
	Reasoning        []string                 `json:"reasoning"`
	Platform         models.Platform          `json:"platform"`
	ParticipantCount int                      `json:"participantCount"`
	LLMEnhanced      bool                     `json:"llmEnhanced"`
	ContextNotes     string                   `json:"contextNotes,omitempty"`
	FlaggedAnalysis  []enhance.UserAssessment `json:"flaggedUserAnalysis,omitempty"`
}

// handleAnalyze parses, scores and optionally LLM-adjusts a pasted
// conversation.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Conversation text is required")
		return
	}

	if req.Conversation == "" {
		respondError(w, http.StatusBadRequest, "Conversation text is required")
		return
	}

	if len(strings.TrimSpace(req.Conversation)) < minConversationLength {
		respondError(w, http.StatusBadRequest, "Conversation is too short to analyze")
		return
	}

	parsed := parser.Parse(req.Conversation)
	if len(parsed.Messages) == 0 {
		respondError(w, http.StatusUnprocessableEntity, "Could not parse any messages from the input")
		return
	}

	scoreResult := scoring.ScoreConversation(parsed.Messages)

	// Conversation order comes from the parsed sequence, not the result map.
	messageAnalyses := make([]MessageAnalysis, 0, len(parsed.Messages))
	for _, msg := range parsed.Messages {
		result := scoreResult.MessageResults[msg.ID]
		messageAnalyses = append(messageAnalyses, MessageAnalysis{
			ID:         msg.ID,
			Author:     msg.Author,
			Content:    msg.Content,
			Timestamp:  msg.Timestamp,
			Score:      result.Score,
			Verdict:    result.Verdict,
			Signals:    result.Signals,
			Highlights: result.Highlights,
		})
	}

	finalScore := scoreResult.OverallScore
	finalVerdict := scoreResult.Verdict
	recommendation := enhance.DefaultRecommendation(finalVerdict)
	reasoning := []string{}
	contextNotes := ""
	var flaggedAnalysis []enhance.UserAssessment
	llmEnhanced := false

	if s.enhancer != nil {
		llmResult, err := s.enhancer.Enhance(r.Context(), enhance.Request{
			Messages:     parsed.Messages,
			RuleScore:    scoreResult.OverallScore,
			RuleVerdict:  scoreResult.Verdict,
			Signals:      scoreResult.AggregateSignals,
			FlaggedUsers: scoreResult.FlaggedUsers,
		})
		if err != nil {
			s.logger.Warn("llm enhancement failed, using rule-based result", zap.Error(err))
		} else {
			finalScore = llmResult.AdjustedScore
			finalVerdict = llmResult.AdjustedVerdict
			recommendation = llmResult.Recommendation
			reasoning = llmResult.Reasoning
			contextNotes = llmResult.ContextNotes
			flaggedAnalysis = llmResult.FlaggedUserAnalysis
			llmEnhanced = true
		}
	}

	// Fall back to rule patterns when the LLM contributed no reasoning.
	if len(reasoning) == 0 && len(scoreResult.Patterns) > 0 {
		reasoning = scoreResult.Patterns
	}

	s.logAnalysis(r, req.Conversation, parsed, scoreResult, finalScore, finalVerdict, llmEnhanced)

	respondJSON(w, http.StatusOK, AnalyzeResponse{
		Success:          true,
		OverallScore:     finalScore,
		Verdict:          finalVerdict,
		Messages:         messageAnalyses,
		AggregateSignals: scoreResult.AggregateSignals,
		FlaggedUsers:     scoreResult.FlaggedUsers,
		Patterns:         scoreResult.Patterns,
		Recommendation:   recommendation,
		Reasoning:        reasoning,
		Platform:         parsed.Platform,
		ParticipantCount: parsed.ParticipantCount,
		LLMEnhanced:      llmEnhanced,
		ContextNotes:     contextNotes,
		FlaggedAnalysis:  flaggedAnalysis,
	})
}

// logAnalysis persists the analysis and visitor records without blocking
// the response. Failures are logged, never surfaced.
func (s *Server) logAnalysis(r *http.Request, conversation string, parsed models.Conversation, result *models.ConversationScoreResult, finalScore int, finalVerdict models.Verdict, llmEnhanced bool) {
	if s.analysisRepo == nil {
		return
	}

	ip := clientIP(r)
	userAgent := r.Header.Get("User-Agent")
	country := clientCountry(r)
	referrer := r.Header.Get("Referer")

	analysis := &storage.Analysis{
		ConversationHash: storage.HashConversation(conversation),
		MessageCount:     len(parsed.Messages),
		ParticipantCount: parsed.ParticipantCount,
		Platform:         string(parsed.Platform),
		OverallScore:     finalScore,
		Verdict:          string(finalVerdict),
		SignalProfile:    pgvector.NewVector(result.AggregateSignals.Slice()),
		LLMEnhanced:      llmEnhanced,
		IPAddress:        ip,
		UserAgent:        userAgent,
		Country:          country,
		IsBot:            storage.IsBot(userAgent),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), logTimeout)
		defer cancel()

		if err := s.analysisRepo.Create(ctx, analysis); err != nil {
			s.logger.Error("failed to log analysis", zap.Error(err))
		}

		if s.visitorRepo != nil {
			visitor := &storage.Visitor{
				IPAddress: ip,
				UserAgent: userAgent,
				Country:   country,
				Referrer:  referrer,
			}
			if err := s.visitorRepo.Create(ctx, visitor); err != nil {
				s.logger.Error("failed to log visitor", zap.Error(err))
			}
		}
	}()
}

// clientIP prefers the forwarding headers set by proxies.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func clientCountry(r *http.Request) string {
	if c := r.Header.Get("CF-IPCountry"); c != "" {
		return c
	}
	return r.Header.Get("X-Vercel-IP-Country")
}
