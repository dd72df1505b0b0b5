package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trollornot/troll-analyzer/internal/storage"
)

type statsResponse struct {
	Success  bool                    `json:"success"`
	Stats    *storage.DashboardStats `json:"stats"`
	Visitors *storage.VisitorStats   `json:"visitors,omitempty"`
	Recent   []recentAnalysis        `json:"recent"`
}

type recentAnalysis struct {
	ID               string  `json:"id"`
	MessageCount     int     `json:"messageCount"`
	ParticipantCount int     `json:"participantCount"`
	Platform         string  `json:"platform"`
	OverallScore     int     `json:"overallScore"`
	Verdict          string  `json:"verdict"`
	LLMEnhanced      bool    `json:"llmEnhanced"`
	Country          string  `json:"country,omitempty"`
	IsBot            bool    `json:"isBot"`
	CreatedAt        string  `json:"createdAt"`
	Similarity       float64 `json:"similarity,omitempty"`
}

func toRecentAnalysis(a *storage.Analysis) recentAnalysis {
	return recentAnalysis{
		ID:               a.ID.String(),
		MessageCount:     a.MessageCount,
		ParticipantCount: a.ParticipantCount,
		Platform:         a.Platform,
		OverallScore:     a.OverallScore,
		Verdict:          a.Verdict,
		LLMEnhanced:      a.LLMEnhanced,
		Country:          a.Country,
		IsBot:            a.IsBot,
		CreatedAt:        a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// handleAdminStats returns dashboard aggregates plus the most recent
// analyses.
func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	if s.analysisRepo == nil {
		respondError(w, http.StatusServiceUnavailable, "Storage is not configured")
		return
	}

	stats, err := s.analysisRepo.DashboardStats(r.Context())
	if err != nil {
		s.logger.Error("failed to load dashboard stats", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to load stats")
		return
	}

	var visitors *storage.VisitorStats
	if s.visitorRepo != nil {
		visitors, err = s.visitorRepo.Stats(r.Context())
		if err != nil {
			s.logger.Error("failed to load visitor stats", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "Failed to load stats")
			return
		}
	}

	recent, err := s.analysisRepo.Recent(r.Context(), 20)
	if err != nil {
		s.logger.Error("failed to load recent analyses", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to load stats")
		return
	}

	recentOut := make([]recentAnalysis, 0, len(recent))
	for _, a := range recent {
		recentOut = append(recentOut, toRecentAnalysis(a))
	}

	respondJSON(w, http.StatusOK, statsResponse{
		Success:  true,
		Stats:    stats,
		Visitors: visitors,
		Recent:   recentOut,
	})
}

type similarResponse struct {
	Success bool             `json:"success"`
	Results []recentAnalysis `json:"results"`
}

// handleSimilarAnalyses finds past analyses with the closest signal
// profile to the given one.
func (s *Server) handleSimilarAnalyses(w http.ResponseWriter, r *http.Request) {
	if s.analysisRepo == nil {
		respondError(w, http.StatusServiceUnavailable, "Storage is not configured")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "analysisID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid analysis ID")
		return
	}

	analysis, err := s.analysisRepo.GetByID(r.Context(), id)
	if err != nil {
		s.logger.Error("failed to load analysis", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to load analysis")
		return
	}
	if analysis == nil {
		respondError(w, http.StatusNotFound, "Analysis not found")
		return
	}

	similar, err := s.analysisRepo.FindSimilar(r.Context(), analysis.SignalProfile, 10, analysis.ID)
	if err != nil {
		s.logger.Error("similarity search failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Similarity search failed")
		return
	}

	results := make([]recentAnalysis, 0, len(similar))
	for _, match := range similar {
		out := toRecentAnalysis(match.Analysis)
		out.Similarity = match.Similarity
		results = append(results, out)
	}

	respondJSON(w, http.StatusOK, similarResponse{Success: true, Results: results})
}
