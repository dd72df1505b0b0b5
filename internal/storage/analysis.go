// Package storage persists analysis and visitor records in PostgreSQL.
// Records are write-mostly: the analyze endpoint logs one row per request
// and the admin dashboard reads aggregates back.
package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Analysis is one logged conversation analysis. SignalProfile holds the
// five aggregate signal intensities in canonical category order, stored as
// a vector so past analyses can be searched by signal shape.
type Analysis struct {
	ID               uuid.UUID
	ConversationHash string
	MessageCount     int
	ParticipantCount int
	Platform         string
	OverallScore     int
	Verdict          string
	SignalProfile    pgvector.Vector
	LLMEnhanced      bool
	IPAddress        string
	UserAgent        string
	Country          string
	IsBot            bool
	CreatedAt        time.Time
}

// AnalysisWithSimilarity pairs an analysis with its signal-profile
// similarity to a reference profile.
type AnalysisWithSimilarity struct {
	Analysis   *Analysis
	Similarity float64
}

// DashboardStats are the aggregates shown on the admin dashboard.
type DashboardStats struct {
	TotalAnalyses    int            `json:"total_analyses"`
	AverageScore     float64        `json:"average_score"`
	LLMEnhancedCount int            `json:"llm_enhanced_count"`
	BotCount         int            `json:"bot_count"`
	VerdictCounts    map[string]int `json:"verdict_counts"`
	PlatformCounts   map[string]int `json:"platform_counts"`
}

// AnalysisRepository defines the interface for analysis log storage.
type AnalysisRepository interface {
	Create(ctx context.Context, analysis *Analysis) error
	GetByID(ctx context.Context, id uuid.UUID) (*Analysis, error)
	Recent(ctx context.Context, limit int) ([]*Analysis, error)
	FindSimilar(ctx context.Context, profile pgvector.Vector, limit int, exclude uuid.UUID) ([]*AnalysisWithSimilarity, error)
	DashboardStats(ctx context.Context) (*DashboardStats, error)
}

// HashConversation derives the deduplication hash stored with each
// analysis. Raw conversation text itself is never persisted.
func HashConversation(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])[:16]
}

// PostgresAnalysisRepository implements AnalysisRepository using
// PostgreSQL with pgvector.
type PostgresAnalysisRepository struct {
	db *sql.DB
}

// NewPostgresAnalysisRepository creates a new PostgresAnalysisRepository.
func NewPostgresAnalysisRepository(db *sql.DB) *PostgresAnalysisRepository {
	return &PostgresAnalysisRepository{db: db}
}

const analysisColumns = `id, conversation_hash, message_count, participant_count, platform,
	overall_score, verdict, signal_profile, llm_enhanced,
	ip_address, user_agent, country, is_bot, created_at`

// Create inserts a new analysis record.
func (r *PostgresAnalysisRepository) Create(ctx context.Context, analysis *Analysis) error {
	if analysis.ID == uuid.Nil {
		analysis.ID = uuid.New()
	}
	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO troll_analyses (` + analysisColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.ExecContext(ctx, query,
		analysis.ID,
		analysis.ConversationHash,
		analysis.MessageCount,
		analysis.ParticipantCount,
		analysis.Platform,
		analysis.OverallScore,
		analysis.Verdict,
		analysis.SignalProfile,
		analysis.LLMEnhanced,
		nullIfEmpty(analysis.IPAddress),
		nullIfEmpty(analysis.UserAgent),
		nullIfEmpty(analysis.Country),
		analysis.IsBot,
		analysis.CreatedAt,
	)

	return err
}

// GetByID retrieves an analysis by its ID.
func (r *PostgresAnalysisRepository) GetByID(ctx context.Context, id uuid.UUID) (*Analysis, error) {
	query := `
		SELECT ` + analysisColumns + `
		FROM troll_analyses
		WHERE id = $1
	`

	analysis, err := scanAnalysis(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return analysis, nil
}

// Recent retrieves the most recent analyses, newest first.
func (r *PostgresAnalysisRepository) Recent(ctx context.Context, limit int) ([]*Analysis, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT ` + analysisColumns + `
		FROM troll_analyses
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var analyses []*Analysis
	for rows.Next() {
		analysis, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, analysis)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return analyses, nil
}

// FindSimilar finds past analyses whose signal profile is closest to the
// given one by cosine distance, excluding the reference record itself.
func (r *PostgresAnalysisRepository) FindSimilar(ctx context.Context, profile pgvector.Vector, limit int, exclude uuid.UUID) ([]*AnalysisWithSimilarity, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT ` + analysisColumns + `,
			   1 - (signal_profile <=> $1) as similarity
		FROM troll_analyses
		WHERE id <> $2 AND signal_profile IS NOT NULL
		ORDER BY signal_profile <=> $1
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, profile, exclude, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*AnalysisWithSimilarity
	for rows.Next() {
		analysis := &Analysis{}
		var ip, ua, country sql.NullString
		var similarity float64
		err := rows.Scan(
			&analysis.ID,
			&analysis.ConversationHash,
			&analysis.MessageCount,
			&analysis.ParticipantCount,
			&analysis.Platform,
			&analysis.OverallScore,
			&analysis.Verdict,
			&analysis.SignalProfile,
			&analysis.LLMEnhanced,
			&ip,
			&ua,
			&country,
			&analysis.IsBot,
			&analysis.CreatedAt,
			&similarity,
		)
		if err != nil {
			return nil, err
		}
		analysis.IPAddress = ip.String
		analysis.UserAgent = ua.String
		analysis.Country = country.String
		results = append(results, &AnalysisWithSimilarity{
			Analysis:   analysis,
			Similarity: similarity,
		})
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// DashboardStats computes the admin dashboard aggregates.
func (r *PostgresAnalysisRepository) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{
		VerdictCounts:  make(map[string]int),
		PlatformCounts: make(map[string]int),
	}

	totalsQuery := `
		SELECT COUNT(*),
			   COALESCE(AVG(overall_score), 0),
			   COUNT(*) FILTER (WHERE llm_enhanced),
			   COUNT(*) FILTER (WHERE is_bot)
		FROM troll_analyses
	`
	err := r.db.QueryRowContext(ctx, totalsQuery).Scan(
		&stats.TotalAnalyses,
		&stats.AverageScore,
		&stats.LLMEnhancedCount,
		&stats.BotCount,
	)
	if err != nil {
		return nil, err
	}

	if err := r.countsBy(ctx, "verdict", stats.VerdictCounts); err != nil {
		return nil, err
	}
	if err := r.countsBy(ctx, "platform", stats.PlatformCounts); err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *PostgresAnalysisRepository) countsBy(ctx context.Context, column string, dest map[string]int) error {
	// column is one of two fixed identifiers, never user input.
	query := `SELECT COALESCE(` + column + `, ''), COUNT(*) FROM troll_analyses GROUP BY 1`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		dest[key] = count
	}

	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (*Analysis, error) {
	analysis := &Analysis{}
	var ip, ua, country sql.NullString
	err := row.Scan(
		&analysis.ID,
		&analysis.ConversationHash,
		&analysis.MessageCount,
		&analysis.ParticipantCount,
		&analysis.Platform,
		&analysis.OverallScore,
		&analysis.Verdict,
		&analysis.SignalProfile,
		&analysis.LLMEnhanced,
		&ip,
		&ua,
		&country,
		&analysis.IsBot,
		&analysis.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	analysis.IPAddress = ip.String
	analysis.UserAgent = ua.String
	analysis.Country = country.String
	return analysis, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
