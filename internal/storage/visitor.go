package storage

import (
	"context"
	"database/sql"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// botPatterns identify crawler and script user agents so dashboard counts
// can separate humans from bots.
var botPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)googlebot`),
	regexp.MustCompile(`(?i)bingbot`),
	regexp.MustCompile(`(?i)slurp`),
	regexp.MustCompile(`(?i)duckduckbot`),
	regexp.MustCompile(`(?i)facebookexternalhit`),
	regexp.MustCompile(`(?i)twitterbot`),
	regexp.MustCompile(`(?i)linkedinbot`),
	regexp.MustCompile(`(?i)discordbot`),
	regexp.MustCompile(`(?i)python-requests`),
	regexp.MustCompile(`(?i)curl`),
	regexp.MustCompile(`(?i)wget`),
	regexp.MustCompile(`(?i)scrapy`),
	regexp.MustCompile(`(?i)bot`),
	regexp.MustCompile(`(?i)crawler`),
	regexp.MustCompile(`(?i)spider`),
	regexp.MustCompile(`(?i)scraper`),
}

// IsBot reports whether a user agent looks automated. A missing user
// agent counts as a bot.
func IsBot(userAgent string) bool {
	if strings.TrimSpace(userAgent) == "" {
		return true
	}
	for _, pattern := range botPatterns {
		if pattern.MatchString(userAgent) {
			return true
		}
	}
	return false
}

// Visitor is one logged visit.
type Visitor struct {
	ID        uuid.UUID
	IPAddress string
	UserAgent string
	Country   string
	Referrer  string
	IsBot     bool
	CreatedAt time.Time
}

// VisitorStats are the visitor aggregates shown on the admin dashboard.
type VisitorStats struct {
	TotalVisitors int `json:"total_visitors"`
	BotVisitors   int `json:"bot_visitors"`
}

// VisitorRepository defines the interface for visitor log storage.
type VisitorRepository interface {
	Create(ctx context.Context, visitor *Visitor) error
	Stats(ctx context.Context) (*VisitorStats, error)
}

// PostgresVisitorRepository implements VisitorRepository using PostgreSQL.
type PostgresVisitorRepository struct {
	db *sql.DB
}

// NewPostgresVisitorRepository creates a new PostgresVisitorRepository.
func NewPostgresVisitorRepository(db *sql.DB) *PostgresVisitorRepository {
	return &PostgresVisitorRepository{db: db}
}

// Create inserts a new visitor record. IsBot is derived from the user
// agent if not already set.
func (r *PostgresVisitorRepository) Create(ctx context.Context, visitor *Visitor) error {
	if visitor.ID == uuid.Nil {
		visitor.ID = uuid.New()
	}
	if visitor.CreatedAt.IsZero() {
		visitor.CreatedAt = time.Now()
	}
	if !visitor.IsBot {
		visitor.IsBot = IsBot(visitor.UserAgent)
	}

	query := `
		INSERT INTO troll_visitors (id, ip_address, user_agent, country, referrer, is_bot, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		visitor.ID,
		nullIfEmpty(visitor.IPAddress),
		nullIfEmpty(visitor.UserAgent),
		nullIfEmpty(visitor.Country),
		nullIfEmpty(visitor.Referrer),
		visitor.IsBot,
		visitor.CreatedAt,
	)

	return err
}

// Stats computes visitor totals.
func (r *PostgresVisitorRepository) Stats(ctx context.Context) (*VisitorStats, error) {
	stats := &VisitorStats{}

	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_bot)
		FROM troll_visitors
	`
	err := r.db.QueryRowContext(ctx, query).Scan(&stats.TotalVisitors, &stats.BotVisitors)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
