package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/policyscan/internal/model"
)

// FileName is the name of the database file inside the data directory.
const FileName = "policyscan.db"

// DefaultHistoryLimit is used by History when limit is not positive.
const DefaultHistoryLimit = 50

// topCompaniesLimit is how many companies DashboardStats reports.
const topCompaniesLimit = 5

// storedTimeFormat is how timestamps are written. It sorts lexically.
const storedTimeFormat = "2006-01-02 15:04:05"

// ResultDB stores analysis results, cached analyses, per-company statistics
// and session activity in a single SQLite file.
//
// Tables:
//   - analysis_history: one row per saved result, newest first on read
//   - platform_stats: a running count and average risk per company
//   - analysis_cache: whole results as JSON, keyed by lowercased domain,
//     with an expiry time
//   - user_sessions: analyses counted per CLI invocation
//
// Design decision: history rows are flat columns while cache rows hold the
// whole result as JSON:
//  1. History and dashboard queries filter and average on plain columns
//  2. A cache hit restores the exact result that was saved, data types and
//     concerns included, without a column per list
//
// SaveAnalysis updates history and statistics in one transaction so the
// average never drifts from the history rows. Timestamps are UTC text in
// storedTimeFormat so that ORDER BY works on them directly.
type ResultDB struct {
	db     *sql.DB
	dbPath string

	// now is the clock used for timestamps and cache expiry.
	now func() time.Time
}

// Options configures ResultDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a ResultDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*ResultDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &ResultDB{
		db:     db,
		dbPath: dbPath,
		now:    time.Now,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *ResultDB) Close() error {
	return rdb.db.Close()
}

// Path returns the database file path.
func (rdb *ResultDB) Path() string {
	return rdb.dbPath
}

func (rdb *ResultDB) createTables() error {
	schema := `
	-- One row per completed analysis
	CREATE TABLE IF NOT EXISTS analysis_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		analysis_id TEXT NOT NULL,
		website TEXT,
		company_name TEXT NOT NULL,
		source_kind TEXT NOT NULL,
		backend TEXT NOT NULL,
		score INTEGER NOT NULL,
		scale TEXT NOT NULL,
		risk_score INTEGER NOT NULL,
		harmful_points TEXT,
		worst_data TEXT,
		recommendation TEXT,
		privacy_url TEXT,
		timestamp TEXT NOT NULL,
		user_session TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_history_timestamp ON analysis_history(timestamp);
	CREATE INDEX IF NOT EXISTS idx_history_company ON analysis_history(company_name);

	-- Running risk average per company or platform
	CREATE TABLE IF NOT EXISTS platform_stats (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		platform_name TEXT NOT NULL UNIQUE,
		analysis_count INTEGER NOT NULL DEFAULT 0,
		avg_risk_score REAL NOT NULL DEFAULT 0,
		last_analyzed TEXT NOT NULL
	);

	-- Serialized results keyed by domain or platform
	CREATE TABLE IF NOT EXISTS analysis_cache (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		cache_key TEXT NOT NULL UNIQUE,
		company_name TEXT,
		cached_analysis TEXT NOT NULL,
		cache_timestamp TEXT NOT NULL,
		expires_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_cache_expires ON analysis_cache(expires_at);

	CREATE TABLE IF NOT EXISTS user_sessions (
		session_id TEXT PRIMARY KEY,
		first_visit TEXT NOT NULL,
		last_activity TEXT NOT NULL,
		total_analyses INTEGER NOT NULL DEFAULT 0,
		platforms_analyzed TEXT NOT NULL DEFAULT ''
	);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveAnalysis records a completed analysis and folds its risk into the
// company's running average. Both writes happen in one transaction.
// It returns the history row ID.
func (rdb *ResultDB) SaveAnalysis(ctx context.Context, result *model.AnalysisResult, sessionID string) (int64, error) {
	if result == nil {
		return 0, errors.New("nil analysis result")
	}

	now := rdb.stamp()
	risk := result.RiskPercent()

	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO analysis_history (
			analysis_id, website, company_name, source_kind, backend,
			score, scale, risk_score, harmful_points, worst_data,
			recommendation, privacy_url, timestamp, user_session
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		result.ID,
		nullString(result.Website),
		result.CompanyName,
		result.SourceKind.String(),
		result.Backend,
		result.Score,
		string(result.Scale),
		risk,
		result.HarmfulPoints,
		result.WorstData,
		result.Recommendation,
		nullString(result.PrivacyURL),
		now,
		nullString(sessionID),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get analysis ID: %w", err)
	}

	if result.CompanyName != "" {
		// SET expressions see the row as it was before the update.
		_, err = tx.ExecContext(ctx, `
			INSERT INTO platform_stats (platform_name, analysis_count, avg_risk_score, last_analyzed)
			VALUES (?, 1, ?, ?)
			ON CONFLICT(platform_name) DO UPDATE SET
				avg_risk_score = (avg_risk_score * analysis_count + excluded.avg_risk_score) / (analysis_count + 1),
				analysis_count = analysis_count + 1,
				last_analyzed = excluded.last_analyzed
		`, result.CompanyName, float64(risk), now)
		if err != nil {
			return 0, fmt.Errorf("failed to update platform stats: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit analysis: %w", err)
	}
	return id, nil
}

// CacheAnalysis stores result under key until ttl elapses, replacing any
// earlier entry for the same key.
func (rdb *ResultDB) CacheAnalysis(ctx context.Context, key string, result *model.AnalysisResult, ttl time.Duration) error {
	if result == nil {
		return errors.New("nil analysis result")
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to serialize analysis: %w", err)
	}

	now := rdb.now().UTC()
	_, err = rdb.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO analysis_cache (cache_key, company_name, cached_analysis, cache_timestamp, expires_at)
		VALUES (?, ?, ?, ?, ?)
	`, cacheKey(key), result.CompanyName, string(data), now.Format(storedTimeFormat), now.Add(ttl).Format(storedTimeFormat))
	if err != nil {
		return fmt.Errorf("failed to cache analysis: %w", err)
	}
	return nil
}

// GetCachedAnalysis returns the cached result for key.
// Returns nil, nil when there is no entry or it has expired.
func (rdb *ResultDB) GetCachedAnalysis(ctx context.Context, key string) (*model.AnalysisResult, error) {
	var data string
	err := rdb.db.QueryRowContext(ctx, `
		SELECT cached_analysis FROM analysis_cache
		WHERE cache_key = ? AND expires_at > ?
	`, cacheKey(key), rdb.stamp()).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // nil result means a cache miss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached analysis: %w", err)
	}

	var result model.AnalysisResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, fmt.Errorf("failed to deserialize cached analysis: %w", err)
	}
	return &result, nil
}

// CleanupExpiredCache deletes expired cache entries and returns how many
// were removed.
func (rdb *ResultDB) CleanupExpiredCache(ctx context.Context) (int64, error) {
	res, err := rdb.db.ExecContext(ctx, `DELETE FROM analysis_cache WHERE expires_at <= ?`, rdb.stamp())
	if err != nil {
		return 0, fmt.Errorf("failed to clean up cache: %w", err)
	}
	return res.RowsAffected()
}

// HistoryEntry is one row of the analysis history.
type HistoryEntry struct {
	ID          int64            `json:"id"`
	AnalysisID  string           `json:"analysisId"`
	Website     string           `json:"website,omitempty"`
	CompanyName string           `json:"companyName"`
	SourceKind  model.SourceKind `json:"sourceKind"`
	Backend     string           `json:"backend"`
	Score       int              `json:"score"`
	Scale       model.ScoreScale `json:"scale"`

	// RiskScore is Score expressed as risk.
	RiskScore  int       `json:"riskScore"`
	PrivacyURL string    `json:"privacyUrl,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// History returns the most recent analyses, newest first.
func (rdb *ResultDB) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := rdb.db.QueryContext(ctx, `
		SELECT id, analysis_id, website, company_name, source_kind, backend,
		       score, scale, risk_score, privacy_url, timestamp
		FROM analysis_history
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var (
			e                   HistoryEntry
			website, privacyURL sql.NullString
			kind, scale         string
			timestamp           string
		)
		if err := rows.Scan(&e.ID, &e.AnalysisID, &website, &e.CompanyName, &kind, &e.Backend,
			&e.Score, &scale, &e.RiskScore, &privacyURL, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		e.Website = website.String
		e.PrivacyURL = privacyURL.String
		e.SourceKind = model.SourceKind(kind)
		e.Scale = model.ScoreScale(scale)
		e.Timestamp = parseTimestamp(timestamp)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// PlatformStat is the running summary for one company or platform.
type PlatformStat struct {
	Name          string    `json:"name"`
	AnalysisCount int       `json:"analysisCount"`
	AvgRiskScore  float64   `json:"avgRiskScore"`
	LastAnalyzed  time.Time `json:"lastAnalyzed"`
}

// PlatformStats returns per-company statistics, most analyzed first.
func (rdb *ResultDB) PlatformStats(ctx context.Context) ([]PlatformStat, error) {
	rows, err := rdb.db.QueryContext(ctx, `
		SELECT platform_name, analysis_count, avg_risk_score, last_analyzed
		FROM platform_stats
		ORDER BY analysis_count DESC, platform_name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query platform stats: %w", err)
	}
	defer rows.Close()

	var stats []PlatformStat
	for rows.Next() {
		var (
			s         PlatformStat
			timestamp string
		)
		if err := rows.Scan(&s.Name, &s.AnalysisCount, &s.AvgRiskScore, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan platform stats: %w", err)
		}
		s.AvgRiskScore = round1(s.AvgRiskScore)
		s.LastAnalyzed = parseTimestamp(timestamp)
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// CompanyCount is a company with its number of analyses.
type CompanyCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Dashboard aggregates the analysis history.
type Dashboard struct {
	TotalAnalyses  int            `json:"totalAnalyses"`
	UniqueWebsites int            `json:"uniqueWebsites"`
	AvgRiskScore   float64        `json:"avgRiskScore"`
	AnalysesToday  int            `json:"analysesToday"`
	TopCompanies   []CompanyCount `json:"topCompanies"`
}

// DashboardStats summarizes the history. The risk average ignores
// zero-risk rows.
func (rdb *ResultDB) DashboardStats(ctx context.Context) (*Dashboard, error) {
	d := &Dashboard{TopCompanies: make([]CompanyCount, 0, topCompaniesLimit)}

	if err := rdb.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT website) FROM analysis_history`,
	).Scan(&d.TotalAnalyses, &d.UniqueWebsites); err != nil {
		return nil, fmt.Errorf("failed to count analyses: %w", err)
	}

	var avg sql.NullFloat64
	if err := rdb.db.QueryRowContext(ctx,
		`SELECT AVG(risk_score) FROM analysis_history WHERE risk_score > 0`,
	).Scan(&avg); err != nil {
		return nil, fmt.Errorf("failed to average risk: %w", err)
	}
	d.AvgRiskScore = round1(avg.Float64)

	now := rdb.now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if err := rdb.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM analysis_history WHERE timestamp >= ?`,
		startOfDay.Format(storedTimeFormat),
	).Scan(&d.AnalysesToday); err != nil {
		return nil, fmt.Errorf("failed to count today's analyses: %w", err)
	}

	rows, err := rdb.db.QueryContext(ctx, `
		SELECT company_name, COUNT(*) AS n
		FROM analysis_history
		GROUP BY company_name
		ORDER BY n DESC, company_name ASC
		LIMIT ?
	`, topCompaniesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top companies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c CompanyCount
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan top companies: %w", err)
		}
		d.TopCompanies = append(d.TopCompanies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

// UserSession is the activity recorded for one session ID.
type UserSession struct {
	ID                string    `json:"id"`
	FirstVisit        time.Time `json:"firstVisit"`
	LastActivity      time.Time `json:"lastActivity"`
	TotalAnalyses     int       `json:"totalAnalyses"`
	PlatformsAnalyzed []string  `json:"platformsAnalyzed"`
}

// UpdateUserSession counts one analysis of platform for sessionID, creating
// the session on first use. Each platform is listed once.
func (rdb *ResultDB) UpdateUserSession(ctx context.Context, sessionID, platform string) error {
	if sessionID == "" {
		return errors.New("empty session ID")
	}

	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var listed string
	err = tx.QueryRowContext(ctx,
		`SELECT platforms_analyzed FROM user_sessions WHERE session_id = ?`, sessionID,
	).Scan(&listed)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to get session: %w", err)
	}

	platforms := splitPlatforms(listed)
	if platform != "" && !slices.Contains(platforms, platform) {
		platforms = append(platforms, platform)
	}

	now := rdb.stamp()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_sessions (session_id, first_visit, last_activity, total_analyses, platforms_analyzed)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			last_activity = excluded.last_activity,
			total_analyses = total_analyses + 1,
			platforms_analyzed = excluded.platforms_analyzed
	`, sessionID, now, now, strings.Join(platforms, ","))
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	return nil
}

// GetUserSession returns the session with the given ID.
// Returns nil, nil if it does not exist.
func (rdb *ResultDB) GetUserSession(ctx context.Context, sessionID string) (*UserSession, error) {
	var (
		s                   UserSession
		first, last, listed string
	)
	err := rdb.db.QueryRowContext(ctx, `
		SELECT session_id, first_visit, last_activity, total_analyses, platforms_analyzed
		FROM user_sessions WHERE session_id = ?
	`, sessionID).Scan(&s.ID, &first, &last, &s.TotalAnalyses, &listed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // nil session means not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	s.FirstVisit = parseTimestamp(first)
	s.LastActivity = parseTimestamp(last)
	s.PlatformsAnalyzed = splitPlatforms(listed)
	return &s, nil
}

func (rdb *ResultDB) stamp() string {
	return rdb.now().UTC().Format(storedTimeFormat)
}

// cacheKey makes keys case-insensitive.
func cacheKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func splitPlatforms(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	storedTimeFormat,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999",
}

// parseTimestamp tries each of timestampFormats. It returns the zero time
// if none match.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
