package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/aptscout/internal/model"
	"github.com/nao1215/aptscout/internal/normalize"
)

// FileName is the database file name inside the store directory.
const FileName = "aptscout.db"

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// DB is the listing store.
type DB struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

// Options configures Open.
type Options struct {
	// CreateIfNotExists creates the directory and database file when missing.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default store options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the store in dir.
func Open(dir string, opts Options) (*DB, error) {
	dbPath := filepath.Join(dir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	mode := "rw"
	if opts.CreateIfNotExists {
		mode = "rwc"
	}
	db, err := sql.Open("sqlite", dbPath+"?mode="+mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &DB{db: db, dbPath: dbPath, now: time.Now}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if err := s.createTables(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *DB) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *DB) Close() error {
	return s.db.Close()
}

func (s *DB) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS scans (
		id TEXT PRIMARY KEY,
		start_url TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		pages INTEGER DEFAULT 0,
		url_count INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS listing_urls (
		url TEXT PRIMARY KEY,
		scan_id TEXT NOT NULL,
		first_seen DATETIME NOT NULL,
		last_seen DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_listing_urls_scan ON listing_urls(scan_id);

	CREATE TABLE IF NOT EXISTS ads (
		url TEXT PRIMARY KEY,
		title TEXT,
		price TEXT,
		content_hash TEXT NOT NULL,
		record_json TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Scan describes one crawl of a search-results URL.
type Scan struct {
	ID         string
	StartURL   string
	StartedAt  time.Time
	FinishedAt time.Time
	Pages      int
	URLCount   int
}

// BeginScan records the start of a crawl and returns its ID.
func (s *DB) BeginScan(ctx context.Context, startURL string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scans (id, start_url, started_at) VALUES (?, ?, ?)`,
		id, startURL, s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("failed to begin scan: %w", err)
	}
	return id, nil
}

// FinishScan records the outcome of a crawl.
func (s *DB) FinishScan(ctx context.Context, id string, pages, urlCount int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE scans SET finished_at = ?, pages = ?, url_count = ? WHERE id = ?`,
		s.now().UTC().Format(time.RFC3339Nano), pages, urlCount, id)
	if err != nil {
		return fmt.Errorf("failed to finish scan: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("scan %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListScans returns every scan, newest first.
func (s *DB) ListScans(ctx context.Context) ([]Scan, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, start_url, started_at, COALESCE(finished_at, ''), pages, url_count
	FROM scans ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query scans: %w", err)
	}
	defer rows.Close()

	var scans []Scan
	for rows.Next() {
		var (
			sc                  Scan
			started, finishedAt string
		)
		if err := rows.Scan(&sc.ID, &sc.StartURL, &started, &finishedAt, &sc.Pages, &sc.URLCount); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		sc.StartedAt = parseTimestamp(started)
		sc.FinishedAt = parseTimestamp(finishedAt)
		scans = append(scans, sc)
	}
	return scans, rows.Err()
}

// ListingURL is a discovered listing URL.
type ListingURL struct {
	URL       string
	ScanID    string
	FirstSeen time.Time
	LastSeen  time.Time
}

// RecordURLs upserts urls under scanID and returns how many were new.
func (s *DB) RecordURLs(ctx context.Context, scanID string, urls []string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := s.now().UTC().Format(time.RFC3339Nano)
	added := 0
	for _, u := range urls {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO listing_urls (url, scan_id, first_seen, last_seen) VALUES (?, ?, ?, ?)
			ON CONFLICT(url) DO NOTHING`, u, scanID, now, now)
		if err != nil {
			return 0, fmt.Errorf("failed to insert url: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE listing_urls SET last_seen = ?, scan_id = ? WHERE url = ?`, now, scanID, u); err != nil {
			return 0, fmt.Errorf("failed to update url: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit urls: %w", err)
	}
	return added, nil
}

// ListURLs returns every known listing URL ordered by first sighting.
func (s *DB) ListURLs(ctx context.Context) ([]ListingURL, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT url, scan_id, first_seen, last_seen FROM listing_urls ORDER BY first_seen, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query urls: %w", err)
	}
	defer rows.Close()

	var urls []ListingURL
	for rows.Next() {
		var (
			u           ListingURL
			first, last string
		)
		if err := rows.Scan(&u.URL, &u.ScanID, &first, &last); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		u.FirstSeen = parseTimestamp(first)
		u.LastSeen = parseTimestamp(last)
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

// Ad is a stored listing record.
type Ad struct {
	URL         string
	Title       string
	Price       string
	ContentHash string
	Record      *model.AdRecord
	UpdatedAt   time.Time
}

// ContentHash returns the hex SHA3-256 of the record's canonical JSON.
func ContentHash(rec *model.AdRecord) (string, error) {
	data, err := normalize.Format(rec)
	if err != nil {
		return "", err
	}
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// SaveAd upserts the record for url. A record whose content hash is
// unchanged keeps its previous updated_at.
func (s *DB) SaveAd(ctx context.Context, url string, rec *model.AdRecord) error {
	hash, err := ContentHash(rec)
	if err != nil {
		return fmt.Errorf("failed to hash record: %w", err)
	}
	data, err := rec.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize record: %w", err)
	}
	title, _ := rec.Get(model.FieldTitle)
	price, _ := rec.Get(model.FieldPrice)

	_, err = s.db.ExecContext(ctx, `
	INSERT INTO ads (url, title, price, content_hash, record_json, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(url) DO UPDATE SET
		title = excluded.title,
		price = excluded.price,
		record_json = excluded.record_json,
		updated_at = CASE WHEN ads.content_hash = excluded.content_hash
			THEN ads.updated_at ELSE excluded.updated_at END,
		content_hash = excluded.content_hash
	`, url, title.String(), price.String(), hash, string(data), s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save ad: %w", err)
	}
	return nil
}

// GetAd returns the stored record for url, or ErrNotFound.
func (s *DB) GetAd(ctx context.Context, url string) (*Ad, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT url, title, price, content_hash, record_json, updated_at FROM ads WHERE url = ?`, url)
	ad, err := scanAd(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ad %s: %w", url, ErrNotFound)
	}
	return ad, err
}

// ListAds returns every stored record ordered by URL.
func (s *DB) ListAds(ctx context.Context) ([]*Ad, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT url, title, price, content_hash, record_json, updated_at FROM ads ORDER BY url`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ads: %w", err)
	}
	defer rows.Close()

	var ads []*Ad
	for rows.Next() {
		ad, err := scanAd(rows)
		if err != nil {
			return nil, err
		}
		ads = append(ads, ad)
	}
	return ads, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAd(row rowScanner) (*Ad, error) {
	var (
		ad              Ad
		record, updated string
	)
	if err := row.Scan(&ad.URL, &ad.Title, &ad.Price, &ad.ContentHash, &record, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan ad: %w", err)
	}
	ad.Record = model.NewAdRecord()
	if err := ad.Record.UnmarshalJSON([]byte(record)); err != nil {
		return nil, fmt.Errorf("failed to decode ad %s: %w", ad.URL, err)
	}
	ad.UpdatedAt = parseTimestamp(updated)
	return &ad, nil
}

var timestampFormats = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp returns the zero time when s matches no known format.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
