package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/nguyentantai21042004/sonote/internal/config"
	"github.com/nguyentantai21042004/sonote/internal/logger"
)

// DefaultMaxItems is the retention cap when none is configured.
const DefaultMaxItems = 50

// MemoryPath opens a private in-memory store.
const MemoryPath = ":memory:"

var ErrNotFound = errors.New("history record not found")

const schema = `
	CREATE TABLE IF NOT EXISTS history (
		id TEXT PRIMARY KEY,
		item_id TEXT NOT NULL UNIQUE,
		file_name TEXT NOT NULL,
		file_size INTEGER NOT NULL,
		transcript TEXT NOT NULL,
		polished_text TEXT NOT NULL,
		summary TEXT NOT NULL,
		keywords TEXT NOT NULL,
		completed_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_history_completed_at ON history(completed_at DESC);
`

type implStore struct {
	db       *sql.DB
	maxItems int
	newID    func() string
	logger   logger.Logger
}

// New opens (creating if needed) the sqlite history database at cfg.Path.
// A negative MaxItems disables the retention cap.
func New(ctx context.Context, cfg config.HistoryConfig, log logger.Logger) (Store, error) {
	path := cfg.Path
	if path == "" {
		path = MemoryPath
	}

	dsn := path
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection: writes are serialized and :memory: stays a single database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	maxItems := cfg.MaxItems
	if maxItems == 0 {
		maxItems = DefaultMaxItems
	}

	log.Info(ctx, "History store ready: %s (max %d items)", path, maxItems)
	return &implStore{
		db:       db,
		maxItems: maxItems,
		newID:    uuid.NewString,
		logger:   log,
	}, nil
}
