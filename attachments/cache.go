// Package attachments is a disk-backed cache for attachment content.
// Attachment bytes are immutable server content, so unlike the synced
// stores the cache survives disconnects and restarts.
package attachments

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Cache wraps a SQLite database holding fetched attachment bytes.
type Cache struct {
	*sql.DB
}

// Open creates a SQLite connection with WAL mode and a busy timeout.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping cache db: %w", err)
	}
	return &Cache{db}, nil
}

// Put stores attachment content under its id. Re-putting the same id
// overwrites, which is harmless: content for an id never changes.
func (c *Cache) Put(id string, data []byte) error {
	_, err := c.Exec(`
		INSERT INTO attachments (id, data, size, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			data = excluded.data,
			size = excluded.size,
			fetched_at = excluded.fetched_at`,
		id, data, len(data), time.Now().UnixMilli())
	return err
}

// Get returns cached content for an id, or (nil, false) on a miss.
func (c *Cache) Get(id string) ([]byte, bool, error) {
	var data []byte
	err := c.QueryRow(`SELECT data FROM attachments WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Delete removes one cached attachment.
func (c *Cache) Delete(id string) error {
	_, err := c.Exec(`DELETE FROM attachments WHERE id = ?`, id)
	return err
}

// Prune deletes entries fetched before the cutoff and returns the count.
func (c *Cache) Prune(olderThan time.Time) (int64, error) {
	res, err := c.Exec(`DELETE FROM attachments WHERE fetched_at < ?`, olderThan.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
