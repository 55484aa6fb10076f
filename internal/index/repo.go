package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/seliv/margin/internal/annot"
	"github.com/seliv/margin/internal/models"
)

// CommentRow is one indexed comment.
type CommentRow struct {
	Path      string `json:"path"`
	LineIndex int    `json:"line_index"`
	Author    string `json:"author"`
	Body      string `json:"body"`
	Depth     int    `json:"depth"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// SearchResult is one full-text search hit.
type SearchResult struct {
	Path      string `json:"path"`
	LineIndex int    `json:"line_index"`
	Author    string `json:"author"`
	Snippet   string `json:"snippet"`
}

// UpsertFile replaces a file's index entry and all of its comments within a
// single transaction.
func (db *DB) UpsertFile(path, checksum string, anns []*annot.Annotation) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO files (path, checksum, comment_count, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum      = excluded.checksum,
			comment_count = excluded.comment_count,
			updated_at    = excluded.updated_at
	`, path, checksum, len(anns), time.Now())
	if err != nil {
		return fmt.Errorf("index: upsert file: %w", err)
	}

	_, _ = tx.Exec(`DELETE FROM comments WHERE path = ?`, path)
	ftsDelete(tx, path)

	if len(anns) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO comments (path, line_idx, author, body, depth, ts) VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare comment insert: %w", err)
		}
		defer stmt.Close()
		for _, a := range anns {
			if _, err := stmt.Exec(path, a.LineIndex, a.Author, a.Body, a.Depth, a.Timestamp); err != nil {
				return fmt.Errorf("index: insert comment: %w", err)
			}
			if err := ftsUpsert(tx, path, a.LineIndex, a.Author, a.Body); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// DeleteFile removes a file, its comments, and its FTS entries.
func (db *DB) DeleteFile(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM comments WHERE path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM files WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a file, or empty string if not
// indexed.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM files WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns path → checksum for every indexed file.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM files`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// ListFiles returns indexed files, most recently updated first, optionally
// filtered to files carrying at least one comment by author.
func (db *DB) ListFiles(limit, offset int, author string) ([]models.FileSummary, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	where := ``
	args := []any{}
	if author != "" {
		where = `WHERE EXISTS (SELECT 1 FROM comments c WHERE c.path = files.path AND c.author = ?)`
		args = append(args, author)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM files `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count files: %w", err)
	}

	query := `SELECT path, checksum, comment_count, updated_at FROM files ` + where +
		` ORDER BY updated_at DESC, path ASC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list files: %w", err)
	}
	defer rows.Close()

	var out []models.FileSummary
	for rows.Next() {
		var f models.FileSummary
		if err := rows.Scan(&f.Path, &f.Checksum, &f.CommentCount, &f.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, f)
	}
	return out, total, rows.Err()
}

// Comments returns a file's indexed comments in line order.
func (db *DB) Comments(path string) ([]CommentRow, error) {
	rows, err := db.conn.Query(`
		SELECT path, line_idx, author, body, depth, ts
		FROM comments WHERE path = ? ORDER BY line_idx ASC
	`, path)
	if err != nil {
		return nil, fmt.Errorf("index: comments: %w", err)
	}
	defer rows.Close()

	var out []CommentRow
	for rows.Next() {
		var c CommentRow
		if err := rows.Scan(&c.Path, &c.LineIndex, &c.Author, &c.Body, &c.Depth, &c.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Authors returns the per-author comment tally, busiest first.
func (db *DB) Authors() ([]models.AuthorCount, error) {
	rows, err := db.conn.Query(`
		SELECT author, COUNT(*) FROM comments
		GROUP BY author ORDER BY COUNT(*) DESC, author ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("index: authors: %w", err)
	}
	defer rows.Close()

	var out []models.AuthorCount
	for rows.Next() {
		var a models.AuthorCount
		if err := rows.Scan(&a.Author, &a.Count); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Timeline returns timestamped comments across the vault, newest first.
// Comments without an embedded timestamp are excluded.
func (db *DB) Timeline(limit int) ([]CommentRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.Query(`
		SELECT path, line_idx, author, body, depth, ts
		FROM comments WHERE ts > 0 ORDER BY ts DESC, path ASC, line_idx ASC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("index: timeline: %w", err)
	}
	defer rows.Close()

	var out []CommentRow
	for rows.Next() {
		var c CommentRow
		if err := rows.Scan(&c.Path, &c.LineIndex, &c.Author, &c.Body, &c.Depth, &c.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
