// Package threadservice coordinates vault storage, the comment index, and
// the annotation engine.
package threadservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/seliv/margin/internal/annot"
	"github.com/seliv/margin/internal/apperr"
	"github.com/seliv/margin/internal/checksum"
	"github.com/seliv/margin/internal/index"
	"github.com/seliv/margin/internal/models"
	"github.com/seliv/margin/internal/storage"
)

// FileThreads is the arranged comment view of one document.
type FileThreads struct {
	Path     string              `json:"path"`
	Checksum string              `json:"checksum"`
	View     annot.View          `json:"view"`
	Comments []*annot.Annotation `json:"comments"`
	// Total is the flat extraction count, independent of nesting.
	Total int `json:"total"`
}

// Service coordinates storage, index, and extraction.
//
// Re-extraction can be triggered concurrently (watcher events, quick
// inserts, reconcile passes). A per-path revision counter sequences them:
// the revision is taken before the vault read and compared before the index
// write, so a slow computation over stale bytes is discarded instead of
// overwriting a newer result.
type Service struct {
	store    storage.Provider
	db       *index.DB
	rules    []annot.TagRule
	defaults annot.View
	now      func() time.Time

	mu  sync.Mutex
	rev map[string]uint64
}

// NewService creates a new thread service.
func NewService(store storage.Provider, db *index.DB, rules []annot.TagRule, defaults annot.View) *Service {
	return &Service{
		store:    store,
		db:       db,
		rules:    rules,
		defaults: defaults,
		now:      time.Now,
		rev:      make(map[string]uint64),
	}
}

// Rules returns the configured tag rules.
func (s *Service) Rules() []annot.TagRule { return s.rules }

// DefaultView returns the configured default arrangement.
func (s *Service) DefaultView() annot.View { return s.defaults }

// GetThreads reads a document, extracts its annotations, and arranges them
// with the requested view (nil means the configured default). Every call
// recomputes from the current vault bytes; nothing is cached.
func (s *Service) GetThreads(_ context.Context, path string, v *annot.View) (*FileThreads, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	view := s.defaults
	if v != nil {
		view = *v
	}

	anns := annot.Extract(string(data), s.rules)
	return &FileThreads{
		Path:     path,
		Checksum: checksum.Sum(data),
		View:     view,
		Comments: annot.Arrange(anns, view),
		Total:    len(anns),
	}, nil
}

// Content returns the raw bytes of a vault document.
func (s *Service) Content(_ context.Context, path string) ([]byte, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// WriteDocument writes a document into the vault and reindexes it.
func (s *Service) WriteDocument(_ context.Context, path string, data []byte) error {
	if err := s.store.Write(path, data); err != nil {
		return err
	}
	_, err := s.ReindexFile(path)
	return err
}

// AddComment builds an annotation block for author with the current instant
// and splices it into the document after line afterLine (negative appends at
// the end). The author must have a configured tag rule. Returns the inserted
// annotation as re-extracted from the updated document.
func (s *Service) AddComment(_ context.Context, path, author, body string, afterLine int) (*annot.Annotation, error) {
	author = strings.ToLower(strings.TrimSpace(author))
	if !s.hasRule(author) {
		return nil, apperr.ErrUnknownAuthor
	}

	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	content, headerIdx := splice(string(data), annot.BuildBlock(author, body, s.now()), afterLine)
	if err := s.store.Write(path, []byte(content)); err != nil {
		return nil, err
	}
	if _, err := s.ReindexFile(path); err != nil {
		return nil, err
	}

	for _, a := range annot.Extract(content, s.rules) {
		if a.LineIndex == headerIdx {
			return a, nil
		}
	}
	return nil, fmt.Errorf("threadservice: inserted block at line %d did not extract", headerIdx)
}

func (s *Service) hasRule(author string) bool {
	for _, r := range s.rules {
		if strings.EqualFold(r.Tag, author) {
			return true
		}
	}
	return false
}

// splice inserts block into content after line afterLine and returns the new
// content along with the line index of the block's header.
func splice(content, block string, afterLine int) (string, int) {
	if afterLine < 0 {
		base := content
		if base != "" && !strings.HasSuffix(base, "\n") {
			base += "\n"
		}
		return base + block, strings.Count(base, "\n")
	}

	lines := strings.Split(content, "\n")
	if afterLine >= len(lines) {
		afterLine = len(lines) - 1
	}
	blockLines := strings.Split(strings.TrimRight(block, "\n"), "\n")

	out := make([]string, 0, len(lines)+len(blockLines))
	out = append(out, lines[:afterLine+1]...)
	out = append(out, blockLines...)
	out = append(out, lines[afterLine+1:]...)
	return strings.Join(out, "\n"), afterLine + 1
}

// ReindexFile re-extracts one document into the index. It returns the change
// kind ("created", "updated", "deleted") or empty string when nothing
// changed or the computation was superseded by a newer one.
func (s *Service) ReindexFile(path string) (string, error) {
	rev := s.nextRev(path)

	prev, err := s.db.GetChecksum(path)
	if err != nil {
		return "", err
	}

	data, err := s.store.Read(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		if !s.revCurrent(path, rev) || prev == "" {
			return "", nil
		}
		if err := s.db.DeleteFile(path); err != nil {
			return "", err
		}
		return "deleted", nil
	}

	cs := checksum.Sum(data)
	if cs == prev {
		return "", nil
	}
	anns := annot.Extract(string(data), s.rules)

	// A newer revision exists: this result is stale, drop it.
	if !s.revCurrent(path, rev) {
		return "", nil
	}
	if err := s.db.UpsertFile(path, cs, anns); err != nil {
		return "", err
	}
	if prev == "" {
		return "created", nil
	}
	return "updated", nil
}

func (s *Service) nextRev(path string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rev[path]++
	return s.rev[path]
}

func (s *Service) revCurrent(path string, rev uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rev[path] == rev
}

// SyncVault reconciles the index against the vault: new and changed
// documents are re-extracted, entries without a backing file are dropped.
func (s *Service) SyncVault() error {
	metas, err := s.store.List("")
	if err != nil {
		return err
	}
	checksums, err := s.db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}
		if checksums[m.Path] == m.Checksum {
			continue
		}
		if _, err := s.ReindexFile(m.Path); err != nil {
			slog.Warn("sync: reindex failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			slog.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		// ReindexFile observes the missing file and removes the entry.
		if _, err := s.ReindexFile(p); err != nil {
			slog.Warn("sync: remove stale failed", slog.String("path", p), slog.String("error", err.Error()))
		} else {
			slog.Debug("sync: removed stale", slog.String("path", p))
		}
	}
	return nil
}

// ListFiles returns paginated indexed files with optional author filter.
func (s *Service) ListFiles(_ context.Context, limit, offset int, author string) ([]models.FileSummary, int, error) {
	return s.db.ListFiles(limit, offset, strings.ToLower(author))
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Authors returns the per-author comment tally.
func (s *Service) Authors(_ context.Context) ([]models.AuthorCount, error) {
	return s.db.Authors()
}

// Timeline returns timestamped comments across the vault, newest first.
func (s *Service) Timeline(_ context.Context, limit int) ([]index.CommentRow, error) {
	return s.db.Timeline(limit)
}
