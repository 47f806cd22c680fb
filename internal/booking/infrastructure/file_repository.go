package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"github.com/mateusmacedo/go-ticket-booking/internal/booking/domain"
	pkgApp "github.com/mateusmacedo/go-ticket-booking/pkg/application"
)

const fileIndent = "    "

type FileStoreOption func(*fileStoreOptions)

type fileStoreOptions struct {
	strict bool
	perm   os.FileMode
}

// WithStrictDecode makes Load return a *domain.CorruptStoreError for a file that
// exists but does not decode, instead of treating it as an empty collection.
func WithStrictDecode(strict bool) FileStoreOption {
	return func(o *fileStoreOptions) {
		o.strict = strict
	}
}

func WithFileMode(perm os.FileMode) FileStoreOption {
	return func(o *fileStoreOptions) {
		o.perm = perm
	}
}

// FileStore keeps one entity kind as a single JSON array in one file.
type FileStore[E any] struct {
	path   string
	kind   domain.Kind[E]
	opts   fileStoreOptions
	lock   *fileLock
	logger pkgApp.AppLogger
}

var _ domain.Store[domain.Train] = (*FileStore[domain.Train])(nil)

func NewFileStore[E any](path string, kind domain.Kind[E], logger pkgApp.AppLogger, opts ...FileStoreOption) (*FileStore[E], error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %w", domain.ErrStoreIO, path, err)
	}

	options := fileStoreOptions{perm: 0o644}
	for _, opt := range opts {
		opt(&options)
	}

	return &FileStore[E]{
		path:   absPath,
		kind:   kind,
		opts:   options,
		lock:   newFileLock(absPath),
		logger: logger,
	}, nil
}

func (s *FileStore[E]) Path() string {
	return s.path
}

func (s *FileStore[E]) Load(ctx context.Context) ([]E, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.load(ctx)
}

func (s *FileStore[E]) load(ctx context.Context) ([]E, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		pkgApp.LogDebug(ctx, s.logger, "store file absent, starting empty", s.fields(nil))
		return []E{}, nil
	}
	if err != nil {
		if s.opts.strict {
			return nil, fmt.Errorf("%w: read %s: %w", domain.ErrStoreIO, s.path, err)
		}
		pkgApp.LogWarn(ctx, s.logger, "store file unreadable, treating as empty", err, s.fields(nil))
		return []E{}, nil
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []E{}, nil
	}

	var records []E
	if err := json.Unmarshal(data, &records); err != nil {
		if s.opts.strict {
			return nil, &domain.CorruptStoreError{Path: s.path, Err: err}
		}
		pkgApp.LogWarn(ctx, s.logger, "store file corrupt, treating as empty", err, s.fields(nil))
		return []E{}, nil
	}
	if records == nil {
		records = []E{}
	}
	return records, nil
}

func (s *FileStore[E]) SaveAll(ctx context.Context, records []E) error {
	return s.withLock(ctx, func() error {
		return s.save(ctx, records)
	})
}

func (s *FileStore[E]) Append(ctx context.Context, record E) error {
	return s.withLock(ctx, func() error {
		records, err := s.load(ctx)
		if err != nil {
			return err
		}
		return s.save(ctx, append(records, record))
	})
}

func (s *FileStore[E]) Update(ctx context.Context, fn domain.UpdateFunc[E]) error {
	return s.withLock(ctx, func() error {
		records, err := s.load(ctx)
		if err != nil {
			return err
		}

		updated, changed, err := fn(records)
		if err != nil {
			return err
		}
		if !changed {
			pkgApp.LogDebug(ctx, s.logger, "store unchanged, skipping write", s.fields(nil))
			return nil
		}
		return s.save(ctx, updated)
	})
}

func (s *FileStore[E]) withLock(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.lock.lock(); err != nil {
		return fmt.Errorf("%w: lock %s: %w", domain.ErrStoreIO, s.path, err)
	}
	defer func() {
		if err := s.lock.unlock(); err != nil {
			pkgApp.LogError(ctx, s.logger, "failed to release store lock", err, s.fields(nil))
		}
	}()
	return fn()
}

func (s *FileStore[E]) save(ctx context.Context, records []E) error {
	data, err := encodeRecords(s.kind, records)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", domain.ErrStoreIO, s.path, err)
	}

	if err := renameio.WriteFile(s.path, data, s.opts.perm); err != nil {
		pkgApp.LogError(ctx, s.logger, "failed to write store file", err, s.fields(nil))
		return fmt.Errorf("%w: write %s: %w", domain.ErrStoreIO, s.path, err)
	}

	pkgApp.LogDebug(ctx, s.logger, "store file written", s.fields(map[string]interface{}{
		"records": len(records),
	}))
	return nil
}

func (s *FileStore[E]) fields(extra map[string]interface{}) map[string]interface{} {
	fields := map[string]interface{}{
		"kind": s.kind.Name(),
		"path": s.path,
	}
	for k, v := range extra {
		fields[k] = v
	}
	return fields
}

// encodeRecords renders the collection as an indented JSON array. Empty grids
// and rows come out as [] rather than null.
func encodeRecords[E any](kind domain.Kind[E], records []E) ([]byte, error) {
	normalized := make([]E, 0, len(records))
	for _, record := range records {
		normalized = append(normalized, normalizeRecord(kind, record))
	}

	data, err := json.MarshalIndent(normalized, "", fileIndent)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func normalizeRecord[E any](kind domain.Kind[E], record E) E {
	id, trip := kind.Split(record)
	trip.Seats = normalizeSeats(trip.Seats)
	return kind.New(id, trip)
}

func normalizeSeats(seats [][]domain.User) [][]domain.User {
	out := make([][]domain.User, 0, len(seats))
	for _, row := range seats {
		if row == nil {
			row = []domain.User{}
		}
		out = append(out, row)
	}
	return out
}
