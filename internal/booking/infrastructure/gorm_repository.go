package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mateusmacedo/go-ticket-booking/internal/booking/domain"
	"github.com/mateusmacedo/go-ticket-booking/pkg/application"
)

// recordRow stores one entity as its JSON document, ordered within its kind.
type recordRow struct {
	ID       uint   `gorm:"primaryKey"`
	Kind     string `gorm:"size:32;not null;index:idx_booking_records_kind_position,priority:1"`
	Position int    `gorm:"not null;index:idx_booking_records_kind_position,priority:2"`
	Document string `gorm:"type:text;not null"`
}

func (recordRow) TableName() string {
	return "booking_records"
}

func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err = db.AutoMigrate(&recordRow{}); err != nil {
		return nil, err
	}
	return db, nil
}

// GormStore keeps the collection of one kind in the booking_records table. The
// collection semantics match FileStore: SaveAll replaces every row of the kind.
type GormStore[E any] struct {
	db     *gorm.DB
	kind   domain.Kind[E]
	logger application.AppLogger
}

func NewGormStore[E any](db *gorm.DB, kind domain.Kind[E], logger application.AppLogger) *GormStore[E] {
	return &GormStore[E]{db: db, kind: kind, logger: logger}
}

func (r *GormStore[E]) Load(ctx context.Context) ([]E, error) {
	var rows []recordRow
	if err := r.db.WithContext(ctx).Where("kind = ?", r.kind.Name()).Order("position").Find(&rows).Error; err != nil {
		application.LogError(ctx, r.logger, "failed to load records", err, map[string]interface{}{"kind": r.kind.Name()})
		return nil, fmt.Errorf("%w: load %s records: %w", domain.ErrStoreIO, r.kind.Name(), err)
	}
	return decodeRows[E](rows)
}

func (r *GormStore[E]) SaveAll(ctx context.Context, records []E) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.replace(tx, records)
	})
	if err != nil {
		application.LogError(ctx, r.logger, "failed to save records", err, map[string]interface{}{"kind": r.kind.Name()})
		return fmt.Errorf("%w: save %s records: %w", domain.ErrStoreIO, r.kind.Name(), err)
	}
	return nil
}

func (r *GormStore[E]) Append(ctx context.Context, record E) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last recordRow
		res := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("kind = ?", r.kind.Name()).Order("position desc").Limit(1).Find(&last)
		if res.Error != nil {
			return res.Error
		}

		position := 0
		if res.RowsAffected > 0 {
			position = last.Position + 1
		}
		row, err := encodeRow(r.kind.Name(), position, normalizeRecord(r.kind, record))
		if err != nil {
			return err
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		application.LogError(ctx, r.logger, "failed to append record", err, map[string]interface{}{"kind": r.kind.Name()})
		return fmt.Errorf("%w: append %s record: %w", domain.ErrStoreIO, r.kind.Name(), err)
	}
	return nil
}

func (r *GormStore[E]) Update(ctx context.Context, fn domain.UpdateFunc[E]) error {
	var fnErr error
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []recordRow
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("kind = ?", r.kind.Name()).Order("position").Find(&rows).Error; err != nil {
			return err
		}
		records, err := decodeRows[E](rows)
		if err != nil {
			return err
		}

		updated, changed, err := fn(records)
		if err != nil {
			fnErr = err
			return err
		}
		if !changed {
			return nil
		}
		return r.replace(tx, updated)
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		application.LogError(ctx, r.logger, "failed to update records", err, map[string]interface{}{"kind": r.kind.Name()})
		return fmt.Errorf("%w: update %s records: %w", domain.ErrStoreIO, r.kind.Name(), err)
	}
	return nil
}

func (r *GormStore[E]) replace(tx *gorm.DB, records []E) error {
	if err := tx.Where("kind = ?", r.kind.Name()).Delete(&recordRow{}).Error; err != nil {
		return err
	}
	normalized := make([]E, 0, len(records))
	for _, record := range records {
		normalized = append(normalized, normalizeRecord(r.kind, record))
	}
	rows, err := encodeRows(r.kind.Name(), normalized)
	if err != nil || len(rows) == 0 {
		return err
	}
	return tx.CreateInBatches(rows, 100).Error
}

func encodeRow[E any](kind string, position int, record E) (recordRow, error) {
	doc, err := json.Marshal(record)
	if err != nil {
		return recordRow{}, err
	}
	return recordRow{Kind: kind, Position: position, Document: string(doc)}, nil
}

func encodeRows[E any](kind string, records []E) ([]recordRow, error) {
	rows := make([]recordRow, 0, len(records))
	for i, record := range records {
		row, err := encodeRow(kind, i, record)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeRows[E any](rows []recordRow) ([]E, error) {
	records := make([]E, 0, len(rows))
	for _, row := range rows {
		var record E
		if err := json.Unmarshal([]byte(row.Document), &record); err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", domain.ErrCorruptStore, row.ID, err)
		}
		records = append(records, record)
	}
	return records, nil
}
