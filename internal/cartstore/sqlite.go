package cartstore

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Vjossaab/commercify-client/pkg/db/models"
	"github.com/Vjossaab/commercify-client/pkg/errors"
	"github.com/Vjossaab/commercify-client/pkg/logger"
	"github.com/Vjossaab/commercify-client/pkg/types"
)

// SQLiteStore keeps the cart snapshot in a local sqlite row, for deployments
// without redis.
type SQLiteStore struct {
	conn *gorm.DB
	key  string
	logg *logger.Logger
}

// NewSQLiteStore migrates the snapshot table and returns the store.
func NewSQLiteStore(conn *gorm.DB, key string, logg *logger.Logger) (*SQLiteStore, error) {
	if err := conn.AutoMigrate(&models.CartSnapshot{}); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "migrating cart snapshot table")
	}
	return &SQLiteStore{conn: conn, key: key, logg: logg}, nil
}

// Save upserts the snapshot row for the storage key.
func (s *SQLiteStore) Save(ctx context.Context, lines types.Lines) error {
	payload, err := encodeLines(lines)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "encoding cart snapshot")
	}

	row := models.CartSnapshot{Key: s.key, Payload: payload}
	err = s.conn.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return errors.Wrap(errors.CodeDependency, err, "saving cart snapshot")
	}
	return nil
}

// Restore loads the persisted lines. Missing row restores empty; corrupt
// payload is discarded and cleared.
func (s *SQLiteStore) Restore(ctx context.Context) (types.Lines, error) {
	var row models.CartSnapshot
	err := s.conn.WithContext(ctx).First(&row, "key = ?", s.key).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return types.Lines{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "restoring cart snapshot")
	}

	lines, decodeErr := decodeLines(row.Payload)
	if decodeErr != nil {
		s.logg.Warn(ctx, errors.Wrap(errors.CodeCorruptState, decodeErr, "discarding corrupt cart snapshot").Error())
		if err := s.Clear(ctx); err != nil {
			s.logg.Error(ctx, "clearing corrupt cart snapshot", err)
		}
		return types.Lines{}, nil
	}
	return lines, nil
}

// Clear drops the snapshot row.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	err := s.conn.WithContext(ctx).
		Delete(&models.CartSnapshot{}, "key = ?", s.key).Error
	if err != nil {
		return errors.Wrap(errors.CodeDependency, err, "clearing cart snapshot")
	}
	return nil
}
