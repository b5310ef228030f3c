package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/online_quiz/internal/models"
)

// GormStore keeps sessions in the sessions table. Expired rows are ignored
// by Load and removed by PurgeExpired.
type GormStore struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db, Now: time.Now}
}

func (s *GormStore) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *GormStore) Save(ctx context.Context, id string, data []byte, ttl time.Duration) error {
	row := models.Session{ID: id, Data: data, ExpiresAt: s.now().Add(ttl)}
	err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "expires_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("db session save: %w", err)
	}
	return nil
}

func (s *GormStore) Load(ctx context.Context, id string) ([]byte, error) {
	var row models.Session
	err := s.DB.WithContext(ctx).
		Where("id = ? AND expires_at > ?", id, s.now()).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db session load: %w", err)
	}
	return row.Data, nil
}

func (s *GormStore) Destroy(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).
		Where("id = ? AND expires_at > ?", id, s.now()).
		Delete(&models.Session{})
	if res.Error != nil {
		return fmt.Errorf("db session destroy: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.DB.WithContext(ctx).
		Where("expires_at <= ?", s.now()).
		Delete(&models.Session{})
	return res.RowsAffected, res.Error
}
