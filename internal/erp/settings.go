package erp

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const botSettingsID = 1

// ModelOverride returns the model configured in the settings document, or
// an empty string when none is stored.
func (s *Store) ModelOverride(ctx context.Context) (string, error) {
	var bs BotSettings
	err := s.db.WithContext(ctx).First(&bs, botSettingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", dbErr("get bot settings", err)
	}
	return strings.TrimSpace(bs.Model), nil
}

// SetModelOverride stores the model name in the settings document.
func (s *Store) SetModelOverride(ctx context.Context, model string) error {
	bs := BotSettings{ID: botSettingsID, Model: strings.TrimSpace(model)}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"model"}),
	}).Create(&bs).Error
	return dbErr("set bot settings", err)
}
