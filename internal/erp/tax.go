package erp

import (
	"context"
	"errors"
	"strings"

	errx "github.com/erpbot/server/internal/core/error"
	"gorm.io/gorm"
)

// CreateTaxTemplate stores a tax template. Marking it default clears the
// flag on other templates of the same kind.
func (s *Store) CreateTaxTemplate(ctx context.Context, tpl TaxTemplate) error {
	if strings.TrimSpace(tpl.Name) == "" {
		return errx.Validationf("tax template name is mandatory")
	}
	if tpl.Kind != TaxKindSales && tpl.Kind != TaxKindPurchase {
		return errx.Validationf("invalid tax template kind %q", tpl.Kind)
	}
	for i := range tpl.Taxes {
		if tpl.Taxes[i].ChargeType == "" {
			tpl.Taxes[i].ChargeType = ChargeOnNetTotal
		}
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tpl.IsDefault {
			if err := tx.Model(&TaxTemplate{}).Where("kind = ?", tpl.Kind).Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&tpl).Error
	})
	return dbErr("create tax template", err)
}

// DefaultTaxTemplate returns the name of the default template of kind, or
// an empty string when none is marked default.
func (s *Store) DefaultTaxTemplate(ctx context.Context, kind string) (string, error) {
	var tpl TaxTemplate
	err := s.db.WithContext(ctx).Select("name").
		Where("kind = ? AND is_default = ?", kind, true).
		First(&tpl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", dbErr("default tax template", err)
	}
	return tpl.Name, nil
}

// TaxTemplateRows returns the tax rows of a template.
func (s *Store) TaxTemplateRows(ctx context.Context, name string) ([]TaxTemplateRow, error) {
	var tpl TaxTemplate
	if err := s.db.WithContext(ctx).Preload("Taxes").First(&tpl, "name = ?", name).Error; err != nil {
		return nil, dbErr("get tax template", err)
	}
	return tpl.Taxes, nil
}
