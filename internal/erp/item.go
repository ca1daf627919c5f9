package erp

import (
	"context"
	"strings"

	errx "github.com/erpbot/server/internal/core/error"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ItemInput struct {
	ItemCode     string
	ItemName     string
	Description  string
	ItemGroup    string
	StockUOM     string
	IsStockItem  *bool
	StandardRate decimal.Decimal
}

func (in *ItemInput) validate() error {
	in.ItemName = strings.TrimSpace(in.ItemName)
	in.ItemCode = strings.TrimSpace(in.ItemCode)
	if in.ItemCode == "" {
		in.ItemCode = in.ItemName
	}
	if in.ItemCode == "" {
		return errx.Validationf("item_code is mandatory")
	}
	if in.ItemName == "" {
		in.ItemName = in.ItemCode
	}
	if strings.TrimSpace(in.ItemGroup) == "" {
		return errx.Validationf("item_group is mandatory")
	}
	if strings.TrimSpace(in.StockUOM) == "" {
		return errx.Validationf("stock_uom is mandatory")
	}
	if in.StandardRate.IsNegative() {
		return errx.Validationf("standard_rate cannot be negative")
	}
	return nil
}

// CreateItem inserts an item. A positive standard rate also creates the
// item's Standard Selling price.
func (s *Store) CreateItem(ctx context.Context, in ItemInput) (*Item, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	it := &Item{
		ItemCode:     in.ItemCode,
		ItemName:     in.ItemName,
		Description:  in.Description,
		ItemGroup:    in.ItemGroup,
		StockUOM:     in.StockUOM,
		IsStockItem:  in.IsStockItem == nil || *in.IsStockItem,
		StandardRate: in.StandardRate,
	}
	if it.Description == "" {
		it.Description = it.ItemName
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dup, err := s.exists(ctx, tx, &Item{}, "item_code = ?", it.ItemCode)
		if err != nil {
			return err
		}
		if dup {
			return errx.Duplicatef("Item %q already exists", it.ItemCode)
		}
		if err := tx.Create(it).Error; err != nil {
			return err
		}
		if it.StandardRate.IsPositive() {
			return tx.Create(&ItemPrice{
				ItemCode:      it.ItemCode,
				PriceList:     StandardSelling,
				PriceListRate: it.StandardRate,
				Currency:      s.currency,
			}).Error
		}
		return nil
	})
	if err != nil {
		return nil, dbErr("create item", err)
	}
	return it, nil
}

// GetItem loads an item by code.
func (s *Store) GetItem(ctx context.Context, code string) (*Item, error) {
	var it Item
	if err := s.db.WithContext(ctx).First(&it, "item_code = ?", code).Error; err != nil {
		return nil, dbErr("get item", err)
	}
	return &it, nil
}

// SetItemPrice creates or replaces the item's rate in a price list.
func (s *Store) SetItemPrice(ctx context.Context, code, priceList string, rate decimal.Decimal) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := s.exists(ctx, tx, &Item{}, "item_code = ?", code)
		if err != nil {
			return err
		}
		if !found {
			return errx.Validationf("Could not find Item: %s", code)
		}
		if err := tx.Where("item_code = ? AND price_list = ?", code, priceList).Delete(&ItemPrice{}).Error; err != nil {
			return err
		}
		return tx.Create(&ItemPrice{ItemCode: code, PriceList: priceList, PriceListRate: rate, Currency: s.currency}).Error
	})
	return dbErr("set item price", err)
}
