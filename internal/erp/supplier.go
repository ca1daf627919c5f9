package erp

import (
	"context"
	"strings"

	errx "github.com/erpbot/server/internal/core/error"
	"gorm.io/gorm"
)

type SupplierInput struct {
	SupplierName    string
	SupplierGroup   string
	SupplierType    string
	DefaultCurrency string
	Country         string
	Address         *AddressInput
}

var supplierTypes = map[string]bool{"Company": true, "Individual": true, "Partnership": true}

func (in *SupplierInput) validate() error {
	in.SupplierName = strings.TrimSpace(in.SupplierName)
	if in.SupplierName == "" {
		return errx.Validationf("supplier_name is mandatory")
	}
	if strings.TrimSpace(in.SupplierGroup) == "" {
		return errx.Validationf("supplier_group is mandatory")
	}
	if in.SupplierType != "" && !supplierTypes[in.SupplierType] {
		return errx.Validationf("supplier_type must be one of Company, Individual, Partnership")
	}
	if in.DefaultCurrency != "" && len(in.DefaultCurrency) != 3 {
		return errx.Validationf("invalid currency %q", in.DefaultCurrency)
	}
	return nil
}

// CreateSupplier inserts a supplier and its linked address in one transaction.
func (s *Store) CreateSupplier(ctx context.Context, in SupplierInput) (*Supplier, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	sup := &Supplier{
		Name:            in.SupplierName,
		SupplierName:    in.SupplierName,
		SupplierGroup:   in.SupplierGroup,
		SupplierType:    in.SupplierType,
		DefaultCurrency: strings.ToUpper(in.DefaultCurrency),
		Country:         in.Country,
	}
	if sup.DefaultCurrency == "" {
		sup.DefaultCurrency = s.currency
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dup, err := s.exists(ctx, tx, &Supplier{}, "name = ?", sup.Name)
		if err != nil {
			return err
		}
		if dup {
			return errx.Duplicatef("Supplier %q already exists", sup.Name)
		}
		if err := tx.Create(sup).Error; err != nil {
			return err
		}
		if in.Address != nil {
			return createAddress(tx, "Supplier", sup.Name, *in.Address)
		}
		return nil
	})
	if err != nil {
		return nil, dbErr("create supplier", err)
	}
	return sup, nil
}

// GetSupplier loads a supplier by document name.
func (s *Store) GetSupplier(ctx context.Context, name string) (*Supplier, error) {
	var sup Supplier
	if err := s.db.WithContext(ctx).First(&sup, "name = ?", name).Error; err != nil {
		return nil, dbErr("get supplier", err)
	}
	return &sup, nil
}
