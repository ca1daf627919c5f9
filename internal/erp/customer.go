package erp

import (
	"context"
	"fmt"
	"strings"

	errx "github.com/erpbot/server/internal/core/error"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AddressInput describes the address created alongside a party.
type AddressInput struct {
	AddressLine1 string
	City         string
	Country      string
	Phone        string
}

type CustomerInput struct {
	CustomerName    string
	CustomerGroup   string
	Territory       string
	DefaultCurrency string
	TaxID           string
	Address         *AddressInput
}

// CustomerPatch holds the fields an update may change. Empty fields are left as they are.
type CustomerPatch struct {
	CustomerName  string
	Territory     string
	CustomerGroup string
}

// Debtor is a customer with unpaid submitted invoices.
type Debtor struct {
	Customer          string          `json:"customer"`
	CustomerName      string          `json:"customer_name"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
}

func (in *CustomerInput) validate() error {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	if in.CustomerName == "" {
		return errx.Validationf("customer_name is mandatory")
	}
	if strings.TrimSpace(in.CustomerGroup) == "" {
		return errx.Validationf("customer_group is mandatory")
	}
	if strings.TrimSpace(in.Territory) == "" {
		return errx.Validationf("territory is mandatory")
	}
	if in.DefaultCurrency != "" && len(in.DefaultCurrency) != 3 {
		return errx.Validationf("invalid currency %q", in.DefaultCurrency)
	}
	return nil
}

// CreateCustomer inserts a customer and, when given, its linked address in
// one transaction. Display names are unique. The document name is the
// display name, or "<name> - N" when a renamed customer still holds it.
func (s *Store) CreateCustomer(ctx context.Context, in CustomerInput) (*Customer, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c := &Customer{
		Name:            in.CustomerName,
		CustomerName:    in.CustomerName,
		CustomerGroup:   in.CustomerGroup,
		Territory:       in.Territory,
		DefaultCurrency: strings.ToUpper(in.DefaultCurrency),
		TaxID:           in.TaxID,
	}
	if c.DefaultCurrency == "" {
		c.DefaultCurrency = s.currency
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dup, err := s.exists(ctx, tx, &Customer{}, "customer_name = ?", c.CustomerName)
		if err != nil {
			return err
		}
		if dup {
			return errx.Duplicatef("Customer %q already exists", c.CustomerName)
		}
		if c.Name, err = s.freeDocName(ctx, tx, &Customer{}, c.CustomerName); err != nil {
			return err
		}
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		if in.Address != nil {
			return createAddress(tx, "Customer", c.Name, *in.Address)
		}
		return nil
	})
	if err != nil {
		return nil, dbErr("create customer", err)
	}
	return c, nil
}

// freeDocName returns base, or the first "base - N" no row of model uses as
// its document name.
func (s *Store) freeDocName(ctx context.Context, tx *gorm.DB, model any, base string) (string, error) {
	name := base
	for n := 1; ; n++ {
		taken, err := s.exists(ctx, tx, model, "name = ?", name)
		if err != nil {
			return "", err
		}
		if !taken {
			return name, nil
		}
		name = fmt.Sprintf("%s - %d", base, n)
	}
}

func createAddress(tx *gorm.DB, doctype, party string, in AddressInput) error {
	addr := &Address{
		Name:         newDocName("ADDR"),
		AddressLine1: in.AddressLine1,
		City:         in.City,
		Country:      in.Country,
		Phone:        in.Phone,
		Links:        []DynamicLink{{LinkDoctype: doctype, LinkName: party}},
	}
	if strings.TrimSpace(addr.AddressLine1) == "" {
		return errx.Validationf("address_line1 is mandatory")
	}
	if strings.TrimSpace(addr.City) == "" {
		return errx.Validationf("city is mandatory")
	}
	return tx.Create(addr).Error
}

// FindCustomers returns customers whose display name contains fragment, case-insensitively.
func (s *Store) FindCustomers(ctx context.Context, fragment string) ([]Customer, error) {
	var out []Customer
	err := s.db.WithContext(ctx).
		Where("LOWER(customer_name) LIKE ?", likePattern(fragment)).
		Order("customer_name ASC").
		Find(&out).Error
	if err != nil {
		return nil, dbErr("find customers", err)
	}
	return out, nil
}

// GetCustomer loads a customer by document name.
func (s *Store) GetCustomer(ctx context.Context, name string) (*Customer, error) {
	var c Customer
	if err := s.db.WithContext(ctx).First(&c, "name = ?", name).Error; err != nil {
		return nil, dbErr("get customer", err)
	}
	return &c, nil
}

// CustomerByDisplayName returns the document name of the customer whose
// display name matches exactly.
func (s *Store) CustomerByDisplayName(ctx context.Context, customerName string) (string, error) {
	var c Customer
	err := s.db.WithContext(ctx).Select("name").
		Where("customer_name = ?", strings.TrimSpace(customerName)).
		First(&c).Error
	if err != nil {
		return "", dbErr("get customer", err)
	}
	return c.Name, nil
}

// UpdateCustomer applies patch to the customer named name and returns the saved document.
func (s *Store) UpdateCustomer(ctx context.Context, name string, patch CustomerPatch) (*Customer, error) {
	c, err := s.GetCustomer(ctx, name)
	if err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(patch.CustomerName); v != "" {
		c.CustomerName = v
	}
	if v := strings.TrimSpace(patch.Territory); v != "" {
		c.Territory = v
	}
	if v := strings.TrimSpace(patch.CustomerGroup); v != "" {
		c.CustomerGroup = v
	}
	if err := s.db.WithContext(ctx).Save(c).Error; err != nil {
		return nil, dbErr("update customer", err)
	}
	return c, nil
}

// DeleteCustomer removes a customer and its address links. Customers
// referenced by invoices or orders cannot be deleted.
func (s *Store) DeleteCustomer(ctx context.Context, name string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := s.exists(ctx, tx, &Customer{}, "name = ?", name)
		if err != nil {
			return err
		}
		if !found {
			return errx.NotFoundf("Customer %q", name)
		}
		for _, linked := range []any{&SalesInvoice{}, &SalesOrder{}} {
			used, err := s.exists(ctx, tx, linked, "customer = ?", name)
			if err != nil {
				return err
			}
			if used {
				return errx.Validationf("Customer %q is linked with existing transactions", name)
			}
		}
		if err := deleteAddressLinks(tx, "Customer", name); err != nil {
			return err
		}
		return tx.Delete(&Customer{}, "name = ?", name).Error
	})
	return dbErr("delete customer", err)
}

// deleteAddressLinks drops the party's links and any address left without links.
func deleteAddressLinks(tx *gorm.DB, doctype, party string) error {
	var parents []string
	if err := tx.Model(&DynamicLink{}).
		Where("link_doctype = ? AND link_name = ?", doctype, party).
		Pluck("parent", &parents).Error; err != nil {
		return err
	}
	if err := tx.Where("link_doctype = ? AND link_name = ?", doctype, party).Delete(&DynamicLink{}).Error; err != nil {
		return err
	}
	for _, p := range parents {
		var n int64
		if err := tx.Model(&DynamicLink{}).Where("parent = ?", p).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			if err := tx.Delete(&Address{}, "name = ?", p).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// CountCustomers returns the number of customers.
func (s *Store) CountCustomers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&Customer{}).Count(&n).Error; err != nil {
		return 0, dbErr("count customers", err)
	}
	return n, nil
}

// Debtors lists customers with outstanding balance on submitted invoices.
func (s *Store) Debtors(ctx context.Context) ([]Debtor, error) {
	var out []Debtor
	err := s.db.WithContext(ctx).Raw(`
		SELECT c.name AS customer, c.customer_name AS customer_name,
		       SUM(si.outstanding_amount) AS outstanding_amount
		FROM sales_invoices si
		JOIN customers c ON c.name = si.customer
		WHERE si.docstatus = ? AND si.outstanding_amount > 0
		GROUP BY c.name, c.customer_name
		ORDER BY outstanding_amount DESC`, DocStatusSubmitted).
		Scan(&out).Error
	if err != nil {
		return nil, dbErr("debtors", err)
	}
	return out, nil
}
