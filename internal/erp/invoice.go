package erp

import (
	"context"
	"errors"
	"strings"
	"time"

	errx "github.com/erpbot/server/internal/core/error"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LineInput struct {
	ItemCode string
	Qty      decimal.Decimal
	Rate     decimal.Decimal
}

type TaxInput struct {
	AccountHead string
	Rate        decimal.Decimal
}

// InvoiceInput is shared by sales and purchase invoices. Party is the
// customer or the supplier. Zero dates take the store defaults: posting
// today and due at the end of the current month. When Taxes is empty the
// rows of TaxesAndCharges are copied, if set.
type InvoiceInput struct {
	Party           string
	PostingDate     time.Time
	DueDate         time.Time
	Items           []LineInput
	Taxes           []TaxInput
	TaxesAndCharges string
	UpdateStock     bool
	CustomFEL       bool
	Remarks         string
}

type invoiceDraft struct {
	name        string
	posting     time.Time
	due         time.Time
	lines       []LineItem
	taxes       []TaxRow
	net         decimal.Decimal
	totalTaxes  decimal.Decimal
	grand       decimal.Decimal
	createdAt   time.Time
	templateRef string
}

// CreateSalesInvoice validates and inserts a draft sales invoice.
func (s *Store) CreateSalesInvoice(ctx context.Context, in InvoiceInput) (*SalesInvoice, error) {
	var inv *SalesInvoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.requireLink(ctx, tx, &Customer{}, "Customer", in.Party); err != nil {
			return err
		}
		d, err := s.draftInvoice(ctx, tx, "SINV", in)
		if err != nil {
			return err
		}
		inv = &SalesInvoice{
			Name:              d.name,
			Customer:          in.Party,
			PostingDate:       d.posting,
			DueDate:           d.due,
			Currency:          s.currency,
			TaxesAndCharges:   d.templateRef,
			UpdateStock:       in.UpdateStock,
			CustomFEL:         in.CustomFEL,
			NetTotal:          d.net,
			TotalTaxes:        d.totalTaxes,
			GrandTotal:        d.grand,
			OutstandingAmount: d.grand,
			Status:            InvoiceStatusDraft,
			DocStatus:         DocStatusDraft,
			Remarks:           in.Remarks,
			CreatedAt:         d.createdAt,
		}
		for _, l := range d.lines {
			inv.Items = append(inv.Items, SalesInvoiceItem{LineItem: l})
		}
		for _, t := range d.taxes {
			inv.Taxes = append(inv.Taxes, SalesInvoiceTax{TaxRow: t})
		}
		return tx.Create(inv).Error
	})
	if err != nil {
		return nil, dbErr("create sales invoice", err)
	}
	return inv, nil
}

// CreatePurchaseInvoice validates and inserts a draft purchase invoice.
func (s *Store) CreatePurchaseInvoice(ctx context.Context, in InvoiceInput) (*PurchaseInvoice, error) {
	var inv *PurchaseInvoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.requireLink(ctx, tx, &Supplier{}, "Supplier", in.Party); err != nil {
			return err
		}
		d, err := s.draftInvoice(ctx, tx, "PINV", in)
		if err != nil {
			return err
		}
		inv = &PurchaseInvoice{
			Name:              d.name,
			Supplier:          in.Party,
			PostingDate:       d.posting,
			DueDate:           d.due,
			Currency:          s.currency,
			TaxesAndCharges:   d.templateRef,
			UpdateStock:       in.UpdateStock,
			NetTotal:          d.net,
			TotalTaxes:        d.totalTaxes,
			GrandTotal:        d.grand,
			OutstandingAmount: d.grand,
			Status:            InvoiceStatusDraft,
			DocStatus:         DocStatusDraft,
			CreatedAt:         d.createdAt,
		}
		for _, l := range d.lines {
			inv.Items = append(inv.Items, PurchaseInvoiceItem{LineItem: l})
		}
		for _, t := range d.taxes {
			inv.Taxes = append(inv.Taxes, PurchaseInvoiceTax{TaxRow: t})
		}
		return tx.Create(inv).Error
	})
	if err != nil {
		return nil, dbErr("create purchase invoice", err)
	}
	return inv, nil
}

func (s *Store) draftInvoice(ctx context.Context, tx *gorm.DB, prefix string, in InvoiceInput) (*invoiceDraft, error) {
	d := &invoiceDraft{
		name:        newDocName(prefix),
		posting:     truncateDay(in.PostingDate),
		due:         truncateDay(in.DueDate),
		createdAt:   s.now(),
		templateRef: strings.TrimSpace(in.TaxesAndCharges),
	}
	today := s.Today()
	if in.PostingDate.IsZero() {
		d.posting = today
	}
	if in.DueDate.IsZero() {
		d.due = EndOfMonth(today)
		if d.due.Before(d.posting) {
			d.due = EndOfMonth(d.posting)
		}
	}
	if d.due.Before(d.posting) {
		return nil, errx.Validationf("Due Date cannot be before Posting Date")
	}

	lines, net, err := s.buildLines(ctx, tx, d.name, in.Items, d.createdAt)
	if err != nil {
		return nil, err
	}
	d.lines, d.net = lines, net

	taxes := in.Taxes
	if len(taxes) == 0 && d.templateRef != "" {
		var tpl TaxTemplate
		if err := tx.WithContext(ctx).Preload("Taxes").First(&tpl, "name = ?", d.templateRef).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errx.Validationf("Could not find Taxes and Charges Template: %s", d.templateRef)
			}
			return nil, err
		}
		for _, r := range tpl.Taxes {
			taxes = append(taxes, TaxInput{AccountHead: r.AccountHead, Rate: r.Rate})
		}
	}
	d.taxes, d.totalTaxes, err = computeTaxes(d.name, net, taxes)
	if err != nil {
		return nil, err
	}
	d.grand = net.Add(d.totalTaxes)
	return d, nil
}

func (s *Store) requireLink(ctx context.Context, tx *gorm.DB, model any, doctype, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errx.Validationf("%s is mandatory", strings.ToLower(doctype))
	}
	found, err := s.exists(ctx, tx, model, "name = ?", name)
	if err != nil {
		return err
	}
	if !found {
		return errx.Validationf("Could not find %s: %s", doctype, name)
	}
	return nil
}

// buildLines validates item rows and returns them with the net total.
func (s *Store) buildLines(ctx context.Context, tx *gorm.DB, parent string, items []LineInput, createdAt time.Time) ([]LineItem, decimal.Decimal, error) {
	if len(items) == 0 {
		return nil, decimal.Zero, errx.Validationf("Items cannot be empty")
	}
	net := decimal.Zero
	lines := make([]LineItem, 0, len(items))
	for i, in := range items {
		code := strings.TrimSpace(in.ItemCode)
		if code == "" {
			return nil, decimal.Zero, errx.Validationf("Row %d: item_code is mandatory", i+1)
		}
		if !in.Qty.IsPositive() {
			return nil, decimal.Zero, errx.Validationf("Row %d: qty must be greater than zero", i+1)
		}
		if in.Rate.IsNegative() {
			return nil, decimal.Zero, errx.Validationf("Row %d: rate cannot be negative", i+1)
		}
		var it Item
		if err := tx.WithContext(ctx).Select("item_code", "item_name").First(&it, "item_code = ?", code).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, decimal.Zero, errx.Validationf("Row %d: Could not find Item: %s", i+1, code)
			}
			return nil, decimal.Zero, err
		}
		amount := in.Qty.Mul(in.Rate)
		net = net.Add(amount)
		lines = append(lines, LineItem{
			Parent:    parent,
			ItemCode:  it.ItemCode,
			ItemName:  it.ItemName,
			Qty:       in.Qty,
			Rate:      in.Rate,
			Amount:    amount,
			CreatedAt: createdAt,
		})
	}
	return lines, net, nil
}

// computeTaxes applies each tax on the net total.
func computeTaxes(parent string, net decimal.Decimal, taxes []TaxInput) ([]TaxRow, decimal.Decimal, error) {
	total := decimal.Zero
	rows := make([]TaxRow, 0, len(taxes))
	hundred := decimal.NewFromInt(100)
	for i, t := range taxes {
		if strings.TrimSpace(t.AccountHead) == "" {
			return nil, decimal.Zero, errx.Validationf("Tax row %d: account_head is mandatory", i+1)
		}
		if t.Rate.IsNegative() {
			return nil, decimal.Zero, errx.Validationf("Tax row %d: rate cannot be negative", i+1)
		}
		amount := net.Mul(t.Rate).Div(hundred).Round(2)
		total = total.Add(amount)
		rows = append(rows, TaxRow{
			Parent:      parent,
			ChargeType:  ChargeOnNetTotal,
			AccountHead: t.AccountHead,
			Rate:        t.Rate,
			TaxAmount:   amount,
		})
	}
	return rows, total, nil
}

// SubmitSalesInvoice moves a draft sales invoice to submitted.
func (s *Store) SubmitSalesInvoice(ctx context.Context, name string) error {
	return s.submit(ctx, &SalesInvoice{}, "Sales Invoice", name)
}

// SubmitPurchaseInvoice moves a draft purchase invoice to submitted.
func (s *Store) SubmitPurchaseInvoice(ctx context.Context, name string) error {
	return s.submit(ctx, &PurchaseInvoice{}, "Purchase Invoice", name)
}

func (s *Store) submit(ctx context.Context, model any, doctype, name string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row struct {
			DocStatus DocStatus `gorm:"column:docstatus"`
			DueDate   time.Time
		}
		res := tx.Model(model).Select("docstatus", "due_date").Where("name = ?", name).Limit(1).Scan(&row)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errx.NotFoundf("%s %q", doctype, name)
		}
		if row.DocStatus != DocStatusDraft {
			return errx.Validationf("%s %q is not a draft", doctype, name)
		}
		status := InvoiceStatusUnpaid
		if truncateDay(row.DueDate).Before(s.Today()) {
			status = InvoiceStatusOverdue
		}
		return tx.Model(model).Where("name = ?", name).
			Updates(map[string]any{"docstatus": DocStatusSubmitted, "status": status}).Error
	})
	return dbErr("submit "+strings.ToLower(doctype), err)
}

// MarkSalesInvoicePaid clears the outstanding amount of a submitted invoice.
func (s *Store) MarkSalesInvoicePaid(ctx context.Context, name string) error {
	res := s.db.WithContext(ctx).Model(&SalesInvoice{}).
		Where("name = ? AND docstatus = ?", name, DocStatusSubmitted).
		Updates(map[string]any{"status": InvoiceStatusPaid, "outstanding_amount": decimal.Zero})
	if res.Error != nil {
		return dbErr("mark sales invoice paid", res.Error)
	}
	if res.RowsAffected == 0 {
		return errx.NotFoundf("submitted Sales Invoice %q", name)
	}
	return nil
}

// ListSalesInvoices returns the newest sales invoices first, with their
// rows. An empty customer lists every customer.
func (s *Store) ListSalesInvoices(ctx context.Context, customer string, limit int) ([]SalesInvoice, error) {
	q := s.db.WithContext(ctx).Preload("Items").Preload("Taxes").Order("created_at DESC")
	if customer != "" {
		q = q.Where("customer = ?", customer)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []SalesInvoice
	if err := q.Find(&out).Error; err != nil {
		return nil, dbErr("list sales invoices", err)
	}
	return out, nil
}
