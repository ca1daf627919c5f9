package erp

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// TopProductsLimit caps the top-selling products section.
const TopProductsLimit = 5

type SaleSummary struct {
	Name       string          `json:"name"`
	GrandTotal decimal.Decimal `json:"grand_total"`
	Customer   string          `json:"customer"`
	CreatedAt  time.Time       `json:"creation"`
}

type OverdueInvoice struct {
	Name       string          `json:"name"`
	DueDate    time.Time       `json:"due_date"`
	GrandTotal decimal.Decimal `json:"grand_total"`
	Customer   string          `json:"customer"`
}

type ProductSales struct {
	ItemCode string          `json:"item_code"`
	ItemName string          `json:"item_name"`
	TotalQty decimal.Decimal `json:"total_qty"`
}

// SalesStats groups the sales report sections. Only submitted invoices are
// considered. Empty slices mean the section had no rows.
type SalesStats struct {
	LastSale        []SaleSummary
	HighestSale     []SaleSummary
	OverdueInvoices []OverdueInvoice
	TopProducts     []ProductSales
	// CustomerBalance is set only when the report is filtered by customer.
	CustomerBalance *decimal.Decimal
}

type PurchaseLine struct {
	ItemCode  string          `json:"item_code"`
	ItemName  string          `json:"item_name"`
	CreatedAt time.Time       `json:"creation"`
	Supplier  string          `json:"supplier"`
	Amount    decimal.Decimal `json:"amount"`
	Qty       decimal.Decimal `json:"qty"`
}

type Rotation struct {
	ItemCode      string           `json:"item_code"`
	SalesCount    int              `json:"sales_count"`
	TotalSold     decimal.Decimal  `json:"total_sold"`
	AvgPerSale    decimal.Decimal  `json:"avg_per_sale"`
	FirstSale     time.Time        `json:"first_sale"`
	LastSale      time.Time        `json:"last_sale"`
	DaysInRange   int              `json:"days_in_range"`
	DailyRotation *decimal.Decimal `json:"daily_rotation"`
}

type TopBuyer struct {
	ItemCode    string          `json:"item_code"`
	Customer    string          `json:"customer"`
	TotalBought decimal.Decimal `json:"total_bought"`
}

// ItemStats groups the per-item report sections. Nil pointers and empty
// slices mean the section had no rows.
type ItemStats struct {
	LastPurchase      []PurchaseLine
	ItemPrice         []ItemPrice
	Rotation          *Rotation
	CustomerPurchases []TopBuyer
}

// SalesStats runs the sales report. A non-empty customer restricts every
// section to that customer and adds the customer's outstanding balance.
func (s *Store) SalesStats(ctx context.Context, customer string) (*SalesStats, error) {
	out := &SalesStats{}
	today := s.Today()
	submitted := func(db *gorm.DB) *gorm.DB {
		db = db.Where("docstatus = ?", DocStatusSubmitted)
		if customer != "" {
			db = db.Where("customer = ?", customer)
		}
		return db
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return submitted(s.db.WithContext(ctx).Model(&SalesInvoice{})).
			Select("name", "grand_total", "customer", "created_at").
			Order("created_at DESC").Limit(1).
			Scan(&out.LastSale).Error
	})
	g.Go(func() error {
		return submitted(s.db.WithContext(ctx).Model(&SalesInvoice{})).
			Select("name", "grand_total", "customer", "created_at").
			Order("grand_total DESC").Order("created_at DESC").Limit(1).
			Scan(&out.HighestSale).Error
	})
	g.Go(func() error {
		return submitted(s.db.WithContext(ctx).Model(&SalesInvoice{})).
			Select("name", "due_date", "grand_total", "customer").
			Where("due_date <= ? AND status <> ?", today, InvoiceStatusPaid).
			Order("due_date ASC").
			Scan(&out.OverdueInvoices).Error
	})
	g.Go(func() error {
		parents := submitted(s.db.Model(&SalesInvoice{})).Select("name")
		return s.db.WithContext(ctx).Model(&SalesInvoiceItem{}).
			Select("item_code, item_name, SUM(qty) AS total_qty").
			Where("parent IN (?)", parents).
			Group("item_code, item_name").
			Order("total_qty DESC").
			Limit(TopProductsLimit).
			Scan(&out.TopProducts).Error
	})
	if customer != "" {
		g.Go(func() error {
			var row struct{ Balance decimal.Decimal }
			err := submitted(s.db.WithContext(ctx).Model(&SalesInvoice{})).
				Select("COALESCE(SUM(outstanding_amount), 0) AS balance").
				Scan(&row).Error
			if err != nil {
				return err
			}
			out.CustomerBalance = &row.Balance
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dbErr("sales stats", err)
	}
	return out, nil
}

// ItemStats runs the per-item report for item code.
func (s *Store) ItemStats(ctx context.Context, item string) (*ItemStats, error) {
	out := &ItemStats{}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.db.WithContext(ctx).Table("purchase_invoice_items AS b").
			Select("b.item_code, b.item_name, b.created_at, a.supplier, b.amount, b.qty").
			Joins("JOIN purchase_invoices a ON a.name = b.parent").
			Where("a.docstatus = ? AND b.item_code = ?", DocStatusSubmitted, item).
			Order("b.created_at DESC").Order("b.id DESC").Limit(1).
			Scan(&out.LastPurchase).Error
	})
	g.Go(func() error {
		return s.db.WithContext(ctx).
			Where("item_code = ? AND price_list = ?", item, StandardSelling).
			Limit(1).
			Find(&out.ItemPrice).Error
	})
	g.Go(func() error {
		var sales []struct {
			PostingDate time.Time
			Qty         decimal.Decimal
		}
		err := s.db.WithContext(ctx).Table("sales_invoice_items AS sii").
			Select("si.posting_date, sii.qty").
			Joins("JOIN sales_invoices si ON si.name = sii.parent").
			Where("si.docstatus = ? AND sii.item_code = ?", DocStatusSubmitted, item).
			Scan(&sales).Error
		if err != nil || len(sales) == 0 {
			return err
		}
		r := &Rotation{ItemCode: item, SalesCount: len(sales), TotalSold: decimal.Zero}
		for i, sale := range sales {
			day := truncateDay(sale.PostingDate)
			r.TotalSold = r.TotalSold.Add(sale.Qty)
			if i == 0 || day.Before(r.FirstSale) {
				r.FirstSale = day
			}
			if i == 0 || day.After(r.LastSale) {
				r.LastSale = day
			}
		}
		r.AvgPerSale = r.TotalSold.Div(decimal.NewFromInt(int64(r.SalesCount))).Round(4)
		r.DaysInRange = int(r.LastSale.Sub(r.FirstSale).Hours() / 24)
		if r.DaysInRange > 0 {
			daily := r.TotalSold.Div(decimal.NewFromInt(int64(r.DaysInRange))).Round(4)
			r.DailyRotation = &daily
		}
		out.Rotation = r
		return nil
	})
	g.Go(func() error {
		return s.db.WithContext(ctx).Table("sales_invoice_items AS sii").
			Select("sii.item_code, si.customer, SUM(sii.qty) AS total_bought").
			Joins("JOIN sales_invoices si ON si.name = sii.parent").
			Where("si.docstatus = ? AND sii.item_code = ?", DocStatusSubmitted, item).
			Group("si.customer, sii.item_code").
			Order("total_bought DESC").Limit(1).
			Scan(&out.CustomerPurchases).Error
	})
	if err := g.Wait(); err != nil {
		return nil, dbErr("item stats", err)
	}
	return out, nil
}
