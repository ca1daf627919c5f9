package erp

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocStatus follows the ERP document lifecycle.
type DocStatus int

const (
	DocStatusDraft     DocStatus = 0
	DocStatusSubmitted DocStatus = 1
	DocStatusCancelled DocStatus = 2
)

// Invoice payment statuses.
const (
	InvoiceStatusDraft   = "Draft"
	InvoiceStatusUnpaid  = "Unpaid"
	InvoiceStatusPaid    = "Paid"
	InvoiceStatusOverdue = "Overdue"
)

// Tax template kinds.
const (
	TaxKindSales    = "sales"
	TaxKindPurchase = "purchase"
)

// ChargeOnNetTotal is the only charge type the assistant creates.
const ChargeOnNetTotal = "On Net Total"

// StandardSelling is the default selling price list.
const StandardSelling = "Standard Selling"

type Customer struct {
	Name            string    `gorm:"primaryKey;size:140" json:"name"`
	CustomerName    string    `gorm:"size:140;not null;index" json:"customer_name"`
	CustomerGroup   string    `gorm:"size:140" json:"customer_group"`
	Territory       string    `gorm:"size:140" json:"territory"`
	DefaultCurrency string    `gorm:"size:3" json:"default_currency"`
	TaxID           string    `gorm:"size:40" json:"tax_id"`
	CreatedAt       time.Time `json:"creation"`
	UpdatedAt       time.Time `json:"modified"`
}

func (Customer) TableName() string { return "customers" }

type Supplier struct {
	Name            string    `gorm:"primaryKey;size:140" json:"name"`
	SupplierName    string    `gorm:"size:140;not null;index" json:"supplier_name"`
	SupplierGroup   string    `gorm:"size:140" json:"supplier_group"`
	SupplierType    string    `gorm:"size:40" json:"supplier_type"`
	DefaultCurrency string    `gorm:"size:3" json:"default_currency"`
	Country         string    `gorm:"size:140" json:"country"`
	CreatedAt       time.Time `json:"creation"`
	UpdatedAt       time.Time `json:"modified"`
}

func (Supplier) TableName() string { return "suppliers" }

// Address is linked to parties through DynamicLink rows.
type Address struct {
	Name         string        `gorm:"primaryKey;size:140" json:"name"`
	AddressLine1 string        `gorm:"size:240" json:"address_line1"`
	City         string        `gorm:"size:140" json:"city"`
	Country      string        `gorm:"size:140" json:"country"`
	Phone        string        `gorm:"size:40" json:"phone"`
	Links        []DynamicLink `gorm:"foreignKey:Parent;references:Name;constraint:OnDelete:CASCADE" json:"links"`
	CreatedAt    time.Time     `json:"creation"`
}

func (Address) TableName() string { return "addresses" }

type DynamicLink struct {
	ID          uint   `gorm:"primaryKey" json:"-"`
	Parent      string `gorm:"size:140;index" json:"parent"`
	LinkDoctype string `gorm:"size:140;index:idx_link" json:"link_doctype"`
	LinkName    string `gorm:"size:140;index:idx_link" json:"link_name"`
}

func (DynamicLink) TableName() string { return "dynamic_links" }

type Item struct {
	ItemCode     string          `gorm:"primaryKey;size:140" json:"item_code"`
	ItemName     string          `gorm:"size:140;not null" json:"item_name"`
	Description  string          `gorm:"type:text" json:"description"`
	ItemGroup    string          `gorm:"size:140" json:"item_group"`
	StockUOM     string          `gorm:"size:140" json:"stock_uom"`
	IsStockItem  bool            `json:"is_stock_item"`
	StandardRate decimal.Decimal `gorm:"type:decimal(18,6)" json:"standard_rate"`
	CreatedAt    time.Time       `json:"creation"`
}

func (Item) TableName() string { return "items" }

type ItemPrice struct {
	ID            uint            `gorm:"primaryKey" json:"-"`
	ItemCode      string          `gorm:"size:140;index" json:"item_code"`
	PriceList     string          `gorm:"size:140;index" json:"price_list"`
	PriceListRate decimal.Decimal `gorm:"type:decimal(18,6)" json:"price_list_rate"`
	Currency      string          `gorm:"size:3" json:"currency"`
}

func (ItemPrice) TableName() string { return "item_prices" }

type TaxTemplate struct {
	Name      string           `gorm:"primaryKey;size:140" json:"name"`
	Kind      string           `gorm:"size:20;index" json:"kind"`
	IsDefault bool             `json:"is_default"`
	Taxes     []TaxTemplateRow `gorm:"foreignKey:Parent;references:Name;constraint:OnDelete:CASCADE" json:"taxes"`
}

func (TaxTemplate) TableName() string { return "tax_templates" }

type TaxTemplateRow struct {
	ID          uint            `gorm:"primaryKey" json:"-"`
	Parent      string          `gorm:"size:140;index" json:"-"`
	ChargeType  string          `gorm:"size:40" json:"charge_type"`
	AccountHead string          `gorm:"size:140" json:"account_head"`
	Rate        decimal.Decimal `gorm:"type:decimal(18,6)" json:"rate"`
}

func (TaxTemplateRow) TableName() string { return "tax_template_rows" }

// TaxRow is the computed tax line shared by sales and purchase invoices.
type TaxRow struct {
	ID          uint            `gorm:"primaryKey" json:"-"`
	Parent      string          `gorm:"size:140;index" json:"-"`
	ChargeType  string          `gorm:"size:40" json:"charge_type"`
	AccountHead string          `gorm:"size:140" json:"account_head"`
	Rate        decimal.Decimal `gorm:"type:decimal(18,6)" json:"rate"`
	TaxAmount   decimal.Decimal `gorm:"type:decimal(18,6)" json:"tax_amount"`
}

// LineItem is the item row shared by invoices and orders.
type LineItem struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	Parent    string          `gorm:"size:140;index" json:"-"`
	ItemCode  string          `gorm:"size:140;index" json:"item_code"`
	ItemName  string          `gorm:"size:140" json:"item_name"`
	Qty       decimal.Decimal `gorm:"type:decimal(18,6)" json:"qty"`
	Rate      decimal.Decimal `gorm:"type:decimal(18,6)" json:"rate"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,6)" json:"amount"`
	CreatedAt time.Time       `json:"creation"`
}

type SalesInvoice struct {
	Name              string             `gorm:"primaryKey;size:140" json:"name"`
	Customer          string             `gorm:"size:140;index" json:"customer"`
	PostingDate       time.Time          `gorm:"type:date" json:"posting_date"`
	DueDate           time.Time          `gorm:"type:date" json:"due_date"`
	Currency          string             `gorm:"size:3" json:"currency"`
	TaxesAndCharges   string             `gorm:"size:140" json:"taxes_and_charges"`
	UpdateStock       bool               `json:"update_stock"`
	CustomFEL         bool               `gorm:"column:custom_fel" json:"custom_fel"`
	NetTotal          decimal.Decimal    `gorm:"type:decimal(18,6)" json:"net_total"`
	TotalTaxes        decimal.Decimal    `gorm:"type:decimal(18,6)" json:"total_taxes_and_charges"`
	GrandTotal        decimal.Decimal    `gorm:"type:decimal(18,6)" json:"grand_total"`
	OutstandingAmount decimal.Decimal    `gorm:"type:decimal(18,6)" json:"outstanding_amount"`
	Status            string             `gorm:"size:20" json:"status"`
	DocStatus         DocStatus          `gorm:"column:docstatus;index" json:"docstatus"`
	Remarks           string             `gorm:"type:text" json:"remarks"`
	Items             []SalesInvoiceItem `gorm:"foreignKey:Parent;references:Name;constraint:OnDelete:CASCADE" json:"items"`
	Taxes             []SalesInvoiceTax  `gorm:"foreignKey:Parent;references:Name;constraint:OnDelete:CASCADE" json:"taxes"`
	CreatedAt         time.Time          `json:"creation"`
}

func (SalesInvoice) TableName() string { return "sales_invoices" }

type SalesInvoiceItem struct {
	LineItem
}

func (SalesInvoiceItem) TableName() string { return "sales_invoice_items" }

type SalesInvoiceTax struct {
	TaxRow
}

func (SalesInvoiceTax) TableName() string { return "sales_invoice_taxes" }

type PurchaseInvoice struct {
	Name              string                `gorm:"primaryKey;size:140" json:"name"`
	Supplier          string                `gorm:"size:140;index" json:"supplier"`
	PostingDate       time.Time             `gorm:"type:date" json:"posting_date"`
	DueDate           time.Time             `gorm:"type:date" json:"due_date"`
	Currency          string                `gorm:"size:3" json:"currency"`
	TaxesAndCharges   string                `gorm:"size:140" json:"taxes_and_charges"`
	UpdateStock       bool                  `json:"update_stock"`
	NetTotal          decimal.Decimal       `gorm:"type:decimal(18,6)" json:"net_total"`
	TotalTaxes        decimal.Decimal       `gorm:"type:decimal(18,6)" json:"total_taxes_and_charges"`
	GrandTotal        decimal.Decimal       `gorm:"type:decimal(18,6)" json:"grand_total"`
	OutstandingAmount decimal.Decimal       `gorm:"type:decimal(18,6)" json:"outstanding_amount"`
	Status            string                `gorm:"size:20" json:"status"`
	DocStatus         DocStatus             `gorm:"column:docstatus;index" json:"docstatus"`
	Items             []PurchaseInvoiceItem `gorm:"foreignKey:Parent;references:Name;constraint:OnDelete:CASCADE" json:"items"`
	Taxes             []PurchaseInvoiceTax  `gorm:"foreignKey:Parent;references:Name;constraint:OnDelete:CASCADE" json:"taxes"`
	CreatedAt         time.Time             `json:"creation"`
}

func (PurchaseInvoice) TableName() string { return "purchase_invoices" }

type PurchaseInvoiceItem struct {
	LineItem
}

func (PurchaseInvoiceItem) TableName() string { return "purchase_invoice_items" }

type PurchaseInvoiceTax struct {
	TaxRow
}

func (PurchaseInvoiceTax) TableName() string { return "purchase_invoice_taxes" }

type SalesOrder struct {
	Name            string           `gorm:"primaryKey;size:140" json:"name"`
	Customer        string           `gorm:"size:140;index" json:"customer"`
	TransactionDate time.Time        `gorm:"type:date" json:"transaction_date"`
	DeliveryDate    time.Time        `gorm:"type:date" json:"delivery_date"`
	Currency        string           `gorm:"size:3" json:"currency"`
	GrandTotal      decimal.Decimal  `gorm:"type:decimal(18,6)" json:"grand_total"`
	DocStatus       DocStatus        `gorm:"column:docstatus;index" json:"docstatus"`
	Items           []SalesOrderItem `gorm:"foreignKey:Parent;references:Name;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt       time.Time        `json:"creation"`
}

func (SalesOrder) TableName() string { return "sales_orders" }

type SalesOrderItem struct {
	LineItem
}

func (SalesOrderItem) TableName() string { return "sales_order_items" }

type ToDo struct {
	Name        string     `gorm:"primaryKey;size:140" json:"name"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Date        *time.Time `gorm:"type:date" json:"date,omitempty"`
	Status      string     `gorm:"size:20" json:"status"`
	CreatedAt   time.Time  `json:"creation"`
}

func (ToDo) TableName() string { return "todos" }

// BotSettings is a single-row settings document.
type BotSettings struct {
	ID    uint   `gorm:"primaryKey"`
	Model string `gorm:"size:140"`
}

func (BotSettings) TableName() string { return "bot_settings" }

// AllModels lists every table managed by the store, in migration order.
func AllModels() []any {
	return []any{
		&Customer{}, &Supplier{}, &Address{}, &DynamicLink{},
		&Item{}, &ItemPrice{},
		&TaxTemplate{}, &TaxTemplateRow{},
		&SalesInvoice{}, &SalesInvoiceItem{}, &SalesInvoiceTax{},
		&PurchaseInvoice{}, &PurchaseInvoiceItem{}, &PurchaseInvoiceTax{},
		&SalesOrder{}, &SalesOrderItem{},
		&ToDo{}, &BotSettings{},
	}
}
