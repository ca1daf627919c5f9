package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/erpbot/server/internal/erp"
)

const (
	ToolCreateCustomer        = "create_customer"
	ToolUpdateCustomers       = "update_customers"
	ToolDeleteCustomers       = "delete_customers"
	ToolGetInfoCustomer       = "get_info_customer"
	ToolGetCustomerStats      = "get_customer_stats"
	ToolCreateSalesInvoice    = "create_sales_invoice"
	ToolCreatePurchaseInvoice = "create_purchase_invoice"
	ToolCreateSuppliers       = "create_suppliers"
	ToolCreateItem            = "create_item"
	ToolGetSalesStats         = "get_sales_stats"
	ToolGetItemStats          = "get_item_stats"
	ToolCreateSalesOrder      = "create_sales_order"
	ToolCreateToDo            = "create_todo"
)

// Store is the document API the tools call into. *erp.Store implements it.
type Store interface {
	CreateCustomer(ctx context.Context, in erp.CustomerInput) (*erp.Customer, error)
	FindCustomers(ctx context.Context, fragment string) ([]erp.Customer, error)
	GetCustomer(ctx context.Context, name string) (*erp.Customer, error)
	CustomerByDisplayName(ctx context.Context, customerName string) (string, error)
	UpdateCustomer(ctx context.Context, name string, patch erp.CustomerPatch) (*erp.Customer, error)
	DeleteCustomer(ctx context.Context, name string) error
	CountCustomers(ctx context.Context) (int64, error)
	Debtors(ctx context.Context) ([]erp.Debtor, error)

	CreateSupplier(ctx context.Context, in erp.SupplierInput) (*erp.Supplier, error)
	CreateItem(ctx context.Context, in erp.ItemInput) (*erp.Item, error)
	DefaultTaxTemplate(ctx context.Context, kind string) (string, error)

	CreateSalesInvoice(ctx context.Context, in erp.InvoiceInput) (*erp.SalesInvoice, error)
	CreatePurchaseInvoice(ctx context.Context, in erp.InvoiceInput) (*erp.PurchaseInvoice, error)
	CreateSalesOrder(ctx context.Context, in erp.OrderInput) (*erp.SalesOrder, error)
	CreateToDo(ctx context.Context, description string, date *time.Time) (*erp.ToDo, error)

	SalesStats(ctx context.Context, customer string) (*erp.SalesStats, error)
	ItemStats(ctx context.Context, item string) (*erp.ItemStats, error)
}

// GetERPTools returns every tool the assistant can call, bound to store.
func GetERPTools(store Store) []tool.BaseTool {
	return []tool.BaseTool{
		newCreateCustomerTool(store),
		newUpdateCustomersTool(store),
		newDeleteCustomersTool(store),
		newGetInfoCustomerTool(store),
		newGetCustomerStatsTool(store),
		newCreateSalesInvoiceTool(store),
		newCreatePurchaseInvoiceTool(store),
		newCreateSuppliersTool(store),
		newCreateItemTool(store),
		newGetSalesStatsTool(store),
		newGetItemStatsTool(store),
		newCreateSalesOrderTool(store),
		newCreateToDoTool(store),
	}
}

// GetToolInfos collects the schema of each tool for model binding.
func GetToolInfos(ctx context.Context, tools []tool.BaseTool) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(tools))
	for _, t := range tools {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("tool info: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}
