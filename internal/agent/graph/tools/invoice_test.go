package tools

import (
	"context"
	"testing"

	"github.com/erpbot/server/internal/erp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedInvoiceData(t *testing.T, store *erp.Store) {
	t.Helper()
	ctx := context.Background()
	_, err := store.CreateCustomer(ctx, erp.CustomerInput{CustomerName: "Ana", CustomerGroup: "Individual", Territory: "All Territories"})
	require.NoError(t, err)
	_, err = store.CreateSupplier(ctx, erp.SupplierInput{SupplierName: "Distribuidora", SupplierGroup: "Distribuidor"})
	require.NoError(t, err)
	_, err = store.CreateItem(ctx, erp.ItemInput{ItemCode: "CAFE", ItemName: "Café", ItemGroup: "Productos", StockUOM: "Unidad(es)"})
	require.NoError(t, err)
	require.NoError(t, store.CreateTaxTemplate(ctx, erp.TaxTemplate{
		Name:      "IVA Ventas",
		Kind:      erp.TaxKindSales,
		IsDefault: true,
		Taxes:     []erp.TaxTemplateRow{{AccountHead: "IVA por Pagar", Rate: dec("12")}},
	}))
}

func newestSalesInvoice(t *testing.T, store *erp.Store) erp.SalesInvoice {
	t.Helper()
	invs, err := store.ListSalesInvoices(context.Background(), "", 1)
	require.NoError(t, err)
	require.Len(t, invs, 1)
	return invs[0]
}

func TestCreateSalesInvoiceTool_Messages(t *testing.T) {
	store := newTestStore(t)
	seedInvoiceData(t, store)

	tests := []struct {
		name string
		args string
		want string
	}{
		{"missing customer", `{"items": [{"item_code": "CAFE", "qty": 1, "rate": 1}]}`, "failed: Missing required field 'customer'."},
		{"missing items", `{"customer": "Ana"}`, "failed: Missing required field 'items'."},
		{"empty items", `{"customer": "Ana", "items": []}`, "failed: Missing required field 'items'."},
		{"item without rate", `{"customer": "Ana", "items": [{"item_code": "CAFE", "qty": 1}]}`, "failed: Missing required fields in 'items' (item_code, qty, or rate)."},
		{"item with zero qty", `{"customer": "Ana", "items": [{"item_code": "CAFE", "qty": 0, "rate": 3}]}`, "failed: Missing required fields in 'items' (item_code, qty, or rate)."},
		{"tax without account", `{"customer": "Ana", "items": [{"item_code": "CAFE", "qty": 1, "rate": 1}], "taxes": [{"rate": 12}]}`, "failed: Missing required fields in 'taxes' (account_head or rate)."},
		{"bad date", `{"customer": "Ana", "items": [{"item_code": "CAFE", "qty": 1, "rate": 1}], "due_date": "31/03/2026"}`, `failed: invalid due_date "31/03/2026", expected YYYY-MM-DD`},
		{"ok", `{"customer": "Ana", "items": [{"item_code": "CAFE", "qty": "2", "rate": 10}]}`, "done"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, run(t, store, ToolCreateSalesInvoice, tt.args))
		})
	}

	out := run(t, store, ToolCreateSalesInvoice, `{"customer": "Nadie", "items": [{"item_code": "CAFE", "qty": 1, "rate": 1}]}`)
	assert.Contains(t, out, "failed: ")
	assert.Contains(t, out, "Could not find Customer: Nadie")
}

func TestCreateSalesInvoiceTool_TaxRules(t *testing.T) {
	store := newTestStore(t)
	seedInvoiceData(t, store)

	tests := []struct {
		name      string
		args      string
		template  string
		taxes     string
		customFEL bool
		stock     bool
	}{
		{
			name:     "default template",
			args:     `{"customer": "Ana", "items": [{"item_code": "CAFE", "qty": 1, "rate": 100}]}`,
			template: "IVA Ventas", taxes: "12", stock: true,
		},
		{
			name:  "exempt notes drop taxes",
			args:  `{"customer": "Ana", "items": [{"item_code": "CAFE", "qty": 1, "rate": 100}], "additional_notes": "cliente exenta de IVA", "taxes": [{"account_head": "IVA", "rate": 12}]}`,
			taxes: "0", stock: true,
		},
		{
			name:     "explicit taxes",
			args:     `{"customer": "Ana", "items": [{"item_code": "CAFE", "qty": 1, "rate": 100}], "taxes": [{"account_head": "IVA", "rate": 5}], "fel_status": " con fel ", "update_stock": 0}`,
			template: "IVA Ventas", taxes: "5", customFEL: true,
		},
		{
			name:  "explicit empty template",
			args:  `{"customer": "Ana", "items": [{"item_code": "CAFE", "qty": 1, "rate": 100}], "taxes_and_charges": ""}`,
			taxes: "0", stock: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, "done", run(t, store, ToolCreateSalesInvoice, tt.args))
			inv := newestSalesInvoice(t, store)
			assert.Equal(t, tt.template, inv.TaxesAndCharges)
			assert.True(t, dec(tt.taxes).Equal(inv.TotalTaxes), "taxes %s", inv.TotalTaxes)
			assert.Equal(t, tt.customFEL, inv.CustomFEL)
			assert.Equal(t, tt.stock, inv.UpdateStock)
		})
	}
}

func TestCreatePurchaseInvoiceTool(t *testing.T) {
	store := newTestStore(t)
	seedInvoiceData(t, store)

	assert.Equal(t, "failed: Missing required field 'supplier'.", run(t, store, ToolCreatePurchaseInvoice, `{"customer": "Ana", "items": []}`))
	assert.Equal(t, "failed: Missing required field 'items'.", run(t, store, ToolCreatePurchaseInvoice, `{"supplier": "Distribuidora"}`))
	assert.Equal(t, "done", run(t, store, ToolCreatePurchaseInvoice, `{"supplier": "Distribuidora", "items": [{"item_code": "CAFE", "qty": 10, "rate": 7.5}]}`))

	out := run(t, store, ToolCreatePurchaseInvoice, `{"supplier": "Nadie", "items": [{"item_code": "CAFE", "qty": 1, "rate": 1}]}`)
	assert.Contains(t, out, "failed: ")
}

func TestCreateSalesOrderTool(t *testing.T) {
	store := newTestStore(t)
	seedInvoiceData(t, store)

	assert.Equal(t, "failed: Missing required field 'customer'.", run(t, store, ToolCreateSalesOrder, `{}`))
	assert.Equal(t, "failed: Missing required field 'items'.", run(t, store, ToolCreateSalesOrder, `{"customer": "Ana"}`))
	assert.Equal(t, "done", run(t, store, ToolCreateSalesOrder, `{"customer": "Ana", "items": [{"item_code": "CAFE", "qty": 2, "rate": 5}], "delivery_date": "2026-03-20"}`))
	assert.Contains(t, run(t, store, ToolCreateSalesOrder, `{"customer": "Ana", "items": [{"item_code": "CAFE", "qty": 2, "rate": 5}], "delivery_date": "2026-01-01"}`), "failed: ")
}
