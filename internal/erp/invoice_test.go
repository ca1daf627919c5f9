package erp

import (
	"context"
	"testing"
	"time"

	errx "github.com/erpbot/server/internal/core/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CreateSalesInvoice_Totals(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedCustomer(t, s, "Ana")
	seedItem(t, s, "CAFE", "50")
	seedItem(t, s, "TE", "100")

	inv, err := s.CreateSalesInvoice(ctx, InvoiceInput{
		Party: "Ana",
		Items: []LineInput{
			{ItemCode: "CAFE", Qty: dec("2"), Rate: dec("50")},
			{ItemCode: "TE", Qty: dec("1"), Rate: dec("100")},
		},
		Taxes:       []TaxInput{{AccountHead: "IVA por Pagar", Rate: dec("12")}},
		UpdateStock: true,
		CustomFEL:   true,
	})
	require.NoError(t, err)

	assert.Regexp(t, `^SINV-`, inv.Name)
	assertDecimal(t, "200", inv.NetTotal)
	assertDecimal(t, "24", inv.TotalTaxes)
	assertDecimal(t, "224", inv.GrandTotal)
	assertDecimal(t, "224", inv.OutstandingAmount)
	assert.Equal(t, DocStatusDraft, inv.DocStatus)
	assert.Equal(t, InvoiceStatusDraft, inv.Status)
	assert.Equal(t, testToday, inv.PostingDate)
	assert.Equal(t, time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC), inv.DueDate)

	var stored SalesInvoice
	require.NoError(t, s.db.Preload("Items").Preload("Taxes").First(&stored, "name = ?", inv.Name).Error)
	require.Len(t, stored.Items, 2)
	require.Len(t, stored.Taxes, 1)
	assert.Equal(t, ChargeOnNetTotal, stored.Taxes[0].ChargeType)
	assertDecimal(t, "24", stored.Taxes[0].TaxAmount)
	assert.True(t, stored.CustomFEL)
	assert.True(t, stored.UpdateStock)
}

func TestStore_CreateSalesInvoice_TemplateTaxes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedCustomer(t, s, "Ana")
	seedItem(t, s, "CAFE", "0")
	require.NoError(t, s.CreateTaxTemplate(ctx, TaxTemplate{
		Name:      "IVA Ventas",
		Kind:      TaxKindSales,
		IsDefault: true,
		Taxes:     []TaxTemplateRow{{AccountHead: "IVA por Pagar", Rate: dec("12")}},
	}))

	inv, err := s.CreateSalesInvoice(ctx, InvoiceInput{
		Party:           "Ana",
		Items:           []LineInput{{ItemCode: "CAFE", Qty: dec("3"), Rate: dec("10")}},
		TaxesAndCharges: "IVA Ventas",
	})
	require.NoError(t, err)
	assert.Equal(t, "IVA Ventas", inv.TaxesAndCharges)
	assertDecimal(t, "3.6", inv.TotalTaxes)
	assertDecimal(t, "33.6", inv.GrandTotal)

	_, err = s.CreateSalesInvoice(ctx, InvoiceInput{
		Party:           "Ana",
		Items:           []LineInput{{ItemCode: "CAFE", Qty: dec("1"), Rate: dec("10")}},
		TaxesAndCharges: "No existe",
	})
	assert.ErrorIs(t, err, errx.ErrValidation)
}

func TestStore_CreateSalesInvoice_Validation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedCustomer(t, s, "Ana")
	seedItem(t, s, "CAFE", "0")
	line := []LineInput{{ItemCode: "CAFE", Qty: dec("1"), Rate: dec("10")}}

	tests := []struct {
		name string
		in   InvoiceInput
	}{
		{"missing customer", InvoiceInput{Items: line}},
		{"unknown customer", InvoiceInput{Party: "Nadie", Items: line}},
		{"no items", InvoiceInput{Party: "Ana"}},
		{"unknown item", InvoiceInput{Party: "Ana", Items: []LineInput{{ItemCode: "X", Qty: dec("1"), Rate: dec("1")}}}},
		{"zero qty", InvoiceInput{Party: "Ana", Items: []LineInput{{ItemCode: "CAFE", Qty: dec("0"), Rate: dec("1")}}}},
		{"negative rate", InvoiceInput{Party: "Ana", Items: []LineInput{{ItemCode: "CAFE", Qty: dec("1"), Rate: dec("-1")}}}},
		{"tax without account", InvoiceInput{Party: "Ana", Items: line, Taxes: []TaxInput{{Rate: dec("12")}}}},
		{"due before posting", InvoiceInput{
			Party:       "Ana",
			Items:       line,
			PostingDate: testToday,
			DueDate:     testToday.AddDate(0, 0, -1),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateSalesInvoice(ctx, tt.in)
			assert.ErrorIs(t, err, errx.ErrValidation)
		})
	}

	var n int64
	require.NoError(t, s.db.Model(&SalesInvoice{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestStore_CreateSalesInvoice_LatePostingDefaultsDue(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedCustomer(t, s, "Ana")
	seedItem(t, s, "CAFE", "0")

	inv, err := s.CreateSalesInvoice(ctx, InvoiceInput{
		Party:       "Ana",
		PostingDate: time.Date(2026, time.May, 2, 0, 0, 0, 0, time.UTC),
		Items:       []LineInput{{ItemCode: "CAFE", Qty: dec("1"), Rate: dec("10")}},
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.May, 31, 0, 0, 0, 0, time.UTC), inv.DueDate)
}

func TestStore_SubmitSalesInvoice(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedCustomer(t, s, "Ana")
	seedItem(t, s, "CAFE", "0")
	line := []LineInput{{ItemCode: "CAFE", Qty: dec("1"), Rate: dec("10")}}

	current, err := s.CreateSalesInvoice(ctx, InvoiceInput{Party: "Ana", Items: line})
	require.NoError(t, err)
	late, err := s.CreateSalesInvoice(ctx, InvoiceInput{
		Party:       "Ana",
		Items:       line,
		PostingDate: time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
		DueDate:     time.Date(2026, time.February, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.NoError(t, s.SubmitSalesInvoice(ctx, current.Name))
	require.NoError(t, s.SubmitSalesInvoice(ctx, late.Name))

	var got SalesInvoice
	require.NoError(t, s.db.First(&got, "name = ?", current.Name).Error)
	assert.Equal(t, DocStatusSubmitted, got.DocStatus)
	assert.Equal(t, InvoiceStatusUnpaid, got.Status)

	require.NoError(t, s.db.First(&got, "name = ?", late.Name).Error)
	assert.Equal(t, InvoiceStatusOverdue, got.Status)

	assert.ErrorIs(t, s.SubmitSalesInvoice(ctx, current.Name), errx.ErrValidation)
	assert.ErrorIs(t, s.SubmitSalesInvoice(ctx, "SINV-NOPE"), errx.ErrNotFound)

	require.NoError(t, s.MarkSalesInvoicePaid(ctx, current.Name))
	require.NoError(t, s.db.First(&got, "name = ?", current.Name).Error)
	assert.Equal(t, InvoiceStatusPaid, got.Status)
	assertDecimal(t, "0", got.OutstandingAmount)
}

func TestStore_CreatePurchaseInvoice(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedSupplier(t, s, "Distribuidora Central")
	seedItem(t, s, "CAFE", "0")

	inv, err := s.CreatePurchaseInvoice(ctx, InvoiceInput{
		Party: "Distribuidora Central",
		Items: []LineInput{{ItemCode: "CAFE", Qty: dec("10"), Rate: dec("7.5")}},
		Taxes: []TaxInput{{AccountHead: "IVA por Cobrar", Rate: dec("12")}},
	})
	require.NoError(t, err)
	assert.Regexp(t, `^PINV-`, inv.Name)
	assertDecimal(t, "75", inv.NetTotal)
	assertDecimal(t, "9", inv.TotalTaxes)
	assertDecimal(t, "84", inv.GrandTotal)

	require.NoError(t, s.SubmitPurchaseInvoice(ctx, inv.Name))

	_, err = s.CreatePurchaseInvoice(ctx, InvoiceInput{
		Party: "Ana",
		Items: []LineInput{{ItemCode: "CAFE", Qty: dec("1"), Rate: dec("1")}},
	})
	assert.ErrorIs(t, err, errx.ErrValidation)
}

func TestStore_ListSalesInvoices(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedCustomer(t, s, "Ana")
	seedCustomer(t, s, "Beto")
	seedItem(t, s, "CAFE", "0")
	line := []LineInput{{ItemCode: "CAFE", Qty: dec("1"), Rate: dec("10")}}

	first, err := s.CreateSalesInvoice(ctx, InvoiceInput{Party: "Ana", Items: line})
	require.NoError(t, err)
	second, err := s.CreateSalesInvoice(ctx, InvoiceInput{Party: "Beto", Items: line})
	require.NoError(t, err)

	all, err := s.ListSalesInvoices(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.Name, all[0].Name)
	assert.Len(t, all[0].Items, 1)

	ana, err := s.ListSalesInvoices(ctx, "Ana", 5)
	require.NoError(t, err)
	require.Len(t, ana, 1)
	assert.Equal(t, first.Name, ana[0].Name)
}
