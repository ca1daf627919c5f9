package erp

import (
	"context"
	"testing"

	errx "github.com/erpbot/server/internal/core/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CreateCustomer(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, err := s.CreateCustomer(ctx, CustomerInput{
		CustomerName:  "  Juan Pérez ",
		CustomerGroup: "Individual",
		Territory:     "All Territories",
		Address:       &AddressInput{AddressLine1: "Zona 1", City: "Ciudad de Guatemala", Phone: "5555"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Juan Pérez", c.Name)
	assert.Equal(t, "GTQ", c.DefaultCurrency)

	var links []DynamicLink
	require.NoError(t, s.db.Where("link_doctype = ? AND link_name = ?", "Customer", "Juan Pérez").Find(&links).Error)
	require.Len(t, links, 1)

	var addr Address
	require.NoError(t, s.db.First(&addr, "name = ?", links[0].Parent).Error)
	assert.Equal(t, "Zona 1", addr.AddressLine1)

	_, err = s.CreateCustomer(ctx, CustomerInput{CustomerName: "Juan Pérez", CustomerGroup: "Individual", Territory: "All Territories"})
	assert.ErrorIs(t, err, errx.ErrDuplicate)
}

func TestStore_CreateCustomer_Validation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   CustomerInput
	}{
		{"missing name", CustomerInput{CustomerGroup: "Individual", Territory: "All"}},
		{"missing group", CustomerInput{CustomerName: "A", Territory: "All"}},
		{"missing territory", CustomerInput{CustomerName: "A", CustomerGroup: "Individual"}},
		{"bad currency", CustomerInput{CustomerName: "A", CustomerGroup: "Individual", Territory: "All", DefaultCurrency: "QUETZAL"}},
		{"address without city", CustomerInput{CustomerName: "A", CustomerGroup: "Individual", Territory: "All", Address: &AddressInput{AddressLine1: "x"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateCustomer(ctx, tt.in)
			assert.ErrorIs(t, err, errx.ErrValidation)
		})
	}

	// the failed address insert rolls the customer back
	n, err := s.CountCustomers(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_FindCustomers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedCustomer(t, s, "Juan Pérez")
	seedCustomer(t, s, "Juana López")
	seedCustomer(t, s, "Pedro Ruiz")

	found, err := s.FindCustomers(ctx, "JUAN")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Juan Pérez", found[0].CustomerName)
	assert.Equal(t, "Juana López", found[1].CustomerName)

	found, err = s.FindCustomers(ctx, "zzz")
	require.NoError(t, err)
	assert.Empty(t, found)

	name, err := s.CustomerByDisplayName(ctx, "Pedro Ruiz")
	require.NoError(t, err)
	assert.Equal(t, "Pedro Ruiz", name)

	_, err = s.CustomerByDisplayName(ctx, "Pedro")
	assert.ErrorIs(t, err, errx.ErrNotFound)
}

func TestStore_UpdateCustomer(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedCustomer(t, s, "Juan Pérez")

	c, err := s.UpdateCustomer(ctx, "Juan Pérez", CustomerPatch{CustomerName: "Juan P.", Territory: "Guatemala"})
	require.NoError(t, err)
	assert.Equal(t, "Juan Pérez", c.Name)
	assert.Equal(t, "Juan P.", c.CustomerName)
	assert.Equal(t, "Guatemala", c.Territory)
	assert.Equal(t, "Individual", c.CustomerGroup)

	got, err := s.GetCustomer(ctx, "Juan Pérez")
	require.NoError(t, err)
	assert.Equal(t, "Juan P.", got.CustomerName)

	_, err = s.UpdateCustomer(ctx, "Nadie", CustomerPatch{Territory: "x"})
	assert.ErrorIs(t, err, errx.ErrNotFound)
}

func TestStore_DeleteCustomer(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedCustomer(t, s, "Juan Pérez")
	seedCustomer(t, s, "Con Factura")
	seedItem(t, s, "CAFE", "0")

	_, err := s.CreateSalesInvoice(ctx, InvoiceInput{
		Party: "Con Factura",
		Items: []LineInput{{ItemCode: "CAFE", Qty: dec("1"), Rate: dec("10")}},
	})
	require.NoError(t, err)

	assert.ErrorIs(t, s.DeleteCustomer(ctx, "Nadie"), errx.ErrNotFound)
	assert.ErrorIs(t, s.DeleteCustomer(ctx, "Con Factura"), errx.ErrValidation)

	require.NoError(t, s.DeleteCustomer(ctx, "Juan Pérez"))
	_, err = s.GetCustomer(ctx, "Juan Pérez")
	assert.ErrorIs(t, err, errx.ErrNotFound)

	var addresses int64
	require.NoError(t, s.db.Model(&Address{}).Count(&addresses).Error)
	assert.Equal(t, int64(1), addresses)
}

func TestStore_Debtors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedCustomer(t, s, "Ana")
	seedCustomer(t, s, "Beto")
	seedItem(t, s, "CAFE", "0")

	create := func(customer, rate string) string {
		inv, err := s.CreateSalesInvoice(ctx, InvoiceInput{
			Party: customer,
			Items: []LineInput{{ItemCode: "CAFE", Qty: dec("1"), Rate: dec(rate)}},
		})
		require.NoError(t, err)
		return inv.Name
	}
	require.NoError(t, s.SubmitSalesInvoice(ctx, create("Ana", "100")))
	require.NoError(t, s.SubmitSalesInvoice(ctx, create("Ana", "50")))
	require.NoError(t, s.SubmitSalesInvoice(ctx, create("Beto", "300")))
	create("Beto", "1000") // draft

	paid := create("Ana", "70")
	require.NoError(t, s.SubmitSalesInvoice(ctx, paid))
	require.NoError(t, s.MarkSalesInvoicePaid(ctx, paid))

	debtors, err := s.Debtors(ctx)
	require.NoError(t, err)
	require.Len(t, debtors, 2)
	assert.Equal(t, "Beto", debtors[0].Customer)
	assertDecimal(t, "300", debtors[0].OutstandingAmount)
	assert.Equal(t, "Ana", debtors[1].Customer)
	assertDecimal(t, "150", debtors[1].OutstandingAmount)
}

func TestStore_CreateCustomer_AfterRename(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	in := CustomerInput{CustomerName: "Ana", CustomerGroup: "Individual", Territory: "All Territories"}

	_, err := s.CreateCustomer(ctx, in)
	require.NoError(t, err)
	_, err = s.UpdateCustomer(ctx, "Ana", CustomerPatch{CustomerName: "Beatriz"})
	require.NoError(t, err)

	c, err := s.CreateCustomer(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "Ana - 1", c.Name)
	assert.Equal(t, "Ana", c.CustomerName)

	name, err := s.CustomerByDisplayName(ctx, "Ana")
	require.NoError(t, err)
	assert.Equal(t, "Ana - 1", name)

	_, err = s.UpdateCustomer(ctx, "Ana - 1", CustomerPatch{CustomerName: "Carla"})
	require.NoError(t, err)
	c, err = s.CreateCustomer(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "Ana - 2", c.Name)

	_, err = s.CreateCustomer(ctx, in)
	assert.ErrorIs(t, err, errx.ErrDuplicate)
}
