package tools

import (
	"context"
	"testing"

	errx "github.com/erpbot/server/internal/core/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSuppliersTool(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assert.Equal(t, "Error de valor: El parámetro 'proveedor' no puede estar vacío.", run(t, store, ToolCreateSuppliers, "  "))
	assert.Equal(t, "Error de valor: El campo 'supplier_name' es requerido para crear el proveedor.", run(t, store, ToolCreateSuppliers, `{"country": "Guatemala"}`))
	assert.Equal(t, "Proveedor 'Distribuidora Central' creado exitosamente.", run(t, store, ToolCreateSuppliers, `{"supplier_name": "Distribuidora Central"}`))
	assert.Equal(t, "Error: El proveedor 'Distribuidora Central' ya existe.", run(t, store, ToolCreateSuppliers, `{"supplier_name": "Distribuidora Central"}`))

	out := run(t, store, ToolCreateSuppliers, `{"supplier_name": "Otro", "supplier_type": "Cooperativa"}`)
	assert.Contains(t, out, "Error de validación: ")

	sup, err := store.GetSupplier(ctx, "Distribuidora Central")
	require.NoError(t, err)
	assert.Equal(t, "Distribuidor", sup.SupplierGroup)
	assert.Equal(t, "Company", sup.SupplierType)
	assert.Equal(t, "GTQ", sup.DefaultCurrency)
	assert.Equal(t, "Guatemala", sup.Country)
}

func TestCreateItemTool(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		args     string
		code     string
		itemName string
		desc     string
	}{
		{"json", `{"item_name": "Café molido", "description": "Bolsa de 500g", "standard_rate": 45}`, "Café molido", "Café molido", "Bolsa de 500g"},
		{"plain text", `Té verde en hojas`, "Té verde en hojas", "Té verde en hojas", "Té verde en hojas"},
		{"item key with plain text", `{"item": "Azúcar morena", "name": "Azúcar"}`, "Azúcar", "Azúcar", "Azúcar morena"},
		{"item key with json", `{"item": "{\"description\": \"Galletas de avena\"}"}`, "Galletas de avena", "Galletas de avena", "Galletas de avena"},
		{"empty object", `{}`, "Nuevo Ítem", "Nuevo Ítem", "Nuevo Ítem"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, "done", run(t, store, ToolCreateItem, tt.args))
			it, err := store.GetItem(ctx, tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.itemName, it.ItemName)
			assert.Equal(t, tt.desc, it.Description)
			assert.Equal(t, "Productos", it.ItemGroup)
			assert.Equal(t, "Unidad(es)", it.StockUOM)
		})
	}

	assert.Equal(t, "failed", run(t, store, ToolCreateItem, `{"item_name": "Café molido"}`))
	assert.Equal(t, "failed", run(t, store, ToolCreateItem, `{"item_name": "Caro", "standard_rate": -1}`))

	for _, args := range []string{
		`{"item_name": "Café", "standard_rate": "gratis"}`,
		`{"item_name": "Café", "is_stock_item": "quizás"}`,
		`{"item": 42}`,
		`{"item": "{\"description\": 5}"}`,
		`{"item_name": "Café"`,
	} {
		assert.Equal(t, "failed", run(t, store, ToolCreateItem, args), args)
		_, err := store.GetItem(ctx, args)
		assert.ErrorIs(t, err, errx.ErrNotFound, args)
	}
	_, err := store.GetItem(ctx, "Café")
	assert.ErrorIs(t, err, errx.ErrNotFound)
}

func TestCreateToDoTool(t *testing.T) {
	store := newTestStore(t)

	assert.Equal(t, "done", run(t, store, ToolCreateToDo, `{"description": "Llamar a Ana", "date": "2026-03-12"}`))
	assert.Equal(t, "done", run(t, store, ToolCreateToDo, `{"description": "Revisar inventario"}`))
	assert.Equal(t, "failed", run(t, store, ToolCreateToDo, `{"description": ""}`))
	assert.Equal(t, "failed", run(t, store, ToolCreateToDo, `{"description": "x", "date": "mañana"}`))
}
