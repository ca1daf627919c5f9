package mcpserver

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erpbot/server/internal/agent/graph/tools"
	"github.com/erpbot/server/internal/erp"
	"github.com/erpbot/server/pkg/database"
)

func newSession(t *testing.T) (*mcp.ClientSession, *erp.Store) {
	t.Helper()
	ctx := context.Background()

	db, err := (&database.Config{Driver: database.DriverSQLite, DSN: ":memory:", LogLevel: "silent"}).Open(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, erp.Migrate(ctx, db))
	store := erp.NewStore(db, erp.WithClock(func() time.Time {
		return time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	}))

	s := New("erpbot", "test")
	require.NoError(t, s.RegisterTools(ctx, tools.GetERPTools(store)))

	clientT, serverT := mcp.NewInMemoryTransports()
	ss, err := s.Connect(ctx, serverT)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs, store
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestListTools(t *testing.T) {
	cs, _ := newSession(t)

	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)
	names := make([]string, 0, len(res.Tools))
	for _, tl := range res.Tools {
		assert.NotEmpty(t, tl.Description)
		names = append(names, tl.Name)
	}
	assert.Contains(t, names, tools.ToolCreateCustomer)
	assert.Contains(t, names, tools.ToolGetItemStats)
	assert.Len(t, names, 13)
}

func TestListTools_InputSchema(t *testing.T) {
	cs, _ := newSession(t)

	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	type property struct {
		Type        string   `json:"type"`
		Description string   `json:"description"`
		Enum        []string `json:"enum"`
		Items       *struct {
			Required []string `json:"required"`
		} `json:"items"`
	}
	schemas := map[string]struct {
		Type       string              `json:"type"`
		Properties map[string]property `json:"properties"`
		Required   []string            `json:"required"`
	}{}
	for _, tl := range res.Tools {
		raw, err := json.Marshal(tl.InputSchema)
		require.NoError(t, err)
		s := schemas[tl.Name]
		require.NoError(t, json.Unmarshal(raw, &s), tl.Name)
		schemas[tl.Name] = s
	}

	cust := schemas[tools.ToolCreateCustomer]
	assert.Equal(t, "object", cust.Type)
	assert.Equal(t, property{Type: "string", Description: "Nombre del cliente"}, cust.Properties["customer_name"])
	assert.Contains(t, cust.Properties, "tax_id")
	assert.Empty(t, cust.Required)

	inv := schemas[tools.ToolCreateSalesInvoice]
	items := inv.Properties["items"]
	assert.Equal(t, "array", items.Type)
	require.NotNil(t, items.Items)
	assert.Empty(t, items.Items.Required)

	stats := schemas[tools.ToolGetCustomerStats]
	assert.Equal(t, "string", stats.Properties["tipo"].Type)
	assert.Empty(t, stats.Properties["tipo"].Enum)
}

func TestCallTool_UnknownStatsKindIsText(t *testing.T) {
	cs, _ := newSession(t)

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      tools.ToolGetCustomerStats,
		Arguments: map[string]any{"tipo": "ventas"},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "Error: Tipo de consulta inválido. Usa 'total', 'coincidencia' o 'deudores'.", text(t, res))
}

func TestCallTool_CreateCustomer(t *testing.T) {
	cs, store := newSession(t)
	ctx := context.Background()

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      tools.ToolCreateCustomer,
		Arguments: map[string]any{"customer_name": "  Ana López "},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "done", text(t, res))

	c, err := store.GetCustomer(ctx, "Ana López")
	require.NoError(t, err)
	assert.Equal(t, "Individual", c.CustomerGroup)
}

func TestCallTool_WrappedArguments(t *testing.T) {
	cs, _ := newSession(t)

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      tools.ToolCreateSuppliers,
		Arguments: map[string]any{"proveedor": `{"supplier_name": "Distribuidora Maya"}`},
	})
	require.NoError(t, err)
	assert.Equal(t, "Proveedor 'Distribuidora Maya' creado exitosamente.", text(t, res))
}

func TestCallTool_DomainFailureIsText(t *testing.T) {
	cs, _ := newSession(t)

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      tools.ToolCreateSalesInvoice,
		Arguments: map[string]any{"items": []any{}},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "failed: Missing required field 'customer'.", text(t, res))
}
