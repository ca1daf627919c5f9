package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	errx "github.com/erpbot/server/internal/core/error"
	logx "github.com/erpbot/server/pkg/logger"
)

type section map[string]string

func errSection(msg string) section { return section{"error": msg} }

// textOrField reads args as a JSON object and returns its string field key,
// or the payload itself when it is plain text. Objects that do not decode,
// or carry a non-string key, are errors.
func textOrField(args, key string) (string, error) {
	args = strings.TrimSpace(args)
	if args == "" {
		return "", nil
	}
	if looksLikeObject(args) {
		var m map[string]json.RawMessage
		if err := json.Unmarshal([]byte(args), &m); err != nil {
			return "", err
		}
		raw, ok := m[key]
		if !ok || string(raw) == "null" {
			return "", nil
		}
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return "", fmt.Errorf("%s must be a string", key)
		}
		return strings.TrimSpace(v), nil
	}
	var s string
	if err := json.Unmarshal([]byte(args), &s); err == nil {
		return strings.TrimSpace(s), nil
	}
	return args, nil
}

// invalidArgs is the report returned for arguments that do not decode.
func invalidArgs(name string, err error) string {
	logx.Warn().Err(err).Str("tool", name).Msg("invalid arguments")
	return toJSON(errSection("Argumentos inválidos: " + err.Error()))
}

func newGetSalesStatsTool(store Store) tool.InvokableTool {
	return &erpTool{
		info: &schema.ToolInfo{
			Name: ToolGetSalesStats,
			Desc: "Estadísticas de ventas sobre facturas validadas: última venta, venta más alta, facturas vencidas y los 5 productos más vendidos. Con customer filtra por cliente y agrega su saldo pendiente. Devuelve JSON.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"customer": {Type: schema.String, Desc: "Nombre del cliente para filtrar"},
			}),
		},
		run: func(ctx context.Context, args string) string {
			customer, err := textOrField(args, "customer")
			if err != nil {
				return invalidArgs(ToolGetSalesStats, err)
			}
			if customer != "" {
				name, err := store.CustomerByDisplayName(ctx, customer)
				switch {
				case err == nil:
					customer = name
				case !errors.Is(err, errx.ErrNotFound):
					return toJSON(errSection(err.Error()))
				}
			}

			stats, err := store.SalesStats(ctx, customer)
			if err != nil {
				logx.Error().Err(err).Str("tool", ToolGetSalesStats).Msg("sales stats failed")
				return toJSON(errSection(err.Error()))
			}

			out := map[string]any{
				"last_sale":        errSection("No se encontraron ventas"),
				"highest_sale":     errSection("No se encontraron ventas"),
				"overdue_invoices": errSection("No se encontraron ventas"),
				"top_products":     errSection("No se encontraron productos más vendidos"),
			}
			if len(stats.LastSale) > 0 {
				out["last_sale"] = stats.LastSale
			}
			if len(stats.HighestSale) > 0 {
				out["highest_sale"] = stats.HighestSale
			}
			if len(stats.OverdueInvoices) > 0 {
				out["overdue_invoices"] = stats.OverdueInvoices
			}
			if len(stats.TopProducts) > 0 {
				out["top_products"] = stats.TopProducts
			}
			if stats.CustomerBalance != nil {
				out["customer_balance"] = map[string]any{
					"customer":           customer,
					"outstanding_amount": stats.CustomerBalance,
				}
			}
			return toJSON(out)
		},
	}
}

func newGetItemStatsTool(store Store) tool.InvokableTool {
	return &erpTool{
		info: &schema.ToolInfo{
			Name: ToolGetItemStats,
			Desc: "Estadísticas de un artículo: última compra, precio de venta estándar, rotación (ventas, total vendido, promedio, primera y última venta, rotación diaria) y el cliente que más lo ha comprado. Devuelve JSON.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"item": {Type: schema.String, Desc: "Código del artículo", Required: true},
			}),
		},
		run: func(ctx context.Context, args string) string {
			item, err := textOrField(args, "item")
			if err != nil {
				return invalidArgs(ToolGetItemStats, err)
			}
			if item == "" {
				return toJSON(errSection("El código del producto no puede ser None"))
			}

			stats, err := store.ItemStats(ctx, item)
			if err != nil {
				logx.Error().Err(err).Str("tool", ToolGetItemStats).Msg("item stats failed")
				return toJSON(errSection(err.Error()))
			}

			out := map[string]any{
				"last_purchase":      errSection("No se encontraron compras"),
				"item_price":         errSection("No se encontraron precios del producto"),
				"rotation":           errSection("No se encontraron transacciones del producto"),
				"customer_purchases": errSection("No se encontraron productos más vendidos"),
			}
			if len(stats.LastPurchase) > 0 {
				out["last_purchase"] = stats.LastPurchase
			}
			if len(stats.ItemPrice) > 0 {
				out["item_price"] = stats.ItemPrice
			}
			if stats.Rotation != nil {
				out["rotation"] = stats.Rotation
			}
			if len(stats.CustomerPurchases) > 0 {
				out["customer_purchases"] = stats.CustomerPurchases
			}
			return toJSON(out)
		},
	}
}
