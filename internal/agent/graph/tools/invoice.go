package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/erpbot/server/internal/erp"
	logx "github.com/erpbot/server/pkg/logger"
	"github.com/shopspring/decimal"
)

type LineArgs struct {
	ItemCode string          `json:"item_code"`
	Qty      decimal.Decimal `json:"qty"`
	Rate     decimal.Decimal `json:"rate"`
}

type TaxArgs struct {
	AccountHead string          `json:"account_head"`
	Rate        decimal.Decimal `json:"rate"`
}

// InvoiceArgs is the payload of both invoice tools. Supplier is only read
// by create_purchase_invoice and FelStatus only by create_sales_invoice.
type InvoiceArgs struct {
	Customer        string     `json:"customer,omitempty"`
	Supplier        string     `json:"supplier,omitempty"`
	Items           []LineArgs `json:"items"`
	PostingDate     string     `json:"posting_date,omitempty"`
	DueDate         string     `json:"due_date,omitempty"`
	Taxes           []TaxArgs  `json:"taxes,omitempty"`
	TaxesAndCharges *string    `json:"taxes_and_charges,omitempty"`
	FelStatus       string     `json:"fel_status,omitempty"`
	AdditionalNotes string     `json:"additional_notes,omitempty"`
	UpdateStock     flag       `json:"update_stock"`
}

const (
	msgMissingItems      = "failed: Missing required field 'items'."
	msgMissingItemFields = "failed: Missing required fields in 'items' (item_code, qty, or rate)."
	msgMissingTaxFields  = "failed: Missing required fields in 'taxes' (account_head or rate)."
)

var itemsParam = &schema.ParameterInfo{
	Type: schema.Array,
	Desc: "Líneas del documento",
	ElemInfo: &schema.ParameterInfo{
		Type: schema.Object,
		SubParams: map[string]*schema.ParameterInfo{
			"item_code": {Type: schema.String, Desc: "Código del artículo", Required: true},
			"qty":       {Type: schema.Number, Desc: "Cantidad", Required: true},
			"rate":      {Type: schema.Number, Desc: "Precio unitario", Required: true},
		},
	},
	Required: true,
}

var taxesParam = &schema.ParameterInfo{
	Type: schema.Array,
	Desc: "Impuestos sobre el total neto",
	ElemInfo: &schema.ParameterInfo{
		Type: schema.Object,
		SubParams: map[string]*schema.ParameterInfo{
			"account_head": {Type: schema.String, Desc: "Cuenta contable del impuesto", Required: true},
			"rate":         {Type: schema.Number, Desc: "Tasa en porcentaje", Required: true},
		},
	},
}

func invoiceParams(party, partyDesc string, withFEL bool) map[string]*schema.ParameterInfo {
	params := map[string]*schema.ParameterInfo{
		party:               {Type: schema.String, Desc: partyDesc, Required: true},
		"items":             itemsParam,
		"posting_date":      {Type: schema.String, Desc: "Fecha de contabilización YYYY-MM-DD, por defecto hoy"},
		"due_date":          {Type: schema.String, Desc: "Fecha de vencimiento YYYY-MM-DD, por defecto el último día del mes"},
		"taxes":             taxesParam,
		"taxes_and_charges": {Type: schema.String, Desc: "Plantilla de impuestos, por defecto la plantilla predeterminada"},
		"additional_notes":  {Type: schema.String, Desc: "Notas; EXENTO o EXENTA elimina los impuestos"},
		"update_stock":      {Type: schema.Integer, Desc: "1 para actualizar inventario (por defecto), 0 para no"},
	}
	if withFEL {
		params["fel_status"] = &schema.ParameterInfo{Type: schema.String, Desc: "CON FEL o SIN FEL", Enum: []string{"CON FEL", "SIN FEL"}}
	}
	return params
}

// buildInvoice turns tool arguments into a store input. A non-empty
// message means the arguments were rejected.
func buildInvoice(ctx context.Context, store Store, party, taxKind string, in *InvoiceArgs) (erp.InvoiceInput, string) {
	out := erp.InvoiceInput{Party: strings.TrimSpace(party)}
	if len(in.Items) == 0 {
		return out, msgMissingItems
	}

	notes := strings.ToUpper(strings.TrimSpace(in.AdditionalNotes))
	exempt := strings.Contains(notes, "EXENTO") || strings.Contains(notes, "EXENTA")

	if !exempt {
		if in.TaxesAndCharges != nil {
			out.TaxesAndCharges = strings.TrimSpace(*in.TaxesAndCharges)
		} else {
			tpl, err := store.DefaultTaxTemplate(ctx, taxKind)
			if err != nil {
				return out, fmt.Sprintf("failed: %v", err)
			}
			out.TaxesAndCharges = tpl
		}
	}

	for _, it := range in.Items {
		if strings.TrimSpace(it.ItemCode) == "" || it.Qty.IsZero() || it.Rate.IsZero() {
			return out, msgMissingItemFields
		}
		out.Items = append(out.Items, erp.LineInput{ItemCode: strings.TrimSpace(it.ItemCode), Qty: it.Qty, Rate: it.Rate})
	}

	if len(in.Taxes) > 0 && !exempt {
		for _, t := range in.Taxes {
			if strings.TrimSpace(t.AccountHead) == "" || t.Rate.IsZero() {
				return out, msgMissingTaxFields
			}
			out.Taxes = append(out.Taxes, erp.TaxInput{AccountHead: strings.TrimSpace(t.AccountHead), Rate: t.Rate})
		}
	}

	var err error
	if out.PostingDate, err = parseDate("posting_date", in.PostingDate); err != nil {
		return out, fmt.Sprintf("failed: %v", err)
	}
	if out.DueDate, err = parseDate("due_date", in.DueDate); err != nil {
		return out, fmt.Sprintf("failed: %v", err)
	}
	out.UpdateStock = in.UpdateStock.or(true)
	out.Remarks = strings.TrimSpace(in.AdditionalNotes)
	return out, ""
}

func newCreateSalesInvoiceTool(store Store) tool.InvokableTool {
	return &erpTool{
		info: &schema.ToolInfo{
			Name:        ToolCreateSalesInvoice,
			Desc:        "Crea una factura de venta en borrador. Requiere customer e items (item_code, qty, rate). Sin impuestos explícitos usa la plantilla de impuestos predeterminada, salvo que las notas indiquen EXENTO o EXENTA. Devuelve 'done' o 'failed: <motivo>'.",
			ParamsOneOf: schema.NewParamsOneOfByParams(invoiceParams("customer", "Nombre del cliente", true)),
		},
		run: func(ctx context.Context, args string) string {
			var in InvoiceArgs
			if err := decodeArgs(args, &in, false); err != nil {
				return fmt.Sprintf("failed: %v", err)
			}
			if strings.TrimSpace(in.Customer) == "" {
				return "failed: Missing required field 'customer'."
			}
			inv, msg := buildInvoice(ctx, store, in.Customer, erp.TaxKindSales, &in)
			if msg != "" {
				return msg
			}
			inv.CustomFEL = strings.ToUpper(strings.TrimSpace(in.FelStatus)) == "CON FEL"

			doc, err := store.CreateSalesInvoice(ctx, inv)
			if err != nil {
				logx.Error().Err(err).Str("tool", ToolCreateSalesInvoice).Msg("create sales invoice failed")
				return fmt.Sprintf("failed: %v", err)
			}
			logx.Info().Str("invoice", doc.Name).Str("customer", doc.Customer).Msg("sales invoice created")
			return "done"
		},
	}
}

func newCreatePurchaseInvoiceTool(store Store) tool.InvokableTool {
	return &erpTool{
		info: &schema.ToolInfo{
			Name:        ToolCreatePurchaseInvoice,
			Desc:        "Crea una factura de compra en borrador. Requiere supplier e items (item_code, qty, rate). Sin impuestos explícitos usa la plantilla de impuestos de compra predeterminada, salvo que las notas indiquen EXENTO o EXENTA. Devuelve 'done' o 'failed: <motivo>'.",
			ParamsOneOf: schema.NewParamsOneOfByParams(invoiceParams("supplier", "Nombre del proveedor", false)),
		},
		run: func(ctx context.Context, args string) string {
			var in InvoiceArgs
			if err := decodeArgs(args, &in, false); err != nil {
				return fmt.Sprintf("failed: %v", err)
			}
			if strings.TrimSpace(in.Supplier) == "" {
				return "failed: Missing required field 'supplier'."
			}
			inv, msg := buildInvoice(ctx, store, in.Supplier, erp.TaxKindPurchase, &in)
			if msg != "" {
				return msg
			}

			doc, err := store.CreatePurchaseInvoice(ctx, inv)
			if err != nil {
				logx.Error().Err(err).Str("tool", ToolCreatePurchaseInvoice).Msg("create purchase invoice failed")
				return fmt.Sprintf("failed: %v", err)
			}
			logx.Info().Str("invoice", doc.Name).Str("supplier", doc.Supplier).Msg("purchase invoice created")
			return "done"
		},
	}
}

type SalesOrderArgs struct {
	Customer     string     `json:"customer"`
	Items        []LineArgs `json:"items"`
	DeliveryDate string     `json:"delivery_date,omitempty"`
}

func newCreateSalesOrderTool(store Store) tool.InvokableTool {
	return &erpTool{
		info: &schema.ToolInfo{
			Name: ToolCreateSalesOrder,
			Desc: "Crea un pedido de venta en borrador. Requiere customer e items (item_code, qty, rate). La fecha de entrega por defecto es dentro de 7 días. Devuelve 'done' o 'failed: <motivo>'.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"customer":      {Type: schema.String, Desc: "Nombre del cliente", Required: true},
				"items":         itemsParam,
				"delivery_date": {Type: schema.String, Desc: "Fecha de entrega YYYY-MM-DD"},
			}),
		},
		run: func(ctx context.Context, args string) string {
			var in SalesOrderArgs
			if err := decodeArgs(args, &in, false); err != nil {
				return fmt.Sprintf("failed: %v", err)
			}
			if strings.TrimSpace(in.Customer) == "" {
				return "failed: Missing required field 'customer'."
			}
			if len(in.Items) == 0 {
				return msgMissingItems
			}
			order := erp.OrderInput{Customer: strings.TrimSpace(in.Customer)}
			for _, it := range in.Items {
				if strings.TrimSpace(it.ItemCode) == "" || it.Qty.IsZero() || it.Rate.IsZero() {
					return msgMissingItemFields
				}
				order.Items = append(order.Items, erp.LineInput{ItemCode: strings.TrimSpace(it.ItemCode), Qty: it.Qty, Rate: it.Rate})
			}
			var err error
			if order.DeliveryDate, err = parseDate("delivery_date", in.DeliveryDate); err != nil {
				return fmt.Sprintf("failed: %v", err)
			}
			if _, err := store.CreateSalesOrder(ctx, order); err != nil {
				logx.Error().Err(err).Str("tool", ToolCreateSalesOrder).Msg("create sales order failed")
				return fmt.Sprintf("failed: %v", err)
			}
			return "done"
		},
	}
}
