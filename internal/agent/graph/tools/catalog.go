package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	errx "github.com/erpbot/server/internal/core/error"
	"github.com/erpbot/server/internal/erp"
	logx "github.com/erpbot/server/pkg/logger"
	"github.com/shopspring/decimal"
)

type SupplierArgs struct {
	SupplierName    *string `json:"supplier_name"`
	SupplierGroup   string  `json:"supplier_group,omitempty"`
	SupplierType    string  `json:"supplier_type,omitempty"`
	DefaultCurrency string  `json:"default_currency,omitempty"`
	Country         string  `json:"country,omitempty"`
	AddressLine1    string  `json:"address_line1,omitempty"`
	City            string  `json:"city,omitempty"`
	Phone           string  `json:"phone,omitempty"`
}

func newCreateSuppliersTool(store Store) tool.InvokableTool {
	return &erpTool{
		info: &schema.ToolInfo{
			Name: ToolCreateSuppliers,
			Desc: "Crea un proveedor con su dirección. Requiere supplier_name. Por defecto supplier_group 'Distribuidor', supplier_type 'Company', default_currency 'GTQ' y country 'Guatemala'.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"supplier_name":    {Type: schema.String, Desc: "Nombre del proveedor", Required: true},
				"supplier_group":   {Type: schema.String, Desc: "Grupo de proveedores"},
				"supplier_type":    {Type: schema.String, Desc: "Company, Individual o Partnership"},
				"default_currency": {Type: schema.String, Desc: "Moneda de tres letras"},
				"country":          {Type: schema.String, Desc: "País"},
				"address_line1":    {Type: schema.String, Desc: "Dirección"},
				"city":             {Type: schema.String, Desc: "Ciudad"},
				"phone":            {Type: schema.String, Desc: "Teléfono"},
			}),
		},
		run: func(ctx context.Context, args string) string {
			if strings.TrimSpace(args) == "" {
				return "Error de valor: El parámetro 'proveedor' no puede estar vacío."
			}
			var in SupplierArgs
			if err := decodeArgs(args, &in, false); err != nil {
				return fmt.Sprintf("Error inesperado: %v", err)
			}
			if in.SupplierName == nil {
				return "Error de valor: El campo 'supplier_name' es requerido para crear el proveedor."
			}
			name := strings.TrimSpace(*in.SupplierName)
			_, err := store.CreateSupplier(ctx, erp.SupplierInput{
				SupplierName:    name,
				SupplierGroup:   orDefault(in.SupplierGroup, "Distribuidor"),
				SupplierType:    orDefault(in.SupplierType, "Company"),
				DefaultCurrency: orDefault(in.DefaultCurrency, "GTQ"),
				Country:         orDefault(in.Country, "Guatemala"),
				Address: &erp.AddressInput{
					AddressLine1: orDefault(in.AddressLine1, "Dirección no especificada"),
					City:         orDefault(in.City, "Ciudad de Guatemala"),
					Country:      orDefault(in.Country, "Guatemala"),
					Phone:        orDefault(in.Phone, "00000000"),
				},
			})
			switch {
			case err == nil:
				return fmt.Sprintf("Proveedor '%s' creado exitosamente.", name)
			case errors.Is(err, errx.ErrDuplicate):
				return fmt.Sprintf("Error: El proveedor '%s' ya existe.", name)
			case errors.Is(err, errx.ErrValidation):
				logx.Warn().Err(err).Str("tool", ToolCreateSuppliers).Msg("validation error")
				return fmt.Sprintf("Error de validación: %v", err)
			default:
				logx.Error().Err(err).Str("tool", ToolCreateSuppliers).Msg("unexpected error")
				return fmt.Sprintf("Error inesperado: %v", err)
			}
		},
	}
}

type ItemArgs struct {
	Item         string          `json:"item,omitempty"`
	Name         string          `json:"name,omitempty"`
	ItemCode     string          `json:"item_code,omitempty"`
	ItemName     string          `json:"item_name,omitempty"`
	Description  string          `json:"description,omitempty"`
	ItemGroup    string          `json:"item_group,omitempty"`
	StockUOM     string          `json:"stock_uom,omitempty"`
	StandardRate decimal.Decimal `json:"standard_rate"`
	IsStockItem  flag            `json:"is_stock_item"`
}

// parseItemArgs accepts a JSON object or plain text. Plain text, either as
// the whole payload or under the "item" key, becomes the description. A
// JSON object that does not decode is an error.
func parseItemArgs(args string) (ItemArgs, error) {
	args = strings.TrimSpace(args)
	if !looksLikeObject(args) {
		var text string
		if json.Unmarshal([]byte(args), &text) != nil {
			text = args
		}
		return ItemArgs{Description: strings.TrimSpace(text)}, nil
	}

	var in ItemArgs
	if err := json.Unmarshal([]byte(args), &in); err != nil {
		return ItemArgs{}, err
	}
	if in.Item == "" {
		return in, nil
	}
	if looksLikeObject(in.Item) {
		var nested ItemArgs
		if err := json.Unmarshal([]byte(strings.TrimSpace(in.Item)), &nested); err != nil {
			return ItemArgs{}, fmt.Errorf("item: %w", err)
		}
		if in.Name != "" {
			nested.Name = in.Name
		}
		return nested, nil
	}
	if in.Description == "" {
		in.Description = strings.TrimSpace(in.Item)
	}
	return in, nil
}

func newCreateItemTool(store Store) tool.InvokableTool {
	return &erpTool{
		info: &schema.ToolInfo{
			Name: ToolCreateItem,
			Desc: "Crea un artículo. Acepta un JSON con description, item_name, item_code, item_group, stock_uom y standard_rate, o un texto que describa el artículo. 'name' reemplaza al nombre del artículo. Devuelve 'done' o 'failed'.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"item":          {Type: schema.String, Desc: "Descripción libre del artículo"},
				"name":          {Type: schema.String, Desc: "Nombre del artículo"},
				"item_code":     {Type: schema.String, Desc: "Código del artículo, por defecto el nombre"},
				"item_name":     {Type: schema.String, Desc: "Nombre del artículo"},
				"description":   {Type: schema.String, Desc: "Descripción"},
				"item_group":    {Type: schema.String, Desc: "Grupo de artículos, por defecto Productos"},
				"stock_uom":     {Type: schema.String, Desc: "Unidad de medida, por defecto Unidad(es)"},
				"standard_rate": {Type: schema.Number, Desc: "Precio de venta estándar"},
				"is_stock_item": {Type: schema.Integer, Desc: "1 si se lleva inventario (por defecto)"},
			}),
		},
		run: func(ctx context.Context, args string) string {
			in, err := parseItemArgs(args)
			if err != nil {
				logx.Warn().Err(err).Str("tool", ToolCreateItem).Msg("invalid arguments")
				return "failed"
			}
			itemName := strings.TrimSpace(in.ItemName)
			switch {
			case strings.TrimSpace(in.Name) != "":
				itemName = strings.TrimSpace(in.Name)
			case itemName == "":
				itemName = orDefault(in.Description, "Nuevo Ítem")
			}
			var stock *bool
			if in.IsStockItem.set {
				v := in.IsStockItem.value
				stock = &v
			}
			_, err = store.CreateItem(ctx, erp.ItemInput{
				ItemCode:     in.ItemCode,
				ItemName:     itemName,
				Description:  strings.TrimSpace(in.Description),
				ItemGroup:    orDefault(in.ItemGroup, "Productos"),
				StockUOM:     orDefault(in.StockUOM, "Unidad(es)"),
				IsStockItem:  stock,
				StandardRate: in.StandardRate,
			})
			if err != nil {
				logx.Error().Err(err).Str("tool", ToolCreateItem).Msg("create item failed")
				return "failed"
			}
			return "done"
		},
	}
}

type ToDoArgs struct {
	Description string `json:"description"`
	Date        string `json:"date,omitempty"`
}

func newCreateToDoTool(store Store) tool.InvokableTool {
	return &erpTool{
		info: &schema.ToolInfo{
			Name: ToolCreateToDo,
			Desc: "Crea una tarea pendiente (ToDo). Requiere description y opcionalmente date en formato YYYY-MM-DD. Devuelve 'done' o 'failed'.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"description": {Type: schema.String, Desc: "Descripción de la tarea", Required: true},
				"date":        {Type: schema.String, Desc: "Fecha YYYY-MM-DD"},
			}),
		},
		run: func(ctx context.Context, args string) string {
			var in ToDoArgs
			if err := decodeArgs(args, &in, false); err != nil {
				logx.Warn().Err(err).Str("tool", ToolCreateToDo).Msg("invalid arguments")
				return "failed"
			}
			var date *time.Time
			d, err := parseDate("date", in.Date)
			if err != nil {
				logx.Warn().Err(err).Str("tool", ToolCreateToDo).Msg("invalid date")
				return "failed"
			}
			if !d.IsZero() {
				date = &d
			}
			if _, err := store.CreateToDo(ctx, in.Description, date); err != nil {
				logx.Error().Err(err).Str("tool", ToolCreateToDo).Msg("create todo failed")
				return "failed"
			}
			return "done"
		},
	}
}
