package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	errx "github.com/erpbot/server/internal/core/error"
	"github.com/erpbot/server/internal/erp"
	logx "github.com/erpbot/server/pkg/logger"
)

type CreateCustomerInput struct {
	CustomerName    string `json:"customer_name"`
	CustomerGroup   string `json:"customer_group,omitempty"`
	Territory       string `json:"territory,omitempty"`
	DefaultCurrency string `json:"default_currency,omitempty"`
	TaxID           string `json:"tax_id,omitempty"`
	AddressLine1    string `json:"address_line1,omitempty"`
	City            string `json:"city,omitempty"`
	Phone           string `json:"phone,omitempty"`
}

type UpdateCustomerInput struct {
	CustomerName  string `json:"customer_name"`
	NewName       string `json:"new_name,omitempty"`
	Territory     string `json:"territory,omitempty"`
	CustomerGroup string `json:"customer_group,omitempty"`
}

type CustomerInfoInput struct {
	CustomerName string `json:"customer_name"`
	Field        string `json:"field,omitempty"`
}

type CustomerStatsInput struct {
	Tipo   string `json:"tipo,omitempty"`
	Filtro string `json:"filtro,omitempty"`
}

func newCreateCustomerTool(store Store) tool.InvokableTool {
	return &erpTool{
		info: &schema.ToolInfo{
			Name: ToolCreateCustomer,
			Desc: "Crea un nuevo cliente junto con su dirección. Requiere customer_name. Si no se indican, customer_group es 'Individual', territory 'All Territories' y default_currency 'GTQ'. Devuelve 'done' o 'failed'.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"customer_name":    {Type: schema.String, Desc: "Nombre del cliente", Required: true},
				"customer_group":   {Type: schema.String, Desc: "Grupo de clientes"},
				"territory":        {Type: schema.String, Desc: "Territorio"},
				"default_currency": {Type: schema.String, Desc: "Moneda de tres letras, por ejemplo GTQ"},
				"tax_id":           {Type: schema.String, Desc: "NIT del cliente"},
				"address_line1":    {Type: schema.String, Desc: "Dirección"},
				"city":             {Type: schema.String, Desc: "Ciudad"},
				"phone":            {Type: schema.String, Desc: "Teléfono"},
			}),
		},
		run: func(ctx context.Context, args string) string {
			var in CreateCustomerInput
			if err := decodeArgs(args, &in, false); err != nil {
				logx.Warn().Err(err).Str("tool", ToolCreateCustomer).Msg("invalid arguments")
				return "failed"
			}
			_, err := store.CreateCustomer(ctx, erp.CustomerInput{
				CustomerName:    in.CustomerName,
				CustomerGroup:   orDefault(in.CustomerGroup, "Individual"),
				Territory:       orDefault(in.Territory, "All Territories"),
				DefaultCurrency: orDefault(in.DefaultCurrency, "GTQ"),
				TaxID:           in.TaxID,
				Address: &erp.AddressInput{
					AddressLine1: orDefault(in.AddressLine1, "Ciudad"),
					City:         orDefault(in.City, "Ciudad de Guatemala"),
					Phone:        in.Phone,
				},
			})
			if err != nil {
				logx.Error().Err(err).Str("tool", ToolCreateCustomer).Msg("create customer failed")
				return "failed"
			}
			return "done"
		},
	}
}

// lookupCustomer resolves a partial display name to exactly one customer.
// A non-empty message is returned when the lookup cannot proceed.
func lookupCustomer(ctx context.Context, store Store, fragment string) (*erp.Customer, string, error) {
	found, err := store.FindCustomers(ctx, fragment)
	if err != nil {
		return nil, "", err
	}
	switch len(found) {
	case 0:
		return nil, fmt.Sprintf("Error: No se encontraron clientes que coincidan con '%s'.", fragment), nil
	case 1:
		return &found[0], "", nil
	default:
		names := make([]string, len(found))
		for i, c := range found {
			names[i] = c.CustomerName
		}
		return nil, "Se encontraron múltiples clientes: " + strings.Join(names, ", "), nil
	}
}

// customerErrMessage maps store errors shared by the customer tools.
func customerErrMessage(tool string, err error) string {
	switch {
	case errors.Is(err, errx.ErrNotFound):
		return "Error: Cliente no encontrado."
	case errors.Is(err, errx.ErrValidation):
		logx.Warn().Err(err).Str("tool", tool).Msg("validation error")
		return "Error de validación."
	default:
		logx.Error().Err(err).Str("tool", tool).Msg("unexpected error")
		return fmt.Sprintf("Error inesperado: %v", err)
	}
}

func newUpdateCustomersTool(store Store) tool.InvokableTool {
	return &erpTool{
		info: &schema.ToolInfo{
			Name: ToolUpdateCustomers,
			Desc: "Actualiza un cliente existente buscado por coincidencia parcial de customer_name. Puede cambiar el nombre (new_name), el territorio y el grupo de clientes. Si hay varias coincidencias devuelve la lista de nombres.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"customer_name":  {Type: schema.String, Desc: "Nombre o parte del nombre del cliente", Required: true},
				"new_name":       {Type: schema.String, Desc: "Nuevo nombre del cliente"},
				"territory":      {Type: schema.String, Desc: "Nuevo territorio"},
				"customer_group": {Type: schema.String, Desc: "Nuevo grupo de clientes"},
			}),
		},
		run: func(ctx context.Context, args string) string {
			var in UpdateCustomerInput
			if err := decodeArgs(args, &in, false); err != nil {
				return fmt.Sprintf("Error inesperado: %v", err)
			}
			if strings.TrimSpace(in.CustomerName) == "" {
				return "Error: Se requiere 'customer_name' para obtener la información del cliente."
			}
			c, msg, err := lookupCustomer(ctx, store, in.CustomerName)
			if err != nil {
				return customerErrMessage(ToolUpdateCustomers, err)
			}
			if msg != "" {
				return msg
			}
			c, err = store.UpdateCustomer(ctx, c.Name, erp.CustomerPatch{
				CustomerName:  in.NewName,
				Territory:     in.Territory,
				CustomerGroup: in.CustomerGroup,
			})
			if err != nil {
				return customerErrMessage(ToolUpdateCustomers, err)
			}
			return fmt.Sprintf("Cliente '%s' actualizado correctamente.\n"+
				"Nuevos valores:\n"+
				" - Nombre: %s\n"+
				" - Territorio: %s\n"+
				" - Grupo de Clientes: %s\n",
				c.CustomerName, c.CustomerName, c.Territory, c.CustomerGroup)
		},
	}
}

func newDeleteCustomersTool(store Store) tool.InvokableTool {
	return &erpTool{
		info: &schema.ToolInfo{
			Name: ToolDeleteCustomers,
			Desc: "Elimina el cliente cuyo customer_name coincide exactamente. Los clientes con facturas o pedidos no se pueden eliminar. Devuelve 'done' si se eliminó.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"customer_name": {Type: schema.String, Desc: "Nombre exacto del cliente", Required: true},
			}),
		},
		run: func(ctx context.Context, args string) string {
			var in CustomerInfoInput
			if err := decodeArgs(args, &in, false); err != nil {
				return fmt.Sprintf("Error inesperado: %v", err)
			}
			if strings.TrimSpace(in.CustomerName) == "" {
				return "Error: Se requiere 'customer_name' para actualizar el cliente."
			}
			name, err := store.CustomerByDisplayName(ctx, in.CustomerName)
			if errors.Is(err, errx.ErrNotFound) {
				return "Error: Cliente no existe."
			}
			if err != nil {
				return customerErrMessage(ToolDeleteCustomers, err)
			}
			if err := store.DeleteCustomer(ctx, name); err != nil {
				return customerErrMessage(ToolDeleteCustomers, err)
			}
			return "done"
		},
	}
}

// customerField returns the value of a customer field by its document key.
func customerField(c *erp.Customer, field string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "name":
		return c.Name, true
	case "customer_name":
		return c.CustomerName, true
	case "customer_group":
		return c.CustomerGroup, true
	case "territory":
		return c.Territory, true
	case "default_currency":
		return c.DefaultCurrency, true
	case "tax_id":
		return c.TaxID, true
	case "creation":
		return formatTimestamp(c.CreatedAt), true
	case "modified":
		return formatTimestamp(c.UpdatedAt), true
	}
	return "", false
}

func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

func newGetInfoCustomerTool(store Store) tool.InvokableTool {
	return &erpTool{
		info: &schema.ToolInfo{
			Name: ToolGetInfoCustomer,
			Desc: "Obtiene la información de un cliente buscado por coincidencia parcial de customer_name. Con 'field' devuelve solo ese campo (customer_group, territory, default_currency, tax_id, creation).",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"customer_name": {Type: schema.String, Desc: "Nombre o parte del nombre del cliente", Required: true},
				"field":         {Type: schema.String, Desc: "Campo específico a consultar"},
			}),
		},
		run: func(ctx context.Context, args string) string {
			var in CustomerInfoInput
			if err := decodeArgs(args, &in, false); err != nil {
				return fmt.Sprintf("Error inesperado: %v", err)
			}
			if strings.TrimSpace(in.CustomerName) == "" {
				return "Error: Se requiere 'customer_name' para obtener la información del cliente."
			}
			c, msg, err := lookupCustomer(ctx, store, in.CustomerName)
			if err != nil {
				return customerErrMessage(ToolGetInfoCustomer, err)
			}
			if msg != "" {
				return msg
			}
			if field := strings.TrimSpace(in.Field); field != "" {
				v, ok := customerField(c, field)
				if !ok {
					return fmt.Sprintf("Error: El campo '%s' no existe en el cliente.", field)
				}
				return fmt.Sprintf("%s: %s", capitalize(field), v)
			}
			return fmt.Sprintf("El cliente %s pertenece al grupo '%s'.\n"+
				"Territorio asignado: %s.\n"+
				"Fecha de creación: %s.\n",
				c.CustomerName, c.CustomerGroup, c.Territory, formatTimestamp(c.CreatedAt))
		},
	}
}

func newGetCustomerStatsTool(store Store) tool.InvokableTool {
	return &erpTool{
		info: &schema.ToolInfo{
			Name: ToolGetCustomerStats,
			Desc: "Estadísticas de clientes. tipo 'total' devuelve la cantidad de clientes, 'coincidencia' busca clientes cuyo nombre contiene 'filtro' y 'deudores' lista los clientes con saldo pendiente.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"tipo":   {Type: schema.String, Desc: "total, coincidencia o deudores", Enum: []string{"total", "coincidencia", "deudores"}},
				"filtro": {Type: schema.String, Desc: "Texto a buscar en el nombre cuando tipo es coincidencia"},
			}),
		},
		run: func(ctx context.Context, args string) string {
			var in CustomerStatsInput
			if err := decodeArgs(args, &in, true); err != nil {
				return fmt.Sprintf("Error inesperado: %v", err)
			}
			switch orDefault(in.Tipo, "total") {
			case "total":
				n, err := store.CountCustomers(ctx)
				if err != nil {
					return customerErrMessage(ToolGetCustomerStats, err)
				}
				return fmt.Sprintf("Actualmente hay %d clientes en el sistema.", n)
			case "coincidencia":
				filtro := strings.TrimSpace(in.Filtro)
				if filtro == "" {
					return "Error: Debes proporcionar un nombre o parte de un nombre en 'filtro'."
				}
				found, err := store.FindCustomers(ctx, filtro)
				if err != nil {
					return customerErrMessage(ToolGetCustomerStats, err)
				}
				if len(found) == 0 {
					return fmt.Sprintf("No se encontraron clientes con '%s' en su nombre.", filtro)
				}
				var b strings.Builder
				b.WriteString("Clientes encontrados:")
				for _, c := range found {
					b.WriteString("\n- " + c.CustomerName)
				}
				return b.String()
			case "deudores":
				debtors, err := store.Debtors(ctx)
				if err != nil {
					return customerErrMessage(ToolGetCustomerStats, err)
				}
				if len(debtors) == 0 {
					return "No hay clientes con saldo pendiente."
				}
				var b strings.Builder
				b.WriteString("Clientes con saldo pendiente:")
				for _, d := range debtors {
					fmt.Fprintf(&b, "\n- %s: Q%s", d.CustomerName, d.OutstandingAmount.StringFixed(2))
				}
				return b.String()
			default:
				return "Error: Tipo de consulta inválido. Usa 'total', 'coincidencia' o 'deudores'."
			}
		},
	}
}
