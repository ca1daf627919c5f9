package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/erpbot/server/internal/agent/graph/tools"
	"github.com/erpbot/server/internal/agent/model"
)

//go:embed template/assistant_prompt.txt
var assistantSystemPrompt string

// RenderAssistantSystem renders the Spanish-only system prompt through an Eino
// prompt template so prompt callbacks fire.
func RenderAssistantSystem(ctx context.Context, cfg model.ERPConfig, today time.Time) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(assistantSystemPrompt),
	)
	vars := map[string]any{
		"CompanyName":           cfg.CompanyName,
		"Currency":              cfg.CompanyCurrency,
		"Today":                 today.Format("2006-01-02"),
		"CreateCustomer":        tools.ToolCreateCustomer,
		"UpdateCustomers":       tools.ToolUpdateCustomers,
		"DeleteCustomers":       tools.ToolDeleteCustomers,
		"GetInfoCustomer":       tools.ToolGetInfoCustomer,
		"GetCustomerStats":      tools.ToolGetCustomerStats,
		"CreateSalesInvoice":    tools.ToolCreateSalesInvoice,
		"CreatePurchaseInvoice": tools.ToolCreatePurchaseInvoice,
		"CreateSuppliers":       tools.ToolCreateSuppliers,
		"CreateItem":            tools.ToolCreateItem,
		"GetSalesStats":         tools.ToolGetSalesStats,
		"GetItemStats":          tools.ToolGetItemStats,
		"CreateSalesOrder":      tools.ToolCreateSalesOrder,
		"CreateToDo":            tools.ToolCreateToDo,
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("assistant prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("assistant prompt render: empty result")
	}
	return msgs[0].Content, nil
}
