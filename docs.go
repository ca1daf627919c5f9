package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/erpbot/server/internal/erp"
)

// Back-office document commands. The assistant only drafts invoices; these
// submit them, settle them and maintain the price lists and tax templates
// the reports and invoice defaults read.

const (
	docSalesInvoice    = "sales-invoice"
	docPurchaseInvoice = "purchase-invoice"
)

func (a *app) submitInvoice(ctx context.Context, w io.Writer, doctype, name string) error {
	var err error
	switch doctype {
	case docSalesInvoice:
		err = a.store.SubmitSalesInvoice(ctx, name)
	case docPurchaseInvoice:
		err = a.store.SubmitPurchaseInvoice(ctx, name)
	default:
		return fmt.Errorf("unknown doctype %q, use %s or %s", doctype, docSalesInvoice, docPurchaseInvoice)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s %s submitted\n", doctype, name)
	return nil
}

func (a *app) payInvoice(ctx context.Context, w io.Writer, name string) error {
	if err := a.store.MarkSalesInvoicePaid(ctx, name); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s %s paid\n", docSalesInvoice, name)
	return nil
}

func (a *app) listInvoices(ctx context.Context, w io.Writer, customer string, limit int) error {
	invoices, err := a.store.ListSalesInvoices(ctx, customer, limit)
	if err != nil {
		return err
	}
	return writeJSON(w, invoices)
}

func (a *app) setPrice(ctx context.Context, w io.Writer, code, priceList, rate string) error {
	r, err := decimal.NewFromString(strings.TrimSpace(rate))
	if err != nil {
		return fmt.Errorf("invalid rate %q: %w", rate, err)
	}
	if err := a.store.SetItemPrice(ctx, code, priceList, r); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s %s = %s %s\n", code, priceList, r.StringFixed(2), a.store.Currency())
	return nil
}

// createTaxTemplate stores a template from account=rate pairs and prints
// the saved rows.
func (a *app) createTaxTemplate(ctx context.Context, w io.Writer, kind, name string, isDefault bool, pairs []string) error {
	tpl := erp.TaxTemplate{Name: name, Kind: kind, IsDefault: isDefault}
	for _, p := range pairs {
		account, rate, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(account) == "" {
			return fmt.Errorf("invalid tax row %q, want account=rate", p)
		}
		r, err := decimal.NewFromString(strings.TrimSpace(rate))
		if err != nil {
			return fmt.Errorf("invalid rate in %q: %w", p, err)
		}
		tpl.Taxes = append(tpl.Taxes, erp.TaxTemplateRow{AccountHead: strings.TrimSpace(account), Rate: r})
	}
	if err := a.store.CreateTaxTemplate(ctx, tpl); err != nil {
		return err
	}
	rows, err := a.store.TaxTemplateRows(ctx, name)
	if err != nil {
		return err
	}
	return writeJSON(w, rows)
}

func (a *app) showDoc(ctx context.Context, w io.Writer, doctype, name string) error {
	switch doctype {
	case "item":
		it, err := a.store.GetItem(ctx, name)
		if err != nil {
			return err
		}
		return writeJSON(w, it)
	case "supplier":
		sup, err := a.store.GetSupplier(ctx, name)
		if err != nil {
			return err
		}
		return writeJSON(w, sup)
	case "customer":
		c, err := a.store.GetCustomer(ctx, name)
		if err != nil {
			return err
		}
		return writeJSON(w, c)
	default:
		return fmt.Errorf("unknown doctype %q, use item, supplier or customer", doctype)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// withApp runs fn against a freshly opened store.
func withApp(fn func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := setup(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(ctx, a, cmd, args)
	}
}

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Submit, settle and inspect ERP documents",
}

var docSubmitCmd = &cobra.Command{
	Use:   "submit <sales-invoice|purchase-invoice> <name>",
	Short: "Submit a draft invoice so reports count it",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		return a.submitInvoice(ctx, cmd.OutOrStdout(), args[0], args[1])
	}),
}

var docPayCmd = &cobra.Command{
	Use:   "pay <sales-invoice-name>",
	Short: "Mark a submitted sales invoice as paid",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		return a.payInvoice(ctx, cmd.OutOrStdout(), args[0])
	}),
}

var (
	invoiceCustomer string
	invoiceLimit    int
)

var docInvoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "List sales invoices, newest first",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		return a.listInvoices(ctx, cmd.OutOrStdout(), invoiceCustomer, invoiceLimit)
	}),
}

var priceList string

var docPriceCmd = &cobra.Command{
	Use:   "price <item_code> <rate>",
	Short: "Set an item's rate in a price list",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		return a.setPrice(ctx, cmd.OutOrStdout(), args[0], priceList, args[1])
	}),
}

var taxTemplateDefault bool

var docTaxTemplateCmd = &cobra.Command{
	Use:   "tax-template <sales|purchase> <name> <account=rate>...",
	Short: "Create a sales or purchase taxes and charges template",
	Args:  cobra.MinimumNArgs(3),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		return a.createTaxTemplate(ctx, cmd.OutOrStdout(), args[0], args[1], taxTemplateDefault, args[2:])
	}),
}

var docShowCmd = &cobra.Command{
	Use:   "show <item|supplier|customer> <name>",
	Short: "Print a document as JSON",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		return a.showDoc(ctx, cmd.OutOrStdout(), args[0], args[1])
	}),
}

func init() {
	docInvoicesCmd.Flags().StringVar(&invoiceCustomer, "customer", "", "only invoices of this customer (document name)")
	docInvoicesCmd.Flags().IntVar(&invoiceLimit, "limit", 20, "maximum number of invoices")
	docPriceCmd.Flags().StringVar(&priceList, "price-list", erp.StandardSelling, "price list name")
	docTaxTemplateCmd.Flags().BoolVar(&taxTemplateDefault, "default", false, "use as the default template of its kind")

	docCmd.AddCommand(docSubmitCmd, docPayCmd, docInvoicesCmd, docPriceCmd, docTaxTemplateCmd, docShowCmd)
	rootCmd.AddCommand(docCmd)
}
