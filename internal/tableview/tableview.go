// Package tableview renders product lists and catalog reports as terminal
// tables or HTML.
package tableview

import (
	"fmt"
	"html"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const cssClass = "catalog"

// Item is the read-only view of a product the tables need.
type Item interface {
	SKU() string
	Name() string
	Category() string
	Quantity() int
	Price() float64
}

var header = table.Row{"SKU", "Name", "Category", "Quantity", "Price"}

func newTable[P Item](products []P) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	for _, p := range products {
		t.AppendRow(table.Row{p.SKU(), p.Name(), p.Category(), p.Quantity(), Money(p.Price())})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	return t
}

// Money formats an amount with two decimals.
func Money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// Products writes products as a text table followed by a newline. An empty
// list prints a short notice instead.
func Products[P Item](w io.Writer, products []P) error {
	if len(products) == 0 {
		_, err := fmt.Fprintln(w, "No products.")
		return err
	}
	t := newTable(products)
	t.AppendFooter(table.Row{"", "", "", "Items", len(products)})
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// LowStock writes the low-stock table, or a line saying nothing is low.
func LowStock[P Item](w io.Writer, products []P, threshold int) error {
	if len(products) == 0 {
		_, err := fmt.Fprintf(w, "All products above %d.\n", threshold)
		return err
	}
	t := newTable(products)
	t.SetTitle(fmt.Sprintf("Low stock (<= %d)", threshold))
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func TotalValue(w io.Writer, total float64) error {
	_, err := fmt.Fprintf(w, "Total stock value: %s\n", Money(total))
	return err
}

// HTMLTable renders products as an HTML <table>.
func HTMLTable[P Item](products []P) string {
	t := newTable(products)
	t.Style().HTML = table.HTMLOptions{
		CSSClass:    cssClass,
		EmptyColumn: "&nbsp;",
		EscapeText:  true,
		Newline:     "<br/>",
	}
	return t.RenderHTML()
}

// HTMLPage wraps the catalog table in a minimal standalone page.
func HTMLPage[P Item](title string, products []P, total float64) string {
	return fmt.Sprintf(pageTemplate,
		html.EscapeString(title),
		html.EscapeString(title),
		HTMLTable(products),
		len(products),
		Money(total),
	)
}

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
table.catalog { border-collapse: collapse; font-family: sans-serif; }
table.catalog th, table.catalog td { border: 1px solid #ccc; padding: 4px 10px; }
table.catalog td[align="right"] { font-variant-numeric: tabular-nums; }
</style>
</head>
<body>
<h1>%s</h1>
%s
<p>%d products, total value %s</p>
</body>
</html>
`
