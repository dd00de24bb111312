// Package menu is the interactive text front end over an inventory catalog.
package menu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"go.uber.org/zap"

	"StockKeeper/internal/inventory"
	"StockKeeper/internal/tableview"
)

// LineReader is the subset of *readline.Instance the menu uses.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

var errBadInput = errors.New("bad input")

type Menu struct {
	Catalog *inventory.Catalog
	In      LineReader
	Out     io.Writer
	Log     *zap.Logger
}

type entry struct {
	key   string
	label string
	run   func(ctx context.Context) error
}

// NewReadline builds the line editor used by the binary, keeping history in
// the user's home directory.
func NewReadline() (*readline.Instance, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "> ",
		HistoryFile:       filepath.Join(home, ".stockkeeper_history"),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, fmt.Errorf("init readline: %w", err)
	}
	return rl, nil
}

func (m *Menu) entries() []entry {
	return []entry{
		{"1", "Add product", m.add},
		{"2", "Remove product", m.remove},
		{"3", "Adjust quantity", m.adjust},
		{"4", "Set quantity", m.setQuantity},
		{"5", "Set price", m.setPrice},
		{"6", "Edit product", m.edit},
		{"7", "List all products", m.list},
		{"8", "Find by name", m.findByName},
		{"9", "Filter by category", m.filterByCategory},
		{"10", "Low stock", m.lowStock},
		{"11", "Total value", m.totalValue},
		{"12", "Search name or category", m.search},
	}
}

// Run loops until the user picks 0, input ends or is interrupted.
func (m *Menu) Run(ctx context.Context) error {
	entries := m.entries()
	byKey := make(map[string]entry, len(entries))
	for _, e := range entries {
		byKey[e.key] = e
	}

	for {
		m.printMenu(entries)

		choice, err := m.ask("Choose an action: ")
		if err != nil {
			if isExit(err) {
				return nil
			}
			return err
		}

		if choice == "0" {
			m.println("Bye.")
			return nil
		}

		e, ok := byKey[choice]
		if !ok {
			m.println("Unknown choice, try again.")
			continue
		}

		if err := e.run(ctx); err != nil {
			if isExit(err) {
				return nil
			}
			m.report(err)
		}
	}
}

func (m *Menu) printMenu(entries []entry) {
	m.println("")
	m.println("=== Inventory ===")
	for _, e := range entries {
		m.printf("%2s. %s\n", e.key, e.label)
	}
	m.println(" 0. Exit")
}

func (m *Menu) report(err error) {
	switch {
	case errors.Is(err, errBadInput):
		m.printf("Input error: %v\n", err)
	case inventory.IsInventoryError(err):
		m.printf("Error: %v\n", err)
	default:
		if m.Log != nil {
			m.Log.Warn("menu action failed", zap.Error(err))
		}
		m.printf("Error: %v\n", err)
	}
}

func (m *Menu) add(ctx context.Context) error {
	sku, err := m.ask("SKU: ")
	if err != nil {
		return err
	}
	name, err := m.ask("Name: ")
	if err != nil {
		return err
	}
	category, err := m.ask("Category: ")
	if err != nil {
		return err
	}
	qty, err := m.askInt("Quantity: ")
	if err != nil {
		return err
	}
	price, err := m.askFloat("Price: ")
	if err != nil {
		return err
	}

	p, err := inventory.NewProduct(sku, name, category, qty, price)
	if err != nil {
		return err
	}
	if err := m.Catalog.Add(ctx, p); err != nil {
		return err
	}
	m.printf("Added %q.\n", name)
	return nil
}

func (m *Menu) remove(ctx context.Context) error {
	sku, err := m.ask("SKU to remove: ")
	if err != nil {
		return err
	}
	if err := m.Catalog.Remove(ctx, sku); err != nil {
		return err
	}
	m.printf("Removed %s.\n", sku)
	return nil
}

func (m *Menu) adjust(ctx context.Context) error {
	sku, err := m.ask("SKU: ")
	if err != nil {
		return err
	}
	delta, err := m.askInt("Quantity change (+/-): ")
	if err != nil {
		return err
	}
	if err := m.Catalog.AdjustQuantity(ctx, sku, delta); err != nil {
		return err
	}
	m.println("Quantity updated.")
	return nil
}

func (m *Menu) setQuantity(ctx context.Context) error {
	sku, err := m.ask("SKU: ")
	if err != nil {
		return err
	}
	qty, err := m.askInt("New quantity: ")
	if err != nil {
		return err
	}
	if err := m.Catalog.SetQuantity(ctx, sku, qty); err != nil {
		return err
	}
	m.println("Quantity updated.")
	return nil
}

func (m *Menu) setPrice(ctx context.Context) error {
	sku, err := m.ask("SKU: ")
	if err != nil {
		return err
	}
	price, err := m.askFloat("New price: ")
	if err != nil {
		return err
	}
	if err := m.Catalog.SetPrice(ctx, sku, price); err != nil {
		return err
	}
	m.println("Price updated.")
	return nil
}

// edit prompts for every mutable field; an empty answer keeps the current
// value.
func (m *Menu) edit(ctx context.Context) error {
	sku, err := m.ask("SKU: ")
	if err != nil {
		return err
	}
	cur, ok := m.Catalog.Get(sku)
	if !ok {
		return fmt.Errorf("%w: sku %q", inventory.ErrNotFound, sku)
	}

	name, err := m.askDefault("Name", cur.Name())
	if err != nil {
		return err
	}
	category, err := m.askDefault("Category", cur.Category())
	if err != nil {
		return err
	}
	qtyText, err := m.askDefault("Quantity", strconv.Itoa(cur.Quantity()))
	if err != nil {
		return err
	}
	qty, err := parseInt(qtyText)
	if err != nil {
		return err
	}
	price := cur.Price()
	priceText, err := m.ask(fmt.Sprintf("Price [%s]: ", tableview.Money(price)))
	if err != nil {
		return err
	}
	if priceText != "" {
		if price, err = parseFloat(priceText); err != nil {
			return err
		}
	}

	if err := m.Catalog.Edit(ctx, sku, name, category, qty, price); err != nil {
		return err
	}
	m.println("Product updated.")
	return nil
}

func (m *Menu) list(ctx context.Context) error {
	sortBy, err := m.ask("Sort by (sku/name/category/quantity/price) or Enter: ")
	if err != nil {
		return err
	}
	rev, err := m.ask("Reverse order? (y/n): ")
	if err != nil {
		return err
	}

	field, _ := inventory.ParseSortField(sortBy)
	return tableview.Products(m.Out, m.Catalog.ListAll(field, strings.EqualFold(rev, "y")))
}

func (m *Menu) findByName(ctx context.Context) error {
	name, err := m.ask("Part of the name: ")
	if err != nil {
		return err
	}
	return tableview.Products(m.Out, m.Catalog.FindByName(name))
}

func (m *Menu) filterByCategory(ctx context.Context) error {
	category, err := m.ask("Category: ")
	if err != nil {
		return err
	}
	return tableview.Products(m.Out, m.Catalog.FilterByCategory(category))
}

func (m *Menu) search(ctx context.Context) error {
	text, err := m.ask("Search: ")
	if err != nil {
		return err
	}
	return tableview.Products(m.Out, m.Catalog.Search(text))
}

func (m *Menu) lowStock(ctx context.Context) error {
	threshold, err := m.askInt("Low stock threshold: ")
	if err != nil {
		return err
	}
	return tableview.LowStock(m.Out, m.Catalog.LowStock(threshold), threshold)
}

func (m *Menu) totalValue(ctx context.Context) error {
	return tableview.TotalValue(m.Out, m.Catalog.TotalValue())
}

func (m *Menu) ask(prompt string) (string, error) {
	m.In.SetPrompt(prompt)
	line, err := m.In.Readline()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (m *Menu) askDefault(label, current string) (string, error) {
	v, err := m.ask(fmt.Sprintf("%s [%s]: ", label, current))
	if err != nil {
		return "", err
	}
	if v == "" {
		return current, nil
	}
	return v, nil
}

func (m *Menu) askInt(prompt string) (int, error) {
	v, err := m.ask(prompt)
	if err != nil {
		return 0, err
	}
	return parseInt(v)
}

func (m *Menu) askFloat(prompt string) (float64, error) {
	v, err := m.ask(prompt)
	if err != nil {
		return 0, err
	}
	return parseFloat(v)
}

func parseInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", errBadInput, s)
	}
	return n, nil
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", errBadInput, s)
	}
	return f, nil
}

func isExit(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt)
}

func (m *Menu) println(s string) {
	fmt.Fprintln(m.Out, s)
}

func (m *Menu) printf(format string, args ...any) {
	fmt.Fprintf(m.Out, format, args...)
}
