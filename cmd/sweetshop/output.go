package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/goliatone/go-print"
	"github.com/goliatone/go-sweetshop"
	"github.com/goliatone/go-sweetshop/web"
)

func (a *App) printJSON(v any) {
	fmt.Fprintln(a.out, print.MaybePrettyJSON(v))
}

func (a *App) printItems(items []sweetshop.Item) {
	if a.json {
		a.printJSON(items)
		return
	}

	if len(items) == 0 {
		fmt.Fprintln(a.out, "No sweets found.")
		return
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK")
	for _, item := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			item.ID, item.Name, item.Category, web.FormatPrice(item.Price), web.StockLabel(item.Quantity))
	}
	tw.Flush()

	stats := sweetshop.Summarize(items)
	fmt.Fprintf(a.out, "\n%d sweets, %d units, stock value %s, %d out of stock, %d low\n",
		stats.Items, stats.TotalUnits, web.FormatPrice(stats.TotalValue), stats.OutOfStock, stats.LowStock)
}

func (a *App) printItem(item *sweetshop.Item) {
	if a.json {
		a.printJSON(item)
		return
	}
	printItemDetail(a.out, item)
}

func printItemDetail(w io.Writer, item *sweetshop.Item) {
	fmt.Fprintf(w, "#%d %s (%s) %s, %s\n",
		item.ID, item.Name, item.Category, web.FormatPrice(item.Price), web.StockLabel(item.Quantity))
	if item.Description != "" {
		fmt.Fprintf(w, "  %s\n", item.Description)
	}
}

func (a *App) printIdentity(identity *sweetshop.Identity) {
	if a.json {
		a.printJSON(identity)
		return
	}
	role := "user"
	if identity.IsAdministrator {
		role = "admin"
	}
	name := identity.Name
	if name == "" {
		name = identity.Email
	}
	fmt.Fprintf(a.out, "%s <%s> [%s]\n", name, identity.Email, role)
}

func (a *App) printMessage(msg string) {
	if a.json {
		a.printJSON(map[string]string{"message": msg})
		return
	}
	fmt.Fprintln(a.out, msg)
}
