// Package view renders a session snapshot as a single HTML page.
package view

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"

	"campuseats/pkg/order"
)

//go:embed page.html.tmpl
var pageSource string

var page = template.Must(template.New("page").Funcs(template.FuncMap{
	"loading": func(s order.Screen) bool { return s.Loading() },
}).Parse(pageSource))

type catalogRow struct {
	order.Item
	Quantity int
}

type pageData struct {
	Snap        order.Snapshot
	Catalog     []catalogRow
	LoadingText string
	Refresh     bool
}

var loadingText = map[order.Screen]string{
	order.ScreenSummaryLoading: "Preparing your summary...",
	order.ScreenFinalLoading:   "Placing your order...",
}

// Render writes the page for snap.
func Render(w io.Writer, snap order.Snapshot) error {
	items := order.Catalog()
	rows := make([]catalogRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, catalogRow{Item: it, Quantity: snap.Quantity(it.Name)})
	}
	data := pageData{
		Snap:        snap,
		Catalog:     rows,
		LoadingText: loadingText[snap.Screen],
		Refresh:     snap.Screen.Loading() || snap.Screen == order.ScreenConfirmation || snap.Message != "",
	}
	if err := page.Execute(w, data); err != nil {
		return fmt.Errorf("render %s: %w", snap.Screen, err)
	}
	return nil
}
