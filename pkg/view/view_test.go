package view

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuseats/pkg/order"
)

func render(t *testing.T, snap order.Snapshot) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, snap))
	return buf.String()
}

func TestRenderOrdering(t *testing.T) {
	out := render(t, order.Snapshot{
		Credits: 85,
		Spent:   15,
		Screen:  order.ScreenOrdering,
		Message: order.MsgOrderPlaced,
		Lines:   []order.Line{{Item: "Idli", Price: 15, Quantity: 1, Subtotal: 15}},
	})
	assert.Contains(t, out, `data-screen="ordering"`)
	assert.Contains(t, out, "Available Credits: <strong>85</strong>")
	assert.Contains(t, out, "Order placed!")
	assert.Contains(t, out, "Veg Sandwich - 20 pts")
	assert.Contains(t, out, `<span>1</span>`)
	assert.Contains(t, out, `http-equiv="refresh"`, "pending message needs a refresh to disappear")
}

func TestRenderSummary(t *testing.T) {
	empty := render(t, order.Snapshot{Credits: 100, Screen: order.ScreenSummary})
	assert.Contains(t, empty, "No items selected.")
	assert.Contains(t, empty, "Total Spent: <strong>0</strong>")
	assert.NotContains(t, empty, `http-equiv="refresh"`)

	out := render(t, order.Snapshot{
		Credits: 60,
		Spent:   40,
		Screen:  order.ScreenSummary,
		Lines:   []order.Line{{Item: "Fried Rice", Price: 40, Quantity: 1, Subtotal: 40}},
	})
	assert.Contains(t, out, "Fried Rice (x1) - 40 pts")
	assert.Contains(t, out, "Order!")
}

func TestRenderLoadingAndConfirmation(t *testing.T) {
	assert.Contains(t, render(t, order.Snapshot{Screen: order.ScreenSummaryLoading}), "Preparing your summary...")
	assert.Contains(t, render(t, order.Snapshot{Screen: order.ScreenFinalLoading}), "Placing your order...")

	id := uuid.New()
	out := render(t, order.Snapshot{Screen: order.ScreenConfirmation, Receipt: &order.Receipt{ID: id, Total: 30}})
	assert.Contains(t, out, "Your order is placed")
	assert.Contains(t, out, id.String())
	assert.Contains(t, out, `http-equiv="refresh"`)
}
