package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"

	"campuseats/pkg/metrics"
	"campuseats/pkg/order"
	"campuseats/pkg/otel"
	"campuseats/pkg/view"
)

// orderRequest names a menu item.
type orderRequest struct {
	Item string `json:"item"`
}

// adjustRequest changes the quantity of an ordered item by +1 or -1.
type adjustRequest struct {
	Item  string `json:"item"`
	Delta int    `json:"delta"`
}

// actionResponse reports whether an action changed the session and the
// state after it.
type actionResponse struct {
	Applied bool           `json:"applied"`
	Session order.Snapshot `json:"session"`
}

type jsonError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, jsonError{Error: message, Details: details})
}

func (s *Server) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, order.ErrUnknownItem):
		writeJSONError(w, http.StatusNotFound, "unknown item", err.Error())
	case errors.Is(err, order.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "not found", err.Error())
	case errors.Is(err, order.ErrInvalidDelta):
		writeJSONError(w, http.StatusBadRequest, "invalid delta", err.Error())
	case errors.Is(err, order.ErrInvalidTransition):
		writeJSONError(w, http.StatusConflict, "invalid transition", err.Error())
	default:
		s.log.Error(ctx, "request failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error", "")
	}
}

// healthHandler reports liveness.
// @Summary Health check
// @Produce json
// @Success 200
// @Router /healthz [get]
func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// catalogHandler lists the menu.
// @Summary List menu items
// @Produce json
// @Success 200 {array} order.Item
// @Router /catalog [get]
func (s *Server) catalogHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, order.Catalog())
}

// getSessionHandler returns the current session state.
// @Summary Get session
// @Produce json
// @Success 200 {object} order.Snapshot
// @Router /session [get]
func (s *Server) getSessionHandler(w http.ResponseWriter, r *http.Request) {
	_, span := otel.AddSpan(r.Context(), "getSessionHandler")
	defer span.End()

	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

// placeOrderHandler buys one unit of an item.
// @Summary Place order
// @Accept json
// @Produce json
// @Param order body orderRequest true "Item"
// @Success 200 {object} actionResponse
// @Failure 404 {object} jsonError
// @Router /session/orders [post]
func (s *Server) placeOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "placeOrderHandler")
	defer span.End()

	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid body", err.Error())
		return
	}
	span.SetAttributes(attribute.String("item", req.Item))

	placed, err := s.placeOrder(ctx, req.Item)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{Applied: placed, Session: s.session.Snapshot()})
}

// adjustHandler adds or cancels one unit of an ordered item.
// @Summary Adjust quantity
// @Accept json
// @Produce json
// @Param adjustment body adjustRequest true "Item and delta (+1 or -1)"
// @Success 200 {object} actionResponse
// @Failure 400 {object} jsonError
// @Failure 404 {object} jsonError
// @Router /session/adjust [post]
func (s *Server) adjustHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "adjustHandler")
	defer span.End()

	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid body", err.Error())
		return
	}
	span.SetAttributes(attribute.String("item", req.Item), attribute.Int("delta", req.Delta))

	applied, err := s.adjust(ctx, req.Item, req.Delta)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{Applied: applied, Session: s.session.Snapshot()})
}

// openSummaryHandler starts loading the order summary.
// @Summary Open summary
// @Produce json
// @Success 202 {object} order.Snapshot
// @Failure 409 {object} jsonError
// @Router /session/summary [post]
func (s *Server) openSummaryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "openSummaryHandler")
	defer span.End()

	if err := s.session.OpenSummary(); err != nil {
		s.writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, s.session.Snapshot())
}

// confirmHandler places the final order.
// @Summary Confirm order
// @Produce json
// @Success 202 {object} order.Snapshot
// @Failure 409 {object} jsonError
// @Router /session/confirm [post]
func (s *Server) confirmHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "confirmHandler")
	defer span.End()

	if err := s.session.ConfirmOrder(); err != nil {
		s.writeError(ctx, w, err)
		return
	}
	s.log.Info(ctx, "order submitted", "spent", s.session.TotalSpent())
	writeJSON(w, http.StatusAccepted, s.session.Snapshot())
}

// listReceiptsHandler lists receipts confirmed since start, newest first.
// @Summary List receipts
// @Produce json
// @Success 200 {array} order.Receipt
// @Router /receipts [get]
func (s *Server) listReceiptsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listReceiptsHandler")
	defer span.End()

	receipts, err := s.receipts.List(ctx)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipts)
}

// getReceiptHandler retrieves a receipt by ID.
// @Summary Get receipt
// @Produce json
// @Param id path string true "Receipt ID"
// @Success 200 {object} order.Receipt
// @Failure 404 {object} jsonError
// @Router /receipts/{id} [get]
func (s *Server) getReceiptHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "getReceiptHandler")
	defer span.End()

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid receipt id", err.Error())
		return
	}
	rc, err := s.receipts.Get(ctx, id)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, rc)
}

func (s *Server) pageHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "pageHandler")
	defer span.End()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.Render(w, s.session.Snapshot()); err != nil {
		s.log.Error(ctx, "render page", "error", err)
	}
}

func (s *Server) uiOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "uiOrderHandler")
	defer span.End()

	if _, err := s.placeOrder(ctx, r.FormValue("item")); err != nil {
		s.uiError(ctx, w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) uiAdjustHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "uiAdjustHandler")
	defer span.End()

	delta, err := strconv.Atoi(r.FormValue("delta"))
	if err != nil {
		http.Error(w, "invalid delta", http.StatusBadRequest)
		return
	}
	if _, err := s.adjust(ctx, r.FormValue("item"), delta); err != nil {
		s.uiError(ctx, w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) uiSummaryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "uiSummaryHandler")
	defer span.End()

	if err := s.session.OpenSummary(); err != nil {
		s.uiError(ctx, w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) uiConfirmHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "uiConfirmHandler")
	defer span.End()

	if err := s.session.ConfirmOrder(); err != nil {
		s.uiError(ctx, w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// uiError treats stale form submissions (double clicks, a page rendered
// before a timed transition) as no-ops and sends the browser back.
func (s *Server) uiError(ctx context.Context, w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, order.ErrInvalidTransition):
		s.log.Debug(ctx, "stale form submission", "error", err)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case errors.Is(err, order.ErrUnknownItem):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, order.ErrInvalidDelta):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		s.log.Error(ctx, "ui action failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) placeOrder(ctx context.Context, item string) (bool, error) {
	placed, err := s.session.PlaceOrder(item)
	if err != nil {
		return false, err
	}
	outcome := "placed"
	if !placed {
		outcome = "ignored"
		if snap := s.session.Snapshot(); snap.Screen == order.ScreenOrdering && snap.Message == order.MsgNotEnoughCredits {
			outcome = "insufficient"
		}
	}
	metrics.OrdersTotal.WithLabelValues(outcome).Inc()
	s.log.Info(ctx, "place order", "item", item, "outcome", outcome)
	return placed, nil
}

func (s *Server) adjust(ctx context.Context, item string, delta int) (bool, error) {
	applied, err := s.session.AdjustQuantity(item, delta)
	if err != nil {
		return false, err
	}
	direction := "increment"
	if delta < 0 {
		direction = "decrement"
	}
	outcome := "applied"
	if !applied {
		outcome = "ignored"
	}
	metrics.AdjustmentsTotal.WithLabelValues(direction, outcome).Inc()
	s.log.Info(ctx, "adjust quantity", "item", item, "delta", delta, "outcome", outcome)
	return applied, nil
}
