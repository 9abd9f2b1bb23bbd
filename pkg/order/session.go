package order

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"campuseats/pkg/logger"
)

// Messages shown after an order attempt.
const (
	MsgOrderPlaced      = "Order placed!"
	MsgNotEnoughCredits = "Not enough credits"
)

// Delays holds the simulated processing times of the ordering flow.
type Delays struct {
	Message time.Duration // how long a transient message stays visible
	Summary time.Duration // SummaryLoading -> Summary
	Confirm time.Duration // FinalLoading -> Confirmation
	Hold    time.Duration // Confirmation -> reset
}

// DefaultDelays returns the stock timings.
func DefaultDelays() Delays {
	return Delays{
		Message: 2 * time.Second,
		Summary: 1200 * time.Millisecond,
		Confirm: 1500 * time.Millisecond,
		Hold:    5 * time.Second,
	}
}

func (d Delays) withDefaults() Delays {
	def := DefaultDelays()
	if d.Message <= 0 {
		d.Message = def.Message
	}
	if d.Summary <= 0 {
		d.Summary = def.Summary
	}
	if d.Confirm <= 0 {
		d.Confirm = def.Confirm
	}
	if d.Hold <= 0 {
		d.Hold = def.Hold
	}
	return d
}

// Options configures a Session. Zero values are replaced by defaults.
type Options struct {
	Clock    clockwork.Clock
	Delays   Delays
	Receipts ReceiptRepository
	Log      *logger.Logger
	// OnChange is called after every state change, outside the session lock.
	OnChange func(Snapshot)
}

// Snapshot is a read-only copy of the session state.
type Snapshot struct {
	Credits int      `json:"credits"`
	Spent   int      `json:"spent"`
	Screen  Screen   `json:"screen"`
	Message string   `json:"message,omitempty"`
	Lines   []Line   `json:"lines"`
	Receipt *Receipt `json:"receipt,omitempty"`
	Version uint64   `json:"version"`
}

// Quantity returns the ordered count for name, 0 when absent.
func (s Snapshot) Quantity(name string) int {
	for _, l := range s.Lines {
		if l.Item == name {
			return l.Quantity
		}
	}
	return 0
}

// Session is the single ordering session: credits, quantities and the
// screen flow with its timed transitions.
//
// Invariant: credits + TotalSpent() == StartingCredits, and every entry in
// quantities is >= 1.
type Session struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	delays   Delays
	receipts ReceiptRepository
	log      *logger.Logger
	onChange func(Snapshot)

	credits    int
	quantities map[string]int
	screen     Screen
	message    string
	msgSeq     uint64
	receipt    *Receipt
	version    uint64

	epoch     uint64
	nextTimer uint64
	timers    map[uint64]clockwork.Timer
	closed    bool
}

// NewSession creates a session with full credits on the ordering screen.
func NewSession(opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	return &Session{
		clock:      opts.Clock,
		delays:     opts.Delays.withDefaults(),
		receipts:   opts.Receipts,
		log:        opts.Log,
		onChange:   opts.OnChange,
		credits:    StartingCredits,
		quantities: make(map[string]int),
		screen:     ScreenOrdering,
		timers:     make(map[uint64]clockwork.Timer),
	}
}

// PlaceOrder buys one unit of the named item if credits allow. Either way a
// transient message is shown. It reports whether the item was added and is
// a no-op outside the ordering screen.
func (s *Session) PlaceOrder(name string) (bool, error) {
	item, err := Lookup(name)
	if err != nil {
		return false, fmt.Errorf("place order %q: %w", name, err)
	}

	s.mu.Lock()
	if s.screen != ScreenOrdering {
		s.mu.Unlock()
		return false, nil
	}
	placed := s.credits >= item.Price
	if placed {
		s.credits -= item.Price
		s.quantities[item.Name]++
		s.setMessageLocked(MsgOrderPlaced)
	} else {
		s.setMessageLocked(MsgNotEnoughCredits)
	}
	snap := s.changedLocked()
	s.mu.Unlock()

	s.log.Debug(context.Background(), "order placed", "item", item.Name, "placed", placed, "credits", snap.Credits)
	s.notify(snap)
	return placed, nil
}

// AdjustQuantity adds (+1) or cancels (-1) one unit of an already ordered
// item. Unaffordable increments and decrements of absent items are silently
// ignored, as are adjustments outside the ordering and summary screens.
func (s *Session) AdjustQuantity(name string, delta int) (bool, error) {
	item, err := Lookup(name)
	if err != nil {
		return false, fmt.Errorf("adjust %q: %w", name, err)
	}
	if delta != 1 && delta != -1 {
		return false, fmt.Errorf("adjust %q by %d: %w", name, delta, ErrInvalidDelta)
	}

	s.mu.Lock()
	if s.screen != ScreenOrdering && s.screen != ScreenSummary {
		s.mu.Unlock()
		return false, nil
	}
	applied := false
	switch {
	case delta > 0 && s.credits >= item.Price:
		s.credits -= item.Price
		s.quantities[item.Name]++
		applied = true
	case delta < 0 && s.quantities[item.Name] > 0:
		s.credits += item.Price
		s.quantities[item.Name]--
		if s.quantities[item.Name] == 0 {
			delete(s.quantities, item.Name)
		}
		applied = true
	}
	if !applied {
		s.mu.Unlock()
		return false, nil
	}
	snap := s.changedLocked()
	s.mu.Unlock()

	s.log.Debug(context.Background(), "quantity adjusted", "item", item.Name, "delta", delta, "credits", snap.Credits)
	s.notify(snap)
	return true, nil
}

// OpenSummary moves from the ordering screen to the summary after the
// summary delay.
func (s *Session) OpenSummary() error {
	s.mu.Lock()
	if s.screen != ScreenOrdering {
		cur := s.screen
		s.mu.Unlock()
		return fmt.Errorf("open summary from %s: %w", cur, ErrInvalidTransition)
	}
	s.screen = ScreenSummaryLoading
	s.scheduleLocked(s.delays.Summary, func() bool {
		s.screen = ScreenSummary
		return true
	})
	snap := s.changedLocked()
	s.mu.Unlock()

	s.notify(snap)
	return nil
}

// ConfirmOrder moves from the summary through the final loading screen to
// the confirmation, then resets the session once the confirmation has been
// shown for the hold delay.
func (s *Session) ConfirmOrder() error {
	s.mu.Lock()
	if s.screen != ScreenSummary {
		cur := s.screen
		s.mu.Unlock()
		return fmt.Errorf("confirm order from %s: %w", cur, ErrInvalidTransition)
	}
	s.screen = ScreenFinalLoading
	s.scheduleLocked(s.delays.Confirm, func() bool {
		s.screen = ScreenConfirmation
		s.recordReceiptLocked()
		s.scheduleLocked(s.delays.Hold, func() bool {
			s.resetLocked()
			return true
		})
		return true
	})
	snap := s.changedLocked()
	s.mu.Unlock()

	s.notify(snap)
	return nil
}

// TotalSpent is the value of everything currently ordered.
func (s *Session) TotalSpent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spentLocked()
}

// Credits returns the remaining balance.
func (s *Session) Credits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credits
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Close stops pending timers. The session keeps its last state.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.stopTimersLocked()
}

func (s *Session) setMessageLocked(msg string) {
	s.message = msg
	s.msgSeq++
	seq := s.msgSeq
	s.scheduleLocked(s.delays.Message, func() bool {
		if s.msgSeq != seq {
			return false
		}
		s.message = ""
		return true
	})
}

// scheduleLocked runs fn under the session lock after d. Callbacks from a
// previous cycle (before a reset) or after Close are dropped. fn reports
// whether it changed state.
func (s *Session) scheduleLocked(d time.Duration, fn func() bool) {
	id := s.nextTimer
	s.nextTimer++
	epoch := s.epoch
	s.timers[id] = s.clock.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.timers, id)
		if s.closed || s.epoch != epoch || !fn() {
			s.mu.Unlock()
			return
		}
		snap := s.changedLocked()
		s.mu.Unlock()

		s.log.Debug(context.Background(), "timed transition", "screen", snap.Screen.String())
		s.notify(snap)
	})
}

func (s *Session) stopTimersLocked() {
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

func (s *Session) resetLocked() {
	s.stopTimersLocked()
	s.epoch++
	s.credits = StartingCredits
	s.quantities = make(map[string]int)
	s.screen = ScreenOrdering
	s.message = ""
	s.receipt = nil
}

func (s *Session) recordReceiptLocked() {
	lines := s.linesLocked()
	r := Receipt{
		ID:       uuid.New(),
		Lines:    lines,
		Total:    s.spentLocked(),
		PlacedAt: s.clock.Now().UTC(),
	}
	s.receipt = &r
	if s.receipts == nil {
		return
	}
	if err := s.receipts.Create(context.Background(), r); err != nil {
		s.log.Error(context.Background(), "store receipt", "receipt", r.ID.String(), "error", err)
		return
	}
	s.log.Info(context.Background(), "order confirmed", "receipt", r.ID.String(), "total", r.Total)
}

func (s *Session) spentLocked() int {
	total := 0
	for name, qty := range s.quantities {
		item, err := Lookup(name)
		if err != nil {
			continue
		}
		total += item.Price * qty
	}
	return total
}

func (s *Session) linesLocked() []Line {
	lines := make([]Line, 0, len(s.quantities))
	for _, it := range catalog {
		qty, ok := s.quantities[it.Name]
		if !ok {
			continue
		}
		lines = append(lines, Line{Item: it.Name, Price: it.Price, Quantity: qty, Subtotal: it.Price * qty})
	}
	return lines
}

func (s *Session) changedLocked() Snapshot {
	s.version++
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Credits: s.credits,
		Spent:   s.spentLocked(),
		Screen:  s.screen,
		Message: s.message,
		Lines:   s.linesLocked(),
		Version: s.version,
	}
	if s.receipt != nil {
		r := *s.receipt
		snap.Receipt = &r
	}
	return snap
}

func (s *Session) notify(snap Snapshot) {
	if s.onChange != nil {
		s.onChange(snap)
	}
}
