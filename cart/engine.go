// Package cart is the in-memory transactional ledger of (item, quantity)
// lines and the checkout orchestration against the orders endpoint.
//
// Stock enforcement is deliberately silent: adds are capped and updates are
// clamped to the stock captured when the item entered the cart, never
// rejected with an error. The ledger owns copies of its items; later
// catalog changes do not reach into existing lines.
package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/shozoko/bookshop/catalog"
	"github.com/shozoko/bookshop/money"
	"github.com/shozoko/bookshop/order"
	"github.com/shozoko/bookshop/session"
)

// Line is one ledger entry: an item snapshot plus its quantity (>= 1).
type Line struct {
	Item     catalog.Item
	Quantity int
}

func (l Line) Subtotal() money.Money {
	return money.Money{Cents: l.Item.PriceCents}.Mul(l.Quantity)
}

// Events is the optional sink for checkout notifications. Nil publishes
// nothing.
type Events interface {
	PublishJSON(routingKey string, v any) error
}

// Engine mutations are synchronous and guarded by one mutex, so the total
// is always computed against the ledger state that produced it. Checkout is
// the only operation that blocks; callers are expected to serialize
// checkouts themselves — the engine snapshots the ledger at invocation.
type Engine struct {
	gate      session.Gate
	submitter order.Submitter
	events    Events
	log       zerolog.Logger

	mu    sync.Mutex
	lines []Line // insertion order, kept for display
}

type Option func(*Engine)

func WithLogger(l zerolog.Logger) Option { return func(e *Engine) { e.log = l } }
func WithEvents(ev Events) Option        { return func(e *Engine) { e.events = ev } }

func NewEngine(gate session.Gate, submitter order.Submitter, opts ...Option) *Engine {
	e := &Engine{gate: gate, submitter: submitter, log: zerolog.Nop()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// AddToCart adds one unit of the item. An existing line grows by one only
// while below the stock captured at add time; a new line requires stock > 0.
// Both limits cap silently.
func (e *Engine) AddToCart(item catalog.Item) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.lines {
		if e.lines[i].Item.ID == item.ID {
			if e.lines[i].Quantity < e.lines[i].Item.Stock {
				e.lines[i].Quantity++
			}
			return
		}
	}
	if item.Stock > 0 {
		e.lines = append(e.lines, Line{Item: item, Quantity: 1})
	}
}

// UpdateQuantity sets a line's quantity. quantity <= 0 removes the line;
// anything above the captured stock clamps to it.
func (e *Engine) UpdateQuantity(itemID string, quantity int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if quantity <= 0 {
		e.removeLocked(itemID)
		return
	}
	for i := range e.lines {
		if e.lines[i].Item.ID == itemID {
			maxQty := e.lines[i].Item.Stock
			if maxQty < 0 {
				maxQty = 0
			}
			if quantity > maxQty {
				quantity = maxQty
			}
			if quantity < 1 {
				// Stock 0 lines cannot exist via AddToCart; drop rather
				// than keep a zero-quantity line.
				e.removeLocked(itemID)
				return
			}
			e.lines[i].Quantity = quantity
			return
		}
	}
}

// RemoveFromCart deletes the line entirely. Idempotent.
func (e *Engine) RemoveFromCart(itemID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.removeLocked(itemID)
}

// Clear empties the ledger unconditionally; also used on logout.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lines = nil
}

// Items returns a copy of the ledger in insertion order.
func (e *Engine) Items() []Line {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Line, len(e.lines))
	copy(out, e.lines)
	return out
}

// TotalPrice is the sum of per-line subtotals, computed atomically with
// respect to ledger mutations.
func (e *Engine) TotalPrice() money.Money {
	e.mu.Lock()
	defer e.mu.Unlock()
	var total money.Money
	for _, l := range e.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Checkout submits the current ledger as one order, at most once per call.
// Validation short-circuits in a fixed order: session, empty ledger, id
// representability (aborting the whole checkout on the first bad id),
// silent drop of non-positive quantities, then submission. On failure the
// ledger is left exactly as it was; on success it is cleared before the
// success callback runs. Exactly one of the callbacks is invoked.
func (e *Engine) Checkout(ctx context.Context, onSuccess func(order.Response), onError func(CheckoutError)) {
	userID, ok := e.gate.CurrentUserID()
	if !ok {
		onError(CheckoutError{Kind: Unauthenticated, Message: "you must sign in to buy"})
		return
	}

	snapshot := e.Items()
	if len(snapshot) == 0 {
		onError(CheckoutError{Kind: EmptyCart, Message: "the cart is empty"})
		return
	}

	lines := make([]order.ItemRequest, 0, len(snapshot))
	for _, l := range snapshot {
		bookID, ok := catalog.ParseID(l.Item.ID)
		if !ok {
			onError(CheckoutError{
				Kind:    InvalidItemReference,
				Message: fmt.Sprintf("invalid book id: %s", l.Item.ID),
			})
			return
		}
		if l.Quantity <= 0 {
			continue
		}
		lines = append(lines, order.ItemRequest{BookID: bookID, Quantity: l.Quantity})
	}
	if len(lines) == 0 {
		onError(CheckoutError{Kind: NoValidItems, Message: "no valid items in the cart"})
		return
	}

	req := order.Request{UserID: userID, Items: lines}
	resp, err := e.submitter.Submit(ctx, req)
	if err != nil {
		e.log.Warn().Err(err).Int64("user_id", userID).Msg("checkout failed")
		onError(CheckoutError{Kind: CheckoutFailed, Message: "could not complete the purchase"})
		return
	}

	// The backend has decremented stock; the ledger must not survive.
	e.Clear()
	e.publishCompleted(userID, resp)
	e.log.Info().Int64("order_id", resp.OrderID).Int("lines", len(lines)).Msg("checkout completed")
	onSuccess(resp)
}

func (e *Engine) removeLocked(itemID string) {
	for i := range e.lines {
		if e.lines[i].Item.ID == itemID {
			e.lines = append(e.lines[:i], e.lines[i+1:]...)
			return
		}
	}
}

func (e *Engine) publishCompleted(userID int64, resp order.Response) {
	if e.events == nil {
		return
	}
	payload := map[string]int64{"orderId": resp.OrderID, "userId": userID}
	if err := e.events.PublishJSON("cart.checkout.completed", payload); err != nil {
		e.log.Warn().Err(err).Msg("event publish failed")
	}
}
