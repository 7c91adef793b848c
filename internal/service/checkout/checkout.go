package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/monashmerchant/shop/internal/cart"
	"github.com/monashmerchant/shop/internal/events"
	"github.com/monashmerchant/shop/internal/models"
	"github.com/monashmerchant/shop/internal/repo"
	"github.com/monashmerchant/shop/internal/service/delivery"
	"github.com/monashmerchant/shop/internal/service/orders"
	"github.com/monashmerchant/shop/internal/service/pricing"
	"github.com/monashmerchant/shop/internal/service/promo"
	"github.com/monashmerchant/shop/internal/transport"
	"github.com/monashmerchant/shop/pkg/logging"
)

var (
	ErrValidation        = errors.New("validation")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrState             = errors.New("checkout step out of order")
)

type State int

const (
	StateIdle State = iota
	StateModeSelected
	StatePriced
	StateDiscountResolved
	StateFundsChecked
	StateConfirmed
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateModeSelected:
		return "mode_selected"
	case StatePriced:
		return "priced"
	case StateDiscountResolved:
		return "discount_resolved"
	case StateFundsChecked:
		return "funds_checked"
	case StateConfirmed:
		return "confirmed"
	case StateAborted:
		return "aborted"
	}
	return "unknown"
}

// Checkout walks one order through
// Idle -> ModeSelected -> Priced -> DiscountResolved -> FundsChecked
// and ends Confirmed or Aborted. Steps must run in order; a failed run
// is retried only by starting over from Idle.
type Checkout struct {
	user   models.User
	cart   *cart.Cart
	now    time.Time
	member bool
	monash bool

	state   State
	pickup  bool
	store   *delivery.Store
	address string

	lines    []models.OrderLine
	subtotal decimal.Decimal

	promo    *promo.Result
	promoErr error
	rate     decimal.Decimal
	source   string
	fee      decimal.Decimal
	discount decimal.Decimal
	total    decimal.Decimal
}

// Begin snapshots the user's membership flags against now. Later user
// mutations do not affect this run.
func Begin(user models.User, crt *cart.Cart, now time.Time) *Checkout {
	return &Checkout{
		user:   user,
		cart:   crt,
		now:    now,
		member: user.IsVIP(now),
		monash: user.IsMonash(),
		state:  StateIdle,
	}
}

func (co *Checkout) State() State { return co.state }

func (co *Checkout) requireState(want State) error {
	if co.state != want {
		return fmt.Errorf("%w: in %s, expected %s", ErrState, co.state, want)
	}
	return nil
}

// SelectMode moves Idle -> ModeSelected. Pickup takes a store index,
// delivery takes an address. An empty cart never enters the machine.
func (co *Checkout) SelectMode(pickup bool, storeIndex int, address string) error {
	if err := co.requireState(StateIdle); err != nil {
		return err
	}
	if co.cart.Len() == 0 {
		return fmt.Errorf("%w: cart is empty", ErrValidation)
	}

	if pickup {
		st, err := delivery.StoreAt(storeIndex)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		co.store = &st
	} else {
		address = strings.TrimSpace(address)
		if address == "" {
			return fmt.Errorf("%w: delivery address required", ErrValidation)
		}
		co.address = address
	}

	co.pickup = pickup
	co.state = StateModeSelected
	return nil
}

// Price moves ModeSelected -> Priced, snapshotting names and unit
// prices so later catalog changes cannot touch this order.
func (co *Checkout) Price(lookup func(string) (models.Product, bool)) error {
	if err := co.requireState(StateModeSelected); err != nil {
		return err
	}

	lines, subtotal, err := pricing.Itemize(co.cart.Lines(), lookup, co.member)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	co.lines = lines
	co.subtotal = subtotal
	co.state = StatePriced
	return nil
}

// ResolveDiscount moves Priced -> DiscountResolved. A rejected promo
// code is not fatal: the reason is kept for the quote and the run
// continues with discount zero. The membership pickup discount is
// evaluated strictly after promotion validation and is suppressed by
// any granted promotion.
func (co *Checkout) ResolveDiscount(engine *promo.Engine, code string) error {
	if err := co.requireState(StatePriced); err != nil {
		return err
	}

	if strings.TrimSpace(code) != "" {
		res, err := engine.Validate(code, promo.Context{
			IsPickup:      co.pickup,
			IsFirstPickup: !co.user.FirstPickupUsed,
			IsVIP:         co.member,
			IsMonash:      co.monash,
			Subtotal:      co.subtotal,
		})
		if err != nil {
			co.promoErr = err
		} else {
			co.promo = res
			co.rate = res.Rate
			co.source = "promotion"
		}
	}

	if pickupRate := delivery.PickupDiscount(co.pickup, co.monash, co.rate); pickupRate.IsPositive() {
		co.rate = pickupRate
		co.source = "pickup"
	}
	co.fee = delivery.Fee(co.pickup, co.monash)

	co.state = StateDiscountResolved
	return nil
}

// CheckFunds moves DiscountResolved -> FundsChecked, or aborts when
// the balance cannot cover the final total. An aborted run leaves
// cart, stock and balance untouched.
func (co *Checkout) CheckFunds() error {
	if err := co.requireState(StateDiscountResolved); err != nil {
		return err
	}

	co.discount = co.subtotal.Mul(co.rate).Round(2)
	co.total = co.subtotal.Sub(co.discount).Add(co.fee)

	if co.user.Balance.LessThan(co.total) {
		co.state = StateAborted
		return fmt.Errorf("%w: balance $%s, total $%s",
			ErrInsufficientFunds, co.user.Balance.StringFixed(2), co.total.StringFixed(2))
	}

	co.state = StateFundsChecked
	return nil
}

// Abort is terminal unless the run already committed.
func (co *Checkout) Abort() {
	if co.state != StateConfirmed {
		co.state = StateAborted
	}
}

// Quote is the pricing breakdown of the run so far.
type Quote struct {
	Lines         []models.OrderLine
	Subtotal      decimal.Decimal
	DiscountRate  decimal.Decimal
	DiscountFrom  string
	Discount      decimal.Decimal
	Fee           decimal.Decimal
	Total         decimal.Decimal
	PromoCode     string
	PromoRejected string
	Pickup        bool
	Store         *delivery.Store
	Address       string
}

func (co *Checkout) Quote() Quote {
	q := Quote{
		Lines:        co.lines,
		Subtotal:     co.subtotal,
		DiscountRate: co.rate,
		DiscountFrom: co.source,
		Discount:     co.discount,
		Fee:          co.fee,
		Total:        co.total,
		Pickup:       co.pickup,
		Store:        co.store,
		Address:      co.address,
	}
	if co.promo != nil {
		q.PromoCode = co.promo.Code
	}
	if co.promoErr != nil {
		q.PromoRejected = co.promoErr.Error()
	}
	return q
}

// Outcome is the result of one checkout run.
type Outcome struct {
	State   State
	Quote   Quote
	Order   *models.Order
	Warning string
}

// Service drives the machine end to end. The mutex serializes the
// price-to-commit window: checkout is the only writer of inventory
// and balance.
type Service struct {
	Users    *repo.UserRepo
	Products *repo.ProductRepo
	Promos   *promo.Engine
	Carts    *cart.Sessions
	Ledger   *orders.Ledger
	Producer *events.Producer

	mu sync.Mutex
}

// Run executes one full checkout for the user's cart. Unconfirmed
// runs abort after the funds check and return the quote with the cart
// preserved; confirmed runs commit.
func (s *Service) Run(ctx context.Context, email string, req transport.CheckoutRequest) (*Outcome, error) {
	user, ok := s.Users.Get(email)
	if !ok {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, email)
	}
	crt := s.Carts.Cart(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	co := Begin(user, crt, time.Now())

	if err := co.SelectMode(req.Pickup, req.StoreIndex, req.Address); err != nil {
		return nil, err
	}
	if err := co.Price(s.Products.Get); err != nil {
		return nil, err
	}
	if err := co.ResolveDiscount(s.Promos, req.PromoCode); err != nil {
		return nil, err
	}
	if err := co.CheckFunds(); err != nil {
		return nil, err
	}

	if !req.Confirmed {
		co.Abort()
		return &Outcome{State: co.state, Quote: co.Quote()}, nil
	}

	return s.commit(ctx, co, crt)
}

// commit applies the FundsChecked -> Confirmed transition: deduct
// balance, decrement inventory, append the order, clear the cart.
// Persistence failures after the in-memory mutations surface as
// warnings, never as rollbacks.
func (s *Service) commit(ctx context.Context, co *Checkout, crt *cart.Cart) (*Outcome, error) {
	if err := co.requireState(StateFundsChecked); err != nil {
		return nil, err
	}
	l := logging.FromContext(ctx)
	var warnings []string

	mark := co.promo != nil && co.promo.MarkFirstPickup
	if err := s.Users.Update(ctx, co.user.Email, func(u *models.User) {
		u.Balance = u.Balance.Sub(co.total)
		if mark && !u.FirstPickupUsed {
			u.FirstPickupUsed = true
			u.AddEvent(co.now, models.EventFirstPickupUsed, co.promo.Code)
		}
	}); err != nil {
		l.Warn("checkout_persist_warning", "collection", "users", "error", err)
		warnings = append(warnings, "balance change not persisted")
	}

	deltas := make(map[string]int, len(co.lines))
	for _, ln := range co.lines {
		deltas[ln.ProductID] = ln.Quantity
	}
	if err := s.Products.Decrement(ctx, deltas); err != nil {
		l.Warn("checkout_persist_warning", "collection", "products", "error", err)
		warnings = append(warnings, "inventory change not persisted")
	}

	order, err := s.Ledger.Create(ctx, co.user.Email, co.lines, co.total)
	if err != nil {
		l.Warn("checkout_persist_warning", "collection", "orders", "error", err)
		warnings = append(warnings, "order record not persisted")
	}

	crt.Clear()
	co.state = StateConfirmed

	if err := s.Producer.Publish(ctx, events.TypeOrderCreated, order.ID, order); err != nil {
		l.Warn("event_publish_error", "error", err)
	}

	return &Outcome{
		State:   StateConfirmed,
		Quote:   co.Quote(),
		Order:   order,
		Warning: strings.Join(warnings, "; "),
	}, nil
}
