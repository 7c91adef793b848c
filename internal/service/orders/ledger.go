package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/monashmerchant/shop/internal/events"
	"github.com/monashmerchant/shop/internal/models"
	"github.com/monashmerchant/shop/internal/store"
	"github.com/monashmerchant/shop/pkg/logging"
)

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("order not found")
)

// Ledger is the append-only order collection. Ids are sequential and
// never reused; deletion is not supported.
type Ledger struct {
	store    store.Store
	producer *events.Producer

	mu   sync.RWMutex
	byID map[string]models.Order
	seq  []string
}

func NewLedger(ctx context.Context, st store.Store, producer *events.Producer) (*Ledger, error) {
	raw, err := st.Load(ctx, store.Orders)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.Order, len(raw))
	seq := make([]string, 0, len(raw))
	for id, v := range raw {
		var o models.Order
		if err := json.Unmarshal(v, &o); err != nil {
			return nil, fmt.Errorf("decode order %s: %w", id, err)
		}
		byID[id] = o
		seq = append(seq, id)
	}
	// Ids are strconv(count+1), so numeric order is insertion order.
	sort.Slice(seq, func(i, j int) bool {
		a, _ := strconv.Atoi(seq[i])
		b, _ := strconv.Atoi(seq[j])
		return a < b
	})

	return &Ledger{store: st, producer: producer, byID: byID, seq: seq}, nil
}

// Create appends a new Pending order and persists the collection. On
// persistence failure the order still exists in memory and is returned
// together with the wrapped error; nothing is rolled back.
func (l *Ledger) Create(ctx context.Context, userEmail string, lines []models.OrderLine, total decimal.Decimal) (*models.Order, error) {
	l.mu.Lock()
	order := models.Order{
		ID:        strconv.Itoa(len(l.byID) + 1),
		UserEmail: userEmail,
		Lines:     lines,
		Total:     total,
		Status:    models.StatusPending,
		CreatedAt: time.Now().Format(models.TimeLayout),
	}
	l.byID[order.ID] = order
	l.seq = append(l.seq, order.ID)
	l.mu.Unlock()

	return &order, l.flush(ctx)
}

func (l *Ledger) Get(id string) (models.Order, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	o, ok := l.byID[id]
	return o, ok
}

// List returns orders in insertion order, filtered by user email when
// one is given.
func (l *Ledger) List(userEmail string) []models.Order {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.Order, 0, len(l.seq))
	for _, id := range l.seq {
		o := l.byID[id]
		if userEmail != "" && o.UserEmail != userEmail {
			continue
		}
		out = append(out, o)
	}
	return out
}

// SetStatus validates enum membership only; the status graph is not
// enforced beyond that.
func (l *Ledger) SetStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	l.mu.Lock()
	o, ok := l.byID[id]
	if !ok {
		l.mu.Unlock()
		return nil, ErrNotFound
	}
	o.Status = status
	l.byID[id] = o
	l.mu.Unlock()

	if err := l.producer.Publish(ctx, events.TypeOrderStatusChanged, id, map[string]any{
		"order_id": id,
		"status":   status,
	}); err != nil {
		logging.FromContext(ctx).Warn("event_publish_error", "error", err)
	}

	return &o, l.flush(ctx)
}

func (l *Ledger) flush(ctx context.Context) error {
	l.mu.RLock()
	records := make(map[string]json.RawMessage, len(l.byID))
	for id, o := range l.byID {
		data, err := json.Marshal(o)
		if err != nil {
			l.mu.RUnlock()
			return fmt.Errorf("encode order %s: %w", id, err)
		}
		records[id] = data
	}
	l.mu.RUnlock()

	if err := l.store.Save(ctx, store.Orders, records); err != nil {
		return fmt.Errorf("%w: %v", store.ErrPersistence, err)
	}
	return nil
}
