package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/monashmerchant/shop/internal/cart"
	"github.com/monashmerchant/shop/internal/events"
	"github.com/monashmerchant/shop/internal/models"
	"github.com/monashmerchant/shop/internal/repo"
	"github.com/monashmerchant/shop/internal/service/account"
	"github.com/monashmerchant/shop/internal/service/catalog"
	"github.com/monashmerchant/shop/internal/service/checkout"
	"github.com/monashmerchant/shop/internal/service/orders"
	"github.com/monashmerchant/shop/internal/service/promo"
	"github.com/monashmerchant/shop/internal/store/storetest"
)

const (
	studentEmail = "alex.tan@student.monash.edu"
	shopperEmail = "casey.morgan@gmail.com"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type testEnv struct {
	t *testing.T
	e *echo.Echo

	st       *storetest.Mem
	users    *repo.UserRepo
	products *repo.ProductRepo
	codes    *repo.PromoRepo
	carts    *cart.Sessions
	ledger   *orders.Ledger

	deps *Deps
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	st := storetest.New()

	users, err := repo.NewUserRepo(ctx, st)
	require.NoError(t, err)
	products, err := repo.NewProductRepo(ctx, st)
	require.NoError(t, err)
	codes, err := repo.NewPromoRepo(ctx, st)
	require.NoError(t, err)

	producer := events.NewProducer(nil, "")
	ledger, err := orders.NewLedger(ctx, st, producer)
	require.NoError(t, err)

	carts := cart.NewSessions()
	engine := &promo.Engine{Codes: codes}

	deps := &Deps{
		Store: st,
		Cart:  &CartHTTP{Carts: carts, Products: products, Users: users},
		Checkout: &CheckoutHTTP{Svc: &checkout.Service{
			Users:    users,
			Products: products,
			Promos:   engine,
			Carts:    carts,
			Ledger:   ledger,
			Producer: producer,
		}},
		Orders:  &OrdersHTTP{Ledger: ledger},
		Account: &AccountHTTP{Svc: &account.Service{Users: users, Producer: producer}},
		Catalog: &CatalogHTTP{Svc: &catalog.Service{Products: products}},
		Promo:   &PromoHTTP{Engine: engine},
		Search:  &SearchHTTP{},
	}

	return &testEnv{
		t:        t,
		e:        echo.New(),
		st:       st,
		users:    users,
		products: products,
		codes:    codes,
		carts:    carts,
		ledger:   ledger,
		deps:     deps,
	}
}

// doJSON builds a request context for direct handler invocation. An
// empty email leaves the identity header off.
func (env *testEnv) doJSON(method, path string, body any, email string) (*httptest.ResponseRecorder, echo.Context) {
	env.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if email != "" {
		req.Header.Set(HeaderUserEmail, email)
	}

	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)
	return rec, c
}

func (env *testEnv) addUser(email, balance string, vip bool) {
	env.t.Helper()
	u := models.User{Email: email, Name: "Test User", Balance: dec(balance)}
	if vip {
		u.VIP = true
		u.VIPExpiresAt = time.Now().AddDate(1, 0, 0)
	}
	require.NoError(env.t, env.users.Put(context.Background(), u))
}

func (env *testEnv) addProduct(id, name, price, memberPrice string, qty int) {
	env.t.Helper()
	require.NoError(env.t, env.products.Put(context.Background(), models.Product{
		ID:          id,
		Name:        name,
		Category:    "household",
		Price:       dec(price),
		MemberPrice: dec(memberPrice),
		Quantity:    qty,
	}))
}

func (env *testEnv) addCode(pc models.PromoCode) {
	env.t.Helper()
	require.NoError(env.t, env.codes.Put(context.Background(), pc))
}

// requireHTTPError asserts a handler rejected the request with the
// given status.
func requireHTTPError(t *testing.T, err error, status int) *echo.HTTPError {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, status, he.Code)
	return he
}
