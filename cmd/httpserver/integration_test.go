//go:build integration

package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-finance/cmd/httpserver"
	"github.com/go-petr/pet-finance/internal/balancekeeper"
	"github.com/go-petr/pet-finance/internal/dispatcher"
	"github.com/go-petr/pet-finance/internal/domain"
	"github.com/go-petr/pet-finance/internal/eventrepo"
	"github.com/go-petr/pet-finance/internal/integrationtest"
	"github.com/go-petr/pet-finance/internal/middleware"
	"github.com/go-petr/pet-finance/internal/profilerepo"
	"github.com/go-petr/pet-finance/internal/recurring"
	"github.com/go-petr/pet-finance/internal/recurringrepo"
	"github.com/go-petr/pet-finance/pkg/moneypkg"
	"github.com/go-petr/pet-finance/pkg/randompkg"
	"github.com/go-petr/pet-finance/pkg/web"
)

type client struct {
	t      *testing.T
	server *httpserver.Server
	userID string
}

func (c client) do(method, url string, body any, out any) int {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, url, &buf)
	require.NoError(c.t, middleware.AddAuthorization(req, c.server.TokenMaker, middleware.AuthTypeBearer, c.userID, time.Minute))

	recorder := httptest.NewRecorder()
	c.server.ServeHTTP(recorder, req)

	if out != nil && recorder.Body.Len() > 0 {
		require.NoError(c.t, json.NewDecoder(recorder.Body).Decode(&web.Response{Data: out}))
	}

	return recorder.Code
}

func (c client) balance(id string) moneypkg.Amount {
	c.t.Helper()

	var got struct {
		Account domain.Account `json:"account"`
	}

	require.Equal(c.t, http.StatusOK, c.do(http.MethodGet, "/accounts/"+id, nil, &got))

	return got.Account.CurrentBalance
}

func drain(t *testing.T, server *httpserver.Server) {
	t.Helper()

	d := dispatcher.New(
		eventrepo.NewRepoPGS(server.DB),
		balancekeeper.New(balancekeeper.NewStorePGS(server.DB)),
		dispatcher.Config{BatchSize: 100, MaxAttempts: 10},
	)

	_, err := d.Poll(context.Background())
	require.NoError(t, err)
}

func setup(t *testing.T) client {
	server := integrationtest.SetupServer(t, "../../configs")
	c := client{t: t, server: server, userID: randompkg.UserID()}

	status := c.do(http.MethodPost, "/profile", map[string]any{
		"email":        randompkg.Email(),
		"display_name": randompkg.Name(),
	}, nil)
	require.Equal(t, http.StatusOK, status)

	return c
}

func createAccount(c client, balance string) string {
	c.t.Helper()

	var got struct {
		Account domain.Account `json:"account"`
	}

	status := c.do(http.MethodPost, "/accounts", map[string]any{
		"name":            randompkg.Name(),
		"type":            "BANK",
		"initial_balance": balance,
	}, &got)
	require.Equal(c.t, http.StatusOK, status)

	return got.Account.ID.String()
}

func TestExpenseLifecycle(t *testing.T) {
	c := setup(t)
	accountID := createAccount(c, "100.00")

	var created struct {
		Transaction domain.Transaction `json:"transaction"`
	}

	status := c.do(http.MethodPost, "/transactions", map[string]any{
		"type":       "EXPENSE",
		"amount":     "30.00",
		"account_id": accountID,
	}, &created)
	require.Equal(t, http.StatusOK, status)

	drain(t, c.server)
	require.Equal(t, moneypkg.MustParse("70.00"), c.balance(accountID))

	url := "/transactions/" + created.Transaction.ID.String()

	require.Equal(t, http.StatusOK, c.do(http.MethodPatch, url, map[string]any{"amount": "50.00"}, nil))
	drain(t, c.server)
	require.Equal(t, moneypkg.MustParse("50.00"), c.balance(accountID))

	require.Equal(t, http.StatusNoContent, c.do(http.MethodDelete, url, nil, nil))
	drain(t, c.server)
	require.Equal(t, moneypkg.MustParse("100.00"), c.balance(accountID))

	var reconciled struct {
		Consistent bool `json:"consistent"`
	}

	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/accounts/"+accountID+"/reconcile", nil, &reconciled))
	require.True(t, reconciled.Consistent)
}

func TestReconcileCountsOnlyAccountEvents(t *testing.T) {
	c := setup(t)
	wallet := createAccount(c, "100.00")
	savings := createAccount(c, "0")
	other := createAccount(c, "50.00")

	post := func(body map[string]any) {
		t.Helper()
		require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/transactions", body, nil))
	}

	post(map[string]any{"type": "EXPENSE", "amount": "10.00", "account_id": wallet})
	post(map[string]any{"type": "TRANSFER", "amount": "20.00", "account_id": wallet, "to_account_id": savings})
	post(map[string]any{"type": "INCOME", "amount": "5.00", "account_id": other})

	pending := func(accountID string) int64 {
		t.Helper()

		var got struct {
			Reconciliation domain.Reconciliation `json:"reconciliation"`
		}

		require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/accounts/"+accountID+"/reconcile", nil, &got))

		return got.Reconciliation.PendingEvents
	}

	require.EqualValues(t, 2, pending(wallet))
	require.EqualValues(t, 1, pending(savings))
	require.EqualValues(t, 1, pending(other))

	drain(t, c.server)

	require.Zero(t, pending(wallet))
	require.Zero(t, pending(savings))
	require.Zero(t, pending(other))
}

func TestTransferLifecycle(t *testing.T) {
	c := setup(t)
	from := createAccount(c, "500.00")
	to := createAccount(c, "0")

	var created struct {
		Transaction domain.Transaction `json:"transaction"`
	}

	status := c.do(http.MethodPost, "/transactions", map[string]any{
		"type":          "TRANSFER",
		"amount":        "120.00",
		"account_id":    from,
		"to_account_id": to,
	}, &created)
	require.Equal(t, http.StatusOK, status)

	drain(t, c.server)
	require.Equal(t, moneypkg.MustParse("380.00"), c.balance(from))
	require.Equal(t, moneypkg.MustParse("120.00"), c.balance(to))

	require.Equal(t, http.StatusNoContent, c.do(http.MethodDelete, "/transactions/"+created.Transaction.ID.String(), nil, nil))
	drain(t, c.server)
	require.Equal(t, moneypkg.MustParse("500.00"), c.balance(from))
	require.Equal(t, moneypkg.MustParse("0.00"), c.balance(to))
}

func TestRecurringRuleRunsOncePerDay(t *testing.T) {
	c := setup(t)
	accountID := createAccount(c, "1000.00")
	now := time.Now().UTC()

	status := c.do(http.MethodPost, "/recurring-rules", map[string]any{
		"name":         "Gym",
		"amount":       "40.00",
		"type":         "EXPENSE",
		"day_of_month": now.Day(),
		"account_id":   accountID,
	}, nil)
	require.Equal(t, http.StatusOK, status)

	m := recurring.New(profilerepo.NewRepoPGS(c.server.DB), recurringrepo.NewRepoPGS(c.server.DB))

	first, err := m.Run(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, 1, first.Created)

	second, err := m.Run(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, 0, second.Created)
	require.Equal(t, 1, second.Skipped)

	drain(t, c.server)
	require.Equal(t, moneypkg.MustParse("960.00"), c.balance(accountID))
}

func TestGoalContribution(t *testing.T) {
	c := setup(t)
	accountID := createAccount(c, "300.00")

	var created struct {
		Goal struct {
			ID string `json:"id"`
		} `json:"goal"`
	}

	status := c.do(http.MethodPost, "/goals", map[string]any{
		"name":          "Bike",
		"target_amount": "200.00",
		"target_date":   time.Now().AddDate(0, 6, 0).Format(time.DateOnly),
	}, &created)
	require.Equal(t, http.StatusOK, status)

	var contributed struct {
		Goal struct {
			CurrentAmount moneypkg.Amount `json:"current_amount"`
			Achieved      bool            `json:"achieved"`
		} `json:"goal"`
		Account domain.Account `json:"account"`
	}

	status = c.do(http.MethodPost, "/goals/"+created.Goal.ID+"/contribute", map[string]any{
		"account_id": accountID,
		"amount":     "200.00",
	}, &contributed)
	require.Equal(t, http.StatusOK, status)
	require.True(t, contributed.Goal.Achieved)
	require.Equal(t, moneypkg.MustParse("100.00"), contributed.Account.CurrentBalance)
	require.Equal(t, moneypkg.MustParse("100.00"), c.balance(accountID))
}
