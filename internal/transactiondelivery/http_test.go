package transactiondelivery

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"

	"github.com/go-petr/pet-finance/internal/domain"
	"github.com/go-petr/pet-finance/internal/middleware"
	"github.com/go-petr/pet-finance/internal/test"
	"github.com/go-petr/pet-finance/internal/transactionservice"
	"github.com/go-petr/pet-finance/pkg/errorspkg"
	"github.com/go-petr/pet-finance/pkg/moneypkg"
	"github.com/go-petr/pet-finance/pkg/randompkg"
	"github.com/go-petr/pet-finance/pkg/tokenpkg"
	"github.com/go-petr/pet-finance/pkg/web"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("amount", moneypkg.ValidAmount); err != nil {
			panic(err)
		}
	}

	os.Exit(m.Run())
}

func newServer(t *testing.T, service Service) (*gin.Engine, tokenpkg.Maker) {
	t.Helper()

	tokenMaker, err := tokenpkg.NewPasetoMaker(randompkg.String(32))
	if err != nil {
		t.Fatalf("tokenpkg.NewPasetoMaker returned error: %v", err)
	}

	h := NewHandler(service)

	server := gin.New()
	server.Use(middleware.AuthMiddleware(tokenMaker))
	server.POST("/transactions", h.Create)
	server.GET("/transactions", h.List)
	server.GET("/transactions/summary", h.Summary)
	server.GET("/transactions/:id", h.Get)
	server.PATCH("/transactions/:id", h.Update)
	server.DELETE("/transactions/:id", h.Delete)

	return server, tokenMaker
}

func TestCreate(t *testing.T) {
	userID := randompkg.UserID()
	account := test.RandomAccount(userID)
	transaction := test.RandomTransaction(userID, account.ID)
	toAccountID := uuid.New()

	testCases := []struct {
		name           string
		body           map[string]any
		buildStubs     func(transactionService *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "Expense",
			body: map[string]any{
				"type":        "EXPENSE",
				"amount":      "30.00",
				"account_id":  account.ID.String(),
				"date":        transaction.Date,
				"description": transaction.Description,
			},
			buildStubs: func(transactionService *MockService) {
				transactionService.EXPECT().
					Create(gomock.Any(), gomock.Eq(domain.CreateTransactionParams{
						OwnerID:     userID,
						Type:        domain.TransactionTypeExpense,
						Amount:      moneypkg.MustParse("30.00"),
						AccountID:   account.ID,
						Date:        transaction.Date,
						Description: transaction.Description,
					})).
					Times(1).
					Return(transaction, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "Transfer",
			body: map[string]any{
				"type":          "TRANSFER",
				"amount":        "12.50",
				"account_id":    account.ID.String(),
				"to_account_id": toAccountID.String(),
			},
			buildStubs: func(transactionService *MockService) {
				transactionService.EXPECT().
					Create(gomock.Any(), gomock.Eq(domain.CreateTransactionParams{
						OwnerID:     userID,
						Type:        domain.TransactionTypeTransfer,
						Amount:      moneypkg.MustParse("12.50"),
						AccountID:   account.ID,
						ToAccountID: uuid.NullUUID{UUID: toAccountID, Valid: true},
					})).
					Times(1).
					Return(transaction, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "NegativeAmount",
			body: map[string]any{
				"type":       "EXPENSE",
				"amount":     "-1",
				"account_id": account.ID.String(),
			},
			buildStubs: func(transactionService *MockService) {
				transactionService.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Amount must be a positive amount with at most 2 decimals",
		},
		{
			name: "DescriptionTooLong",
			body: map[string]any{
				"type":        "EXPENSE",
				"amount":      "1",
				"account_id":  account.ID.String(),
				"description": strings.Repeat("a", 501),
			},
			buildStubs: func(transactionService *MockService) {
				transactionService.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Description must be at most 500 characters long",
		},
		{
			name: "TransferSameAccount",
			body: map[string]any{
				"type":          "TRANSFER",
				"amount":        "5",
				"account_id":    account.ID.String(),
				"to_account_id": account.ID.String(),
			},
			buildStubs: func(transactionService *MockService) {
				transactionService.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Transaction{}, domain.ErrTransferSameAccount)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrTransferSameAccount.Error(),
		},
		{
			name: "AccountNotFound",
			body: map[string]any{
				"type":       "INCOME",
				"amount":     "5",
				"account_id": uuid.NewString(),
			},
			buildStubs: func(transactionService *MockService) {
				transactionService.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Transaction{}, domain.ErrAccountNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrAccountNotFound.Error(),
		},
		{
			name: "CategoryNotFound",
			body: map[string]any{
				"type":        "EXPENSE",
				"amount":      "5",
				"account_id":  uuid.NewString(),
				"category_id": uuid.NewString(),
			},
			buildStubs: func(transactionService *MockService) {
				transactionService.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Transaction{}, domain.ErrCategoryNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrCategoryNotFound.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			transactionService := NewMockService(ctrl)
			tc.buildStubs(transactionService)

			server, tokenMaker := newServer(t, transactionService)

			body, err := json.Marshal(tc.body)
			if err != nil {
				t.Fatalf("Encoding request body error: %v", err)
			}

			req, err := http.NewRequest(http.MethodPost, "/transactions", bytes.NewReader(body))
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			if err := middleware.AddAuthorization(req, tokenMaker, middleware.AuthTypeBearer, userID, time.Minute); err != nil {
				t.Fatalf("middleware.AddAuthorization returned error: %v", err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			got := &struct {
				Transaction domain.Transaction `json:"transaction"`
			}{}
			res := web.Response{Data: got}

			if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
				t.Fatalf("Decoding response body error: %v", err)
			}

			if res.Error != tc.wantError {
				t.Errorf(`resp.Error=%q, want %q`, res.Error, tc.wantError)
			}

			if tc.wantStatusCode == http.StatusOK {
				if diff := cmp.Diff(transaction, got.Transaction, cmpopts.EquateApproxTime(time.Second)); diff != "" {
					t.Errorf("transaction mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestRoutes(t *testing.T) {
	userID := randompkg.UserID()
	account := test.RandomAccount(userID)
	transaction := test.RandomTransaction(userID, account.ID)
	amount := moneypkg.MustParse("50.00")
	income := domain.TransactionTypeIncome

	testCases := []struct {
		name           string
		method         string
		url            string
		body           string
		buildStubs     func(transactionService *MockService)
		wantStatusCode int
	}{
		{
			name:   "Get",
			method: http.MethodGet,
			url:    "/transactions/" + transaction.ID.String(),
			buildStubs: func(transactionService *MockService) {
				transactionService.EXPECT().
					Get(gomock.Any(), gomock.Eq(userID), gomock.Eq(transaction.ID)).
					Times(1).
					Return(transaction, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:   "ListByAccountAndRange",
			method: http.MethodGet,
			url:    "/transactions?page_id=2&page_size=10&account_id=" + account.ID.String() + "&from=2024-03-01&to=2024-04-01",
			buildStubs: func(transactionService *MockService) {
				transactionService.EXPECT().
					List(gomock.Any(), gomock.Eq(domain.ListTransactionsParams{
						OwnerID:   userID,
						AccountID: uuid.NullUUID{UUID: account.ID, Valid: true},
						From:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
						To:        time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
					}), gomock.Eq(int32(10)), gomock.Eq(int32(2))).
					Times(1).
					Return([]domain.Transaction{transaction}, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:   "UpdateAmountAndType",
			method: http.MethodPatch,
			url:    "/transactions/" + transaction.ID.String(),
			body:   `{"amount":"50.00","type":"INCOME"}`,
			buildStubs: func(transactionService *MockService) {
				transactionService.EXPECT().
					Update(gomock.Any(), gomock.Eq(userID), gomock.Eq(transaction.ID),
						gomock.Eq(domain.UpdateTransactionParams{Amount: &amount, Type: &income})).
					Times(1).
					Return(transaction, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:   "UpdateNotFound",
			method: http.MethodPatch,
			url:    "/transactions/" + transaction.ID.String(),
			body:   `{"notes":"x"}`,
			buildStubs: func(transactionService *MockService) {
				transactionService.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Transaction{}, domain.ErrTransactionNotFound)
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:   "Delete",
			method: http.MethodDelete,
			url:    "/transactions/" + transaction.ID.String(),
			buildStubs: func(transactionService *MockService) {
				transactionService.EXPECT().
					Delete(gomock.Any(), gomock.Eq(userID), gomock.Eq(transaction.ID)).
					Times(1).
					Return(nil)
			},
			wantStatusCode: http.StatusNoContent,
		},
		{
			name:   "DeleteInternalError",
			method: http.MethodDelete,
			url:    "/transactions/" + transaction.ID.String(),
			buildStubs: func(transactionService *MockService) {
				transactionService.EXPECT().
					Delete(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(errorspkg.ErrInternal)
			},
			wantStatusCode: http.StatusInternalServerError,
		},
		{
			name:   "SummaryMissingMonth",
			method: http.MethodGet,
			url:    "/transactions/summary?year=2024",
			buildStubs: func(transactionService *MockService) {
				transactionService.EXPECT().MonthlySummary(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:   "SummaryInvalidMonth",
			method: http.MethodGet,
			url:    "/transactions/summary?year=2024&month=13",
			buildStubs: func(transactionService *MockService) {
				transactionService.EXPECT().MonthlySummary(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:   "SummaryServiceRejectsMonth",
			method: http.MethodGet,
			url:    "/transactions/summary?year=2024&month=3",
			buildStubs: func(transactionService *MockService) {
				transactionService.EXPECT().
					MonthlySummary(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.MonthlySummary{}, transactionservice.ErrInvalidMonth)
			},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			transactionService := NewMockService(ctrl)
			tc.buildStubs(transactionService)

			server, tokenMaker := newServer(t, transactionService)

			req, err := http.NewRequest(tc.method, tc.url, bytes.NewBufferString(tc.body))
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			if err := middleware.AddAuthorization(req, tokenMaker, middleware.AuthTypeBearer, userID, time.Minute); err != nil {
				t.Fatalf("middleware.AddAuthorization returned error: %v", err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := randompkg.UserID()
	groceries := uuid.New()
	dining := uuid.New()
	groceriesCap := moneypkg.MustParse("100.00")
	diningCap := moneypkg.Amount(0)

	summary := domain.MonthlySummary{
		Year:    2024,
		Month:   time.March,
		Income:  moneypkg.MustParse("1000.00"),
		Expense: moneypkg.MustParse("300.00"),
		Net:     moneypkg.MustParse("700.00"),
		Categories: []domain.CategorySpend{
			{
				CategoryID: groceries, Name: "Groceries", Type: domain.CategoryTypeNeeds,
				Spent: moneypkg.MustParse("150.00"), MonthlyBudgetCap: &groceriesCap,
			},
			{
				CategoryID: dining, Name: "Dining Out", Type: domain.CategoryTypeWants,
				Spent: moneypkg.MustParse("150.00"), MonthlyBudgetCap: &diningCap,
			},
		},
	}

	transactionService := NewMockService(ctrl)
	transactionService.EXPECT().
		MonthlySummary(gomock.Any(), gomock.Eq(userID), gomock.Eq(2024), gomock.Eq(time.March)).
		Times(1).
		Return(summary, nil)

	server, tokenMaker := newServer(t, transactionService)

	req, err := http.NewRequest(http.MethodGet, "/transactions/summary?year=2024&month=3", nil)
	if err != nil {
		t.Fatalf("Creating request error: %v", err)
	}

	if err := middleware.AddAuthorization(req, tokenMaker, middleware.AuthTypeBearer, userID, time.Minute); err != nil {
		t.Fatalf("middleware.AddAuthorization returned error: %v", err)
	}

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Status code: got %v, want %v", recorder.Code, http.StatusOK)
	}

	got := &struct {
		Summary    domain.MonthlySummary `json:"summary"`
		OverBudget []uuid.UUID           `json:"over_budget"`
		Alerts     []domain.BudgetAlert  `json:"alerts"`
		Split      domain.BudgetSplit    `json:"split"`
	}{}

	if err := json.NewDecoder(recorder.Body).Decode(&web.Response{Data: got}); err != nil {
		t.Fatalf("Decoding response body error: %v", err)
	}

	if diff := cmp.Diff(summary, got.Summary); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]uuid.UUID{groceries}, got.OverBudget); diff != "" {
		t.Errorf("over budget mismatch (-want +got):\n%s", diff)
	}

	wantAlerts := []domain.BudgetAlert{{
		CategoryID: groceries,
		Name:       "Groceries",
		Severity:   domain.SeverityOverspent,
		Spent:      moneypkg.MustParse("150.00"),
		Budget:     groceriesCap,
		Percentage: 150,
		Remaining:  moneypkg.MustParse("-50.00"),
	}}

	if diff := cmp.Diff(wantAlerts, got.Alerts); diff != "" {
		t.Errorf("alerts mismatch (-want +got):\n%s", diff)
	}

	wantSplit := domain.BudgetSplit{
		Income:  moneypkg.MustParse("1000.00"),
		Needs:   domain.SplitBucket{Target: moneypkg.MustParse("500.00"), Spent: moneypkg.MustParse("150.00")},
		Wants:   domain.SplitBucket{Target: moneypkg.MustParse("300.00"), Spent: moneypkg.MustParse("150.00")},
		Savings: domain.SplitBucket{Target: moneypkg.MustParse("200.00")},
	}

	if diff := cmp.Diff(wantSplit, got.Split); diff != "" {
		t.Errorf("split mismatch (-want +got):\n%s", diff)
	}
}
