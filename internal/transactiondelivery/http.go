// Package transactiondelivery manages delivery layer of transactions.
package transactiondelivery

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-finance/internal/domain"
	"github.com/go-petr/pet-finance/internal/middleware"
	"github.com/go-petr/pet-finance/internal/transactionservice"
	"github.com/go-petr/pet-finance/pkg/errorspkg"
	"github.com/go-petr/pet-finance/pkg/moneypkg"
	"github.com/go-petr/pet-finance/pkg/web"
)

// Service provides service layer interface needed by transaction delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transactiondelivery
type Service interface {
	Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error)
	Get(ctx context.Context, ownerID string, id uuid.UUID) (domain.Transaction, error)
	List(ctx context.Context, arg domain.ListTransactionsParams, pageSize, pageID int32) ([]domain.Transaction, error)
	Update(ctx context.Context, ownerID string, id uuid.UUID, arg domain.UpdateTransactionParams) (domain.Transaction, error)
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
	MonthlySummary(ctx context.Context, ownerID string, year int, month time.Month) (domain.MonthlySummary, error)
}

// Handler facilitates transaction delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transaction handler.
func NewHandler(ts Service) Handler {
	return Handler{service: ts}
}

type data struct {
	Transaction domain.Transaction `json:"transaction"`
}
type response struct {
	Data data `json:"data,omitempty"`
}

func respondError(gctx *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrCategoryNotFound):
		gctx.JSON(http.StatusNotFound, web.Error(err))
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidTransactionType),
		errors.Is(err, domain.ErrTransferDestinationRequired),
		errors.Is(err, domain.ErrTransferSameAccount),
		errors.Is(err, domain.ErrUnexpectedDestination),
		errors.Is(err, domain.ErrOwnerNotFound),
		errors.Is(err, transactionservice.ErrInvalidMonth):
		gctx.JSON(http.StatusBadRequest, web.Error(err))
	default:
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}

func nullUUID(s string) uuid.NullUUID {
	if s == "" {
		return uuid.NullUUID{}
	}

	return uuid.NullUUID{UUID: uuid.MustParse(s), Valid: true}
}

type createRequest struct {
	Type        string    `json:"type" binding:"required,oneof=INCOME EXPENSE TRANSFER"`
	Amount      string    `json:"amount" binding:"required,amount"`
	AccountID   string    `json:"account_id" binding:"required,uuid"`
	ToAccountID string    `json:"to_account_id" binding:"omitempty,uuid"`
	CategoryID  string    `json:"category_id" binding:"omitempty,uuid"`
	Date        time.Time `json:"date"`
	Description string    `json:"description" binding:"max=500"`
	Notes       string    `json:"notes" binding:"max=1000"`
}

// Create handles http request to create transaction.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindErrorMsg(err)})

		return
	}

	t, err := h.service.Create(ctx, domain.CreateTransactionParams{
		OwnerID:     middleware.UserID(gctx),
		Type:        domain.TransactionType(req.Type),
		Amount:      moneypkg.MustParse(req.Amount),
		AccountID:   uuid.MustParse(req.AccountID),
		ToAccountID: nullUUID(req.ToAccountID),
		CategoryID:  nullUUID(req.CategoryID),
		Date:        req.Date,
		Description: req.Description,
		Notes:       req.Notes,
	})
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{t}})
}

type idRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

func bindID(gctx *gin.Context) (uuid.UUID, bool) {
	var req idRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		zerolog.Ctx(gctx.Request.Context()).Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindErrorMsg(err)})

		return uuid.Nil, false
	}

	return uuid.MustParse(req.ID), true
}

// Get handles http request to get transaction.
func (h *Handler) Get(gctx *gin.Context) {
	id, ok := bindID(gctx)
	if !ok {
		return
	}

	t, err := h.service.Get(gctx.Request.Context(), middleware.UserID(gctx), id)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{t}})
}

type listRequest struct {
	PageID    int32     `form:"page_id" binding:"required,min=1"`
	PageSize  int32     `form:"page_size" binding:"required,min=1,max=100"`
	AccountID string    `form:"account_id" binding:"omitempty,uuid"`
	From      time.Time `form:"from" time_format:"2006-01-02" time_utc:"1"`
	To        time.Time `form:"to" time_format:"2006-01-02" time_utc:"1"`
}

type dataTransactions struct {
	Transactions []domain.Transaction `json:"transactions"`
}
type responseTransactions struct {
	Data dataTransactions `json:"data,omitempty"`
}

// List handles http request to list transactions, optionally filtered by
// account and date range.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindErrorMsg(err)})

		return
	}

	arg := domain.ListTransactionsParams{
		OwnerID:   middleware.UserID(gctx),
		AccountID: nullUUID(req.AccountID),
		From:      req.From,
		To:        req.To,
	}

	transactions, err := h.service.List(ctx, arg, req.PageSize, req.PageID)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, responseTransactions{Data: dataTransactions{transactions}})
}

type updateRequest struct {
	Type           *string    `json:"type" binding:"omitempty,oneof=INCOME EXPENSE TRANSFER"`
	Amount         *string    `json:"amount" binding:"omitempty,amount"`
	AccountID      *string    `json:"account_id" binding:"omitempty,uuid"`
	ToAccountID    *string    `json:"to_account_id" binding:"omitempty,uuid"`
	ClearToAccount bool       `json:"clear_to_account"`
	CategoryID     *string    `json:"category_id" binding:"omitempty,uuid"`
	Date           *time.Time `json:"date"`
	Description    *string    `json:"description" binding:"omitempty,max=500"`
	Notes          *string    `json:"notes" binding:"omitempty,max=1000"`
}

func (r updateRequest) params() domain.UpdateTransactionParams {
	arg := domain.UpdateTransactionParams{
		ClearToAccount: r.ClearToAccount,
		Date:           r.Date,
		Description:    r.Description,
		Notes:          r.Notes,
	}

	if r.Type != nil {
		t := domain.TransactionType(*r.Type)
		arg.Type = &t
	}

	if r.Amount != nil {
		a := moneypkg.MustParse(*r.Amount)
		arg.Amount = &a
	}

	parseID := func(s *string) *uuid.UUID {
		if s == nil {
			return nil
		}

		id := uuid.MustParse(*s)

		return &id
	}

	arg.AccountID = parseID(r.AccountID)
	arg.ToAccountID = parseID(r.ToAccountID)
	arg.CategoryID = parseID(r.CategoryID)

	return arg
}

// Update handles http request to update transaction.
func (h *Handler) Update(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	id, ok := bindID(gctx)
	if !ok {
		return
	}

	var req updateRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindErrorMsg(err)})

		return
	}

	t, err := h.service.Update(ctx, middleware.UserID(gctx), id, req.params())
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{t}})
}

// Delete handles http request to delete transaction.
func (h *Handler) Delete(gctx *gin.Context) {
	id, ok := bindID(gctx)
	if !ok {
		return
	}

	if err := h.service.Delete(gctx.Request.Context(), middleware.UserID(gctx), id); err != nil {
		respondError(gctx, err)
		return
	}

	gctx.Status(http.StatusNoContent)
}

type summaryRequest struct {
	Year  int `form:"year" binding:"required,min=1970,max=9999"`
	Month int `form:"month" binding:"required,min=1,max=12"`
}

type dataSummary struct {
	Summary    domain.MonthlySummary `json:"summary"`
	OverBudget []uuid.UUID           `json:"over_budget"`
	Alerts     []domain.BudgetAlert  `json:"alerts"`
	Split      domain.BudgetSplit    `json:"split"`
}
type responseSummary struct {
	Data dataSummary `json:"data,omitempty"`
}

// Summary handles http request to summarize a month of transactions.
func (h *Handler) Summary(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req summaryRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindErrorMsg(err)})

		return
	}

	summary, err := h.service.MonthlySummary(ctx, middleware.UserID(gctx), req.Year, time.Month(req.Month))
	if err != nil {
		respondError(gctx, err)
		return
	}

	overBudget := []uuid.UUID{}

	for _, c := range summary.Categories {
		if c.OverBudget() {
			overBudget = append(overBudget, c.CategoryID)
		}
	}

	gctx.JSON(http.StatusOK, responseSummary{Data: dataSummary{
		Summary:    summary,
		OverBudget: overBudget,
		Alerts:     summary.Alerts(),
		Split:      summary.Split(),
	}})
}
