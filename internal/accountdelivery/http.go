// Package accountdelivery manages delivery layer of accounts.
package accountdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-finance/internal/domain"
	"github.com/go-petr/pet-finance/internal/middleware"
	"github.com/go-petr/pet-finance/pkg/errorspkg"
	"github.com/go-petr/pet-finance/pkg/moneypkg"
	"github.com/go-petr/pet-finance/pkg/web"
)

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error)
	Get(ctx context.Context, ownerID string, id uuid.UUID) (domain.Account, error)
	List(ctx context.Context, ownerID string, includeArchived bool, pageSize, pageID int32) ([]domain.Account, error)
	Update(ctx context.Context, ownerID string, id uuid.UUID, arg domain.UpdateAccountParams) (domain.Account, error)
	Archive(ctx context.Context, ownerID string, id uuid.UUID) (domain.Account, error)
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
	Reconcile(ctx context.Context, ownerID string, id uuid.UUID) (domain.Reconciliation, error)
	NetWorth(ctx context.Context, ownerID string) (domain.NetWorth, error)
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns account handler.
func NewHandler(as Service) Handler {
	return Handler{service: as}
}

type data struct {
	Account domain.Account `json:"account"`
}
type response struct {
	Data data `json:"data,omitempty"`
}

func respondError(gctx *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		gctx.JSON(http.StatusNotFound, web.Error(err))
	case errors.Is(err, domain.ErrOwnerNotFound):
		gctx.JSON(http.StatusBadRequest, web.Error(err))
	case errors.Is(err, domain.ErrInvalidAccountType),
		errors.Is(err, moneypkg.ErrInvalidAmount),
		errors.Is(err, moneypkg.ErrTooPrecise):
		gctx.JSON(http.StatusBadRequest, web.Error(err))
	default:
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}

func parseBalance(s string) (moneypkg.Amount, error) {
	if s == "" {
		return moneypkg.Zero, nil
	}

	return moneypkg.Parse(s)
}

type createRequest struct {
	Name           string `json:"name" binding:"required,max=100"`
	Type           string `json:"type" binding:"required,oneof=CASH BANK MOBILE_MONEY SAVINGS"`
	InitialBalance string `json:"initial_balance" binding:"omitempty,numeric"`
	Currency       string `json:"currency" binding:"omitempty,currency"`
}

// Create handles http request to create account.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindErrorMsg(err)})

		return
	}

	balance, err := parseBalance(req.InitialBalance)
	if err != nil {
		l.Info().Err(err).Send()
		respondError(gctx, err)

		return
	}

	account, err := h.service.Create(ctx, domain.CreateAccountParams{
		OwnerID:        middleware.UserID(gctx),
		Name:           req.Name,
		Type:           domain.AccountType(req.Type),
		InitialBalance: balance,
		Currency:       req.Currency,
	})
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{account}})
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

// Get handles http request to get account.
func (h *Handler) Get(gctx *gin.Context) {
	id, ok := bindID(gctx)
	if !ok {
		return
	}

	account, err := h.service.Get(gctx.Request.Context(), middleware.UserID(gctx), id)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{account}})
}

type listRequest struct {
	PageID          int32 `form:"page_id" binding:"required,min=1"`
	PageSize        int32 `form:"page_size" binding:"required,min=1,max=100"`
	IncludeArchived bool  `form:"include_archived"`
}

type dataAccounts struct {
	Accounts []domain.Account `json:"accounts"`
}
type responseAccounts struct {
	Data dataAccounts `json:"data,omitempty"`
}

// List handles http request to list accounts.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindErrorMsg(err)})

		return
	}

	accounts, err := h.service.List(ctx, middleware.UserID(gctx), req.IncludeArchived, req.PageSize, req.PageID)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, responseAccounts{Data: dataAccounts{accounts}})
}

type updateRequest struct {
	Name           *string `json:"name" binding:"omitempty,min=1,max=100"`
	Type           *string `json:"type" binding:"omitempty,oneof=CASH BANK MOBILE_MONEY SAVINGS"`
	Currency       *string `json:"currency" binding:"omitempty,currency"`
	CurrentBalance *string `json:"current_balance" binding:"omitempty,numeric"`
}

// Update handles http request to update account details or edit its balance.
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

	arg := domain.UpdateAccountParams{
		Name:     req.Name,
		Currency: req.Currency,
	}

	if req.Type != nil {
		t := domain.AccountType(*req.Type)
		arg.Type = &t
	}

	if req.CurrentBalance != nil {
		balance, err := moneypkg.Parse(*req.CurrentBalance)
		if err != nil {
			l.Info().Err(err).Send()
			respondError(gctx, err)

			return
		}

		arg.CurrentBalance = &balance
	}

	account, err := h.service.Update(ctx, middleware.UserID(gctx), id, arg)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{account}})
}

// Archive handles http request to archive account.
func (h *Handler) Archive(gctx *gin.Context) {
	id, ok := bindID(gctx)
	if !ok {
		return
	}

	account, err := h.service.Archive(gctx.Request.Context(), middleware.UserID(gctx), id)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{account}})
}

// Delete handles http request to delete account.
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

type dataReconciliation struct {
	Reconciliation domain.Reconciliation `json:"reconciliation"`
	Consistent     bool                  `json:"consistent"`
}
type responseReconciliation struct {
	Data dataReconciliation `json:"data,omitempty"`
}

// Reconcile handles http request to compare account balance with its ledger.
func (h *Handler) Reconcile(gctx *gin.Context) {
	id, ok := bindID(gctx)
	if !ok {
		return
	}

	r, err := h.service.Reconcile(gctx.Request.Context(), middleware.UserID(gctx), id)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, responseReconciliation{Data: dataReconciliation{r, r.Consistent()}})
}

type dataNetWorth struct {
	NetWorth domain.NetWorth `json:"net_worth"`
}
type responseNetWorth struct {
	Data dataNetWorth `json:"data,omitempty"`
}

// NetWorth handles http request to sum the balances of active accounts.
func (h *Handler) NetWorth(gctx *gin.Context) {
	nw, err := h.service.NetWorth(gctx.Request.Context(), middleware.UserID(gctx))
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, responseNetWorth{Data: dataNetWorth{nw}})
}
