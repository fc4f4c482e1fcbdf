// Package recurringdelivery manages delivery layer of recurring rules.
package recurringdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-finance/internal/domain"
	"github.com/go-petr/pet-finance/internal/middleware"
	"github.com/go-petr/pet-finance/internal/recurringservice"
	"github.com/go-petr/pet-finance/pkg/errorspkg"
	"github.com/go-petr/pet-finance/pkg/moneypkg"
	"github.com/go-petr/pet-finance/pkg/web"
)

// Service provides service layer interface needed by recurring rule delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package recurringdelivery
type Service interface {
	Create(ctx context.Context, arg domain.CreateRecurringRuleParams) (domain.RecurringRule, error)
	Get(ctx context.Context, ownerID string, id uuid.UUID) (domain.RecurringRule, error)
	List(ctx context.Context, ownerID string) ([]domain.RecurringRule, error)
	Update(ctx context.Context, ownerID string, id uuid.UUID, arg domain.UpdateRecurringRuleParams) (domain.RecurringRule, error)
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
}

// Handler facilitates recurring rule delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns recurring rule handler.
func NewHandler(rs Service) Handler {
	return Handler{service: rs}
}

type data struct {
	Rule domain.RecurringRule `json:"recurring_rule"`
}
type response struct {
	Data data `json:"data,omitempty"`
}

func respondError(gctx *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrRecurringRuleNotFound),
		errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrCategoryNotFound):
		gctx.JSON(http.StatusNotFound, web.Error(err))
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidDayOfMonth),
		errors.Is(err, domain.ErrInvalidTransactionType),
		errors.Is(err, domain.ErrOwnerNotFound),
		errors.Is(err, recurringservice.ErrInvalidRuleType):
		gctx.JSON(http.StatusBadRequest, web.Error(err))
	default:
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}

func bindID(gctx *gin.Context) (uuid.UUID, bool) {
	var req struct {
		ID string `uri:"id" binding:"required,uuid"`
	}

	if err := gctx.ShouldBindUri(&req); err != nil {
		zerolog.Ctx(gctx.Request.Context()).Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindErrorMsg(err)})

		return uuid.Nil, false
	}

	return uuid.MustParse(req.ID), true
}

type createRequest struct {
	Name       string `json:"name" binding:"required,max=100"`
	Amount     string `json:"amount" binding:"required,amount"`
	Type       string `json:"type" binding:"required,oneof=INCOME EXPENSE"`
	DayOfMonth int    `json:"day_of_month" binding:"required,gte=1,lte=31"`
	AccountID  string `json:"account_id" binding:"required,uuid"`
	CategoryID string `json:"category_id" binding:"omitempty,uuid"`
	Timezone   string `json:"timezone" binding:"omitempty,timezone"`
}

// Create handles http request to create recurring rule.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindErrorMsg(err)})

		return
	}

	arg := domain.CreateRecurringRuleParams{
		OwnerID:    middleware.UserID(gctx),
		Name:       req.Name,
		Amount:     moneypkg.MustParse(req.Amount),
		Type:       domain.TransactionType(req.Type),
		DayOfMonth: req.DayOfMonth,
		AccountID:  uuid.MustParse(req.AccountID),
		Timezone:   req.Timezone,
	}

	if req.CategoryID != "" {
		arg.CategoryID = uuid.NullUUID{UUID: uuid.MustParse(req.CategoryID), Valid: true}
	}

	rule, err := h.service.Create(ctx, arg)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{rule}})
}

type dataRules struct {
	Rules []domain.RecurringRule `json:"recurring_rules"`
}
type responseRules struct {
	Data dataRules `json:"data,omitempty"`
}

// List handles http request to list recurring rules of the caller.
func (h *Handler) List(gctx *gin.Context) {
	rules, err := h.service.List(gctx.Request.Context(), middleware.UserID(gctx))
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, responseRules{Data: dataRules{rules}})
}

// Get handles http request to get recurring rule.
func (h *Handler) Get(gctx *gin.Context) {
	id, ok := bindID(gctx)
	if !ok {
		return
	}

	rule, err := h.service.Get(gctx.Request.Context(), middleware.UserID(gctx), id)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{rule}})
}

type updateRequest struct {
	Name       *string `json:"name" binding:"omitempty,min=1,max=100"`
	Amount     *string `json:"amount" binding:"omitempty,amount"`
	Type       *string `json:"type" binding:"omitempty,oneof=INCOME EXPENSE"`
	DayOfMonth *int    `json:"day_of_month" binding:"omitempty,gte=1,lte=31"`
	AccountID  *string `json:"account_id" binding:"omitempty,uuid"`
	CategoryID *string `json:"category_id" binding:"omitempty,uuid"`
	IsActive   *bool   `json:"is_active"`
	Timezone   *string `json:"timezone" binding:"omitempty,timezone"`
}

func (r updateRequest) params() domain.UpdateRecurringRuleParams {
	arg := domain.UpdateRecurringRuleParams{
		Name:       r.Name,
		DayOfMonth: r.DayOfMonth,
		IsActive:   r.IsActive,
		Timezone:   r.Timezone,
	}

	if r.Amount != nil {
		a := moneypkg.MustParse(*r.Amount)
		arg.Amount = &a
	}

	if r.Type != nil {
		t := domain.TransactionType(*r.Type)
		arg.Type = &t
	}

	if r.AccountID != nil {
		id := uuid.MustParse(*r.AccountID)
		arg.AccountID = &id
	}

	if r.CategoryID != nil {
		id := uuid.MustParse(*r.CategoryID)
		arg.CategoryID = &id
	}

	return arg
}

// Update handles http request to update recurring rule, including pausing
// and resuming it through is_active.
func (h *Handler) Update(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	id, ok := bindID(gctx)
	if !ok {
		return
	}

	var req updateRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		zerolog.Ctx(ctx).Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindErrorMsg(err)})

		return
	}

	rule, err := h.service.Update(ctx, middleware.UserID(gctx), id, req.params())
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{rule}})
}

// Delete handles http request to delete recurring rule.
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
