// Package categorydelivery manages delivery layer of categories.
package categorydelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-finance/internal/categoryservice"
	"github.com/go-petr/pet-finance/internal/domain"
	"github.com/go-petr/pet-finance/internal/middleware"
	"github.com/go-petr/pet-finance/pkg/errorspkg"
	"github.com/go-petr/pet-finance/pkg/moneypkg"
	"github.com/go-petr/pet-finance/pkg/web"
)

// Service provides service layer interface needed by category delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package categorydelivery
type Service interface {
	Create(ctx context.Context, arg domain.CreateCategoryParams) (domain.Category, error)
	Get(ctx context.Context, ownerID string, id uuid.UUID) (domain.Category, error)
	List(ctx context.Context, ownerID string) ([]domain.Category, error)
	Update(ctx context.Context, ownerID string, id uuid.UUID, arg domain.UpdateCategoryParams) (domain.Category, error)
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
}

// Handler facilitates category delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns category handler.
func NewHandler(cs Service) Handler {
	return Handler{service: cs}
}

type data struct {
	Category domain.Category `json:"category"`
}
type response struct {
	Data data `json:"data,omitempty"`
}

func respondError(gctx *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrCategoryNotFound):
		gctx.JSON(http.StatusNotFound, web.Error(err))
	case errors.Is(err, domain.ErrOwnerNotFound),
		errors.Is(err, categoryservice.ErrInvalidCategoryType),
		errors.Is(err, categoryservice.ErrNegativeBudgetCap),
		errors.Is(err, moneypkg.ErrInvalidAmount),
		errors.Is(err, moneypkg.ErrTooPrecise):
		gctx.JSON(http.StatusBadRequest, web.Error(err))
	default:
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}

func parseCap(s *string) (*moneypkg.Amount, error) {
	if s == nil {
		return nil, nil
	}

	a, err := moneypkg.Parse(*s)
	if err != nil {
		return nil, err
	}

	return &a, nil
}

type createRequest struct {
	Name             string  `json:"name" binding:"required,max=100"`
	Type             string  `json:"type" binding:"required,oneof=NEEDS WANTS SAVINGS INCOME"`
	Color            string  `json:"color" binding:"required,hexcolor"`
	Icon             string  `json:"icon" binding:"required"`
	MonthlyBudgetCap *string `json:"monthly_budget_cap" binding:"omitempty,numeric"`
}

// Create handles http request to create category.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindErrorMsg(err)})

		return
	}

	budgetCap, err := parseCap(req.MonthlyBudgetCap)
	if err != nil {
		respondError(gctx, err)
		return
	}

	category, err := h.service.Create(ctx, domain.CreateCategoryParams{
		OwnerID:          middleware.UserID(gctx),
		Name:             req.Name,
		Type:             domain.CategoryType(req.Type),
		Color:            req.Color,
		Icon:             req.Icon,
		MonthlyBudgetCap: budgetCap,
	})
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{category}})
}

type idRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

type dataCategories struct {
	Categories []domain.Category `json:"categories"`
}
type responseCategories struct {
	Data dataCategories `json:"data,omitempty"`
}

// List handles http request to list all categories of the caller.
func (h *Handler) List(gctx *gin.Context) {
	categories, err := h.service.List(gctx.Request.Context(), middleware.UserID(gctx))
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, responseCategories{Data: dataCategories{categories}})
}

// Get handles http request to get category.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req idRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		zerolog.Ctx(ctx).Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindErrorMsg(err)})

		return
	}

	category, err := h.service.Get(ctx, middleware.UserID(gctx), uuid.MustParse(req.ID))
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{category}})
}

type updateRequest struct {
	Name             *string `json:"name" binding:"omitempty,min=1,max=100"`
	Type             *string `json:"type" binding:"omitempty,oneof=NEEDS WANTS SAVINGS INCOME"`
	Color            *string `json:"color" binding:"omitempty,hexcolor"`
	Icon             *string `json:"icon" binding:"omitempty,min=1"`
	MonthlyBudgetCap *string `json:"monthly_budget_cap" binding:"omitempty,numeric"`
}

// Update handles http request to update category.
func (h *Handler) Update(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri idRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindErrorMsg(err)})

		return
	}

	var req updateRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindErrorMsg(err)})

		return
	}

	budgetCap, err := parseCap(req.MonthlyBudgetCap)
	if err != nil {
		respondError(gctx, err)
		return
	}

	arg := domain.UpdateCategoryParams{
		Name:             req.Name,
		Color:            req.Color,
		Icon:             req.Icon,
		MonthlyBudgetCap: budgetCap,
	}

	if req.Type != nil {
		t := domain.CategoryType(*req.Type)
		arg.Type = &t
	}

	category, err := h.service.Update(ctx, middleware.UserID(gctx), uuid.MustParse(uri.ID), arg)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{category}})
}

// Delete handles http request to delete category.
func (h *Handler) Delete(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req idRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		zerolog.Ctx(ctx).Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindErrorMsg(err)})

		return
	}

	if err := h.service.Delete(ctx, middleware.UserID(gctx), uuid.MustParse(req.ID)); err != nil {
		respondError(gctx, err)
		return
	}

	gctx.Status(http.StatusNoContent)
}
