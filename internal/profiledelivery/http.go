// Package profiledelivery manages delivery layer of user profiles.
package profiledelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-finance/internal/domain"
	"github.com/go-petr/pet-finance/internal/middleware"
	"github.com/go-petr/pet-finance/internal/profileservice"
	"github.com/go-petr/pet-finance/pkg/errorspkg"
	"github.com/go-petr/pet-finance/pkg/web"
)

// Service provides service layer interface needed by profile delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package profiledelivery
type Service interface {
	Create(ctx context.Context, arg domain.UserProfile) (domain.UserProfile, error)
	Get(ctx context.Context, id string) (domain.UserProfile, error)
	Update(ctx context.Context, id string, arg domain.UpdateProfileParams) (domain.UserProfile, error)
}

// Handler facilitates profile delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns profile handler.
func NewHandler(ps Service) Handler {
	return Handler{service: ps}
}

type data struct {
	Profile domain.UserProfile `json:"profile"`
}
type response struct {
	Data data `json:"data,omitempty"`
}

func respondError(gctx *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		gctx.JSON(http.StatusNotFound, web.Error(err))
	case errors.Is(err, domain.ErrProfileAlreadyExists):
		gctx.JSON(http.StatusConflict, web.Error(err))
	case errors.Is(err, profileservice.ErrInvalidFiscalType):
		gctx.JSON(http.StatusBadRequest, web.Error(err))
	default:
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}

type createRequest struct {
	Email       string `json:"email" binding:"required,email"`
	DisplayName string `json:"display_name" binding:"required,max=100"`
	Currency    string `json:"currency" binding:"omitempty,currency"`
	FiscalType  string `json:"fiscal_type" binding:"omitempty,oneof=SALARIED FREELANCE"`
}

// Create handles http request to create the caller's profile.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindErrorMsg(err)})

		return
	}

	profile, err := h.service.Create(ctx, domain.UserProfile{
		ID:          middleware.UserID(gctx),
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Currency:    req.Currency,
		FiscalType:  domain.FiscalType(req.FiscalType),
	})
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{profile}})
}

// Get handles http request to get the caller's profile.
func (h *Handler) Get(gctx *gin.Context) {
	profile, err := h.service.Get(gctx.Request.Context(), middleware.UserID(gctx))
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{profile}})
}

type updateRequest struct {
	DisplayName         *string `json:"display_name" binding:"omitempty,min=1,max=100"`
	Currency            *string `json:"currency" binding:"omitempty,currency"`
	FiscalType          *string `json:"fiscal_type" binding:"omitempty,oneof=SALARIED FREELANCE"`
	OnboardingCompleted *bool   `json:"onboarding_completed"`
}

// Update handles http request to update the caller's profile.
func (h *Handler) Update(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req updateRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindErrorMsg(err)})

		return
	}

	arg := domain.UpdateProfileParams{
		DisplayName:         req.DisplayName,
		Currency:            req.Currency,
		OnboardingCompleted: req.OnboardingCompleted,
	}

	if req.FiscalType != nil {
		ft := domain.FiscalType(*req.FiscalType)
		arg.FiscalType = &ft
	}

	profile, err := h.service.Update(ctx, middleware.UserID(gctx), arg)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{profile}})
}
