// Package goaldelivery manages delivery layer of savings goals.
package goaldelivery

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-finance/internal/domain"
	"github.com/go-petr/pet-finance/internal/goalservice"
	"github.com/go-petr/pet-finance/internal/middleware"
	"github.com/go-petr/pet-finance/pkg/errorspkg"
	"github.com/go-petr/pet-finance/pkg/moneypkg"
	"github.com/go-petr/pet-finance/pkg/web"
)

// Service provides service layer interface needed by savings goal delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package goaldelivery
type Service interface {
	Create(ctx context.Context, arg domain.CreateGoalParams) (domain.SavingsGoal, error)
	Get(ctx context.Context, ownerID string, id uuid.UUID) (domain.SavingsGoal, error)
	List(ctx context.Context, ownerID string) ([]domain.SavingsGoal, error)
	Update(ctx context.Context, ownerID string, id uuid.UUID, arg domain.UpdateGoalParams) (domain.SavingsGoal, error)
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
	Contribute(ctx context.Context, arg domain.ContributeParams) (domain.ContributeResult, error)
}

// Handler facilitates savings goal delivery layer logic.
type Handler struct {
	service Service
	now     func() time.Time
}

// NewHandler returns savings goal handler.
func NewHandler(gs Service) Handler {
	return Handler{
		service: gs,
		now:     time.Now,
	}
}

// Goal is a savings goal together with its derived progress figures.
type Goal struct {
	domain.SavingsGoal
	Progress           float64         `json:"progress"`
	Achieved           bool            `json:"achieved"`
	Remaining          moneypkg.Amount `json:"remaining"`
	MonthlyRequirement moneypkg.Amount `json:"monthly_requirement"`
}

func (h *Handler) view(g domain.SavingsGoal) Goal {
	return Goal{
		SavingsGoal:        g,
		Progress:           g.Progress(),
		Achieved:           g.Achieved(),
		Remaining:          g.Remaining(),
		MonthlyRequirement: g.MonthlyRequirement(h.now()),
	}
}

type data struct {
	Goal Goal `json:"goal"`
}
type response struct {
	Data data `json:"data,omitempty"`
}

func respondError(gctx *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrGoalNotFound),
		errors.Is(err, domain.ErrAccountNotFound):
		gctx.JSON(http.StatusNotFound, web.Error(err))
	case errors.Is(err, domain.ErrGoalNotActive):
		gctx.JSON(http.StatusConflict, web.Error(err))
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrOwnerNotFound),
		errors.Is(err, goalservice.ErrInvalidGoalStatus),
		errors.Is(err, goalservice.ErrTargetDateRequired):
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

// bindJSON binds the body into req and responds with 400 on failure.
func bindJSON(gctx *gin.Context, req any) bool {
	if err := gctx.ShouldBindJSON(req); err != nil {
		zerolog.Ctx(gctx.Request.Context()).Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindErrorMsg(err)})

		return false
	}

	return true
}

type createRequest struct {
	Name         string `json:"name" binding:"required,max=100"`
	TargetAmount string `json:"target_amount" binding:"required,amount"`
	TargetDate   string `json:"target_date" binding:"required,datetime=2006-01-02"`
	AccountID    string `json:"account_id" binding:"omitempty,uuid"`
}

// Create handles http request to create savings goal.
func (h *Handler) Create(gctx *gin.Context) {
	var req createRequest
	if !bindJSON(gctx, &req) {
		return
	}

	targetDate, _ := time.Parse(time.DateOnly, req.TargetDate)

	arg := domain.CreateGoalParams{
		OwnerID:      middleware.UserID(gctx),
		Name:         req.Name,
		TargetAmount: moneypkg.MustParse(req.TargetAmount),
		TargetDate:   targetDate,
	}

	if req.AccountID != "" {
		arg.AccountID = uuid.NullUUID{UUID: uuid.MustParse(req.AccountID), Valid: true}
	}

	goal, err := h.service.Create(gctx.Request.Context(), arg)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{h.view(goal)}})
}

type dataGoals struct {
	Goals []Goal `json:"goals"`
}
type responseGoals struct {
	Data dataGoals `json:"data,omitempty"`
}

// List handles http request to list savings goals of the caller.
func (h *Handler) List(gctx *gin.Context) {
	goals, err := h.service.List(gctx.Request.Context(), middleware.UserID(gctx))
	if err != nil {
		respondError(gctx, err)
		return
	}

	views := make([]Goal, 0, len(goals))
	for _, g := range goals {
		views = append(views, h.view(g))
	}

	gctx.JSON(http.StatusOK, responseGoals{Data: dataGoals{views}})
}

// Get handles http request to get savings goal.
func (h *Handler) Get(gctx *gin.Context) {
	id, ok := bindID(gctx)
	if !ok {
		return
	}

	goal, err := h.service.Get(gctx.Request.Context(), middleware.UserID(gctx), id)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{h.view(goal)}})
}

type updateRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=1,max=100"`
	TargetAmount *string `json:"target_amount" binding:"omitempty,amount"`
	TargetDate   *string `json:"target_date" binding:"omitempty,datetime=2006-01-02"`
	AccountID    *string `json:"account_id" binding:"omitempty,uuid"`
	Status       *string `json:"status" binding:"omitempty,oneof=ACTIVE COMPLETED CANCELLED"`
}

func (r updateRequest) params() domain.UpdateGoalParams {
	arg := domain.UpdateGoalParams{Name: r.Name}

	if r.TargetAmount != nil {
		a := moneypkg.MustParse(*r.TargetAmount)
		arg.TargetAmount = &a
	}

	if r.TargetDate != nil {
		d, _ := time.Parse(time.DateOnly, *r.TargetDate)
		arg.TargetDate = &d
	}

	if r.AccountID != nil {
		id := uuid.MustParse(*r.AccountID)
		arg.AccountID = &id
	}

	if r.Status != nil {
		s := domain.GoalStatus(*r.Status)
		arg.Status = &s
	}

	return arg
}

// Update handles http request to update savings goal.
func (h *Handler) Update(gctx *gin.Context) {
	id, ok := bindID(gctx)
	if !ok {
		return
	}

	var req updateRequest
	if !bindJSON(gctx, &req) {
		return
	}

	goal, err := h.service.Update(gctx.Request.Context(), middleware.UserID(gctx), id, req.params())
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{h.view(goal)}})
}

// Delete handles http request to delete savings goal.
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

type contributeRequest struct {
	AccountID string `json:"account_id" binding:"required,uuid"`
	Amount    string `json:"amount" binding:"required,amount"`
}

type dataContribution struct {
	Goal         Goal                    `json:"goal"`
	Account      domain.Account          `json:"account"`
	Contribution domain.GoalContribution `json:"contribution"`
}
type responseContribution struct {
	Data dataContribution `json:"data,omitempty"`
}

// Contribute handles http request to move money from an account into the goal.
func (h *Handler) Contribute(gctx *gin.Context) {
	id, ok := bindID(gctx)
	if !ok {
		return
	}

	var req contributeRequest
	if !bindJSON(gctx, &req) {
		return
	}

	result, err := h.service.Contribute(gctx.Request.Context(), domain.ContributeParams{
		OwnerID:   middleware.UserID(gctx),
		GoalID:    id,
		AccountID: uuid.MustParse(req.AccountID),
		Amount:    moneypkg.MustParse(req.Amount),
	})
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, responseContribution{Data: dataContribution{
		Goal:         h.view(result.Goal),
		Account:      result.Account,
		Contribution: result.Contribution,
	}})
}
