// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-finance/internal/accountdelivery"
	"github.com/go-petr/pet-finance/internal/accountrepo"
	"github.com/go-petr/pet-finance/internal/accountservice"
	"github.com/go-petr/pet-finance/internal/categorydelivery"
	"github.com/go-petr/pet-finance/internal/categoryrepo"
	"github.com/go-petr/pet-finance/internal/categoryservice"
	"github.com/go-petr/pet-finance/internal/goaldelivery"
	"github.com/go-petr/pet-finance/internal/goalrepo"
	"github.com/go-petr/pet-finance/internal/goalservice"
	"github.com/go-petr/pet-finance/internal/middleware"
	"github.com/go-petr/pet-finance/internal/profiledelivery"
	"github.com/go-petr/pet-finance/internal/profilerepo"
	"github.com/go-petr/pet-finance/internal/profileservice"
	"github.com/go-petr/pet-finance/internal/recurringdelivery"
	"github.com/go-petr/pet-finance/internal/recurringrepo"
	"github.com/go-petr/pet-finance/internal/recurringservice"
	"github.com/go-petr/pet-finance/internal/transactiondelivery"
	"github.com/go-petr/pet-finance/internal/transactionrepo"
	"github.com/go-petr/pet-finance/internal/transactionservice"
	"github.com/go-petr/pet-finance/pkg/configpkg"
	"github.com/go-petr/pet-finance/pkg/currencypkg"
	"github.com/go-petr/pet-finance/pkg/moneypkg"
	"github.com/go-petr/pet-finance/pkg/tokenpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB         *sql.DB
	Engine     *gin.Engine
	Config     configpkg.Config
	TokenMaker tokenpkg.Maker
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// RegisterValidators adds the custom binding tags used by the request types.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	validators := map[string]validator.Func{
		"currency": currencypkg.ValidCurrency,
		"hexcolor": categorydelivery.ValidHexColor,
		"amount":   moneypkg.ValidAmount,
	}

	for tag, fn := range validators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("cannot register %s validator: %w", tag, err)
		}
	}

	return nil
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	tokenMaker, err := tokenpkg.New(config.TokenType, config.TokenSymmetricKey)
	if err != nil {
		return nil, fmt.Errorf("cannot create token maker: %w", err)
	}

	if err := RegisterValidators(); err != nil {
		return nil, err
	}

	profileService := profileservice.New(profilerepo.NewRepoPGS(conn))
	accountService := accountservice.New(accountrepo.NewRepoPGS(conn))
	categoryService := categoryservice.New(categoryrepo.NewRepoPGS(conn))
	transactionService := transactionservice.New(transactionrepo.NewRepoPGS(conn), accountService, categoryService)
	recurringService := recurringservice.New(recurringrepo.NewRepoPGS(conn), accountService, categoryService)
	goalService := goalservice.New(goalrepo.NewRepoPGS(conn), accountService)

	profileHandler := profiledelivery.NewHandler(profileService)
	accountHandler := accountdelivery.NewHandler(accountService)
	categoryHandler := categorydelivery.NewHandler(categoryService)
	transactionHandler := transactiondelivery.NewHandler(transactionService)
	recurringHandler := recurringdelivery.NewHandler(recurringService)
	goalHandler := goaldelivery.NewHandler(goalService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))

	engine.GET("/health", func(gctx *gin.Context) {
		if err := conn.PingContext(gctx.Request.Context()); err != nil {
			gctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}

		gctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authRoutes := engine.Group("/").Use(middleware.AuthMiddleware(tokenMaker))

	authRoutes.POST("/profile", profileHandler.Create)
	authRoutes.GET("/profile", profileHandler.Get)
	authRoutes.PATCH("/profile", profileHandler.Update)

	authRoutes.POST("/accounts", accountHandler.Create)
	authRoutes.GET("/accounts", accountHandler.List)
	authRoutes.GET("/accounts/:id", accountHandler.Get)
	authRoutes.PATCH("/accounts/:id", accountHandler.Update)
	authRoutes.DELETE("/accounts/:id", accountHandler.Delete)
	authRoutes.POST("/accounts/:id/archive", accountHandler.Archive)
	authRoutes.GET("/accounts/:id/reconcile", accountHandler.Reconcile)
	authRoutes.GET("/networth", accountHandler.NetWorth)

	authRoutes.POST("/categories", categoryHandler.Create)
	authRoutes.GET("/categories", categoryHandler.List)
	authRoutes.GET("/categories/:id", categoryHandler.Get)
	authRoutes.PATCH("/categories/:id", categoryHandler.Update)
	authRoutes.DELETE("/categories/:id", categoryHandler.Delete)

	authRoutes.POST("/transactions", transactionHandler.Create)
	authRoutes.GET("/transactions", transactionHandler.List)
	authRoutes.GET("/transactions/summary", transactionHandler.Summary)
	authRoutes.GET("/transactions/:id", transactionHandler.Get)
	authRoutes.PATCH("/transactions/:id", transactionHandler.Update)
	authRoutes.DELETE("/transactions/:id", transactionHandler.Delete)

	authRoutes.POST("/recurring-rules", recurringHandler.Create)
	authRoutes.GET("/recurring-rules", recurringHandler.List)
	authRoutes.GET("/recurring-rules/:id", recurringHandler.Get)
	authRoutes.PATCH("/recurring-rules/:id", recurringHandler.Update)
	authRoutes.DELETE("/recurring-rules/:id", recurringHandler.Delete)

	authRoutes.POST("/goals", goalHandler.Create)
	authRoutes.GET("/goals", goalHandler.List)
	authRoutes.GET("/goals/:id", goalHandler.Get)
	authRoutes.PATCH("/goals/:id", goalHandler.Update)
	authRoutes.DELETE("/goals/:id", goalHandler.Delete)
	authRoutes.POST("/goals/:id/contribute", goalHandler.Contribute)

	server := &Server{
		DB:         conn,
		Engine:     engine,
		Config:     config,
		TokenMaker: tokenMaker,
	}

	return server, nil
}
