package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/climatedata/unfcccdi/internal/api/controller"
	"github.com/climatedata/unfcccdi/internal/pkg/logger"
	"github.com/climatedata/unfcccdi/internal/pkg/store"
)

type APIService struct {
	router *echo.Echo
}

func (svc *APIService) Serve(addr string) {
	if err := svc.router.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal(context.Background(), err)
	}
}

func (svc *APIService) Shutdown(ctx context.Context) error {
	return svc.router.Shutdown(ctx)
}

func NewAPIService(source controller.QuerySource, st store.Store) (*APIService, error) {
	svc := &APIService{router: echo.New()}

	svc.router.Validator = NewValidator()
	svc.router.Binder = NewBinder()
	svc.router.Use(middleware.Logger())
	svc.router.HTTPErrorHandler = httpErrorHandler
	svc.router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000"},
		AllowMethods: []string{echo.GET, echo.PUT, echo.POST, echo.DELETE},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}))

	api := svc.router.Group("/api/v1")
	cntrl := controller.NewController(source, st)

	api.GET("/parties/list", cntrl.GetParties)
	api.GET("/gases/list", cntrl.GetGases)
	api.POST("/query", cntrl.Query)

	snapshots := api.Group("/snapshots")
	snapshots.POST("/backfill", cntrl.BackfillSnapshot, svc.AdminMiddleware)
	snapshots.GET("/list", cntrl.ListSnapshots)
	snapshots.GET("/:party", cntrl.GetLatestSnapshot)

	return svc, nil
}
