package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (c *Controller) GetParties(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.source.Parties())
}

func (c *Controller) GetGases(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.source.Gases())
}
