package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/climatedata/unfcccdi/internal/service/flexquery"
)

type QueryRequest struct {
	PartyCode         string   `json:"party_code" validate:"required"`
	Gases             []string `json:"gases"`
	CategoryIDs       []int64  `json:"category_ids"`
	Classifications   []string `json:"classifications"`
	MeasureIDs        []int64  `json:"measure_ids"`
	NormalizeGasNames *bool    `json:"normalize_gas_names"`
}

func (req *QueryRequest) opts() flexquery.QueryOpts {
	return flexquery.QueryOpts{
		PartyCodes:        []string{req.PartyCode},
		Gases:             req.Gases,
		CategoryIDs:       req.CategoryIDs,
		Classifications:   req.Classifications,
		MeasureIDs:        req.MeasureIDs,
		NormalizeGasNames: req.NormalizeGasNames,
	}
}

func (c *Controller) Query(ctx echo.Context) error {
	req := new(QueryRequest)
	if err := ctx.Bind(req); err != nil {
		return err
	}

	rows, err := c.source.Query(ctx.Request().Context(), req.opts())
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, rows)
}
