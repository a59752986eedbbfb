package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/climatedata/unfcccdi/internal/domain"
	"github.com/climatedata/unfcccdi/internal/service/flexquery"
)

// queryAllOpts selects everything the party reports: all gases, all
// categories, all measures, all classifications.
func queryAllOpts(partyCode string) flexquery.QueryOpts {
	return flexquery.QueryOpts{PartyCodes: []string{partyCode}}
}

type BackfillRequest struct {
	PartyCode string `json:"party_code" validate:"required"`
	Source    string `json:"source"`
}

// BackfillSnapshot runs a full query for one party and persists the
// result as a new snapshot.
func (c *Controller) BackfillSnapshot(ctx echo.Context) error {
	req := new(BackfillRequest)
	if err := ctx.Bind(req); err != nil {
		return err
	}
	if req.Source == "" {
		req.Source = "api"
	}

	rows, err := c.source.Query(ctx.Request().Context(), queryAllOpts(req.PartyCode))
	if err != nil {
		return err
	}

	snapshot, err := c.store.InsertSnapshot(ctx.Request().Context(), req.PartyCode, req.Source, rows)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, snapshot)
}

func (c *Controller) ListSnapshots(ctx echo.Context) error {
	snapshots, err := c.store.ListSnapshots(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, snapshots)
}

func (c *Controller) GetLatestSnapshot(ctx echo.Context) error {
	partyCode := ctx.Param("party")

	snapshot, rows, err := c.store.LatestByParty(ctx.Request().Context(), partyCode)
	if err != nil {
		return err
	}

	type response struct {
		Snapshot *domain.Snapshot `json:"snapshot"`
		Rows     []domain.Row     `json:"rows"`
	}
	return ctx.JSON(http.StatusOK, response{Snapshot: snapshot, Rows: rows})
}
