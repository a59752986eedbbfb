package domain

import (
	"time"

	"github.com/google/uuid"
)

// Party is a reporting entity (usually a country) known to one of the
// upstream party groups.
type Party struct {
	ID   int64  `json:"id" db:"id"`
	Code string `json:"code" db:"code"`
	Name string `json:"name" db:"name"`
}

type GasInfo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type UnitInfo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Classification struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type YearInfo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DimNode is one node of a dimension hierarchy (categories, measures).
type DimNode struct {
	ID       int64      `json:"id"`
	Name     string     `json:"name"`
	Children []*DimNode `json:"children,omitempty"`
}

// Variable ties one data series to its category, classification, measure,
// gas and unit. Upstream variable IDs are not unique (category names are
// not unique either), so every variable carries a locally assigned dense
// 0-based sequence number Seq which is the only collision-free index.
// VariableID stays around as plain data.
type Variable struct {
	Seq              int   `json:"seq"`
	VariableID       int64 `json:"variable_id"`
	CategoryID       int64 `json:"category_id"`
	ClassificationID int64 `json:"classification_id"`
	MeasureID        int64 `json:"measure_id"`
	GasID            int64 `json:"gas_id"`
	UnitID           int64 `json:"unit_id"`
}

// ConversionFactor converts values for a gas between two units.
type ConversionFactor struct {
	GasID      int64   `json:"gas_id"`
	FromUnitID int64   `json:"from_unit_id"`
	ToUnitID   int64   `json:"to_unit_id"`
	Factor     float64 `json:"factor"`
}

// Row is one fully resolved data point. Either NumberValue or StringValue
// is set; notation keys like "NO" or "NE" arrive as string values.
type Row struct {
	Party          string   `json:"party" db:"party"`
	Category       string   `json:"category" db:"category"`
	Classification string   `json:"classification" db:"classification"`
	Measure        string   `json:"measure" db:"measure"`
	Gas            string   `json:"gas" db:"gas"`
	Unit           string   `json:"unit" db:"unit"`
	Year           string   `json:"year" db:"year"`
	NumberValue    *float64 `json:"number_value" db:"number_value"`
	StringValue    *string  `json:"string_value" db:"string_value"`
}

// Snapshot is one persisted query result.
type Snapshot struct {
	ID        uuid.UUID `json:"id" db:"id"`
	PartyCode string    `json:"party_code" db:"party_code"`
	Source    string    `json:"source" db:"source"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}
