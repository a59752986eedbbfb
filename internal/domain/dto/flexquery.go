// Package dto holds the raw payload shapes of the upstream Flexible Query
// API. The upstream JSON is loosely typed; these structs make the optional
// fields explicit so everything is validated once at the ingestion
// boundary and typed from there on.
package dto

// PartyCollection is one entry of parties/{group}. The upstream mixes
// regular party collections with "Groups" aggregates under the same
// endpoint.
type PartyCollection struct {
	CategoryCode string     `json:"categoryCode"`
	Name         string     `json:"name"`
	Parties      []RawParty `json:"parties"`
}

type RawParty struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// RawDimension is a flat dimension entry (classifications, gases, years,
// units).
type RawDimension struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RawDimNode is a node of a dimension hierarchy. Name is optional: the
// upstream has been observed returning measures without names.
type RawDimNode struct {
	ID       int64        `json:"id"`
	Name     *string      `json:"name"`
	Children []RawDimNode `json:"children"`
}

// RawConversion is the payload of conversion/fq: the unit list plus the
// per-group conversion factor tables.
type RawConversion struct {
	Units       []RawDimension        `json:"units"`
	AnnexOne    []RawConversionFactor `json:"annexOne"`
	NonAnnexOne []RawConversionFactor `json:"nonAnnexOne"`
}

type RawConversionFactor struct {
	GasID      int64   `json:"gasId"`
	FromUnitID int64   `json:"fromUnitId"`
	ToUnitID   int64   `json:"toUnitId"`
	Factor     float64 `json:"factor"`
}

// RawVariable is one entry of variables/fq/{group}. Variable IDs repeat
// upstream; see domain.Variable.
type RawVariable struct {
	VariableID       int64 `json:"variableId"`
	CategoryID       int64 `json:"categoryId"`
	ClassificationID int64 `json:"classificationId"`
	MeasureID        int64 `json:"measureId"`
	GasID            int64 `json:"gasId"`
	UnitID           int64 `json:"unitId"`
}

// FlexibleQueryRequest is the body of records/flexible-queries.
type FlexibleQueryRequest struct {
	VariableIDs []int64 `json:"variableIds"`
	PartyIDs    []int64 `json:"partyIds"`
	YearIDs     []int64 `json:"yearIds"`
}

// RawDataPoint is one record of a flexible-queries response.
type RawDataPoint struct {
	VariableID  int64    `json:"variableId"`
	PartyID     int64    `json:"partyId"`
	YearID      int64    `json:"yearId"`
	NumberValue *float64 `json:"numberValue"`
	StringValue *string  `json:"stringValue"`
}
