package flexquery

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/climatedata/unfcccdi/internal/domain"
	"github.com/climatedata/unfcccdi/internal/domain/dto"
)

// PartyGroup selects one of the two upstream reporting regimes.
type PartyGroup string

const (
	AnnexOne    PartyGroup = "annexOne"
	NonAnnexOne PartyGroup = "nonAnnexOne"
)

// Zones holds the dimension data of one party group, fetched once when a
// reader is constructed. All lookups a query needs are resolved against
// this snapshot, so category completion always sees the full
// variable-to-category relationship.
type Zones struct {
	Group PartyGroup

	Parties         []domain.Party
	Years           []domain.YearInfo
	Categories      *DimTree
	Classifications []domain.Classification
	Measures        *DimTree
	Gases           []domain.GasInfo
	Units           []domain.UnitInfo
	Factors         []domain.ConversionFactor

	// Variables keeps every upstream entry, including repeated variable
	// IDs, under a dense 0-based Seq.
	Variables []domain.Variable

	partyByID   map[int64]domain.Party
	partyByCode map[string]domain.Party
	yearByID    map[int64]string
	classByID   map[int64]string
	classByName map[string]int64
	gasByID     map[int64]string
	gasIDByName map[string]int64
	unitByID    map[int64]string
	varsByID    map[int64][]domain.Variable
}

func loadZones(ctx context.Context, client *Client, group PartyGroup) (*Zones, error) {
	z := &Zones{Group: group}

	var (
		partiesRaw    []dto.PartyCollection
		yearsRaw      map[string][]dto.RawDimension
		categoriesRaw map[string][]dto.RawDimNode
		classesRaw    map[string][]dto.RawDimension
		measuresRaw   map[string][]dto.RawDimNode
		gasesRaw      map[string][]dto.RawDimension
		conversionRaw dto.RawConversion
		variablesRaw  []dto.RawVariable
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error { return client.getJSON(egCtx, "parties/"+string(group), &partiesRaw) })
	eg.Go(func() error { return client.getJSON(egCtx, "years/single", &yearsRaw) })
	eg.Go(func() error { return client.getJSON(egCtx, "dimension-instances/category", &categoriesRaw) })
	eg.Go(func() error { return client.getJSON(egCtx, "dimension-instances/classification", &classesRaw) })
	eg.Go(func() error { return client.getJSON(egCtx, "dimension-instances/measure", &measuresRaw) })
	eg.Go(func() error { return client.getJSON(egCtx, "dimension-instances/gas", &gasesRaw) })
	eg.Go(func() error { return client.getJSON(egCtx, "conversion/fq", &conversionRaw) })
	eg.Go(func() error { return client.getJSON(egCtx, "variables/fq/"+string(group), &variablesRaw) })
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("loadZones %s: %w", group, err)
	}

	if err := z.fillParties(partiesRaw); err != nil {
		return nil, err
	}
	z.fillYears(yearsRaw[string(group)])
	z.fillCategories(categoriesRaw[string(group)])
	z.fillClassifications(classesRaw[string(group)])
	z.fillMeasures(measuresRaw[string(group)])
	z.fillGases(gasesRaw[string(group)])
	z.fillUnits(conversionRaw, group)
	z.fillVariables(variablesRaw)

	return z, nil
}

// fillParties flattens the party collections of the group. The endpoint
// also carries "Groups" aggregates and foreign-group collections, which
// are skipped.
func (z *Zones) fillParties(collections []dto.PartyCollection) error {
	z.partyByID = make(map[int64]domain.Party)
	z.partyByCode = make(map[string]domain.Party)

	for _, collection := range collections {
		if collection.CategoryCode != string(z.Group) || collection.Name == "Groups" {
			continue
		}
		for _, raw := range collection.Parties {
			if _, ok := z.partyByID[raw.ID]; ok {
				continue
			}
			party := domain.Party{ID: raw.ID, Code: raw.Code, Name: raw.Name}
			z.Parties = append(z.Parties, party)
			z.partyByID[raw.ID] = party
			z.partyByCode[raw.Code] = party
		}
	}
	if len(z.Parties) == 0 {
		return fmt.Errorf("could not find parties for the party group %q", z.Group)
	}

	sort.Slice(z.Parties, func(i, j int) bool { return z.Parties[i].ID < z.Parties[j].ID })
	return nil
}

func (z *Zones) fillYears(raw []dto.RawDimension) {
	z.yearByID = make(map[int64]string, len(raw))
	for _, y := range raw {
		name := reduceYearName(y.Name)
		z.Years = append(z.Years, domain.YearInfo{ID: y.ID, Name: name})
		z.yearByID[y.ID] = name
	}
}

// reduceYearName cuts names like "Last Inventory Year (2021)" down to the
// year digits.
func reduceYearName(name string) string {
	if strings.HasPrefix(name, "Last Inventory Year") && len(name) >= 5 {
		return name[len(name)-5 : len(name)-1]
	}
	return name
}

func (z *Zones) fillCategories(roots []dto.RawDimNode) {
	z.Categories = newDimTree(roots, func(id int64) string {
		return fmt.Sprintf("unknown category nr. %d", id)
	})
}

func (z *Zones) fillClassifications(raw []dto.RawDimension) {
	z.classByID = make(map[int64]string, len(raw))
	z.classByName = make(map[string]int64, len(raw))
	for _, c := range raw {
		z.Classifications = append(z.Classifications, domain.Classification{ID: c.ID, Name: c.Name})
		z.classByID[c.ID] = c.Name
		z.classByName[c.Name] = c.ID
	}
}

// fillMeasures builds the measure forest. The upstream has shipped
// measures without a name; those get the documented placeholder instead
// of failing the bootstrap.
func (z *Zones) fillMeasures(roots []dto.RawDimNode) {
	z.Measures = newDimTree(roots, func(id int64) string {
		return fmt.Sprintf("unknown measure nr. %d", id)
	})
}

// fillGases indexes gases by ID and by name, under both the native
// spelling and its ASCII transliteration, so filters accept either form.
func (z *Zones) fillGases(raw []dto.RawDimension) {
	z.gasByID = make(map[int64]string, len(raw))
	z.gasIDByName = make(map[string]int64, 2*len(raw))
	for _, g := range raw {
		z.Gases = append(z.Gases, domain.GasInfo{ID: g.ID, Name: g.Name})
		z.gasByID[g.ID] = g.Name
		z.gasIDByName[g.Name] = g.ID
		z.gasIDByName[NormalizeName(g.Name)] = g.ID
	}
}

func (z *Zones) fillUnits(raw dto.RawConversion, group PartyGroup) {
	z.unitByID = make(map[int64]string, len(raw.Units))
	for _, u := range raw.Units {
		z.Units = append(z.Units, domain.UnitInfo{ID: u.ID, Name: u.Name})
		z.unitByID[u.ID] = u.Name
	}

	factors := raw.NonAnnexOne
	if group == AnnexOne {
		factors = raw.AnnexOne
	}
	for _, f := range factors {
		z.Factors = append(z.Factors, domain.ConversionFactor{
			GasID:      f.GasID,
			FromUnitID: f.FromUnitID,
			ToUnitID:   f.ToUnitID,
			Factor:     f.Factor,
		})
	}
}

// fillVariables assigns the synthetic index. Seq is dense, 0-based and
// follows upstream order; repeated variable IDs stay as separate entries.
func (z *Zones) fillVariables(raw []dto.RawVariable) {
	z.varsByID = make(map[int64][]domain.Variable, len(raw))
	z.Variables = make([]domain.Variable, 0, len(raw))
	for i, rv := range raw {
		v := domain.Variable{
			Seq:              i,
			VariableID:       rv.VariableID,
			CategoryID:       rv.CategoryID,
			ClassificationID: rv.ClassificationID,
			MeasureID:        rv.MeasureID,
			GasID:            rv.GasID,
			UnitID:           rv.UnitID,
		}
		z.Variables = append(z.Variables, v)
		z.varsByID[rv.VariableID] = append(z.varsByID[rv.VariableID], v)
	}
}

// PartyByCode resolves a party code within this group.
func (z *Zones) PartyByCode(code string) (domain.Party, bool) {
	p, ok := z.partyByCode[code]
	return p, ok
}

// GasID resolves a gas by name, accepting both the native and the
// ASCII-normalized spelling.
func (z *Zones) GasID(name string) (int64, bool) {
	id, ok := z.gasIDByName[name]
	return id, ok
}

// ClassificationID resolves a classification by its exact name.
func (z *Zones) ClassificationID(name string) (int64, bool) {
	id, ok := z.classByName[name]
	return id, ok
}

func (z *Zones) yearIDs() []int64 {
	ids := make([]int64, 0, len(z.Years))
	for _, y := range z.Years {
		ids = append(ids, y.ID)
	}
	return ids
}
