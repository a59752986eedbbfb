package flexquery

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/climatedata/unfcccdi/internal/domain"
)

type factorKey struct {
	gasID int64
	from  int64
	to    int64
}

// Converter converts values for a gas between units using the upstream
// conversion-factor table. Factors are kept as decimals so chained
// conversions do not accumulate float drift.
type Converter struct {
	factors map[factorKey]decimal.Decimal
}

func newConverter(factors []domain.ConversionFactor) *Converter {
	c := &Converter{factors: make(map[factorKey]decimal.Decimal, 2*len(factors))}
	for _, f := range factors {
		if f.Factor == 0 {
			continue
		}
		fd := decimal.NewFromFloat(f.Factor)
		c.factors[factorKey{f.GasID, f.FromUnitID, f.ToUnitID}] = fd
		// the table only carries one direction per pair
		inverse := factorKey{f.GasID, f.ToUnitID, f.FromUnitID}
		if _, ok := c.factors[inverse]; !ok {
			c.factors[inverse] = decimal.NewFromInt(1).Div(fd)
		}
	}
	return c
}

// Convert scales value from one unit to another for the given gas.
func (c *Converter) Convert(value float64, gasID, fromUnitID, toUnitID int64) (float64, error) {
	if fromUnitID == toUnitID {
		return value, nil
	}

	factor, ok := c.factors[factorKey{gasID, fromUnitID, toUnitID}]
	if !ok {
		return 0, fmt.Errorf("no conversion factor for gas %d from unit %d to unit %d", gasID, fromUnitID, toUnitID)
	}

	return decimal.NewFromFloat(value).Mul(factor).InexactFloat64(), nil
}
