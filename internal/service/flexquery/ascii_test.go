package flexquery

import (
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeNameKnownForms(t *testing.T) {
	cases := map[string]string{
		"N₂O":                "N2O",
		"CO₂":                "CO2",
		"CH₄":                "CH4",
		"kt CO₂ equivalent":  "kt CO2 equivalent",
		"µg":                 "ug",
		"°C":                 "degC",
		"Gg SF₆":             "Gg SF6",
		"HFC-23":             "HFC-23",
		"Aggregate GHGs":     "Aggregate GHGs",
		"t CO₂ equivalent/a": "t CO2 equivalent/a",
	}

	for in, want := range cases {
		assert.Equal(t, want, NormalizeName(in), "input %q", in)
	}
}

func TestNormalizeNameASCIIOnly(t *testing.T) {
	inputs := []string{
		"N₂O",
		"kt CO₂ equivalent",
		"µg/m³",
		"Ångström",
		"ﬁeld",
		"naïve — “quoted” × value",
		"ΔT °C",
	}

	for _, in := range inputs {
		out := NormalizeName(in)
		for _, r := range out {
			assert.Truef(t, r <= unicode.MaxASCII, "input %q produced non-ascii rune %q in %q", in, r, out)
		}
	}
}

func TestNormalizeNameIdentityOnASCII(t *testing.T) {
	inputs := []string{"", "CO2", "kt", "HFC-23", "unknown measure nr. 42"}
	for _, in := range inputs {
		assert.Equal(t, in, NormalizeName(in))
	}
}

func TestNormalizeNameDeterministic(t *testing.T) {
	in := "N₂O in µg/m³ at °C"
	assert.Equal(t, NormalizeName(in), NormalizeName(in))
}
