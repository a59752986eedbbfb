package flexquery

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/climatedata/unfcccdi/internal/domain/dto"
)

func strptr(s string) *string { return &s }

func measurePlaceholder(id int64) string {
	return fmt.Sprintf("unknown measure nr. %d", id)
}

func TestDimTreeLookup(t *testing.T) {
	roots := []dto.RawDimNode{
		{
			ID:   1,
			Name: strptr("Totals"),
			Children: []dto.RawDimNode{
				{ID: 2, Name: strptr("1.  Energy")},
				{ID: 3, Name: strptr("2.  IPPU")},
			},
		},
	}

	tree := newDimTree(roots, measurePlaceholder)
	require.Equal(t, 3, tree.Len())

	name, ok := tree.Name(2)
	require.True(t, ok)
	assert.Equal(t, "1.  Energy", name)

	_, ok = tree.Name(42)
	assert.False(t, ok)
	assert.False(t, tree.Contains(42))
}

func TestDimTreeMissingNamePlaceholder(t *testing.T) {
	roots := []dto.RawDimNode{
		{
			ID:   10,
			Name: strptr("Net emissions/removals"),
			Children: []dto.RawDimNode{
				{ID: 42},
			},
		},
	}

	tree := newDimTree(roots, measurePlaceholder)

	name, ok := tree.Name(42)
	require.True(t, ok)
	assert.Equal(t, "unknown measure nr. 42", name)
}

func TestDimTreeRender(t *testing.T) {
	roots := []dto.RawDimNode{
		{
			ID:   1,
			Name: strptr("Totals"),
			Children: []dto.RawDimNode{
				{ID: 2, Name: strptr("1.  Energy")},
			},
		},
	}

	rendered := newDimTree(roots, measurePlaceholder).Render()
	assert.Equal(t, "Totals [1]\n  1.  Energy [2]\n", rendered)
}
