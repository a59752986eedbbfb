package flexquery

import (
	"fmt"
	"strings"

	"github.com/climatedata/unfcccdi/internal/domain"
	"github.com/climatedata/unfcccdi/internal/domain/dto"
)

// DimTree is a dimension hierarchy (categories or measures) with a flat
// lookup by node ID. Node IDs are unique within one hierarchy; node names
// are not.
type DimTree struct {
	roots []*domain.DimNode
	byID  map[int64]*domain.DimNode
}

// newDimTree builds a tree from the raw hierarchy roots. missingName
// supplies a placeholder for nodes the upstream ships without a name,
// e.g. "unknown measure nr. 4242".
func newDimTree(roots []dto.RawDimNode, missingName func(id int64) string) *DimTree {
	t := &DimTree{byID: make(map[int64]*domain.DimNode)}
	for i := range roots {
		t.roots = append(t.roots, t.walk(roots[i], missingName))
	}
	return t
}

func (t *DimTree) walk(raw dto.RawDimNode, missingName func(id int64) string) *domain.DimNode {
	name := ""
	if raw.Name != nil {
		name = *raw.Name
	}
	if name == "" {
		name = missingName(raw.ID)
	}

	node := &domain.DimNode{ID: raw.ID, Name: name}
	t.byID[raw.ID] = node
	for i := range raw.Children {
		node.Children = append(node.Children, t.walk(raw.Children[i], missingName))
	}
	return node
}

// Name resolves a node name; ok is false when the ID is not part of the
// hierarchy.
func (t *DimTree) Name(id int64) (string, bool) {
	node, ok := t.byID[id]
	if !ok {
		return "", false
	}
	return node.Name, true
}

func (t *DimTree) Contains(id int64) bool {
	_, ok := t.byID[id]
	return ok
}

func (t *DimTree) Len() int {
	return len(t.byID)
}

func (t *DimTree) Roots() []*domain.DimNode {
	return t.roots
}

// Render prints the hierarchy with IDs, one node per line, children
// indented under their parent.
func (t *DimTree) Render() string {
	var b strings.Builder
	for _, root := range t.roots {
		renderNode(&b, root, 0)
	}
	return b.String()
}

func renderNode(b *strings.Builder, node *domain.DimNode, depth int) {
	fmt.Fprintf(b, "%s%s [%d]\n", strings.Repeat("  ", depth), node.Name, node.ID)
	for _, child := range node.Children {
		renderNode(b, child, depth+1)
	}
}
