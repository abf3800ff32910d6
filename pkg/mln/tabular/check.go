package tabular

import (
	"fmt"
	"strings"

	"github.com/timenexus/timenexus/pkg/errors"
	"github.com/timenexus/timenexus/pkg/mln"
)

const (
	titleDuplicated   = "Conversion error: duplicated column type"
	titleMissing      = "Conversion error: missing column type"
	titleInteract     = "Conversion error: incompatibility with interact type"
	titleUniqueShared = "Conversion error: incompatibility between unique and shared types"
	titleAllLayers    = "Conversion error: all layers are not defined"
	titleValueTypes   = "Conversion error: incompatible types within a selected table"
	titleInconsistent = "Conversion error: inconsistent tables"
	titleTables       = "Conversion error: missing table"
	titleColumn       = "Conversion error: missing column"
)

func converterError(title, format string, args ...any) error {
	return errors.New(errors.ErrCodeConverter, title, format, args...)
}

// kindLabel names a sheet kind the way error messages refer to it.
func kindLabel(kind mln.TableKind) string {
	switch kind {
	case mln.NodeTable:
		return "nodes"
	case mln.IntraEdgeTable:
		return "intra-layer edges"
	}
	return "inter-layer edges"
}

func within(tab int, kind mln.TableKind) string {
	return fmt.Sprintf("\n\nError within the tab %d for \"%s\".", tab, kindLabel(kind))
}

// usage summarises the role assignments of a sheet: unique[r] is set when
// r applies to all layers, layered[r] holds the layers r is bound to.
type usage struct {
	unique  map[Role]bool
	layered map[Role]map[int]bool
}

func (u usage) any(r Role) bool { return u.unique[r] || len(u.layered[r]) > 0 }

func (u usage) layers(roles ...Role) int {
	var n int
	for _, r := range roles {
		n += len(u.layered[r])
	}
	return n
}

// checkRoles verifies the role mapping of sheet tab (1-based) covering
// count layers. shared is set when one sheet describes every layer.
func checkRoles(s *Sheet, kind mln.TableKind, tab, count int, shared bool) error {
	inter := kind == mln.InterEdgeTable
	u := usage{unique: make(map[Role]bool), layered: make(map[Role]map[int]bool)}
	seen := make(map[string]bool)
	for _, a := range s.Roles {
		if a.Role == Ignore {
			continue
		}
		label := a.Label(inter)
		if !a.Role.repeatable() {
			if seen[label] {
				return converterError(titleDuplicated,
					"The type \"%s\" for the column \"%s\" is duplicated.%s", label, a.Column, within(tab, kind))
			}
			seen[label] = true
		}
		if _, ok := s.Column(a.Column); !ok {
			return converterError(titleColumn,
				"The column \"%s\" does not exist.%s", a.Column, within(tab, kind))
		}
		if (kind == mln.NodeTable && a.Role.forEdges()) || (kind != mln.NodeTable && a.Role.forNodes()) {
			return converterError(titleUniqueShared,
				"The type \"%s\" cannot be used for \"%s\".%s", label, kindLabel(kind), within(tab, kind))
		}
		if a.Layer > 0 && (!shared || a.Layer > count) {
			return converterError(titleAllLayers,
				"The type \"%s\" does not match any layer of the table.%s", label, within(tab, kind))
		}
		if a.Layer == 0 {
			u.unique[a.Role] = true
			continue
		}
		if u.layered[a.Role] == nil {
			u.layered[a.Role] = make(map[int]bool)
		}
		u.layered[a.Role][a.Layer] = true
	}

	if kind == mln.NodeTable {
		return checkNodeRoles(u, tab, count)
	}
	return checkEdgeRoles(u, kind, tab, count)
}

func checkNodeRoles(u usage, tab, count int) error {
	kind := mln.NodeTable
	switch {
	case !u.any(Node):
		return missingTypes(tab, kind, "node")
	case u.unique[Node] && u.layers(Node) > 0,
		u.unique[NodeWeight] && u.layers(NodeWeight) > 0:
		return uniqueSharedError(tab, kind)
	case !u.unique[Node] && u.layers(Node) < count:
		return allLayersError(tab, kind)
	}
	return nil
}

func checkEdgeRoles(u usage, kind mln.TableKind, tab, count int) error {
	var missing []string
	if !u.any(Source) && !u.any(Interaction) {
		missing = append(missing, `Source node (or "interacts with")`)
	}
	if !u.any(Target) && !u.any(Interaction) {
		missing = append(missing, `Target node (or "interacts with")`)
	}
	if len(missing) > 0 {
		return missingTypes(tab, kind, missing...)
	}

	uniqueEnds := u.unique[Source] || u.unique[Target] || u.unique[Interaction]
	layeredEnds := u.layers(Source, Target, Interaction) > 0
	if (u.unique[Source] || u.unique[Target]) && u.unique[Interaction] {
		return interactError(tab, kind)
	}
	for k := range u.layered[Interaction] {
		if u.layered[Source][k] || u.layered[Target][k] {
			return interactError(tab, kind)
		}
	}
	if uniqueEnds && layeredEnds {
		return uniqueSharedError(tab, kind)
	}
	for _, r := range []Role{EdgeWeight, EdgeDirection} {
		if u.unique[r] && u.layers(r) > 0 {
			return uniqueSharedError(tab, kind)
		}
	}
	if layeredEnds {
		for k := 1; k <= count; k++ {
			pair := u.layered[Source][k] && u.layered[Target][k]
			if !pair && !u.layered[Interaction][k] {
				return allLayersError(tab, kind)
			}
		}
	}
	return nil
}

func missingTypes(tab int, kind mln.TableKind, types ...string) error {
	return converterError(titleMissing, "The following types have to be defined: \"[%s]\".%s",
		strings.Join(types, ", "), within(tab, kind))
}

func interactError(tab int, kind mln.TableKind) error {
	return converterError(titleInteract,
		"The types \"source node\" and \"target node\" are incompatible with \"interact with\".%s", within(tab, kind))
}

func uniqueSharedError(tab int, kind mln.TableKind) error {
	return converterError(titleUniqueShared,
		"The types \"source/target node\" and \"interact with\" are incompatible with "+
			"\"source/target-node layer i\" and \"interact-with layer i\",\n"+
			"as well as \"node\" with \"node layer i\" and \"node weight\" with \"node-weight layer i\".%s",
		within(tab, kind))
}

func allLayersError(tab int, kind mln.TableKind) error {
	return converterError(titleAllLayers,
		"If the types \"node layer i\", \"node-weight layer i\", or \"source/target layer i(->j)\" "+
			"and \"interact with layer i(->j)\", are used, then all layers have to be defined.%s",
		within(tab, kind))
}

func valueTypeError(tab int, kind mln.TableKind, column string) error {
	return converterError(titleValueTypes,
		"The weight column should be of type 'double' (float number) and direction column of type 'boolean' (true/false)."+
			"\n\nError within the tab %d for the column \"%s\" for \"%s\".", tab, column, kindLabel(kind))
}

func interactParseError(tab int, kind mln.TableKind, column string) error {
	return converterError(titleValueTypes,
		"The \"interacts with\" column cannot be parsed. It should fit the format: \"<source> (interacts with) <target>\"."+
			"\n\nError within the tab %d for the column \"%s\" for \"%s\".", tab, column, kindLabel(kind))
}
