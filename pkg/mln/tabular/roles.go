package tabular

import (
	"fmt"
	"strconv"
	"strings"
)

// Role tells the converter what a raw column holds.
type Role int

const (
	Ignore Role = iota
	Node
	NodeWeight
	Source
	Target
	Interaction
	EdgeWeight
	EdgeDirection
	Shared
	Other
)

var roleLabels = map[Role]string{
	Ignore:        "-",
	Node:          "Node",
	NodeWeight:    "Node weight",
	Source:        "Source node",
	Target:        "Target node",
	Interaction:   "Interacts with",
	EdgeWeight:    "Edge weight",
	EdgeDirection: "Edge direction",
	Shared:        "Shared column",
	Other:         "Other column",
}

// String returns the header label of r, e.g. "Source node".
func (r Role) String() string {
	if s, ok := roleLabels[r]; ok {
		return s
	}
	return "Role(" + strconv.Itoa(int(r)) + ")"
}

// repeatable roles may be assigned to several columns of one sheet.
func (r Role) repeatable() bool { return r == Shared || r == Other || r == Ignore }

func (r Role) forNodes() bool { return r == Node || r == NodeWeight }
func (r Role) forEdges() bool {
	return r == Source || r == Target || r == Interaction || r == EdgeWeight || r == EdgeDirection
}

// Assignment binds a column of a sheet to a role. Layer is zero for roles
// that apply to every layer the sheet covers; otherwise it is the 1-based
// layer the column belongs to (for inter-layer sheets, the source layer k
// of the coupling k->k+1). Per-layer roles are only meaningful in a sheet
// shared by all layers.
type Assignment struct {
	Column string
	Role   Role
	Layer  int
}

// Label returns the role label as written in a header mapping, such as
// "Node weight layer 2" or "Source node layer 1->2".
func (a Assignment) Label(inter bool) string {
	if a.Layer == 0 {
		return a.Role.String()
	}
	if inter {
		return fmt.Sprintf("%s layer %d->%d", a.Role, a.Layer, a.Layer+1)
	}
	return fmt.Sprintf("%s layer %d", a.Role, a.Layer)
}

// ParseRole parses a role label. Per-layer labels end with "layer i", or
// "layer i->j" for inter-layer roles, in which case j must be i+1.
func ParseRole(label string) (Role, int, error) {
	label = strings.TrimSpace(label)
	base, layer := label, 0
	if i := strings.LastIndex(label, " layer "); i >= 0 {
		base = label[:i]
		n, err := parseLayer(label[i+len(" layer "):])
		if err != nil {
			return Ignore, 0, fmt.Errorf("role %q: %w", label, err)
		}
		layer = n
	}
	for r, s := range roleLabels {
		if strings.EqualFold(s, base) {
			if layer > 0 && r == Ignore {
				return Ignore, 0, fmt.Errorf("role %q cannot be bound to a layer", label)
			}
			return r, layer, nil
		}
	}
	return Ignore, 0, fmt.Errorf("unknown role %q", label)
}

func parseLayer(s string) (int, error) {
	from, to, coupled := strings.Cut(s, "->")
	k, err := strconv.Atoi(strings.TrimSpace(from))
	if err != nil || k < 1 {
		return 0, fmt.Errorf("invalid layer %q", s)
	}
	if coupled {
		j, err := strconv.Atoi(strings.TrimSpace(to))
		if err != nil || j != k+1 {
			return 0, fmt.Errorf("invalid coupling %q", s)
		}
	}
	return k, nil
}
