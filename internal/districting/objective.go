package districting

import (
	"fmt"
	"sort"
	"strings"
)

// Objective names a scalar score over a finished Solution. All objectives are
// minimised.
type Objective int

const (
	// SumAllToCenter is the sum over clusters of center-to-member distances.
	SumAllToCenter Objective = iota + 1
	// SumAllToAll is the sum over clusters of all ordered member-pair
	// distances, self pairs included.
	SumAllToAll
	// LoadRange is the largest cluster load minus the smallest.
	LoadRange
)

// ObjectiveInfo describes an objective for listings.
type ObjectiveInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

var objectiveCatalogue = map[Objective]ObjectiveInfo{
	SumAllToCenter: {
		Name:        "sumAllToCenter",
		Description: "Sum over clusters of the distances from the center to every member.",
	},
	SumAllToAll: {
		Name: "sumAllToAll",
		Description: "Sum over clusters of the distances between every ordered pair of members, " +
			"self pairs included (each unordered pair counts twice).",
	},
	LoadRange: {
		Name:        "loadRange",
		Description: "Largest cluster load minus smallest cluster load.",
	},
}

func (o Objective) String() string {
	if info, ok := objectiveCatalogue[o]; ok {
		return info.Name
	}
	return fmt.Sprintf("Objective(%d)", int(o))
}

// MarshalText encodes the objective by name.
func (o Objective) MarshalText() ([]byte, error) {
	if _, ok := objectiveCatalogue[o]; !ok {
		return nil, fmt.Errorf("%d: %w", int(o), ErrInvalidObjective)
	}
	return []byte(o.String()), nil
}

// UnmarshalText decodes a name accepted by ParseObjective.
func (o *Objective) UnmarshalText(text []byte) error {
	parsed, err := ParseObjective(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// ParseObjective maps a name such as "loadRange" to its Objective. Matching
// ignores case and surrounding space.
func ParseObjective(name string) (Objective, error) {
	trimmed := strings.TrimSpace(name)
	for o, info := range objectiveCatalogue {
		if strings.EqualFold(info.Name, trimmed) {
			return o, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", name, ErrInvalidObjective)
}

// AllObjectives returns every objective in declaration order.
func AllObjectives() []Objective {
	return []Objective{SumAllToCenter, SumAllToAll, LoadRange}
}

// Objectives lists the catalogue sorted by name.
func Objectives() []ObjectiveInfo {
	infos := make([]ObjectiveInfo, 0, len(objectiveCatalogue))
	for _, info := range objectiveCatalogue {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}
