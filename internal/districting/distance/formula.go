// Package distance builds DistanceTables from demand point coordinates.
//
// Formulas are a closed set (Formula) parsed once at the boundary. The
// geodesic formula matches what survey tools report for WGS-84 and is the
// default; planar is only meaningful for small projected instances.
package distance

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/banshee-data/districting/internal/districting"
)

// ErrInvalidFormula is returned for an unknown formula name or value.
var ErrInvalidFormula = errors.New("distance: invalid formula")

// Formula selects how the distance between two points is computed.
type Formula int

const (
	// Planar is the Euclidean distance over (lat, long) in degrees.
	Planar Formula = iota + 1
	// GreatCircle is the haversine distance on a sphere, in metres.
	GreatCircle
	// Geodesic is the Vincenty inverse distance on the WGS-84 ellipsoid, in
	// metres.
	Geodesic
)

var formulaNames = map[Formula]string{
	Planar:      "planar",
	GreatCircle: "greatcircle",
	Geodesic:    "geodesic",
}

func (f Formula) String() string {
	if name, ok := formulaNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Formula(%d)", int(f))
}

// ParseFormula maps a name to a Formula. "default" is accepted as an alias
// for Geodesic.
func ParseFormula(name string) (Formula, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "default" {
		return Geodesic, nil
	}
	for f, n := range formulaNames {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", name, ErrInvalidFormula)
}

// Func computes the distance from a to b.
type Func func(a, b districting.DemandPoint) float64

// Func returns the distance function for f.
func (f Formula) Func() (Func, error) {
	switch f {
	case Planar:
		return planar, nil
	case GreatCircle:
		return haversineMeters, nil
	case Geodesic:
		return vincentyMeters, nil
	}
	return nil, fmt.Errorf("%v: %w", f, ErrInvalidFormula)
}

// BuildTable computes the distance for every ordered pair of points,
// self pairs included.
func BuildTable(points []districting.DemandPoint, f Formula) (*districting.DenseTable, error) {
	fn, err := f.Func()
	if err != nil {
		return nil, err
	}

	ids := make([]int, len(points))
	for i, p := range points {
		ids[i] = p.ID
	}
	table, err := districting.NewDenseTable(ids)
	if err != nil {
		return nil, err
	}

	for _, a := range points {
		for _, b := range points {
			if err := table.Set(a.ID, b.ID, fn(a, b)); err != nil {
				return nil, fmt.Errorf("%s distance (%d, %d): %w", f, a.ID, b.ID, err)
			}
		}
	}
	return table, nil
}

func planar(a, b districting.DemandPoint) float64 {
	return math.Hypot(a.Lat-b.Lat, a.Long-b.Long)
}
