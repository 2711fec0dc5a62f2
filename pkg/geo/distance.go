package geo

import (
	"github.com/golang/geo/s2"
	"github.com/lintang-b-s/navigatorx-extractor/pkg/datastructure"
)

const (
	earthRadiusM = 6371007
)

// SegmentLength returns the great circle distance between a and b in meters.
func SegmentLength(a, b datastructure.Coordinate) float64 {
	return s2.LatLngFromDegrees(a.Lat, a.Lon).Distance(s2.LatLngFromDegrees(b.Lat, b.Lon)).Radians() * earthRadiusM
}
