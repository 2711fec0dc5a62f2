package datastructure

import "math"

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{
		Lat: lat,
		Lon: lon,
	}
}

// FixedCoordinate is a coordinate in micro-degrees, the on-disk representation of a node.
type FixedCoordinate struct {
	Lat int32
	Lon int32
}

func (c Coordinate) ToFixed() FixedCoordinate {
	return FixedCoordinate{
		Lat: int32(math.Round(c.Lat * COORDINATE_PRECISION)),
		Lon: int32(math.Round(c.Lon * COORDINATE_PRECISION)),
	}
}

func (f FixedCoordinate) ToCoordinate() Coordinate {
	return Coordinate{
		Lat: float64(f.Lat) / COORDINATE_PRECISION,
		Lon: float64(f.Lon) / COORDINATE_PRECISION,
	}
}
