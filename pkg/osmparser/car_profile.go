package osmparser

import (
	"strconv"
	"strings"

	da "github.com/lintang-b-s/navigatorx-extractor/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-extractor/pkg/extractor"
	"github.com/paulmach/osm"
)

const (
	MPH_TO_KMH   = 1.60934
	KNOTS_TO_KMH = 1.852
)

var (
	skipHighway = map[string]struct{}{
		"footway":                {},
		"construction":           {},
		"proposed":               {},
		"abandoned":              {},
		"cycleway":               {},
		"path":                   {},
		"pedestrian":             {},
		"busway":                 {},
		"steps":                  {},
		"bridleway":              {},
		"corridor":               {},
		"street_lamp":            {},
		"bus_stop":               {},
		"crossing":               {},
		"cyclist_waiting_aid":    {},
		"elevator":               {},
		"emergency_bay":          {},
		"emergency_access_point": {},
		"give_way":               {},
		"phone":                  {},
		"ladder":                 {},
		"milestone":              {},
		"passing_place":          {},
		"platform":               {},
		"speed_camera":           {},
		"track":                  {},
		"bus_guideway":           {},
		"speed_display":          {},
		"stop":                   {},
		"toll_gantry":            {},
		"traffic_mirror":         {},
		"traffic_signals":        {},
		"trailhead":              {},
	}

	// access tags from the most to the least specific
	accessTags = []string{"motorcar", "motor_vehicle", "vehicle", "access"}

	// barriers a car can pass
	passableBarriers = map[string]struct{}{
		"no":                {},
		"cattle_grid":       {},
		"border_control":    {},
		"toll_booth":        {},
		"sally_port":        {},
		"gate":              {},
		"lift_gate":         {},
		"entrance":          {},
		"height_restrictor": {},
		"arch":              {},
	}
)

func acceptOsmWay(way *osm.Way) bool {
	highway := way.Tags.Find("highway")
	junction := way.Tags.Find("junction")
	if highway != "" {
		if _, ok := skipHighway[highway]; !ok {
			return true
		}
	} else if way.Tags.Find("route") == "road" {
		return true
	} else if junction != "" {
		return true
	}
	return false
}

func isRestricted(value string) bool {
	if value == "no" || value == "restricted" || value == "military" || value == "emergency" || value == "private" || value == "permit" {
		return true
	}
	return false
}

// isAccessDenied looks at the most specific access tag that is set.
func isAccessDenied(tags osm.Tags) bool {
	for _, key := range accessTags {
		if val := tags.Find(key); val != "" {
			return isRestricted(val)
		}
	}
	return false
}

func getReversedOneWay(way *osm.Way) (bool, bool, bool, bool) {
	vehicleForward := way.Tags.Find("vehicle:forward")
	motorVehicleForward := way.Tags.Find("motor_vehicle:forward")
	vehicleBackward := way.Tags.Find("vehicle:backward")
	motorVehicleBackward := way.Tags.Find("motor_vehicle:backward")
	return isRestricted(vehicleForward), isRestricted(motorVehicleForward), isRestricted(vehicleBackward), isRestricted(motorVehicleBackward)
}

func RoadTypeMaxSpeed2(roadType string) float64 {
	switch roadType {
	case "motorway":
		return 100
	case "trunk":
		return 70
	case "primary":
		return 65
	case "secondary":
		return 60
	case "tertiary":
		return 50
	case "unclassified":
		return 30
	case "residential":
		return 30
	case "service":
		return 20
	case "motorway_link":
		return 70
	case "trunk_link":
		return 65
	case "primary_link":
		return 60
	case "secondary_link":
		return 50
	case "tertiary_link":
		return 40
	case "living_street":
		return 10
	case "road":
		return 20
	case "track":
		return 15
	default:
		return 40
	}
}

// parseMaxspeed returns the speed in km/h. Values like "none" or "signals" are not numeric and are rejected.
func parseMaxspeed(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	factor := 1.0
	switch {
	case strings.HasSuffix(value, "mph"):
		value = strings.TrimSuffix(value, "mph")
		factor = MPH_TO_KMH
	case strings.HasSuffix(value, "km/h"):
		value = strings.TrimSuffix(value, "km/h")
	case strings.HasSuffix(value, "kmh"):
		value = strings.TrimSuffix(value, "kmh")
	case strings.HasSuffix(value, "knots"):
		value = strings.TrimSuffix(value, "knots")
		factor = KNOTS_TO_KMH
	}
	speed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || speed <= 0 {
		return 0, false
	}
	return speed * factor, true
}

func isRoundabout(way *osm.Way) bool {
	junction := way.Tags.Find("junction")
	return junction == "roundabout" || junction == "circular"
}

// getOneWay returns whether the way can be driven in its node order and against it.
func getOneWay(way *osm.Way) (bool, bool) {
	forward, backward := true, true

	switch way.Tags.Find("oneway") {
	case "yes", "true", "1":
		backward = false
	case "-1", "reverse":
		forward = false
	case "no", "false", "0":
	default:
		highway := way.Tags.Find("highway")
		if highway == "motorway" || highway == "motorway_link" || isRoundabout(way) {
			backward = false
		}
	}

	okvf, okmvf, okvb, okmvb := getReversedOneWay(way)
	if okvf || okmvf {
		forward = false
	}
	if okvb || okmvb {
		backward = false
	}
	return forward, backward
}

/*
CarProfile decides whether a way is driveable by car, in which directions and how fast.
Speeds come from maxspeed (maxspeed:forward / maxspeed:backward win for their direction)
and fall back to the highway type.
*/
type CarProfile struct {
	names *da.NameTable
}

func NewCarProfile(names *da.NameTable) *CarProfile {
	return &CarProfile{names: names}
}

// ProcessWay returns false for ways a car can not use at all.
func (c *CarProfile) ProcessWay(way *osm.Way) (extractor.WayAttributes, bool) {
	if len(way.Nodes) < 2 || !acceptOsmWay(way) {
		return extractor.WayAttributes{}, false
	}
	if isAccessDenied(way.Tags) {
		return extractor.WayAttributes{}, false
	}
	if area := way.Tags.Find("area"); area == "yes" {
		return extractor.WayAttributes{}, false
	}

	speed := RoadTypeMaxSpeed2(way.Tags.Find("highway"))
	if maxSpeed, ok := parseMaxspeed(way.Tags.Find("maxspeed")); ok {
		speed = maxSpeed
	}
	forwardSpeed, backwardSpeed := speed, speed
	if s, ok := parseMaxspeed(way.Tags.Find("maxspeed:forward")); ok {
		forwardSpeed = s
	}
	if s, ok := parseMaxspeed(way.Tags.Find("maxspeed:backward")); ok {
		backwardSpeed = s
	}

	forward, backward := getOneWay(way)
	if !forward {
		forwardSpeed = 0
	}
	if !backward {
		backwardSpeed = 0
	}

	attrs := extractor.WayAttributes{
		ForwardSpeed:  forwardSpeed,
		BackwardSpeed: backwardSpeed,
		Roundabout:    isRoundabout(way),
	}
	if name := way.Tags.Find("name"); name != "" {
		attrs.NameID = c.names.GetID(name)
	}
	return attrs, attrs.IsAccessible()
}

func isBarrier(tags osm.Tags) bool {
	if barrier := tags.Find("barrier"); barrier != "" {
		if _, ok := passableBarriers[barrier]; !ok {
			return true
		}
	}
	ford := tags.Find("ford")
	return ford != "" && ford != "no"
}

func isTrafficLight(tags osm.Tags) bool {
	return tags.Find("highway") == "traffic_signals" || tags.Find("crossing") == "traffic_signals"
}
