package osmparser

import (
	"strings"

	da "github.com/lintang-b-s/navigatorx-extractor/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-extractor/pkg/util"
	"github.com/paulmach/osm"
)

const (
	ROLE_FROM = "from"
	ROLE_VIA  = "via"
	ROLE_TO   = "to"
)

// vehicle classes a car belongs to, checked against the except tag
var carClasses = []string{"motorcar", "motor_vehicle", "vehicle"}

// restrictionValue returns the restriction kind ("no_left_turn", "only_straight_on", ...) and the
// raw condition of conditional restrictions ("Mo-Fr 07:00-09:00").
func restrictionValue(tags osm.Tags) (string, string) {
	for _, key := range []string{"restriction:motorcar", "restriction"} {
		if val := tags.Find(key); val != "" {
			return val, ""
		}
	}

	for _, key := range []string{"restriction:motorcar:conditional", "restriction:conditional"} {
		val := tags.Find(key)
		if val == "" {
			continue
		}
		// "no_left_turn @ (Mo-Fr 07:00-09:00); no_right_turn @ (Sa)": the first entry wins
		kind, condition, found := strings.Cut(val, "@")
		if !found {
			return "", ""
		}
		condition = strings.TrimSpace(condition)
		if strings.HasPrefix(condition, "(") {
			if end := strings.Index(condition, ")"); end > 0 {
				condition = condition[1:end]
			}
		} else if before, _, ok := strings.Cut(condition, ";"); ok {
			condition = before
		}
		return strings.TrimSpace(kind), strings.TrimSpace(condition)
	}
	return "", ""
}

func isExcepted(tags osm.Tags) bool {
	except := tags.Find("except")
	if except == "" {
		return false
	}
	for _, class := range strings.Split(except, ";") {
		for _, carClass := range carClasses {
			if strings.TrimSpace(class) == carClass {
				return true
			}
		}
	}
	return false
}

/*
parseRestrictionRelation turns a type=restriction relation into an input restriction.
Only relations with exactly one from way, one to way and one via (a node or a way) are
supported; the second return value is false for everything else. Unparseable conditions
are reported as ErrFilterableData.
*/
func parseRestrictionRelation(relation *osm.Relation) (da.InputRestriction, bool, error) {
	if relation.Tags.Find("type") != "restriction" || isExcepted(relation.Tags) {
		return da.InputRestriction{}, false, nil
	}
	kind, condition := restrictionValue(relation.Tags)

	var isOnly bool
	switch {
	case strings.HasPrefix(kind, "only_"):
		isOnly = true
	case strings.HasPrefix(kind, "no_"):
		isOnly = false
	default:
		return da.InputRestriction{}, false, nil
	}

	var (
		from, to          []int64
		viaNodes, viaWays []int64
	)
	for _, member := range relation.Members {
		switch member.Role {
		case ROLE_FROM:
			if member.Type == osm.TypeWay {
				from = append(from, member.Ref)
			}
		case ROLE_TO:
			if member.Type == osm.TypeWay {
				to = append(to, member.Ref)
			}
		case ROLE_VIA:
			switch member.Type {
			case osm.TypeNode:
				viaNodes = append(viaNodes, member.Ref)
			case osm.TypeWay:
				viaWays = append(viaWays, member.Ref)
			}
		}
	}
	if len(from) != 1 || len(to) != 1 || len(viaNodes)+len(viaWays) != 1 {
		return da.InputRestriction{}, false, nil
	}

	var r da.InputRestriction
	if len(viaNodes) == 1 {
		r = da.NewInputNodeRestriction(da.OSMWayID(from[0]), da.OSMNodeID(viaNodes[0]), da.OSMWayID(to[0]), isOnly)
	} else {
		r = da.NewInputWayRestriction(da.OSMWayID(from[0]), da.OSMWayID(viaWays[0]), da.OSMWayID(to[0]), isOnly)
	}

	if condition != "" {
		oh, err := ParseOpeningHours(condition)
		if err != nil {
			return da.InputRestriction{}, false, util.WrapErrorf(err, util.ErrFilterableData,
				"restriction relation %d", relation.ID)
		}
		r.Condition = oh
	}
	return r, true, nil
}
