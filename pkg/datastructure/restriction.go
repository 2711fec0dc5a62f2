package datastructure

import (
	"fmt"

	"github.com/lintang-b-s/navigatorx-extractor/pkg/util"
)

type RestrictionType uint8

const (
	NODE_RESTRICTION RestrictionType = iota
	WAY_RESTRICTION
)

func (t RestrictionType) String() string {
	switch t {
	case NODE_RESTRICTION:
		return "node"
	case WAY_RESTRICTION:
		return "way"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

const (
	restrictionFlagIsOnly uint8 = 1 << 0
	restrictionFlagIsWay  uint8 = 1 << 1
	restrictionFlagsMask        = restrictionFlagIsOnly | restrictionFlagIsWay
)

// Restriction is either a NodeRestriction or a WayRestriction.
type Restriction interface {
	Type() RestrictionType
	isRestriction()
}

// NodeRestriction: arriving at Via from From, the turn towards To is restricted (or mandatory).
type NodeRestriction struct {
	From Index
	Via  Index
	To   Index
}

func NewNodeRestriction(from, via, to Index) NodeRestriction {
	return NodeRestriction{From: from, Via: via, To: to}
}

func (NodeRestriction) Type() RestrictionType { return NODE_RESTRICTION }
func (NodeRestriction) isRestriction()        {}

func (r NodeRestriction) Valid() bool {
	return r.From != INVALID_INDEX && r.Via != INVALID_INDEX && r.To != INVALID_INDEX
}

// WayRestriction spans a via way running from InRestriction.Via to OutRestriction.Via.
// InRestriction.To and OutRestriction.From are the via way's nodes adjacent to those ends.
type WayRestriction struct {
	InRestriction  NodeRestriction
	OutRestriction NodeRestriction
}

func NewWayRestriction(in, out NodeRestriction) WayRestriction {
	return WayRestriction{InRestriction: in, OutRestriction: out}
}

func (WayRestriction) Type() RestrictionType { return WAY_RESTRICTION }
func (WayRestriction) isRestriction()        {}

type TurnRestriction struct {
	Restriction Restriction
	IsOnly      bool
}

func NewNodeTurnRestriction(r NodeRestriction, isOnly bool) TurnRestriction {
	return TurnRestriction{Restriction: r, IsOnly: isOnly}
}

func NewWayTurnRestriction(r WayRestriction, isOnly bool) TurnRestriction {
	return TurnRestriction{Restriction: r, IsOnly: isOnly}
}

func (t TurnRestriction) Type() RestrictionType {
	return t.Restriction.Type()
}

func (t TurnRestriction) AsNodeRestriction() NodeRestriction {
	return t.Restriction.(NodeRestriction)
}

func (t TurnRestriction) AsWayRestriction() WayRestriction {
	return t.Restriction.(WayRestriction)
}

// Flags returns the on-disk discriminator byte.
func (t TurnRestriction) Flags() uint8 {
	flags := int32(0)
	flags = util.BitPackIntBool(flags, t.IsOnly, 0)
	flags = util.BitPackIntBool(flags, t.Type() == WAY_RESTRICTION, 1)
	return uint8(flags)
}

// ParseRestrictionFlags decodes the discriminator byte. Unknown bits mean the stream is corrupt.
func ParseRestrictionFlags(flags uint8) (RestrictionType, bool, error) {
	if flags&^restrictionFlagsMask != 0 {
		return 0, false, util.WrapErrorf(util.ErrCorrupt, util.ErrCorruptData,
			"unknown turn restriction flags %#08b", flags)
	}
	restrictionType := NODE_RESTRICTION
	if flags&restrictionFlagIsWay != 0 {
		restrictionType = WAY_RESTRICTION
	}
	return restrictionType, flags&restrictionFlagIsOnly != 0, nil
}

// ViaNodes returns the nodes a restriction pins in the graph: the via node, or both ends of the via way.
func (t TurnRestriction) ViaNodes() []Index {
	switch r := t.Restriction.(type) {
	case NodeRestriction:
		return []Index{r.Via}
	case WayRestriction:
		return []Index{r.InRestriction.Via, r.OutRestriction.Via}
	}
	return nil
}

// Nodes returns every node a restriction refers to, legs included.
func (t TurnRestriction) Nodes() []Index {
	switch r := t.Restriction.(type) {
	case NodeRestriction:
		return []Index{r.From, r.Via, r.To}
	case WayRestriction:
		in, out := r.InRestriction, r.OutRestriction
		return []Index{in.From, in.Via, in.To, out.From, out.Via, out.To}
	}
	return nil
}

type ConditionalTurnRestriction struct {
	TurnRestriction
	Condition []OpeningHours
}

func NewConditionalTurnRestriction(r TurnRestriction, condition []OpeningHours) ConditionalTurnRestriction {
	return ConditionalTurnRestriction{TurnRestriction: r, Condition: condition}
}

// InputRestriction is a restriction relation as scanned, still referring to OSM ways.
// ViaNode is set for node restrictions, ViaWay for way restrictions.
type InputRestriction struct {
	Type      RestrictionType
	FromWay   OSMWayID
	ViaNode   OSMNodeID
	ViaWay    OSMWayID
	ToWay     OSMWayID
	IsOnly    bool
	Condition []OpeningHours
}

func NewInputNodeRestriction(from OSMWayID, via OSMNodeID, to OSMWayID, isOnly bool) InputRestriction {
	return InputRestriction{Type: NODE_RESTRICTION, FromWay: from, ViaNode: via, ToWay: to, IsOnly: isOnly}
}

func NewInputWayRestriction(from, via, to OSMWayID, isOnly bool) InputRestriction {
	return InputRestriction{Type: WAY_RESTRICTION, FromWay: from, ViaWay: via, ToWay: to, IsOnly: isOnly}
}

func (r InputRestriction) IsConditional() bool {
	return len(r.Condition) > 0
}
