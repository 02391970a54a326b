package osmparser

type NodeType uint8

const (
	END_NODE NodeType = iota
	BETWEEN_NODE
	JUNCTION_NODE
)

type TurnRestriction uint8

const (
	NONE TurnRestriction = iota
	NO_LEFT_TURN
	NO_RIGHT_TURN
	NO_STRAIGHT_ON
	NO_U_TURN
	ONLY_LEFT_TURN
	ONLY_RIGHT_TURN
	ONLY_STRAIGHT_ON
	NO_ENTRY
	NO_EXIT
	INVALID
)

func parseTurnRestriction(value string) TurnRestriction {
	switch value {
	case "no_left_turn":
		return NO_LEFT_TURN
	case "no_right_turn":
		return NO_RIGHT_TURN
	case "no_straight_on":
		return NO_STRAIGHT_ON
	case "no_u_turn":
		return NO_U_TURN
	case "only_left_turn":
		return ONLY_LEFT_TURN
	case "only_right_turn":
		return ONLY_RIGHT_TURN
	case "only_straight_on":
		return ONLY_STRAIGHT_ON
	case "no_entry":
		return NO_ENTRY
	case "no_exit":
		return NO_EXIT
	default:
		return INVALID
	}
}

func (tr TurnRestriction) isOnly() bool {
	return tr == ONLY_LEFT_TURN || tr == ONLY_RIGHT_TURN || tr == ONLY_STRAIGHT_ON
}

func (tr TurnRestriction) isNo() bool {
	switch tr {
	case NO_LEFT_TURN, NO_RIGHT_TURN, NO_STRAIGHT_ON, NO_U_TURN, NO_ENTRY, NO_EXIT:
		return true
	}
	return false
}

var (
	// https://wiki.openstreetmap.org/wiki/OSM_tags_for_routing/Telenav
	acceptedHighway = map[string]struct{}{
		"motorway":         struct{}{},
		"motorway_link":    struct{}{},
		"trunk":            struct{}{},
		"trunk_link":       struct{}{},
		"primary":          struct{}{},
		"primary_link":     struct{}{},
		"secondary":        struct{}{},
		"secondary_link":   struct{}{},
		"residential":      struct{}{},
		"residential_link": struct{}{},
		"service":          struct{}{},
		"tertiary":         struct{}{},
		"tertiary_link":    struct{}{},
		"road":             struct{}{},
		"track":            struct{}{},
		"unclassified":     struct{}{},
		"living_street":    struct{}{},
		"motorroad":        struct{}{},
	}

	//https://wiki.openstreetmap.org/wiki/Key:barrier
	// barrier nodes with access=no block every turn through them.
	// misal portal FMIPA UGM yang hanya dibuka di luar jam 08.00-16.00 tidak diberi access=no, jadi tidak dihitung barrier.
	acceptedBarrierType = map[string]struct{}{
		"bollard":        struct{}{},
		"swing_gate":     struct{}{},
		"jersey_barrier": struct{}{},
		"lift_gate":      struct{}{},
		"block":          struct{}{},
		"gate":           struct{}{},
	}
)
