package guidance

// angles are in degree, distances in meter.
const (
	STRAIGHT_ANGLE = 180.0

	// canMergeRoad
	MAX_MERGE_ANGULAR_DEVIATION = 60.0

	// same direction test
	SAME_DIRECTION_MAX_ANGULAR_DEVIATION = 90.0
	SAME_DIRECTION_LOOKAHEAD             = 100.0
	SAME_DIRECTION_SAMPLING_STEP         = 5.0
	SAME_DIRECTION_MIN_SAMPLES           = 8 // 7*5 m + first coordinate

	// narrow triangle & connect again tests
	NARROW_TURN_ANGLE           = 35.0
	NARROW_TRIANGLE_HOP_LIMIT   = 5
	NARROW_TRIANGLE_EXTRA_WIDTH = 8.0
	CONNECT_AGAIN_HOP_LIMIT     = 10

	// y arm forks
	Y_ARM_MAX_ANGULAR_DEVIATION = 100.0
	FUZZY_ANGLE_DIFFERENCE      = 25.0

	// joining roads
	MAXIMAL_ALLOWED_NO_TURN_DEVIATION = 3.0
	DEFAULT_MAX_JOINING_DISTANCE      = 30.0

	ASSUMED_LANE_WIDTH = 3.25
	LOOKAHEAD_DISTANCE = 10.0
	WALKER_HOP_LIMIT   = 255
	ANGLE_EPSILON      = 1e-9
)
