package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeAngle(t *testing.T) {
	node := NewCoordinate(-7.7956, 110.3695)
	south := Destination(node, 180, 50)
	north := Destination(node, 0, 50)
	east := Destination(node, 90, 50)
	west := Destination(node, 270, 50)

	testCases := []struct {
		name  string
		third Coordinate
		want  float64
	}{
		{name: "u-turn", third: south, want: 0},
		{name: "right", third: east, want: 90},
		{name: "straight", third: north, want: 180},
		{name: "left", third: west, want: 270},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeAngle(south, node, tc.third)
			assert.InDelta(t, 0.0, AngularDeviation(tc.want, got), 0.1)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.Less(t, got, 360.0)
		})
	}
}

func TestAngleBetween(t *testing.T) {
	testCases := []struct {
		name     string
		lhs, rhs float64
		want     float64
	}{
		{name: "wraps around", lhs: 350, rhs: 10, want: 0},
		{name: "wraps around reversed", lhs: 10, rhs: 350, want: 0},
		{name: "plain", lhs: 90, rhs: 120, want: 105},
		{name: "over 180", lhs: 300, rhs: 20, want: 340},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, AngleBetween(tc.lhs, tc.rhs), 1e-9)
		})
	}
}

func TestAngularDeviation(t *testing.T) {
	assert.Equal(t, 20.0, AngularDeviation(350, 10))
	assert.Equal(t, 180.0, AngularDeviation(0, 180))
	assert.Equal(t, 0.0, AngularDeviation(42, 42))
}

func TestRestrictAngleToValidRange(t *testing.T) {
	assert.Equal(t, 350.0, RestrictAngleToValidRange(-10))
	assert.Equal(t, 10.0, RestrictAngleToValidRange(370))
	assert.Equal(t, 0.0, RestrictAngleToValidRange(360))
}

func TestBearing(t *testing.T) {
	node := NewCoordinate(-7.7956, 110.3695)
	assert.InDelta(t, 90.0, Bearing(node, Destination(node, 90, 100)), 0.01)
	assert.InDelta(t, 225.0, Bearing(node, Destination(node, 225, 100)), 0.01)
}
