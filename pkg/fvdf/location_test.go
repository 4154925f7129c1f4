package fvdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceAlongAMeridian(t *testing.T) {
	a := NewPoint(-1.89, 52.48)
	b := NewPoint(-1.89, 52.49)

	// 0.01 degrees of latitude is always ~1112 metres
	assert.InDelta(t, 1112.0, a.Distance(&b), 0.5)
}

func TestDistanceShrinksWithLatitude(t *testing.T) {
	atEquator := NewPoint(0, 0)
	atEquatorEast := NewPoint(0.01, 0)

	atSixty := NewPoint(0, 60)
	atSixtyEast := NewPoint(0.01, 60)

	assert.InDelta(t, 1112.0, atEquator.Distance(&atEquatorEast), 0.5)

	// A degree of longitude halves by the sixtieth parallel
	assert.InDelta(t, 556.0, atSixty.Distance(&atSixtyEast), 0.5)
}

func TestDistanceIsSymmetric(t *testing.T) {
	a := NewPoint(-0.1278, 51.5074)
	b := NewPoint(-1.8904, 52.4862)

	assert.Equal(t, a.Distance(&b), b.Distance(&a))
	assert.Equal(t, 0.0, a.Distance(&a))
}

func TestMidpointIsEqualWeight(t *testing.T) {
	a := NewPoint(0, 50)
	b := NewPoint(0.002, 50.001)

	mid := a.Midpoint(&b)

	assert.InDelta(t, 0.001, mid.Longitude(), 1e-9)
	assert.InDelta(t, 50.0005, mid.Latitude(), 1e-9)
	assert.Equal(t, "Point", mid.Type)
}
