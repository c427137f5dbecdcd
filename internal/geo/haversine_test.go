package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want float64
	}{
		{name: "same point", a: Point{Lat: 12.97, Lng: 77.59}, b: Point{Lat: 12.97, Lng: 77.59}, want: 0},
		{name: "one degree longitude at equator", a: Point{Lat: 0, Lng: 0}, b: Point{Lat: 0, Lng: 1}, want: 111.19},
		{name: "one degree latitude", a: Point{Lat: 0, Lng: 0}, b: Point{Lat: 1, Lng: 0}, want: 111.19},
		{name: "antipodal", a: Point{Lat: 0, Lng: 0}, b: Point{Lat: 0, Lng: 180}, want: 20015.09},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Haversine(tt.a, tt.b), 0.01)
		})
	}
}

func TestHaversineSymmetric(t *testing.T) {
	a := Point{Lat: 28.6139, Lng: 77.2090}
	b := Point{Lat: 19.0760, Lng: 72.8777}
	assert.InDelta(t, Haversine(a, b), Haversine(b, a), 1e-9)
}
