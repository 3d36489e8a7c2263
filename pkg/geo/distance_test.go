package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(f float64) *float64 { return &f }

func TestDistanceMiles(t *testing.T) {
	tests := []struct {
		name  string
		a, b  *Point
		want  float64
		delta float64
	}{
		{
			name:  "same point",
			a:     &Point{Longitude: -73.9857, Latitude: 40.7484},
			b:     &Point{Longitude: -73.9857, Latitude: 40.7484},
			want:  0,
			delta: 1e-9,
		},
		{
			name:  "one degree of latitude",
			a:     &Point{Longitude: 0, Latitude: 0},
			b:     &Point{Longitude: 0, Latitude: 1},
			want:  69.1,
			delta: 0.1,
		},
		{
			name:  "new york to los angeles",
			a:     &Point{Longitude: -74.0060, Latitude: 40.7128},
			b:     &Point{Longitude: -118.2437, Latitude: 34.0522},
			want:  2445,
			delta: 5,
		},
		{
			name:  "missing first point",
			a:     nil,
			b:     &Point{Longitude: 1, Latitude: 1},
			want:  0,
			delta: 0,
		},
		{
			name:  "missing second point",
			a:     &Point{Longitude: 1, Latitude: 1},
			b:     nil,
			want:  0,
			delta: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DistanceMiles(tt.a, tt.b), tt.delta)
		})
	}
}

func TestDistanceMiles_Symmetric(t *testing.T) {
	a := &Point{Longitude: 2.3522, Latitude: 48.8566}
	b := &Point{Longitude: -0.1276, Latitude: 51.5072}
	assert.InDelta(t, DistanceMiles(a, b), DistanceMiles(b, a), 1e-9)
}

func TestNewPoint(t *testing.T) {
	assert.Nil(t, NewPoint(nil, ptr(1)))
	assert.Nil(t, NewPoint(ptr(1), nil))
	assert.Equal(t, &Point{Longitude: 1, Latitude: 2}, NewPoint(ptr(1), ptr(2)))
}

func TestKilometersToMiles(t *testing.T) {
	assert.InDelta(t, 6.2137, KilometersToMiles(10), 0.001)
}
