package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Point
		want  float64
		delta float64
	}{
		{name: "same point", a: Point{12.9716, 77.5946}, b: Point{12.9716, 77.5946}, want: 0, delta: 0.001},
		{name: "one degree of latitude", a: Point{0, 0}, b: Point{1, 0}, want: 111195, delta: 1},
		{name: "bangalore to chennai", a: Point{12.9716, 77.5946}, b: Point{13.0827, 80.2707}, want: 290000, delta: 2000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Distance(tt.a, tt.b), tt.delta)
			assert.InDelta(t, Distance(tt.a, tt.b), Distance(tt.b, tt.a), 0.001)
		})
	}
}
