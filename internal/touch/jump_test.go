package touch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAcceptJump(t *testing.T) {
	last := Point{100, 100}

	tests := []struct {
		name string
		next Point
		want bool
	}{
		{"same point", Point{100, 100}, true},
		{"exactly threshold", Point{180, 100}, true},
		{"exactly threshold diagonal", Point{148, 164}, true}, // 48²+64² = 6400
		{"one past threshold", Point{180, 101}, false},        // 6400+1
		{"far away", Point{0, 300}, false},
		{"negative direction", Point{20, 100}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AcceptJump(tt.next, last, 80))
		})
	}
}
