package vapeindex

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name   string
		input  float64
		absent bool
		want   float64
	}{
		{"positive value passes", 1.25, false, 1.25},
		{"small positive passes", 1e-12, false, 1e-12},
		{"zero becomes absent", 0, true, 0},
		{"negative becomes absent", -0.5, true, 0},
		{"positive infinity becomes absent", math.Inf(1), true, 0},
		{"negative infinity becomes absent", math.Inf(-1), true, 0},
		{"nan stays absent", math.NaN(), true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.input)
			if tt.absent {
				assert.True(t, math.IsNaN(got))
			} else {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []float64{1.25, 0, -3, math.Inf(1), math.Inf(-1), math.NaN(), 0.001}

	for _, v := range inputs {
		once := Sanitize(v)
		twice := Sanitize(once)
		if math.IsNaN(once) {
			assert.True(t, math.IsNaN(twice))
		} else {
			assert.Equal(t, once, twice)
		}
	}
}

func TestSanitizeLog(t *testing.T) {
	assert.Equal(t, -0.25, SanitizeLog(-0.25))
	assert.Equal(t, 0.0, SanitizeLog(0))
	assert.True(t, math.IsNaN(SanitizeLog(math.Inf(1))))
	assert.True(t, math.IsNaN(SanitizeLog(math.Inf(-1))))
	assert.True(t, math.IsNaN(SanitizeLog(math.NaN())))
}

func TestNanProd(t *testing.T) {
	t.Run("empty is absent", func(t *testing.T) {
		var p nanProd
		assert.True(t, math.IsNaN(p.value()))
	})

	t.Run("skips absent entries", func(t *testing.T) {
		var p nanProd
		p.add(2)
		p.add(math.NaN())
		p.add(3)
		assert.Equal(t, 6.0, p.value())
	})

	t.Run("all absent stays absent", func(t *testing.T) {
		var p nanProd
		p.add(math.NaN())
		p.add(math.NaN())
		assert.True(t, math.IsNaN(p.value()))
	})

	t.Run("single entry", func(t *testing.T) {
		var p nanProd
		p.add(0.5)
		assert.Equal(t, 0.5, p.value())
	})
}
