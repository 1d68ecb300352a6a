package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoveNumbersPMM95b(t *testing.T) {
	tests := []struct {
		name      string
		frequency float64
		want      LoveNumbers
	}{
		{"long period", 4.0, LoveNumbers{K: 0.299, H: 0.606, L: 0.0840}},
		{"Q1", 13.398660900971143, LoveNumbers{K: 0.29661217847085963, H: 0.60022176054190279, L: 0.083754256695820012}},
		{"semidiurnal", 23.0, LoveNumbers{K: 0.302, H: 0.609, L: 0.0852}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LoveNumbersPMM95b(tt.frequency)
			assert.InDelta(t, tt.want.K, got.K, 1e-6)
			assert.InDelta(t, tt.want.H, got.H, 1e-6)
			assert.InDelta(t, tt.want.L, got.L, 1e-6)
		})
	}
}

func TestLoveNumbersGamma2(t *testing.T) {
	n := LoveNumbers{K: 0.3, H: 0.6}
	assert.InDelta(t, 0.7, n.Gamma2(), 1e-15)
}
