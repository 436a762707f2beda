// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"math"
	"reflect"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cosineSimilarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("cosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMaxMarginalRelevancePicksMostRelevantFirst(t *testing.T) {
	query := []float32{1, 0}
	candidates := [][]float32{{0, 1}, {1, 0}}

	got := maxMarginalRelevance(query, candidates, 1)
	if !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("selection = %v, want [1]", got)
	}
}

func TestMaxMarginalRelevancePrefersDiversity(t *testing.T) {
	query := []float32{1, 0}
	candidates := [][]float32{
		{0.9, 0.1},  // most relevant
		{0.9, 0.1},  // exact duplicate of the first
		{0.1, -0.9}, // weakly relevant but orthogonal to the first
	}

	got := maxMarginalRelevance(query, candidates, 2)
	if !reflect.DeepEqual(got, []int{0, 2}) {
		t.Errorf("selection = %v, want [0 2] (duplicate skipped)", got)
	}
}

func TestMaxMarginalRelevanceBounds(t *testing.T) {
	query := []float32{1, 0}
	candidates := [][]float32{{1, 0}, {0, 1}}

	if got := maxMarginalRelevance(query, candidates, 0); got != nil {
		t.Errorf("k=0 selection = %v, want nil", got)
	}
	if got := maxMarginalRelevance(query, nil, 3); got != nil {
		t.Errorf("no candidates selection = %v, want nil", got)
	}
	if got := maxMarginalRelevance(query, candidates, 10); len(got) != 2 {
		t.Errorf("oversized k selection = %v, want all candidates", got)
	}
}
