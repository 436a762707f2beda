// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"reflect"
	"testing"
)

func TestParseExpansion(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want []string
	}{
		{
			"plain lines",
			"How does attention work?\nWhat are attention mechanisms?",
			3,
			[]string{"q", "How does attention work?", "What are attention mechanisms?"},
		},
		{
			"numbered lines stripped",
			"1. How does attention work?\n2) What are attention mechanisms?\n- Why attention?",
			4,
			[]string{"q", "How does attention work?", "What are attention mechanisms?", "Why attention?"},
		},
		{
			"blank lines and duplicates of the original dropped",
			"\nq\n\nHow does attention work?\n",
			3,
			[]string{"q", "How does attention work?"},
		},
		{
			"capped at max",
			"one\ntwo\nthree\nfour",
			3,
			[]string{"q", "one", "two"},
		},
		{
			"empty response keeps original",
			"",
			3,
			[]string{"q"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseExpansion("q", tt.text, tt.max); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseExpansion = %v, want %v", got, tt.want)
			}
		})
	}
}
