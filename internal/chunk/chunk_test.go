// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chunk

import (
	"reflect"
	"strings"
	"testing"

	"github.com/raihanfadhilah/arxiv-chatbot/pkg/types"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     types.ChunkConfig
		wantErr bool
	}{
		{"defaults", types.ChunkConfig{}, false},
		{"explicit", types.ChunkConfig{Size: 512, Overlap: 64}, false},
		{"zero overlap", types.ChunkConfig{Size: 512}, false},
		{"negative size", types.ChunkConfig{Size: -1}, true},
		{"negative overlap", types.ChunkConfig{Size: 512, Overlap: -1}, true},
		{"overlap equals size", types.ChunkConfig{Size: 100, Overlap: 100}, true},
		{"overlap exceeds size", types.ChunkConfig{Size: 100, Overlap: 200}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New(%+v) err = %v, wantErr %v", tt.cfg, err, tt.wantErr)
			}
		})
	}
}

func TestSplitEmpty(t *testing.T) {
	s, _ := New(types.ChunkConfig{})
	if got := s.Split(""); got != nil {
		t.Errorf("Split(\"\") = %v, want nil", got)
	}
}

func TestSplitShortText(t *testing.T) {
	s, _ := New(types.ChunkConfig{})
	text := "A short paragraph that fits in one chunk."
	got := s.Split(text)
	if len(got) != 1 || got[0] != text {
		t.Errorf("Split = %v, want single chunk with original text", got)
	}
}

func TestSplitParagraphBoundaries(t *testing.T) {
	s, _ := New(types.ChunkConfig{Size: 10, Overlap: 6})
	got := s.Split("aaaa\n\nbbbb\n\ncccc")

	want := []string{"aaaa\n\n", "aaaa\n\nbbbb\n\n", "bbbb\n\ncccc"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split = %q, want %q", got, want)
	}
}

func TestSplitNoOverlapReconstructs(t *testing.T) {
	s, _ := New(types.ChunkConfig{Size: 10})
	text := "aaaa\n\nbbbb\n\ncccc\n\ndddd"
	got := s.Split(text)

	if strings.Join(got, "") != text {
		t.Errorf("concatenated chunks = %q, want original text", strings.Join(got, ""))
	}
	for i, c := range got {
		if len(c) > 10 {
			t.Errorf("chunk %d length %d exceeds size", i, len(c))
		}
	}
}

func TestSplitSentenceFallback(t *testing.T) {
	s, _ := New(types.ChunkConfig{Size: 12})
	got := s.Split("One. Two. Three.")

	want := []string{"One. Two. ", "Three."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split = %q, want %q", got, want)
	}
}

func TestSplitHardSplitLongSentence(t *testing.T) {
	s, _ := New(types.ChunkConfig{Size: 8})
	text := strings.Repeat("x", 20)
	got := s.Split(text)

	if strings.Join(got, "") != text {
		t.Errorf("concatenated chunks = %q, want original", strings.Join(got, ""))
	}
	for i, c := range got {
		if len(c) > 8 {
			t.Errorf("chunk %d length %d exceeds size", i, len(c))
		}
	}
}

func TestSplitDeterministic(t *testing.T) {
	s, _ := New(types.ChunkConfig{Size: 64, Overlap: 16})
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 20)

	first := s.Split(text)
	second := s.Split(text)
	if !reflect.DeepEqual(first, second) {
		t.Error("Split is not deterministic for identical input")
	}
}

func TestSplitOverlapCarriesContext(t *testing.T) {
	s, _ := New(types.ChunkConfig{Size: 64, Overlap: 16})
	text := strings.Repeat("Short sentence here. ", 10)
	got := s.Split(text)

	if len(got) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		// Each chunk opens with a suffix of its predecessor.
		overlapped := false
		for n := len(got[i]); n > 0; n-- {
			if strings.HasSuffix(got[i-1], got[i][:n]) {
				overlapped = true
				break
			}
		}
		if !overlapped {
			t.Errorf("chunk %d shares no prefix with predecessor", i)
		}
	}
}
