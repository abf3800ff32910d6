package mln

import (
	"testing"

	"github.com/timenexus/timenexus/pkg/errors"
)

func TestInterTableName(t *testing.T) {
	if got := InterTableName(1, 2); got != "1->2_Inter-Edge" {
		t.Errorf("InterTableName(1, 2) = %v, want %v", got, "1->2_Inter-Edge")
	}
}

func TestInteraction(t *testing.T) {
	tests := []struct {
		source, target string
	}{
		{"a", "b"},
		{"a_1", "b_1"},
		{"heat shock", "HSP70"},
	}
	for _, tt := range tests {
		name := Interaction(tt.source, tt.target)
		s, g, err := ParseInteraction(name)
		if err != nil {
			t.Fatalf("ParseInteraction(%q) error = %v", name, err)
		}
		if s != tt.source || g != tt.target {
			t.Errorf("ParseInteraction(%q) = %q, %q, want %q, %q", name, s, g, tt.source, tt.target)
		}
	}
}

func TestParseInteractionErrors(t *testing.T) {
	for _, in := range []string{"a -> b", "", "a (interacts with) b (interacts with) c"} {
		_, _, err := ParseInteraction(in)
		if !errors.Is(err, errors.ErrCodeFormat) {
			t.Errorf("ParseInteraction(%q) error = %v, want FORMAT", in, err)
		}
	}
}

func TestFlatNames(t *testing.T) {
	tests := []struct {
		name  string
		layer int
		flat  string
	}{
		{"a", 1, "a_1"},
		{"my_gene", 12, "my_gene_12"},
		{"", 3, "_3"},
	}
	for _, tt := range tests {
		if got := FlatName(tt.name, tt.layer); got != tt.flat {
			t.Errorf("FlatName(%q, %d) = %v, want %v", tt.name, tt.layer, got, tt.flat)
		}
		if got := OriginalName(tt.flat); got != tt.name {
			t.Errorf("OriginalName(%q) = %v, want %v", tt.flat, got, tt.name)
		}
	}
	if got := OriginalName("plain"); got != "" {
		t.Errorf("OriginalName(plain) = %q, want empty", got)
	}
}

func TestLayerName(t *testing.T) {
	tests := []struct {
		layer, count int
		want         string
	}{
		{1, 3, "1_Layer"},
		{3, 12, "03_Layer"},
		{12, 12, "12_Layer"},
		{7, 100, "007_Layer"},
	}
	for _, tt := range tests {
		if got := LayerName(tt.layer, tt.count); got != tt.want {
			t.Errorf("LayerName(%d, %d) = %v, want %v", tt.layer, tt.count, got, tt.want)
		}
	}
}
