package google

import (
	"testing"
)

func TestParseIDColumn(t *testing.T) {
	values := [][]any{
		{"ID"},
		{"1"},
		{2.0},
		{},
		{""},
		{"  7 "},
		{"-3"},
		{"abc"},
		{float64(12)},
	}

	got := parseIDColumn(values)

	want := []int64{1, 2, 7, 12}
	if len(got) != len(want) {
		t.Fatalf("parseIDColumn() = %v, want ids %v", got, want)
	}
	for _, id := range want {
		if _, ok := got[id]; !ok {
			t.Errorf("parseIDColumn() missing id %d", id)
		}
	}
}

func TestParseIDColumnEmpty(t *testing.T) {
	if got := parseIDColumn(nil); len(got) != 0 {
		t.Errorf("parseIDColumn(nil) = %v, want empty", got)
	}
}
