package observability

import (
	"reflect"
	"testing"
)

func TestParseHeaders(t *testing.T) {
	got := ParseHeaders(" api-key = abc ,bad, =x,team=art ")
	want := map[string]string{"api-key": "abc", "team": "art"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got=%v want=%v", got, want)
	}
	if ParseHeaders(" ") != nil {
		t.Fatal("blank input should yield nil")
	}
}

func TestClampRatio(t *testing.T) {
	for in, want := range map[float64]float64{0: 0.1, -1: 0.1, 0.5: 0.5, 3: 1} {
		if got := clampRatio(in); got != want {
			t.Fatalf("clampRatio(%v): got=%v want=%v", in, got, want)
		}
	}
}
