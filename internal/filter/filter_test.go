package filter

import (
	"strings"
	"testing"
)

type driverRow struct {
	ID     int     `json:"id"`
	Status string  `json:"status"`
	Rating float64 `json:"rating"`
	Name   string  `json:"name"`
}

func TestCompileRejectsEmptyExpression(t *testing.T) {
	if _, err := Compile(""); err == nil {
		t.Error("expected error for empty expression")
	}
}

func TestCompileRejectsOverlongExpression(t *testing.T) {
	expr := "item.status == \"" + strings.Repeat("x", maxExpressionLength) + "\""
	if _, err := Compile(expr); err == nil {
		t.Error("expected error for overlong expression")
	}
}

func TestCompileRejectsInvalidSyntax(t *testing.T) {
	if _, err := Compile("item.status =="); err == nil {
		t.Error("expected error for invalid syntax")
	}
}

func TestMatchOnFields(t *testing.T) {
	f, err := Compile(`item.status == "pending" && item.rating >= 4.0`)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	cases := []struct {
		row  driverRow
		want bool
	}{
		{driverRow{ID: 1, Status: "pending", Rating: 4.5}, true},
		{driverRow{ID: 2, Status: "pending", Rating: 3.9}, false},
		{driverRow{ID: 3, Status: "approved", Rating: 5.0}, false},
	}
	for _, tc := range cases {
		got, err := f.Match(tc.row)
		if err != nil {
			t.Fatalf("Match(%+v) error = %v", tc.row, err)
		}
		if got != tc.want {
			t.Errorf("Match(%+v) = %t, want %t", tc.row, got, tc.want)
		}
	}
}

func TestMatchRejectsNonBooleanResult(t *testing.T) {
	f, err := Compile("item.rating + 1.0")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if _, err := f.Match(driverRow{Rating: 4.0}); err == nil {
		t.Error("expected error for non-boolean result")
	}
}

func TestApplyKeepsMatches(t *testing.T) {
	f, err := Compile(`item.name.startsWith("A")`)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	rows := []driverRow{
		{ID: 1, Name: "Ade"},
		{ID: 2, Name: "Bola"},
		{ID: 3, Name: "Amina"},
	}
	kept, err := Apply(f, rows)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(kept) != 2 || kept[0].ID != 1 || kept[1].ID != 3 {
		t.Errorf("kept = %+v", kept)
	}
}

func TestApplyPropagatesEvalError(t *testing.T) {
	// Referencing a missing key fails at eval time on a concrete map.
	f, err := Compile("item.missing_key == true")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if _, err := Apply(f, []driverRow{{ID: 1}}); err == nil {
		t.Error("expected eval error for missing key")
	}
}
