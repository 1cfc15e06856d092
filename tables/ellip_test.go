package tables

import (
	"strings"
	"testing"
)

func TestLoadEllipticityParsesBlock(t *testing.T) {
	// One phase block ("P", 2 distance rows), each row holding a distance
	// value followed by t0/t1/t2, 6 values apiece for the fixed depth grid.
	src := "P 2\n" +
		"0.0 1 2 3 4 5 6  10 11 12 13 14 15  20 21 22 23 24 25\n" +
		"5.0 2 3 4 5 6 7  11 12 13 14 15 16  21 22 23 24 25 26\n"

	table, err := LoadEllipticity(strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadEllipticity: %v", err)
	}

	val, ok := table.Correction("P", 0, 0, 0, 0)
	if !ok {
		t.Fatal("Correction(P) should find a table for a loaded phase")
	}
	if val == 0 {
		t.Fatalf("Correction(P) = %g, want a nonzero value given nonzero tau rows", val)
	}

	if _, ok := table.Correction("S", 0, 0, 0, 0); ok {
		t.Fatal("Correction(S) should report not-found for a phase never loaded")
	}
}

func TestLoadEllipticityRejectsMalformedHeader(t *testing.T) {
	_, err := LoadEllipticity(strings.NewReader("P notanumber\n"))
	if err == nil {
		t.Fatal("expected an error for a non-numeric distance count")
	}
}

func TestLoadEllipticityRejectsTruncatedBlock(t *testing.T) {
	_, err := LoadEllipticity(strings.NewReader("P 2\n0 1 2 3 4 5 6 7 8 9 10 11 12 13 14 15 16 17\n"))
	if err == nil {
		t.Fatal("expected an error when a phase block is missing distance rows")
	}
}

func TestLoadEllipticityRejectsNonNumericTau(t *testing.T) {
	src := "P 1\n0.0 a 2 3 4 5 6  10 11 12 13 14 15  20 21 22 23 24 25\n"
	_, err := LoadEllipticity(strings.NewReader(src))
	if err == nil {
		t.Fatal("expected an error for a non-numeric tau value")
	}
}
