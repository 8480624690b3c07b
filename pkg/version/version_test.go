package version

import (
	"strings"
	"testing"
)

func TestParseSemVer(t *testing.T) {
	t.Parallel()

	v, err := ParseSemVer(" v1.2.3 ")
	if err != nil {
		t.Fatalf("ParseSemVer returned error: %v", err)
	}
	if v != (SemVer{Major: 1, Minor: 2, Patch: 3}) {
		t.Fatalf("ParseSemVer parsed wrong value: %#v", v)
	}
}

func TestParseSemVerRejectsInvalidFormat(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "v", "1.2", "1.2.3.4", "1.x.3", "1.2.-1", "1.2.3-rc1"} {
		if _, err := ParseSemVer(raw); err == nil {
			t.Fatalf("expected parse error for %q", raw)
		}
	}
}

func TestCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want int
	}{
		{a: "1.0.0", b: "1.0.0", want: 0},
		{a: "1.0.0", b: "1.0.1", want: -1},
		{a: "1.2.0", b: "1.1.9", want: 1},
		{a: "0.9.9", b: "1.0.0", want: -1},
	}

	for _, tt := range tests {
		a, _ := ParseSemVer(tt.a)
		b, _ := ParseSemVer(tt.b)
		if got := a.Compare(b); got != tt.want {
			t.Fatalf("%s.Compare(%s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestEnsureCompatible(t *testing.T) {
	t.Parallel()

	current, err := ParseSemVer(Version)
	if err != nil {
		t.Fatalf("parse current version: %v", err)
	}

	if err := EnsureCompatible(""); err != nil {
		t.Fatalf("empty version should be accepted, got: %v", err)
	}
	if err := EnsureCompatible(current.String()); err != nil {
		t.Fatalf("current version should be compatible, got: %v", err)
	}

	newer := current
	newer.Patch++
	err = EnsureCompatible(newer.String())
	if err == nil || !strings.Contains(err.Error(), "requires musync") {
		t.Fatalf("expected incompatibility for newer version %q, got %v", newer, err)
	}

	nextMajor := SemVer{Major: current.Major + 1}
	if err := EnsureCompatible(nextMajor.String()); err == nil {
		t.Fatalf("expected incompatibility for major mismatch %q", nextMajor)
	}
}

func TestString(t *testing.T) {
	t.Parallel()

	if got := String(); !strings.HasPrefix(got, "musync "+Version) {
		t.Fatalf("String() = %q", got)
	}
}
