package common

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-06-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != (Date{2024, time.June, 1}) {
		t.Fatalf("unexpected date %+v", d)
	}
	if d.String() != "2024-06-01" {
		t.Fatalf("unexpected string %q", d.String())
	}

	for _, bad := range []string{"", "2024-6-1", "2024-13-01", "2024-02-30", "tomorrow"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestDateArithmetic(t *testing.T) {
	d := Date{2024, time.December, 30}

	if got := d.AddDays(3); got != (Date{2025, time.January, 2}) {
		t.Errorf("AddDays(3) = %v", got)
	}
	if got := d.AddDays(-30); got != (Date{2024, time.November, 30}) {
		t.Errorf("AddDays(-30) = %v", got)
	}
	if !d.AddDays(1).After(d) || !d.Before(d.AddDays(1)) {
		t.Errorf("ordering is broken")
	}
	if d.After(d) || d.Before(d) {
		t.Errorf("a date is neither before nor after itself")
	}
}

func TestDateJSON(t *testing.T) {
	in := struct {
		Start Date `json:"start"`
	}{Start: Date{2024, time.June, 1}}

	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"start":"2024-06-01"}` {
		t.Fatalf("unexpected json %s", b)
	}

	var out struct {
		Start Date `json:"start"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Start != in.Start {
		t.Fatalf("got %v, want %v", out.Start, in.Start)
	}
}

func TestDateOfKeepsLocation(t *testing.T) {
	helsinki := time.FixedZone("EET", 2*60*60)
	ts := time.Date(2024, time.June, 1, 23, 30, 0, 0, time.UTC).In(helsinki)
	if got := DateOf(ts); got != (Date{2024, time.June, 2}) {
		t.Fatalf("DateOf in +02:00 = %v", got)
	}
}

func TestZeroDateJSON(t *testing.T) {
	var in struct {
		Start Date `json:"start"`
	}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"start":""}` {
		t.Fatalf("unexpected json %s", b)
	}
	if err := json.Unmarshal(b, &in); err != nil || !in.Start.IsZero() {
		t.Fatalf("expected zero date, got %v, %v", in.Start, err)
	}
}
