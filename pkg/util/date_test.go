package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	got := ParseTimeDefault("", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestBucketStartDaily(t *testing.T) {
	ts := time.Date(2024, 10, 10, 15, 30, 0, 0, time.UTC)
	got := BucketStart(ts, "1d")
	want := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestBucketStartWeekly(t *testing.T) {
	// 2024-10-10 is a Thursday; the week starts Monday 2024-10-07.
	ts := time.Date(2024, 10, 10, 15, 30, 0, 0, time.UTC)
	got := BucketStart(ts, "1wk")
	want := time.Date(2024, 10, 7, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC)
	b := a.AddDate(0, 0, 7)
	if d := DaysBetween(a, b); d != 7 {
		t.Fatalf("got %d want 7", d)
	}
	if d := DaysBetween(b, a); d != 0 {
		t.Fatalf("negative span must clamp to 0, got %d", d)
	}
}
