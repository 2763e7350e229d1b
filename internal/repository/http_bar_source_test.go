package repository

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/quantfra/swingdesk/internal/domain/models"
	domrepo "github.com/quantfra/swingdesk/internal/domain/repository"
)

func barServer(body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

func TestHTTPBarSourceParsesMixedTimestamps(t *testing.T) {
	// 1709510400 is 2024-03-04T00:00:00Z.
	srv := barServer(`{"symbol":"AAPL","bars":[
		{"t":"2024-03-05T14:30:00Z","o":1,"h":2,"l":0.5,"c":1.5,"v":100},
		{"t":1709510400,"o":2,"h":3,"l":1,"c":2.5,"v":200},
		{"t":"garbage","o":9,"h":9,"l":9,"c":9,"v":9}
	]}`)
	defer srv.Close()

	src := NewHTTPBarSource(srv.URL, time.Second)
	bars, err := src.GetHistory(context.Background(), "AAPL", 10, domrepo.Interval1d)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("bars = %d, want 2 with the unparseable row skipped", len(bars))
	}
	want0 := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	want1 := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	if !bars[0].Timestamp.Equal(want0) || !bars[1].Timestamp.Equal(want1) {
		t.Fatalf("timestamps = %v, %v; want %v, %v",
			bars[0].Timestamp, bars[1].Timestamp, want0, want1)
	}
	if bars[1].Close != 1.5 {
		t.Fatalf("sorting broke row pairing: bars[1].Close = %v, want 1.5", bars[1].Close)
	}
}

func TestHTTPBarSourceWeeklyBucketsAlignToMonday(t *testing.T) {
	// An intraday Wednesday stamp belongs to its week's Monday bucket.
	srv := barServer(`{"symbol":"AAPL","bars":[
		{"t":"2024-03-06T10:00:00Z","o":1,"h":2,"l":0.5,"c":1.5,"v":100}
	]}`)
	defer srv.Close()

	src := NewHTTPBarSource(srv.URL, time.Second)
	bars, err := src.GetHistory(context.Background(), "AAPL", 10, domrepo.Interval1wk)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	want := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	if len(bars) != 1 || !bars[0].Timestamp.Equal(want) {
		t.Fatalf("weekly bucket = %v, want %v", bars[0].Timestamp, want)
	}
}

func TestHTTPBarSourceRejectsAllInvalidTimestamps(t *testing.T) {
	srv := barServer(`{"symbol":"AAPL","bars":[
		{"t":"garbage","o":1,"h":2,"l":0.5,"c":1.5,"v":100}
	]}`)
	defer srv.Close()

	src := NewHTTPBarSource(srv.URL, time.Second)
	_, err := src.GetHistory(context.Background(), "AAPL", 10, domrepo.Interval1d)
	if !errors.Is(err, models.ErrDataUnavailable) {
		t.Fatalf("err = %v, want ErrDataUnavailable", err)
	}
}
