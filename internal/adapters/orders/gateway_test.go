package orders

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetOrderBookMapsAndSortsLevels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{
			"asset_id": "tok-1",
			"bids": [{"price":"0.40","size":"100"},{"price":"0.45","size":"50"}],
			"asks": [{"price":"0.55","size":"80"},{"price":"0.52","size":"40"}]
		}]`))
	}))
	defer srv.Close()

	auth, err := newAuthClient(srv.URL, "0000000000000000000000000000000000000000000000000000000000000001")
	if err != nil {
		t.Fatalf("newAuthClient: %v", err)
	}
	gw := &Gateway{auth: auth}

	book, err := gw.GetOrderBook(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if book.BestBid() != 0.45 {
		t.Fatalf("expected best bid 0.45, got %v", book.BestBid())
	}
	if book.BestAsk() != 0.52 {
		t.Fatalf("expected best ask 0.52, got %v", book.BestAsk())
	}
}

func TestDetectPricePrecisionMatchesTickSize(t *testing.T) {
	cases := []struct {
		price float64
		want  int64
	}{
		{0.60, 100},
		{0.673, 1000},
		{0.12345, 10000},
	}
	for _, c := range cases {
		if got := detectPricePrecision(c.price); got != c.want {
			t.Errorf("detectPricePrecision(%v) = %d, want %d", c.price, got, c.want)
		}
	}
}
