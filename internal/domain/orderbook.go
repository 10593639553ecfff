package domain

import "strconv"

// OrderBook is the CLOB order book for a single token.
type OrderBook struct {
	TokenID string
	Bids    []BookEntry // descending by price
	Asks    []BookEntry // ascending by price
}

// BookEntry is one price level.
type BookEntry struct {
	Price float64
	Size  float64
}

// BestBid returns the highest bid price, or 0 if the book is empty.
func (ob OrderBook) BestBid() float64 {
	if len(ob.Bids) == 0 {
		return 0
	}
	return ob.Bids[0].Price
}

// BestAsk returns the lowest ask price, or 0 if there are no asks.
func (ob OrderBook) BestAsk() float64 {
	if len(ob.Asks) == 0 {
		return 0
	}
	return ob.Asks[0].Price
}

// Spread returns best ask minus best bid, or 0 when either side is empty.
func (ob OrderBook) Spread() float64 {
	bid, ask := ob.BestBid(), ob.BestAsk()
	if bid == 0 || ask == 0 {
		return 0
	}
	return ask - bid
}

// AskDepthUSD sums price*size across every parsed ask level.
func (ob OrderBook) AskDepthUSD() float64 {
	var total float64
	for _, a := range ob.Asks {
		total += a.Price * a.Size
	}
	return total
}

// SweepAsks consumes the ask ladder in ascending-price order up to qty
// shares and returns the cost paid and whether qty shares were fully
// available. It never consumes more than qty shares.
func SweepAsks(asks []BookEntry, qty float64) (cost float64, enough bool) {
	if qty <= 0 {
		return 0, false
	}
	remaining := qty
	for _, lvl := range asks {
		if lvl.Size <= 0 {
			continue
		}
		take := lvl.Size
		if take > remaining {
			take = remaining
		}
		cost += take * lvl.Price
		remaining -= take
		if remaining <= 0 {
			return cost, true
		}
	}
	return cost, false
}

// ParsePrice converts a price string to float64, used when a gateway
// serialises prices as strings.
func ParsePrice(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
