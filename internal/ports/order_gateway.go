package ports

import (
	"context"

	"github.com/0xhedge/hedgeengine/internal/domain"
)

// OrderGateway is the venue's signed-order HTTP surface. Authenticated
// via the wallet identity; the signature scheme is opaque to callers.
type OrderGateway interface {
	// GetOrderBook returns the top levels of the book for a token.
	GetOrderBook(ctx context.Context, tokenID string) (domain.OrderBook, error)

	// PlaceLimitBuyGTC submits a good-till-cancelled limit buy and
	// returns the venue order id, or an error describing the rejection.
	PlaceLimitBuyGTC(ctx context.Context, tokenID string, price, size float64) (orderID string, err error)

	// Balance returns the signing wallet's collateral balance in USDC.
	Balance(ctx context.Context) (float64, error)
}
