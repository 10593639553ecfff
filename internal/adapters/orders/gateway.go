package orders

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/0xhedge/hedgeengine/internal/domain"
)

const (
	booksPath  = "/books"
	orderPath  = "/order"
	negRiskPath = "/neg-risk"

	usdcAddress = "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"
)

var balanceOfABI abi.ABI

func init() {
	var err error
	balanceOfABI, err = abi.JSON(strings.NewReader(`[{
		"name":"balanceOf","type":"function",
		"inputs":[{"name":"account","type":"address"}],
		"outputs":[{"name":"","type":"uint256"}]
	}]`))
	if err != nil {
		panic("balanceOf abi: " + err.Error())
	}
}

// Gateway implements ports.OrderGateway against the CLOB, signing every
// order with the wallet derived from the configured private key.
type Gateway struct {
	auth *authClient
	rpc  *ethclient.Client
}

// New builds a Gateway. base is the CLOB base URL (empty uses
// production), privateKeyHex is the Polygon signing key without a 0x
// prefix, rpcURL is a Polygon JSON-RPC endpoint used only for the
// on-chain USDC balance check.
func New(base, privateKeyHex, rpcURL string) (*Gateway, error) {
	auth, err := newAuthClient(base, privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("orders.New: %w", err)
	}
	rpc, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("orders.New: dial rpc: %w", err)
	}
	return &Gateway{auth: auth, rpc: rpc}, nil
}

// GetOrderBook fetches the current bid/ask ladder for one token.
func (g *Gateway) GetOrderBook(ctx context.Context, tokenID string) (domain.OrderBook, error) {
	body := []orderBookRequest{{TokenID: tokenID}}
	var resp []orderBookResponse

	if err := g.post(ctx, g.auth.base+booksPath, body, &resp); err != nil {
		return domain.OrderBook{}, fmt.Errorf("orders.GetOrderBook: %w", err)
	}
	if len(resp) == 0 {
		return domain.OrderBook{TokenID: tokenID}, nil
	}
	return mapOrderBook(resp[0]), nil
}

func (g *Gateway) post(ctx context.Context, url string, body, out any) error {
	return g.auth.doWithRetry(ctx, g.auth.booksLimiter, func() (*http.Response, error) {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(b)))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		return g.auth.http.Do(req)
	}, out)
}

// PlaceLimitBuyGTC signs and submits a BUY maker limit order, good
// till cancelled, for tokenID at price/size.
func (g *Gateway) PlaceLimitBuyGTC(ctx context.Context, tokenID string, price, size float64) (string, error) {
	if err := g.auth.ensureCreds(ctx); err != nil {
		return "", fmt.Errorf("orders.PlaceLimitBuyGTC: creds: %w", err)
	}

	negRisk, err := g.isNegRisk(ctx, tokenID)
	if err != nil {
		negRisk = false // neg-risk lookup failing is not fatal; default to the standard exchange
	}

	signed, err := g.auth.buildSignedOrder(tokenID, price, size, negRisk)
	if err != nil {
		return "", fmt.Errorf("orders.PlaceLimitBuyGTC: sign: %w", err)
	}

	reqBody := clobOrderRequest{
		Order: clobOrderBody{
			Salt:          json.Number(signed.Order.Salt.String()),
			Maker:         signed.Order.Maker.Hex(),
			Signer:        signed.Order.Signer.Hex(),
			Taker:         signed.Order.Taker.Hex(),
			TokenID:       tokenID,
			MakerAmount:   signed.Order.MakerAmount.String(),
			TakerAmount:   signed.Order.TakerAmount.String(),
			Expiration:    signed.Order.Expiration.String(),
			Nonce:         signed.Order.Nonce.String(),
			FeeRateBps:    signed.Order.FeeRateBps.String(),
			Side:          "BUY",
			SignatureType: int(signed.Order.SignatureType.Int64()),
			Signature:     "0x" + hex.EncodeToString(signed.Signature),
		},
		Owner:     g.auth.creds.APIKey,
		OrderType: "GTC",
	}

	var resp clobOrderResponse
	if err := g.auth.doL2(ctx, http.MethodPost, orderPath, reqBody, &resp); err != nil {
		return "", fmt.Errorf("orders.PlaceLimitBuyGTC: post: %w", err)
	}
	if !resp.Success || resp.ErrorMsg != "" {
		return "", fmt.Errorf("orders.PlaceLimitBuyGTC: clob error: %s", resp.ErrorMsg)
	}
	return resp.OrderID, nil
}

func (g *Gateway) isNegRisk(ctx context.Context, tokenID string) (bool, error) {
	url := fmt.Sprintf("%s%s?token_id=%s", g.auth.base, negRiskPath, tokenID)
	var resp clobNegRiskResponse
	if err := g.auth.get(ctx, g.auth.generalLimiter, url, &resp); err != nil {
		return false, fmt.Errorf("neg-risk check: %w", err)
	}
	return resp.NegRisk, nil
}

// Balance returns the on-chain USDC.e balance of the signing wallet.
func (g *Gateway) Balance(ctx context.Context) (float64, error) {
	callData, err := balanceOfABI.Pack("balanceOf", g.auth.address)
	if err != nil {
		return 0, fmt.Errorf("orders.Balance: pack: %w", err)
	}

	token := common.HexToAddress(usdcAddress)
	result, err := g.rpc.CallContract(ctx, ethereum.CallMsg{To: &token, Data: callData}, nil)
	if err != nil {
		return 0, fmt.Errorf("orders.Balance: rpc call: %w", err)
	}

	vals, err := balanceOfABI.Unpack("balanceOf", result)
	if err != nil || len(vals) == 0 {
		return 0, fmt.Errorf("orders.Balance: unpack: %w", err)
	}

	raw := vals[0].(*big.Int)
	bal, _ := new(big.Float).Quo(new(big.Float).SetInt(raw), big.NewFloat(1e6)).Float64()
	return bal, nil
}
