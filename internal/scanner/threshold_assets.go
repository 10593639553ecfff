package scanner

// assetConfig is one tracked asset's search surface and the price
// levels considered a plausible auto-discovered threshold market.
type assetConfig struct {
	searchTerms []string
	levels      []float64
}

// thresholdAssets mirrors the hand-curated set of crypto and equity
// price-threshold markets known to appear repeatedly on the venue.
var thresholdAssets = map[string]assetConfig{
	"Bitcoin": {
		searchTerms: []string{"Bitcoin above", "Bitcoin reach", "BTC above"},
		levels:      []float64{50000, 55000, 60000, 65000, 68000, 70000, 72000, 75000, 80000, 85000, 90000, 95000, 100000, 110000, 120000, 150000},
	},
	"Ethereum": {
		searchTerms: []string{"Ethereum above", "ETH above", "Ethereum reach"},
		levels:      []float64{2000, 2500, 3000, 3500, 4000, 4500, 5000, 6000},
	},
	"Solana": {
		searchTerms: []string{"Solana above", "SOL above", "Solana reach", "Solana dip"},
		levels:      []float64{100, 150, 200, 250, 300, 400, 500},
	},
	"XRP": {
		searchTerms: []string{"XRP above", "XRP reach"},
		levels:      []float64{1, 2, 3, 5, 10},
	},
	"AAPL": {
		searchTerms: []string{"AAPL above", "AAPL close above", "Apple stock"},
		levels:      []float64{200, 225, 250, 275, 285, 300},
	},
	"META": {
		searchTerms: []string{"META above", "META close above"},
		levels:      []float64{500, 550, 600, 640, 700},
	},
	"PLTR": {
		searchTerms: []string{"PLTR above", "PLTR close above", "Palantir"},
		levels:      []float64{80, 100, 120, 128, 150},
	},
	"GOOGL": {
		searchTerms: []string{"GOOGL above", "GOOGL close above", "Google stock"},
		levels:      []float64{150, 175, 200, 225},
	},
	"NVDA": {
		searchTerms: []string{"NVDA above", "NVDA close above", "Nvidia stock"},
		levels:      []float64{100, 120, 140, 150, 160, 180, 200},
	},
}
