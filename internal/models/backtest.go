package models

// Market selects the asset class a backtest runs against.
type Market string

const (
	MarketStocks Market = "stocks"
	MarketForex  Market = "forex"
	MarketCrypto Market = "crypto"
)

func ParseMarket(s string) (Market, bool) {
	switch Market(s) {
	case MarketStocks, MarketForex, MarketCrypto:
		return Market(s), true
	}
	return "", false
}

// BacktestRequest is the body posted to the backend's /backtests/ endpoint.
// Dates use YYYY-MM-DD.
type BacktestRequest struct {
	Symbol    string `json:"symbol"`
	Market    Market `json:"market"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// BacktestSetup is one detected trigger. Field names follow the backend's
// wire format verbatim.
type BacktestSetup struct {
	TriggerTime      string `json:"Horario_Gatilho"`
	TriggerColor     string `json:"Cor_Gatilho"`
	ExpectedSequence string `json:"Sequencia_Esperada"`
	FinalResult      string `json:"Resultado_Final"`
}

type BacktestStats struct {
	WinRate float64        `json:"win_rate"`
	Counts  map[string]int `json:"counts"`
}

type BacktestResult struct {
	Symbol      string          `json:"symbol"`
	Market      Market          `json:"market"`
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
	TotalSetups int             `json:"total_setups"`
	Stats       BacktestStats   `json:"stats"`
	Setups      []BacktestSetup `json:"setups"`
}
