package types

// Candle is one OHLCV bar. Ts is the bar open time in unix seconds.
type Candle struct {
	Ts                          int64
	Open, High, Low, Close, Vol float64
}

// Trend labels for the higher-timeframe gate.
const (
	TrendBullish = "bullish"
	TrendNeutral = "neutral"
	TrendBearish = "bearish"
)

// Signal is the strategy output for one instrument on one cycle.
// When Setup is true the trade levels are populated and RR > 0;
// when it is false Reasons explains why.
type Signal struct {
	Trend   string   `json:"trend"`
	Setup   bool     `json:"setup"`
	Entry   float64  `json:"entry,omitempty"`
	Stop    float64  `json:"stop,omitempty"`
	TP      float64  `json:"tp,omitempty"`
	RR      float64  `json:"rr,omitempty"`
	Reasons []string `json:"reasons,omitempty"`
}

// Features is the immutable snapshot handed to the arbiter.
type Features struct {
	Symbol     string                        `json:"symbol"`
	Setup      bool                          `json:"setup_detected"`
	Reasons    []string                      `json:"strategy_reasons,omitempty"`
	Trend      string                        `json:"trend"`
	Entry      float64                       `json:"entry"`
	Stop       float64                       `json:"stop"`
	TP         float64                       `json:"tp"`
	RR         float64                       `json:"rr"`
	Timeframes map[string]map[string]float64 `json:"timeframes"`
}

// Decision outcomes and sides.
const (
	DecisionTrade   = "TRADE"
	DecisionNoTrade = "NO_TRADE"
	SideLong        = "LONG"
	SideShort       = "SHORT"
)

// Decision is the arbiter verdict. Outcome NO_TRADE implies Side is empty.
type Decision struct {
	Outcome    string  `json:"decision"`
	Side       string  `json:"side,omitempty"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// SizedOrder is an approved setup converted into a concrete position.
// Amount is always positive and Amount*Entry clears the venue minimum.
type SizedOrder struct {
	Symbol string  `json:"symbol"`
	Side   string  `json:"side"`
	Entry  float64 `json:"entry"`
	Stop   float64 `json:"stop"`
	TP     float64 `json:"tp"`
	Amount float64 `json:"amount"`
}

// ExecutionResult reports a fully placed bracket. It is only produced
// when all three legs were accepted.
type ExecutionResult struct {
	EntryOrderID      string  `json:"entry_order_id"`
	StopOrderID       string  `json:"stop_order_id"`
	TakeProfitOrderID string  `json:"take_profit_order_id"`
	Amount            float64 `json:"amount"`
	EntryPrice        float64 `json:"entry_price"`
}

// OrderReq is an exchange-level order request.
type OrderReq struct {
	Symbol     string
	Side       string // BUY or SELL
	Type       string
	Amount     float64
	Price      float64 // limit price, LIMIT only
	StopPrice  float64 // trigger price, STOP_MARKET only
	ReduceOnly bool
	Tag        string
}

const (
	OrderMarket     = "MARKET"
	OrderLimit      = "LIMIT"
	OrderStopMarket = "STOP_MARKET"
)

type OrderResp struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// ScanResult is the per-instrument per-cycle record handed to the
// result sink. Execution is nil on every path except a fully placed
// bracket; Err carries pipeline failures without aborting siblings.
type ScanResult struct {
	Symbol    string           `json:"symbol"`
	Signal    Signal           `json:"strategy_signal"`
	Decision  Decision         `json:"decision"`
	Execution *ExecutionResult `json:"execution,omitempty"`
	Err       string           `json:"error,omitempty"`
	Time      string           `json:"timestamp"`
}
