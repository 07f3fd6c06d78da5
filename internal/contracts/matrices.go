package contracts

// PriceMatrix is the Price Loader output (V0)
// date → {instrument → raw close}. Columns keep input file order.
type PriceMatrix struct {
	Frame
}

// VolatilityMatrix is the Volatility Estimator output (V1)
// Same date index as the PriceMatrix it was computed from; values are annualized and non-negative.
type VolatilityMatrix struct {
	Frame
}

// SignalMatrix is the Signal Loader output (V2)
// Columns are sorted instrument names; last value wins on (date, instrument) collisions.
type SignalMatrix struct {
	Frame
}

// WeightMatrix holds signed weights (V4 pre-cap, V5 post-cap)
type WeightMatrix struct {
	Frame
	Capped bool `json:"capped"`
}

// AlignedPair is the Aligner output (V3)
// ⭐ 계약: Signals/Volatility는 동일한 Columns(정렬된 교집합)와 동일한 Dates(시그널 날짜)를 가짐
type AlignedPair struct {
	Signals    *SignalMatrix
	Volatility *VolatilityMatrix
}

// Instruments returns the common instrument set
func (p *AlignedPair) Instruments() []string {
	return p.Signals.Columns
}
