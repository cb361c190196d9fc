package crime

// RiskTier selects a gamble odds row.
type RiskTier string

const (
	RiskLow     RiskTier = "low"
	RiskMed     RiskTier = "med"
	RiskHigh    RiskTier = "high"
	RiskJackpot RiskTier = "jackpot"
)

// Odds is one tabulated outcome: with probability P the bet pays bet·Mult.
// A tier's rows must sum to at most 1; the remainder loses the bet.
type Odds struct {
	P    float64 `json:"p"`
	Mult float64 `json:"mult"`
}

// Draw resolves a tier against a uniform sample in [0, 1). It returns the
// multiplier, or 0 on a loss.
func Draw(rows []Odds, sample float64) float64 {
	acc := 0.0
	for _, o := range rows {
		acc += o.P
		if sample < acc {
			return o.Mult
		}
	}
	return 0
}
