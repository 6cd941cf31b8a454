package payment

import "math"

// Split allocates a payment between the partner and the platform, expressed
// in basis points.
type Split struct {
	PartnerBps  int
	PlatformBps int
}

// DefaultSplit is 90% partner / 10% platform.
var DefaultSplit = Split{PartnerBps: 9000, PlatformBps: 1000}

// CalcSplit computes the partner and platform shares of an amount, rounded to
// two decimal places. The platform share is the remainder of the rounded
// amount, so the two always sum exactly to round2(amount) with no drift.
func CalcSplit(amountUSDC float64, split Split) (partnerUSDC, platformUSDC float64) {
	partnerUSDC = round2(amountUSDC * float64(split.PartnerBps) / 10000)
	platformUSDC = round2(round2(amountUSDC) - partnerUSDC)
	return partnerUSDC, platformUSDC
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
