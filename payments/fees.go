package payments

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

type FeeBreakdown struct {
	WorkerAmount decimal.Decimal
	PlatformFee  decimal.Decimal
	TotalAmount  decimal.Decimal
	FeePercent   decimal.Decimal
}

// CalculateFees rounds the platform fee to cents. Callers must reject workerAmount <= 0.
func CalculateFees(workerAmount, feePercent decimal.Decimal) FeeBreakdown {
	worker := workerAmount.Round(2)
	fee := worker.Mul(feePercent).Round(2)
	return FeeBreakdown{
		WorkerAmount: worker,
		PlatformFee:  fee,
		TotalAmount:  worker.Add(fee),
		FeePercent:   feePercent,
	}
}

// ToMinorUnits converts a ZAR amount to cents, the unit Paystack expects.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// FromMinorUnits converts a Paystack amount in cents back to rands.
func FromMinorUnits(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
