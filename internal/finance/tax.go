package finance

import "github.com/shopspring/decimal"

// Greek stamp duty: 1.2% of the base plus a 20% OGA surcharge on the duty.
var (
	stampDutyRate = decimal.NewFromFloat(0.012)
	ogaStampRate  = decimal.NewFromFloat(0.2)
)

// VATResult carries a net/gross pair with the VAT broken out.
type VATResult struct {
	Net       decimal.Decimal `json:"net"`
	Rate      decimal.Decimal `json:"rate"`
	VATAmount decimal.Decimal `json:"vatAmount"`
	Gross     decimal.Decimal `json:"gross"`
}

// VATFromNet adds VAT at the given percentage rate to a net amount. The rate
// is taken as supplied; restricting it to the statutory set (0/6/13/24) is
// the caller's concern.
func VATFromNet(net, rate decimal.Decimal) VATResult {
	vat := Round(net.Mul(rate).Div(oneHundred))
	return VATResult{
		Net:       Round(net),
		Rate:      rate,
		VATAmount: vat,
		Gross:     Round(net.Add(vat)),
	}
}

// NetFromGross extracts the net amount and VAT from a gross amount. Rates at
// or below -100% make the division degenerate and return ErrInvalidRate.
func NetFromGross(gross, rate decimal.Decimal) (VATResult, error) {
	if rate.LessThanOrEqual(oneHundred.Neg()) {
		return VATResult{}, ErrInvalidRate
	}
	net := Round(gross.Div(decimal.NewFromInt(1).Add(rate.Div(oneHundred))))
	return VATResult{
		Net:       net,
		Rate:      rate,
		VATAmount: Round(gross.Sub(net)),
		Gross:     Round(gross),
	}, nil
}

// WithholdingResult breaks a payable amount into the tax withheld at source
// and the remainder actually paid out.
type WithholdingResult struct {
	BaseAmount        decimal.Decimal `json:"baseAmount"`
	Rate              decimal.Decimal `json:"rate"`
	WithholdingAmount decimal.Decimal `json:"withholdingAmount"`
	NetPayable        decimal.Decimal `json:"netPayable"`
}

// Withholding deducts tax at the given percentage rate from a payable amount.
func Withholding(amount, rate decimal.Decimal) WithholdingResult {
	withheld := Round(amount.Mul(rate).Div(oneHundred))
	return WithholdingResult{
		BaseAmount:        Round(amount),
		Rate:              rate,
		WithholdingAmount: withheld,
		NetPayable:        Round(amount.Sub(withheld)),
	}
}

// StampDutyResult carries the stamp duty components for a transaction amount.
type StampDutyResult struct {
	BaseAmount     decimal.Decimal `json:"baseAmount"`
	StampDuty      decimal.Decimal `json:"stampDuty"`
	OGAStamp       decimal.Decimal `json:"ogaStamp"`
	TotalStamp     decimal.Decimal `json:"totalStamp"`
	TotalWithStamp decimal.Decimal `json:"totalWithStamp"`
}

// StampDuty computes the fixed-rate stamp duty and OGA surcharge. Each
// component is rounded independently before summing.
func StampDuty(amount decimal.Decimal) StampDutyResult {
	rawDuty := amount.Mul(stampDutyRate)
	duty := Round(rawDuty)
	oga := Round(rawDuty.Mul(ogaStampRate))
	total := Round(duty.Add(oga))
	return StampDutyResult{
		BaseAmount:     Round(amount),
		StampDuty:      duty,
		OGAStamp:       oga,
		TotalStamp:     total,
		TotalWithStamp: Round(amount.Add(total)),
	}
}
