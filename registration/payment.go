package registration

import "github.com/Rhymond/go-money"

// Two fixed fee tiers, keyed only on whether a spouse accompanies the
// registrant. Amounts are stored and displayed in rupees and sent to the
// gateway in paise.
const (
	soloFeeRupees   = 500
	coupleFeeRupees = 1000
)

func Fee(hasSpouse bool) *money.Money {
	rupees := int64(soloFeeRupees)
	if hasSpouse {
		rupees = coupleFeeRupees
	}
	return money.New(rupees*100, money.INR)
}

// FeeRupees is the stored/displayed major-unit amount.
func FeeRupees(hasSpouse bool) int64 {
	return Fee(hasSpouse).Amount() / 100
}
