// Package payment holds the fee tiers and the static payment instructions shown
// after a registration. It is shared by the server and the Go client.
package payment

// Tier is the closed set of fee tiers.
type Tier string

const (
	TierSampad    Tier = "sampad"
	TierNonSampad Tier = "non_sampad"
)

// TierFor maps the affiliation flag to its tier.
func TierFor(isSampad bool) Tier {
	if isSampad {
		return TierSampad
	}
	return TierNonSampad
}

// Fee is one row of the fee table. MessageKey names the catalog entry for the instruction text.
type Fee struct {
	Amount     int64
	MessageKey string
}

// feeTable is the single source of pricing. A new tier is a new row.
var feeTable = map[Tier]Fee{
	TierSampad:    {Amount: 50000, MessageKey: "payment.message.sampad"},
	TierNonSampad: {Amount: 100000, MessageKey: "payment.message.non_sampad"},
}

// FeeFor looks up the fee for t. Unknown tiers fall back to the non-Sampad fee.
func FeeFor(t Tier) Fee {
	if fee, ok := feeTable[t]; ok {
		return fee
	}
	return feeTable[TierNonSampad]
}

// Tiers lists every tier in the fee table.
func Tiers() []Tier {
	return []Tier{TierSampad, TierNonSampad}
}

// Account is the static card the participant transfers to.
type Account struct {
	CardNumber string
	Owner      string
}

// DefaultAccount is used when no account is configured.
var DefaultAccount = Account{
	CardNumber: "6037 1234 5678 9012",
	Owner:      "امیررضا ریاحی",
}

// Descriptor tells the participant how much to pay and where. It is derived, never stored.
type Descriptor struct {
	Tier       Tier
	Amount     int64
	CardNumber string
	Owner      string
	MessageKey string
}

// For computes the descriptor for a tier. It is a pure function of its inputs.
func For(t Tier, account Account) Descriptor {
	fee := FeeFor(t)
	return Descriptor{
		Tier:       t,
		Amount:     fee.Amount,
		CardNumber: account.CardNumber,
		Owner:      account.Owner,
		MessageKey: fee.MessageKey,
	}
}
