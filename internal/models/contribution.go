package models

import "strings"

// ContributionSource tags where an inbound contribution came from.
type ContributionSource string

const (
	SourceDirectDeposit ContributionSource = "DIRECT_DEPOSIT"
	SourceSwapFee       ContributionSource = "SWAP_FEE"
	SourceTreasury      ContributionSource = "TREASURY"
)

// ParseContributionSource defaults to SourceDirectDeposit for an empty tag.
func ParseContributionSource(s string) (ContributionSource, error) {
	switch src := ContributionSource(strings.ToUpper(strings.TrimSpace(s))); src {
	case "":
		return SourceDirectDeposit, nil
	case SourceDirectDeposit, SourceSwapFee, SourceTreasury:
		return src, nil
	default:
		return "", ErrInvalidInstructionData
	}
}

// ContributionSplit is how a gross amount was distributed. The parts always
// sum to Gross.
type ContributionSplit struct {
	Source      ContributionSource `json:"source"`
	Gross       uint64             `json:"gross"`
	Hourly      uint64             `json:"hourly"`
	Daily       uint64             `json:"daily"`
	Fee         uint64             `json:"fee"`
	Unallocated uint64             `json:"unallocated"`
}
