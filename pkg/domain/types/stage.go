package types

import "fmt"

// PaymentStage represents the state of a payment attempt. Stages advance
// strictly in declaration order; Confirmed and Failed are terminal.
type PaymentStage string

const (
	StageIdle              PaymentStage = "idle"
	StageParametersFetched PaymentStage = "parameters_fetched"
	StageDataEncoded       PaymentStage = "data_encoded"
	StageSigned            PaymentStage = "signed"
	StageSubmitted         PaymentStage = "submitted"
	StageConfirmed         PaymentStage = "confirmed"
	StageFailed            PaymentStage = "failed"
)

// AllPaymentStages returns all payment stages in execution order
func AllPaymentStages() []PaymentStage {
	return []PaymentStage{
		StageIdle,
		StageParametersFetched,
		StageDataEncoded,
		StageSigned,
		StageSubmitted,
		StageConfirmed,
		StageFailed,
	}
}

// IsValid checks if the payment stage is valid
func (s PaymentStage) IsValid() bool {
	switch s {
	case StageIdle, StageParametersFetched, StageDataEncoded,
		StageSigned, StageSubmitted, StageConfirmed, StageFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the stage ends the payment attempt.
func (s PaymentStage) IsTerminal() bool {
	return s == StageConfirmed || s == StageFailed
}

// String returns the string representation of the payment stage
func (s PaymentStage) String() string {
	return string(s)
}

// ParsePaymentStage parses a string into a PaymentStage
func ParsePaymentStage(v string) (PaymentStage, error) {
	s := PaymentStage(v)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid payment stage: %s", v)
	}
	return s, nil
}
