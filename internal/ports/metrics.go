package ports

// OutcomeRecorder receives workflow outcomes for observability
type OutcomeRecorder interface {
	RegistrationOutcome(outcome string)
	ProvisioningOutcome(outcome string)
}
