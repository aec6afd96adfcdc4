package checkout

// State is the submission phase of the orchestrator. Transitions are
// forward-only; there is no compensating rollback on failure.
type State string

const (
	StateIdle               State = "Idle"
	StateValidating         State = "Validating"
	StateResolvingIdentity  State = "ResolvingIdentity"
	StateSavingProfile      State = "SavingProfile"
	StateCreatingOrder      State = "CreatingOrder"
	StateCreatingOrderLines State = "CreatingOrderLines"
	StateCompleted          State = "Completed"
	StateGuestFallback      State = "GuestFallback"
	StateFailed             State = "Failed"
)
