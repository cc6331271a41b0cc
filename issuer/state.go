package issuer

// State identifies where in the issuance sequence an Issuer currently is.
// States advance strictly forward; any state may transition to StateFailed.
type State uint8

const (
	StateStart State = iota
	StateAccountCreated
	StateOrderCreated
	StateAuthorizationsFetched
	// Per-authorization sub-sequence. Skipped entirely for authorizations
	// that are already valid on first inspection.
	StateChallengeStaged
	StateReadySignaled
	StatePollingAuthorization
	StateAuthorizationValid
	StateFinalizing
	StatePollingOrder
	StateOrderValid
	StateCertificateDownloaded
	StateFailed
)

var stateNames = map[State]string{
	StateStart:                 "start",
	StateAccountCreated:        "account-created",
	StateOrderCreated:          "order-created",
	StateAuthorizationsFetched: "authorizations-fetched",
	StateChallengeStaged:       "challenge-staged",
	StateReadySignaled:         "ready-signaled",
	StatePollingAuthorization:  "polling-authorization",
	StateAuthorizationValid:    "authorization-valid",
	StateFinalizing:            "finalizing",
	StatePollingOrder:          "polling-order",
	StateOrderValid:            "order-valid",
	StateCertificateDownloaded: "certificate-downloaded",
	StateFailed:                "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}
