package refresh

import "time"

type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseLoaded  Phase = "loaded"
	PhaseError   Phase = "error"
)

// FetchState is the per-instance view of the latest fetch. Refreshing is set
// while a fetch runs over data that is already shown; Loading is only used
// when there is nothing to show yet.
type FetchState struct {
	Phase         Phase     `json:"phase"`
	Data          any       `json:"data"`
	ErrorMessage  string    `json:"errorMessage,omitempty"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt,omitzero"`
	Refreshing    bool      `json:"refreshing"`
	Sequence      uint64    `json:"sequence"`
}
