package dispatch

// state identifies the protocol step a request is in. Fault metrics and
// logs carry the state a request faulted from.
type state int

const (
	stateResolving state = iota
	stateCORS
	stateExtracting
	stateInvoking
	stateSerializing
)

// String returns the metric label for the state.
func (s state) String() string {
	switch s {
	case stateResolving:
		return "resolving_endpoint"
	case stateCORS:
		return "cors"
	case stateExtracting:
		return "extracting_arguments"
	case stateInvoking:
		return "invoking"
	case stateSerializing:
		return "serializing"
	default:
		return "unknown"
	}
}
