package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Command layer.
	ErrBadRequest      = "E_BAD_REQUEST"
	ErrNoFunds         = "E_NO_FUNDS"
	ErrLocked          = "E_LOCKED"
	ErrInvalidTemplate = "E_INVALID_TEMPLATE"
	ErrUnknownUnit     = "E_UNKNOWN_UNIT"
	ErrInternal        = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrBadRequest:      {},
	ErrNoFunds:         {},
	ErrLocked:          {},
	ErrInvalidTemplate: {},
	ErrUnknownUnit:     {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
