package follow

// ErrorCode classifies why Follow could not produce a successor. Codes are
// pruning signals for the search, not faults.
type ErrorCode uint8

const (
	ErrNone ErrorCode = iota
	ErrNoWay
	ErrOwnerMismatch
	ErrRailTypeMismatch
	ErrNo90DegreeTurn
)

var errorCodeText = [...]string{
	ErrNone:             "none",
	ErrNoWay:            "no way",
	ErrOwnerMismatch:    "owner mismatch",
	ErrRailTypeMismatch: "rail/road type mismatch",
	ErrNo90DegreeTurn:   "90 degree turn",
}

func (e ErrorCode) Error() string {
	if int(e) < len(errorCodeText) {
		return errorCodeText[e]
	}
	return "unknown follow error"
}

func (e ErrorCode) String() string {
	return e.Error()
}
