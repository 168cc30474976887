package rides

// Error is an application-layer error that can be mapped to an HTTP response.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

// Is matches on Code, so errors.Is(err, ErrNotAPassenger) holds for any
// *Error carrying that code regardless of message or details.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

var (
	ErrAccountNotFound   = &Error{Status: 404, Code: "ACCOUNT_NOT_FOUND", Message: "Account not found."}
	ErrNotAPassenger     = &Error{Status: 422, Code: "NOT_A_PASSENGER", Message: "Account is not a passenger."}
	ErrOngoingRideExists = &Error{Status: 409, Code: "ONGOING_RIDE_EXISTS", Message: "Passenger already has a ride in progress."}
	ErrRideNotFound      = &Error{Status: 404, Code: "RIDE_NOT_FOUND", Message: "Ride not found."}
)

func withDetails(base *Error, field, reason string) *Error {
	return &Error{
		Status:  base.Status,
		Code:    base.Code,
		Message: base.Message,
		Details: map[string]any{field: reason},
	}
}
