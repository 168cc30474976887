package accounts

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

// Is matches on Code, so errors.Is(err, ErrInvalidEmail) holds for any
// *Error carrying that code regardless of message or details.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

var (
	ErrDuplicatedAccount = &Error{Status: 409, Code: "DUPLICATED_ACCOUNT", Message: "An account with this email already exists."}
	ErrInvalidName       = &Error{Status: 422, Code: "INVALID_NAME", Message: "Invalid name."}
	ErrInvalidEmail      = &Error{Status: 422, Code: "INVALID_EMAIL", Message: "Invalid email."}
	ErrInvalidNationalID = &Error{Status: 422, Code: "INVALID_NATIONAL_ID", Message: "Invalid national id."}
	ErrInvalidCarPlate   = &Error{Status: 422, Code: "INVALID_CAR_PLATE", Message: "Invalid car plate."}
	ErrAccountNotFound   = &Error{Status: 404, Code: "ACCOUNT_NOT_FOUND", Message: "Account not found."}
)

func withDetails(base *Error, field, reason string) *Error {
	return &Error{
		Status:  base.Status,
		Code:    base.Code,
		Message: base.Message,
		Details: map[string]any{field: reason},
	}
}
