package errs

// ErrorKind identifies a kind of internal error.
// fully support for errors.Is and errors.As.
type ErrorKind string

const (
	// NotFound is returned when a requested item is not found.
	NotFound = ErrorKind("Not Found")

	// InvalidArgument is returned when a caller-supplied value cannot be parsed or is out of range.
	InvalidArgument = ErrorKind("Invalid Argument")

	// Unsupported is returned when a requested feature or value is not supported.
	Unsupported = ErrorKind("Unsupported")

	// NotAuthorized is returned when the calling principal lacks the role required by an operation.
	NotAuthorized = ErrorKind("Not Authorized")

	// AlreadyMember is returned when granting a role to a principal that already holds it.
	AlreadyMember = ErrorKind("Already Member")

	// NotMember is returned when revoking a role from a principal that does not hold it.
	NotMember = ErrorKind("Not Member")

	// InvalidReceiver is returned when an issuance targets the zero principal.
	InvalidReceiver = ErrorKind("Invalid Receiver")

	// LengthMismatch is returned when batch issuance arrays differ in length.
	LengthMismatch = ErrorKind("Length Mismatch")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}
