package app

import "net/http"

// Error carries the HTTP status and the wire code/message of a failed game
// operation. The handler layer serializes it verbatim.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrMapNotFound = &Error{
		Status:  http.StatusNotFound,
		Code:    "mapNotFound",
		Message: "Map not found",
	}
	ErrInvalidName = &Error{
		Status:  http.StatusBadRequest,
		Code:    "invalidArgument",
		Message: "Invalid name",
	}
	ErrUnknownToken = &Error{
		Status:  http.StatusUnauthorized,
		Code:    "unknownToken",
		Message: "Player token has not been found",
	}
	ErrTooManyRecords = &Error{
		Status:  http.StatusBadRequest,
		Code:    "invalidArgument",
		Message: "Parameter maxItems is invalid",
	}
)
