package response

import "net/http"

type Error struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Extras  string `json:"extras"`
}

func (e Error) Error() string {
	return e.Extras
}

func NewError(success bool, code int, message string) Error {
	return Error{
		Success: success,
		Code:    code,
		Extras:  message,
	}
}

var (
	ErrRoomNotFound = NewError(false, http.StatusNotFound, "room not found")
	ErrInvalidMove  = NewError(false, http.StatusBadRequest, "cell must be an integer between 0 and 8")
)
