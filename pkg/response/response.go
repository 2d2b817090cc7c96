package response

// Error codes shared by all handlers
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeConflict        = "CONFLICT"
	ErrCodeTooLarge        = "PAYLOAD_TOO_LARGE"
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeUnavailable     = "SERVICE_UNAVAILABLE"
	ErrCodeRequestInFlight = "REQUEST_IN_PROGRESS"
)

// Response is the JSON envelope of every API reply
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   *ErrorData  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorData describes a failed request
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Meta carries list paging information
type Meta struct {
	Total  int `json:"total"`
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Success wraps data in a successful envelope
func Success(data interface{}) *Response {
	return &Response{Success: true, Data: data}
}

// SuccessWithMessage wraps data and a human readable message
func SuccessWithMessage(data interface{}, message string) *Response {
	return &Response{Success: true, Data: data, Message: message}
}

// List wraps a page of items with its total count
func List(items interface{}, total, limit, offset int) *Response {
	return &Response{
		Success: true,
		Data:    items,
		Meta:    &Meta{Total: total, Limit: limit, Offset: offset},
	}
}

// Error builds a failed envelope
func Error(code, message string) *Response {
	return &Response{Success: false, Error: &ErrorData{Code: code, Message: message}}
}

// ErrorWithDetails builds a failed envelope with a reason
func ErrorWithDetails(code, message, details string) *Response {
	return &Response{Success: false, Error: &ErrorData{Code: code, Message: message, Details: details}}
}

func BadRequest(message string) *Response {
	return Error(ErrCodeBadRequest, message)
}

func ValidationError(message string) *Response {
	return Error(ErrCodeValidation, message)
}

func Unauthorized(message string) *Response {
	return Error(ErrCodeUnauthorized, message)
}

func Forbidden(message string) *Response {
	return Error(ErrCodeForbidden, message)
}

func NotFound(message string) *Response {
	return Error(ErrCodeNotFound, message)
}

func Conflict(message string) *Response {
	return Error(ErrCodeConflict, message)
}

func InternalError(message string) *Response {
	return Error(ErrCodeInternal, message)
}
