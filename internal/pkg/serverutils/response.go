package serverutils

// Response is the envelope every successful endpoint writes.
type Response[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type ErrorBody struct {
	Success bool                `json:"success"`
	Code    int                 `json:"code"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func SuccessResponse[T any](message string, data T) *Response[T] {
	return &Response[T]{
		Success: true,
		Code:    200,
		Message: message,
		Data:    data,
	}
}

func CreatedResponse[T any](message string, data T) *Response[T] {
	return &Response[T]{
		Success: true,
		Code:    201,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code int, message string) *ErrorBody {
	return &ErrorBody{
		Success: false,
		Code:    code,
		Message: message,
	}
}

func ValidationErrorResponse(code int, message string, errors map[string][]string) *ErrorBody {
	return &ErrorBody{
		Success: false,
		Code:    code,
		Message: message,
		Errors:  errors,
	}
}
