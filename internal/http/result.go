package httpapi

// Result response envelope of every JSON endpoint.
//   - code: 2000 on success, -1 on failure
//   - type: "success" | "error"
type Result[T any] struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

const (
	ResultSuccess = 2000
	ResultError   = -1
)

func Ok[T any](result T) Result[T] {
	return Result[T]{Code: ResultSuccess, Type: "success", Message: "ok", Result: result}
}

func Fail(message string) Result[any] {
	return Result[any]{Code: ResultError, Type: "error", Message: message, Result: nil}
}

// FailWith carries extra detail, e.g. per-field validation messages.
func FailWith(message string, detail any) Result[any] {
	return Result[any]{Code: ResultError, Type: "error", Message: message, Result: detail}
}
