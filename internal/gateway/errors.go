package gateway

import "fmt"

// NetworkError 检索客户端的传输、协议或解析失败
type NetworkError struct {
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s", e.Message)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func networkError(err error) error {
	if err == nil {
		return nil
	}
	return &NetworkError{Message: err.Error(), Err: err}
}
