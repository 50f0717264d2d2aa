// internal/web/models/responses/common.go
package responses

import "time"

// BaseResponse base structure of every response
type BaseResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse error response structure
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// DataResponse response carrying a payload
type DataResponse struct {
	BaseResponse
	Data interface{} `json:"data"`
}

// ListResponse response carrying a list payload and its count
type ListResponse struct {
	BaseResponse
	Data  interface{} `json:"data"`
	Count int         `json:"count"`
}

// NewSuccessResponse creates a success base response
func NewSuccessResponse(message string) BaseResponse {
	return BaseResponse{
		Success:   true,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewDataResponse creates a data response
func NewDataResponse(data interface{}, message string) DataResponse {
	return DataResponse{
		BaseResponse: NewSuccessResponse(message),
		Data:         data,
	}
}
