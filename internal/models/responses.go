package models

import "fmt"

// OperatorResponse wire format of GET /operators
type OperatorResponse struct {
	Status  int                 `json:"status"`
	Message string              `json:"message,omitempty"`
	Data    []OperatorWithZones `json:"data"`
}

// IsSuccess reports whether the response carries a usable payload
func (r *OperatorResponse) IsSuccess() bool {
	return r.Status == 0 || (r.Status >= 200 && r.Status < 300)
}

// GetErrorMessage human-readable error for a failed response
func (r *OperatorResponse) GetErrorMessage() string {
	if r.Message != "" {
		return r.Message
	}
	return fmt.Sprintf("statut %d", r.Status)
}

// UserPayload nested payload of GET /user
type UserPayload struct {
	User             UnifiedUser `json:"user"`
	PreferredPayment string      `json:"preferredPayment,omitempty"`
	Notifications    *bool       `json:"notifications,omitempty"`
}

// UserResponse wire format of GET /user
type UserResponse struct {
	Status  int         `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    UserPayload `json:"data"`
}

// IsSuccess reports whether the response carries a usable payload
func (r *UserResponse) IsSuccess() bool {
	return r.Status == 0 || (r.Status >= 200 && r.Status < 300)
}

// GetErrorMessage human-readable error for a failed response
func (r *UserResponse) GetErrorMessage() string {
	if r.Message != "" {
		return r.Message
	}
	return fmt.Sprintf("statut %d", r.Status)
}

// Unified merges the top-level preference fields into the user record
func (p UserPayload) Unified() UnifiedUser {
	user := p.User
	if p.PreferredPayment != "" {
		user.PreferredPayment = p.PreferredPayment
	}
	if p.Notifications != nil {
		user.Notifications = p.Notifications
	}
	return user
}

// UpdateResponse wire format of PATCH /user
type UpdateResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// IsSuccess reports whether the update was accepted
func (r *UpdateResponse) IsSuccess() bool {
	return r.Status >= 200 && r.Status < 300
}
