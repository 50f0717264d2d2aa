package models

import "strings"

// DefaultDisplayName shown when no profile snapshot exists
const DefaultDisplayName = "Utilisateur"

// UnifiedUser the authenticated user's profile and preferences.
// Display/full names are derived from FirstName+Name on every read; they are
// deliberately methods rather than stored fields so a partial patch of the
// raw fields can never leave a stale derived value behind.
type UnifiedUser struct {
	ID               string `json:"id"`
	FirstName        string `json:"firstName"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	PhotoURL         string `json:"photoUrl"`
	Role             string `json:"role"`
	CreatedAt        string `json:"createdAt"`
	IDNumber         string `json:"idNumber"`
	PieceType        string `json:"pieceType"`
	PreferredPayment string `json:"preferredPayment,omitempty"`
	Notifications    *bool  `json:"notifications,omitempty"`
}

// FullName recomputed from the raw name fields on every call
func (u *UnifiedUser) FullName() string {
	if u == nil {
		return DefaultDisplayName
	}
	full := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.Name))
	if full == "" {
		return DefaultDisplayName
	}
	return full
}

// DisplayName short name for compact UI surfaces; falls back to the full name
func (u *UnifiedUser) DisplayName() string {
	if u == nil {
		return DefaultDisplayName
	}
	if first := strings.TrimSpace(u.FirstName); first != "" {
		return first
	}
	return u.FullName()
}

// UserPatch a partial profile update; nil fields are left untouched.
// Derived names are intentionally absent: they are never accepted as input.
type UserPatch struct {
	FirstName        *string `json:"firstName,omitempty"`
	Name             *string `json:"name,omitempty"`
	Email            *string `json:"email,omitempty" validate:"omitempty,email"`
	PhotoURL         *string `json:"photoUrl,omitempty"`
	IDNumber         *string `json:"idNumber,omitempty"`
	PieceType        *string `json:"pieceType,omitempty"`
	PreferredPayment *string `json:"preferredPayment,omitempty"`
	Notifications    *bool   `json:"notifications,omitempty"`
}

// ApplyTo merges the patch into a copy of the given user and returns it
func (p UserPatch) ApplyTo(user UnifiedUser) UnifiedUser {
	if p.FirstName != nil {
		user.FirstName = *p.FirstName
	}
	if p.Name != nil {
		user.Name = *p.Name
	}
	if p.Email != nil {
		user.Email = *p.Email
	}
	if p.PhotoURL != nil {
		user.PhotoURL = *p.PhotoURL
	}
	if p.IDNumber != nil {
		user.IDNumber = *p.IDNumber
	}
	if p.PieceType != nil {
		user.PieceType = *p.PieceType
	}
	if p.PreferredPayment != nil {
		user.PreferredPayment = *p.PreferredPayment
	}
	if p.Notifications != nil {
		notif := *p.Notifications
		user.Notifications = &notif
	}
	return user
}

// IsEmpty reports whether the patch carries no fields at all
func (p UserPatch) IsEmpty() bool {
	return p.FirstName == nil && p.Name == nil && p.Email == nil &&
		p.PhotoURL == nil && p.IDNumber == nil && p.PieceType == nil &&
		p.PreferredPayment == nil && p.Notifications == nil
}
