package dto

// SetVerificationRequest toggles account verification. A pointer keeps a
// literal false distinguishable from a missing field.
type SetVerificationRequest struct {
	Verified *bool `json:"verified" validate:"required"`
}
