package dto

// AchievementRequest creates or replaces an achievement. Every field is required.
type AchievementRequest struct {
	Title             string `json:"title" validate:"required,max=200"`
	Description       string `json:"description" validate:"required"`
	Image             string `json:"image" validate:"required"`
	AlumniName        string `json:"alumni_name" validate:"required"`
	AlumniDesignation string `json:"alumni_designation" validate:"required"`
}
