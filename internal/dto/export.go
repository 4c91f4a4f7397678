package dto

// ExportQuery selects the directory export format on top of directory filters.
type ExportQuery struct {
	DirectoryQuery
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
}
