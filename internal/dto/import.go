package dto

import "github.com/noah-isme/alumni-network-api/internal/models"

// ImportEntriesRequest carries rows that were mapped client side.
type ImportEntriesRequest struct {
	Data []models.ImportEntry `json:"data" binding:"required,min=1"`
}
