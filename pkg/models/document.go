package models

import (
	"time"

	"github.com/google/uuid"
)

// Category classifies documents and planchas. Grade categories match rank
// names; "general" is visible to everyone and "administrative" is reserved
// for maestros and elevated viewers.
type Category string

// Category constants.
const (
	CategoryAprendiz       Category = "aprendiz"
	CategoryCompanero      Category = "companero"
	CategoryMaestro        Category = "maestro"
	CategoryGeneral        Category = "general"
	CategoryAdministrative Category = "administrative"
)

// ValidCategories contains all valid category values.
var ValidCategories = []Category{
	CategoryAprendiz,
	CategoryCompanero,
	CategoryMaestro,
	CategoryGeneral,
	CategoryAdministrative,
}

// IsValidCategory checks if the given category is valid.
func IsValidCategory(category string) bool {
	for _, c := range ValidCategories {
		if c == Category(category) {
			return true
		}
	}
	return false
}

// ParseCategory validates a raw category string at the API boundary.
func ParseCategory(raw string) (Category, bool) {
	if IsValidCategory(raw) {
		return Category(raw), true
	}
	return "", false
}

// Document is an item in the lodge library. Visibility is decided at the
// category level only; there is no per-document override.
type Document struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Category   Category  `json:"category"`
	StorageURL string    `json:"storage_url"`
	UploadedBy uuid.UUID `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}
