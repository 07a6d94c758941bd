package policy

import "github.com/gran-oriente/logia-engine/pkg/models"

// categoryAllowList maps each rank to the categories it may browse. The
// lists grow monotonically with rank; adding a rank or category here forces
// the exhaustiveness tests to be revisited.
var categoryAllowList = map[models.Rank][]models.Category{
	models.RankAprendiz: {
		models.CategoryAprendiz,
		models.CategoryGeneral,
	},
	models.RankCompanero: {
		models.CategoryAprendiz,
		models.CategoryCompanero,
		models.CategoryGeneral,
	},
	models.RankMaestro: {
		models.CategoryAprendiz,
		models.CategoryCompanero,
		models.CategoryMaestro,
		models.CategoryGeneral,
		models.CategoryAdministrative,
	},
}

// AllowedCategories returns the categories the viewer may browse. Elevated
// viewers see every category.
func AllowedCategories(v Viewer) []models.Category {
	if v.IsElevated() {
		return append([]models.Category(nil), models.ValidCategories...)
	}
	allowed, ok := categoryAllowList[v.Rank]
	if !ok {
		// Unknown rank browses nothing beyond the general shelf.
		return []models.Category{models.CategoryGeneral}
	}
	return append([]models.Category(nil), allowed...)
}

// CanViewCategory reports whether the viewer may browse the category.
func CanViewCategory(v Viewer, category models.Category) bool {
	for _, c := range AllowedCategories(v) {
		if c == category {
			return true
		}
	}
	return false
}
