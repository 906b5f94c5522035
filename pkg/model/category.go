package model

// Categories the site groups portfolio work into.
const (
	CategoryAnimation      = "Animation"
	CategoryCharacter      = "Character"
	CategoryMotionGraphics = "Motion Graphics"
	CategoryShortFilms     = "Short Films"
	CategoryCommercial     = "Commercial"
	CategoryExperimental   = "Experimental"
	CategoryTutorial       = "Tutorial"
	CategoryUncategorized  = "Uncategorized"

	// CategoryAll is a listing sentinel, never stored on a record.
	CategoryAll = "All"

	DefaultCategory = CategoryMotionGraphics
)

// YouTube taxonomy name -> site category. Names absent here fall back to
// DefaultCategory.
var categoryTable = map[string]string{
	"Film & Animation":     CategoryAnimation,
	"Entertainment":        CategoryCharacter,
	"Gaming":               CategoryCharacter,
	"Howto & Style":        CategoryTutorial,
	"Education":            CategoryTutorial,
	"Science & Technology": CategoryExperimental,
	"People & Blogs":       CategoryShortFilms,
}

// MapCategory resolves a YouTube category id against the fetched taxonomy and
// maps the resulting name onto the site's category vocabulary.
func MapCategory(categoryID string, taxonomy map[string]string) string {
	name, ok := taxonomy[categoryID]
	if !ok {
		name = CategoryUncategorized
	}

	if mapped, ok := categoryTable[name]; ok {
		return mapped
	}

	return DefaultCategory
}
