package scanner

import (
	"strings"

	"github.com/example/monarchbot/pkg/models"
)

// CategoryKeywords maps a goal category to the substrings that select it.
type CategoryKeywords struct {
	Category models.GoalCategory
	Keywords []string
}

// DefaultCategories is checked in order; the first category with a matching keyword wins.
var DefaultCategories = []CategoryKeywords{
	{models.CategoryFitness, []string{"exercise", "workout", "physical", "strength", "cardio", "gym", "run", "walk", "health", "body"}},
	{models.CategoryCareer, []string{"work", "job", "career", "professional", "skill", "promotion", "business", "income", "networking"}},
	{models.CategorySkills, []string{"learn", "study", "skill", "knowledge", "course", "practice", "master", "develop", "improve"}},
	{models.CategoryMental, []string{"mental", "mindset", "confidence", "stress", "anxiety", "meditation", "focus", "discipline"}},
	{models.CategorySocial, []string{"social", "relationship", "communication", "friends", "family", "networking", "people"}},
}

// Classify returns the category of text by plain substring containment, or other.
func Classify(text string, table []CategoryKeywords) models.GoalCategory {
	lower := strings.ToLower(text)
	for _, c := range table {
		for _, kw := range c.Keywords {
			if strings.Contains(lower, kw) {
				return c.Category
			}
		}
	}
	return models.CategoryOther
}
