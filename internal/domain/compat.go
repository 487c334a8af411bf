package domain

// Conversions between the internal storage shape and the normalized food
// shape. Round-trip law: FoodFromStored then StoredFromFood yields the
// original record, timestamps included.

// FoodFromStored converts an internal database row to a normalized Food
func FoodFromStored(stored StoredFood) Food {
	createdAt := stored.CreatedAt
	updatedAt := stored.UpdatedAt

	return Food{
		Name:        stored.Name,
		Brand:       stored.Brand,
		ServingSize: stored.ServingSize,
		ServingUnit: stored.ServingUnit,
		Calories:    stored.Calories,
		Protein:     stored.Protein,
		Carbs:       stored.Carbs,
		Fat:         stored.Fat,

		Source: SourceInternal,
		ProviderMetadata: map[string]interface{}{
			"internalId": stored.ID,
		},

		ID:        stored.ID,
		CreatedAt: &createdAt,
		UpdatedAt: &updatedAt,
		UserID:    stored.UserID,
	}
}

// StoredFromFood converts a normalized Food back to the storage shape.
// Only internal-sourced foods can be converted; anything else fails with
// EXTERNAL_FOOD_UPDATE.
func StoredFromFood(food Food) (*StoredFood, error) {
	if food.Source != SourceInternal {
		return nil, NewProviderError(food.Source, CodeExternalFoodUpdate,
			"cannot convert an external food to the internal storage shape")
	}

	stored := &StoredFood{
		ID:          food.ID,
		Name:        food.Name,
		Brand:       food.Brand,
		ServingSize: food.ServingSize,
		ServingUnit: food.ServingUnit,
		Calories:    food.Calories,
		Protein:     food.Protein,
		Carbs:       food.Carbs,
		Fat:         food.Fat,
		UserID:      food.UserID,
	}

	// Timestamps are preserved, never regenerated
	if food.CreatedAt != nil {
		stored.CreatedAt = *food.CreatedAt
	}
	if food.UpdatedAt != nil {
		stored.UpdatedAt = *food.UpdatedAt
	}

	return stored, nil
}

// IsExternalFood reports whether a food came from a non-internal source
func IsExternalFood(food Food) bool {
	return food.Source != SourceInternal
}

// SourceDisplayName returns a human-readable name for a source type
func SourceDisplayName(source SourceType) string {
	switch source {
	case SourceInternal:
		return "Personal Database"
	case SourceFDCUSDA:
		return "USDA Food Data Central"
	case SourceAggregated:
		return "Aggregated Results"
	default:
		return "Unknown Source"
	}
}
