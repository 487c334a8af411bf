package fdc

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/macroplate/backend/internal/domain"
)

// FDC nutrient IDs for key macronutrients
const (
	NutrientIDEnergy       = 1008 // Energy (kcal)
	NutrientIDProtein      = 1003 // Protein (g)
	NutrientIDCarbohydrate = 1005 // Carbohydrate, by difference (g)
	NutrientIDFat          = 1004 // Total lipid (fat) (g)
)

var (
	upcCodeRegex             = regexp.MustCompile(`(?i),\s*UPC:\s*\d+`)
	gtinCodeRegex            = regexp.MustCompile(`(?i),\s*GTIN:\s*\d+`)
	trailingParenthesesRegex = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
)

// MapToFood converts an FDC food record to the normalized food shape
func MapToFood(fdcFood *domain.FDCFood) domain.Food {
	calories, protein, carbs, fat := extractNutrients(fdcFood.FoodNutrients)
	servingSize, servingUnit := determineServingSize(fdcFood)

	return domain.Food{
		Name:        CleanFoodName(fdcFood.Description),
		Brand:       brandInfo(fdcFood),
		ServingSize: servingSize,
		ServingUnit: servingUnit,
		Calories:    calories,
		Protein:     protein,
		Carbs:       carbs,
		Fat:         fat,

		Source:     domain.SourceFDCUSDA,
		ExternalID: fmt.Sprintf("%d", fdcFood.FdcID),
		ProviderMetadata: map[string]interface{}{
			"fdcId":               fdcFood.FdcID,
			"dataType":            fdcFood.DataType,
			"brandOwner":          fdcFood.BrandOwner,
			"brandName":           fdcFood.BrandName,
			"originalDescription": fdcFood.Description,
		},
	}
}

// extractNutrients pulls the four macronutrients out of the variable-length
// nutrient array by fixed nutrient id. Missing codes default to 0.
func extractNutrients(nutrients []domain.FDCNutrient) (calories, protein, carbs, fat float64) {
	for _, nutrient := range nutrients {
		switch nutrient.NutrientID {
		case NutrientIDEnergy:
			calories = convertToStandardUnit(nutrient.Value, nutrient.UnitName, "kcal")
		case NutrientIDProtein:
			protein = convertToStandardUnit(nutrient.Value, nutrient.UnitName, "g")
		case NutrientIDCarbohydrate:
			carbs = convertToStandardUnit(nutrient.Value, nutrient.UnitName, "g")
		case NutrientIDFat:
			fat = convertToStandardUnit(nutrient.Value, nutrient.UnitName, "g")
		}
	}
	return
}

// convertToStandardUnit normalizes nutrient units: kJ to kcal divides by
// 4.184, mg to g divides by 1000, identical units pass through. All results
// round to 2 decimal places.
func convertToStandardUnit(value float64, fromUnit, toUnit string) float64 {
	from := strings.ToLower(fromUnit)
	to := strings.ToLower(toUnit)

	switch {
	case from == to:
		return round2(value)
	case from == "kj" && to == "kcal":
		return round2(value / 4.184)
	case from == "mg" && to == "g":
		return round2(value / 1000)
	default:
		return round2(value)
	}
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// determineServingSize resolves the serving in order: explicit serving size
// and unit, then the food portion closest to 100g, then a 100g default.
func determineServingSize(food *domain.FDCFood) (float64, string) {
	if food.ServingSize > 0 && food.ServingSizeUnit != "" {
		return food.ServingSize, food.ServingSizeUnit
	}

	best := -1.0
	var bestPortion *domain.FDCPortion
	for i := range food.FoodPortions {
		portion := &food.FoodPortions[i]
		if portion.GramWeight <= 0 {
			continue
		}
		distance := math.Abs(portion.GramWeight - 100)
		if bestPortion == nil || distance < best {
			best = distance
			bestPortion = portion
		}
	}
	if bestPortion != nil {
		return bestPortion.GramWeight, "g"
	}

	return 100, "g"
}

// brandInfo composes "brandName (brandOwner)" when both are present
func brandInfo(food *domain.FDCFood) string {
	switch {
	case food.BrandName != "" && food.BrandOwner != "":
		return fmt.Sprintf("%s (%s)", food.BrandName, food.BrandOwner)
	case food.BrandName != "":
		return food.BrandName
	default:
		return food.BrandOwner
	}
}

// CleanFoodName strips trailing UPC/GTIN codes and parenthetical suffixes
// from an FDC description, then capitalizes the first letter only.
func CleanFoodName(description string) string {
	cleaned := upcCodeRegex.ReplaceAllString(description, "")
	cleaned = gtinCodeRegex.ReplaceAllString(cleaned, "")
	cleaned = trailingParenthesesRegex.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		return "Unknown Food"
	}

	runes := []rune(cleaned)
	return strings.ToUpper(string(runes[0])) + strings.ToLower(string(runes[1:]))
}
