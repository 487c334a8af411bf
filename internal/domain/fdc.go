package domain

// Wire types for the USDA FoodData Central API.

// FDCFood is a single food item as returned by the FDC API
type FDCFood struct {
	FdcID           int64         `json:"fdcId"`
	Description     string        `json:"description"`
	DataType        string        `json:"dataType,omitempty"`
	BrandOwner      string        `json:"brandOwner,omitempty"`
	BrandName       string        `json:"brandName,omitempty"`
	Ingredients     string        `json:"ingredients,omitempty"`
	ServingSize     float64       `json:"servingSize,omitempty"`
	ServingSizeUnit string        `json:"servingSizeUnit,omitempty"`
	FoodNutrients   []FDCNutrient `json:"foodNutrients"`
	FoodPortions    []FDCPortion  `json:"foodPortions,omitempty"`
}

// FDCNutrient is one entry of the variable-length nutrient array
type FDCNutrient struct {
	NutrientID     int64   `json:"nutrientId"`
	NutrientName   string  `json:"nutrientName,omitempty"`
	NutrientNumber string  `json:"nutrientNumber,omitempty"`
	UnitName       string  `json:"unitName"`
	Value          float64 `json:"value"`
}

// FDCPortion describes a household portion and its gram weight
type FDCPortion struct {
	ID                 int64   `json:"id"`
	PortionDescription string  `json:"portionDescription,omitempty"`
	GramWeight         float64 `json:"gramWeight"`
}

// FDCSearchResponse is the response body of POST /foods/search
type FDCSearchResponse struct {
	Foods       []FDCFood `json:"foods"`
	TotalHits   int       `json:"totalHits"`
	CurrentPage int       `json:"currentPage"`
	TotalPages  int       `json:"totalPages"`
}
