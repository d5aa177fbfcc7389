package dto

// FeatureInput uses a pointer for Included so an omitted flag fails
// validation instead of silently defaulting to false.
type FeatureInput struct {
	Name     string `json:"name"`
	Included *bool  `json:"included"`
}

type UpdateFeaturesRequest struct {
	Features []FeatureInput `json:"features" binding:"required"`
}
