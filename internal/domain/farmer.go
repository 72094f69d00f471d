package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Farmer is the registered profile this service reads but never mutates.
// Identity resolution and profile management live in the farmers service;
// this is the read-side projection the claim form is filled from.
type Farmer struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Phone           string    `json:"phone"`
	State           string    `json:"state"`
	District        string    `json:"district"`
	Village         string    `json:"village"`
	LandSize        float64   `json:"land_size"` // acres
	CropType        string    `json:"crop_type"`
	LandType        string    `json:"land_type"`
	FarmingCategory string    `json:"farming_category"`
	SocialCategory  string    `json:"social_category"`
	Gender          string    `json:"gender"`
	Age             int       `json:"age"`
	AnnualIncome    float64   `json:"annual_income"`
	Language        string    `json:"language"`
}

// LocationQuery builds the weather lookup string from the farmer's profile,
// most specific part first ("Wagholi, Pune, Maharashtra"). Returns
// ErrLocationUnavailable when village, district, and state are all empty.
func (f Farmer) LocationQuery() (string, error) {
	var parts []string
	for _, p := range []string{f.Village, f.District, f.State} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "", ErrLocationUnavailable
	}
	return strings.Join(parts, ", "), nil
}
