package domain

import "time"

// ClaimForm is the auto-filled PMFBY claim form frozen into a claim at
// creation. Later edits to the farmer profile or alert never alter it.
type ClaimForm struct {
	FarmerDetails     FormFarmerDetails  `json:"farmer_details"`
	LossDetails       FormLossDetails    `json:"loss_details"`
	SchemeInfo        FormSchemeInfo     `json:"scheme_info"`
	RequiredDocuments []FormDocumentItem `json:"required_documents"`
	Metadata          FormMetadata       `json:"metadata"`
}

// FormFarmerDetails copies the farmer profile verbatim into the form.
type FormFarmerDetails struct {
	FarmerID        string  `json:"farmer_id"`
	Name            string  `json:"name"`
	Phone           string  `json:"phone"`
	State           string  `json:"state"`
	District        string  `json:"district"`
	Village         string  `json:"village"`
	LandSize        float64 `json:"land_size"`
	LandSizeUnit    string  `json:"land_size_unit"`
	CropType        string  `json:"crop_type"`
	LandType        string  `json:"land_type"`
	FarmingCategory string  `json:"farming_category"`
	SocialCategory  string  `json:"social_category"`
	Gender          string  `json:"gender"`
	Age             int     `json:"age"`
	AnnualIncome    float64 `json:"annual_income"`
}

// FormLossDetails describes the nature of loss, populated from the weather
// alert when one exists. Readings are pointers so an alert-less form renders
// them as null rather than zero.
type FormLossDetails struct {
	LossType         string   `json:"loss_type"`
	Severity         string   `json:"severity"`
	DateOfCalamity   string   `json:"date_of_calamity"` // YYYY-MM-DD
	WeatherCondition string   `json:"weather_condition"`
	Temperature      *float64 `json:"temperature"`
	Precipitation    *float64 `json:"precipitation"`
	Humidity         *int     `json:"humidity"`
	WindSpeed        *float64 `json:"wind_speed"`
}

// FormSchemeInfo is the fixed scheme-metadata block.
type FormSchemeInfo struct {
	SchemeName      string `json:"scheme_name"`
	SchemeNameHindi string `json:"scheme_name_hindi"`
	SchemeType      string `json:"scheme_type"`
}

// FormDocumentItem is one entry in the required-documents checklist.
type FormDocumentItem struct {
	Type     DocumentType `json:"type"`
	Label    string       `json:"label"`
	Required bool         `json:"required"`
}

// FormMetadata records how and when the form was generated.
type FormMetadata struct {
	FormGeneratedAt string `json:"form_generated_at"`
	AutoFilled      bool   `json:"auto_filled"`
	FormType        string `json:"form_type"`
	FormVersion     string `json:"form_version"`
	Language        string `json:"language"`
	DeadlineHours   int    `json:"deadline_hours"`
}

// ComposeClaimForm assembles the auto-filled PMFBY form from the farmer
// profile and, when present, the originating weather alert. Pure except for
// reading the clock for the generation timestamp and the default calamity
// date. Composed once at claim creation and frozen into the claim record.
func ComposeClaimForm(farmer Farmer, alert *WeatherAlert) ClaimForm {
	now := clock.Now()

	loss := FormLossDetails{
		DateOfCalamity: CalamityDate(now).Format("2006-01-02"),
	}
	if alert != nil {
		loss.LossType = string(alert.AlertType)
		loss.Severity = string(alert.Severity)
		loss.DateOfCalamity = CalamityDate(alert.TriggeredAt).Format("2006-01-02")
		loss.WeatherCondition = alert.Snapshot.ConditionText
		loss.Temperature = ptr(alert.Snapshot.TempC)
		loss.Precipitation = ptr(alert.Snapshot.PrecipMM)
		loss.Humidity = ptr(alert.Snapshot.Humidity)
		loss.WindSpeed = ptr(alert.Snapshot.WindKPH)
	}

	return ClaimForm{
		FarmerDetails: FormFarmerDetails{
			FarmerID:        farmer.ID.String(),
			Name:            farmer.Name,
			Phone:           farmer.Phone,
			State:           farmer.State,
			District:        farmer.District,
			Village:         farmer.Village,
			LandSize:        farmer.LandSize,
			LandSizeUnit:    "acres",
			CropType:        farmer.CropType,
			LandType:        farmer.LandType,
			FarmingCategory: farmer.FarmingCategory,
			SocialCategory:  farmer.SocialCategory,
			Gender:          farmer.Gender,
			Age:             farmer.Age,
			AnnualIncome:    farmer.AnnualIncome,
		},
		LossDetails: loss,
		SchemeInfo: FormSchemeInfo{
			SchemeName:      "Pradhan Mantri Fasal Bima Yojana",
			SchemeNameHindi: "प्रधानमंत्री फसल बीमा योजना",
			SchemeType:      "Crop Insurance",
		},
		RequiredDocuments: []FormDocumentItem{
			{Type: DocAadhaar, Label: "Aadhaar Card", Required: true},
			{Type: DocBankPassbook, Label: "Bank Passbook", Required: true},
			{Type: DocLandCert, Label: "Land Certificate / 7/12 Extract", Required: true},
			{Type: DocSevenTwelve, Label: "7/12 Extract (Satbara)", Required: true},
			{Type: DocSowingCert, Label: "Sowing Certificate", Required: false},
		},
		Metadata: FormMetadata{
			FormGeneratedAt: now.UTC().Format(time.RFC3339),
			AutoFilled:      true,
			FormType:        "PMFBY_CLAIM",
			FormVersion:     "1.0",
			Language:        farmer.Language,
			DeadlineHours:   int(DeadlineWindow / time.Hour),
		},
	}
}

func ptr[T any](v T) *T {
	return &v
}
