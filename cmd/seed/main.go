// Command seed populates a claims database with demo farmers and vault
// documents for local development.
//
// Usage:
//
//	go run ./cmd/seed -db claims.db
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/agrisarthi/crop-claims-service/internal/adapter/sqlite"
	"github.com/agrisarthi/crop-claims-service/internal/domain"
	"github.com/agrisarthi/crop-claims-service/internal/observability"
)

var demoFarmers = []domain.Farmer{
	{
		ID:              uuid.MustParse("7b0c1c3e-8b1a-4d3f-9e2a-111111111111"),
		Name:            "Ramesh Patil",
		Phone:           "9876543210",
		State:           "Maharashtra",
		District:        "Pune",
		Village:         "Wagholi",
		LandSize:        2.5,
		CropType:        "rice",
		LandType:        "irrigated",
		FarmingCategory: "small",
		SocialCategory:  "general",
		Gender:          "male",
		Age:             42,
		AnnualIncome:    180000,
		Language:        "mr",
	},
	{
		ID:              uuid.MustParse("7b0c1c3e-8b1a-4d3f-9e2a-222222222222"),
		Name:            "Savita Deshmukh",
		Phone:           "9822001122",
		State:           "Maharashtra",
		District:        "Nashik",
		Village:         "Pimpalgaon",
		LandSize:        1.2,
		CropType:        "grape",
		LandType:        "irrigated",
		FarmingCategory: "marginal",
		SocialCategory:  "obc",
		Gender:          "female",
		Age:             38,
		AnnualIncome:    150000,
		Language:        "mr",
	},
	{
		ID:              uuid.MustParse("7b0c1c3e-8b1a-4d3f-9e2a-333333333333"),
		Name:            "Harpreet Singh",
		Phone:           "9815055667",
		State:           "Punjab",
		District:        "Ludhiana",
		Village:         "Sahnewal",
		LandSize:        5.0,
		CropType:        "wheat",
		LandType:        "irrigated",
		FarmingCategory: "medium",
		SocialCategory:  "general",
		Gender:          "male",
		Age:             51,
		AnnualIncome:    420000,
		Language:        "pa",
	},
}

func main() {
	dbPath := flag.String("db", "claims.db", "path to the claims SQLite database")
	flag.Parse()

	logger := observability.NewLogger("info", "text")

	store, err := sqlite.Open(*dbPath, logger)
	if err != nil {
		slog.Error("open database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	uploadedAt := time.Now().UTC()

	for _, farmer := range demoFarmers {
		if err := store.UpsertFarmer(ctx, farmer); err != nil {
			slog.Error("seed farmer", "name", farmer.Name, "error", err)
			os.Exit(1)
		}
		for _, dt := range domain.RequiredDocumentTypes {
			rec := domain.DocumentRecord{
				DocumentType: dt,
				URL:          fmt.Sprintf("/vault/%s/%s.pdf", farmer.ID, dt),
				Filename:     string(dt) + ".pdf",
				UploadedAt:   &uploadedAt,
			}
			if err := store.PutVaultDocument(ctx, farmer.ID, rec); err != nil {
				slog.Error("seed vault document", "farmer", farmer.Name, "type", dt, "error", err)
				os.Exit(1)
			}
		}
		fmt.Printf("seeded %s (%s, %s) id=%s\n", farmer.Name, farmer.Village, farmer.District, farmer.ID)
	}
}
