// Command weathercheck fetches live conditions for a location and runs the
// danger threshold evaluator against them. Useful for tuning thresholds and
// inspecting WeatherAPI responses without a full service deployment.
//
// Usage:
//
//	WEATHER_API_KEY=... go run ./cmd/weathercheck -q "Wagholi, Pune, Maharashtra"
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/agrisarthi/crop-claims-service/internal/adapter/weatherapi"
	"github.com/agrisarthi/crop-claims-service/internal/domain"
	"github.com/agrisarthi/crop-claims-service/internal/observability"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	query := flag.String("q", "", "location query (village, district, state)")
	days := flag.Int("days", 1, "forecast days to request alongside alerts")
	timeout := flag.Duration("timeout", 10*time.Second, "upstream request timeout")
	flag.Parse()

	if *query == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -q")
	}
	key := os.Getenv("WEATHER_API_KEY")
	if key == "" {
		return fmt.Errorf("WEATHER_API_KEY is not set")
	}

	logger := observability.NewLogger("warn", "text")
	client := weatherapi.NewClient(key, *timeout, logger, observability.NewMetricsForTesting())

	ctx, cancel := context.WithTimeout(context.Background(), *timeout+time.Second)
	defer cancel()

	snapshot, govAlerts, err := client.FetchForecastWithAlerts(ctx, *query, *days)
	if err != nil {
		return err
	}

	cls := domain.Evaluate(*snapshot)
	if !cls.Triggered {
		if govCls, ok := domain.ClassifyGovernmentAlert(govAlerts); ok {
			cls = govCls
		}
	}

	out := struct {
		Location       string                     `json:"location"`
		Conditions     domain.WeatherSnapshot     `json:"conditions"`
		Classification domain.AlertClassification `json:"classification"`
		GovAlerts      []domain.GovernmentAlert   `json:"government_alerts,omitempty"`
	}{
		Location:       *query,
		Conditions:     *snapshot,
		Classification: cls,
		GovAlerts:      govAlerts,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
