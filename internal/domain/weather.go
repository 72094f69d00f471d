package domain

import (
	"context"
	"fmt"
	"sort"
)

// Alert types recognized by the threshold evaluator. PestAttack is never
// produced by weather thresholds; it exists for manually filed losses.
const (
	AlertHeavyRain  AlertType = "heavy_rain"
	AlertFlood      AlertType = "flood"
	AlertDrought    AlertType = "drought"
	AlertHailstorm  AlertType = "hailstorm"
	AlertCyclone    AlertType = "cyclone"
	AlertFrost      AlertType = "frost"
	AlertPestAttack AlertType = "pest_attack"
)

// AlertType identifies the kind of calamity an alert reports.
type AlertType string

// Severity is the four-level alert scale. Critical is the most severe.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank orders severities for sorting: critical 0, high 1, moderate 2, low 3.
// Unknown values sort last.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityModerate:
		return 2
	case SeverityLow:
		return 3
	default:
		return 99
	}
}

// WeatherSnapshot is a normalized current-conditions reading. It is produced
// by the fetcher, consumed once by Evaluate, and a copy is frozen into the
// alert record. Field defaults for missing upstream data are applied at the
// fetcher boundary, not here.
type WeatherSnapshot struct {
	TempC         float64 `json:"temp_c"`
	Humidity      int     `json:"humidity"`
	PrecipMM      float64 `json:"precip_mm"`
	WindKPH       float64 `json:"wind_kph"`
	ConditionCode int     `json:"condition_code"`
	ConditionText string  `json:"condition_text"`
}

// GovernmentAlert is a government-issued weather warning passed through from
// the upstream forecast feed.
type GovernmentAlert struct {
	Headline  string `json:"headline"`
	Event     string `json:"event,omitempty"`
	Severity  string `json:"severity,omitempty"`
	Areas     string `json:"areas,omitempty"`
	Effective string `json:"effective,omitempty"`
	Expires   string `json:"expires,omitempty"`
	Desc      string `json:"desc,omitempty"`
}

// WeatherSource retrieves weather data for a free-form location query
// ("Pune", "18.52,73.85", "Wagholi, Pune, Maharashtra").
type WeatherSource interface {
	// FetchCurrent returns current conditions for the location.
	FetchCurrent(ctx context.Context, query string) (*WeatherSnapshot, error)

	// FetchForecastWithAlerts returns current conditions plus any
	// government-issued alerts covering the location.
	FetchForecastWithAlerts(ctx context.Context, query string, days int) (*WeatherSnapshot, []GovernmentAlert, error)
}

// Candidate is one matched threshold rule.
type Candidate struct {
	Type     AlertType `json:"type"`
	Severity Severity  `json:"severity"`
	Detail   string    `json:"detail"`
}

// AlertClassification is the evaluator's verdict: the dominant matched rule
// plus the full candidate list sorted most-to-least severe, kept for audit.
// Immutable once produced.
type AlertClassification struct {
	Triggered  bool        `json:"triggered"`
	AlertType  AlertType   `json:"alert_type,omitempty"`
	Severity   Severity    `json:"severity,omitempty"`
	Detail     string      `json:"detail,omitempty"`
	Candidates []Candidate `json:"candidates,omitempty"`
}

// Danger thresholds. Values mirror the PMFBY operational guidance the scheme
// form was designed around.
const (
	heavyRainPrecipMM  = 50.0
	floodPrecipMM      = 100.0
	droughtTempMinC    = 40.0
	droughtHumidityMax = 20
	droughtPrecipMaxMM = 2.0
	cycloneWindKPH     = 90.0
	frostTempMaxC      = 2.0
)

// hailConditionCodes are the WeatherAPI condition codes for ice pellets and sleet.
var hailConditionCodes = map[int]bool{1237: true, 1261: true, 1264: true}

// Evaluate checks a snapshot against every danger threshold and returns the
// classification. Pure: no I/O, no clock, deterministic for a given snapshot.
//
// Rules are appended in decreasing specificity within a severity level (flood
// before heavy rain), then stable-sorted by severity rank so the first
// candidate is the dominant alert.
func Evaluate(s WeatherSnapshot) AlertClassification {
	var candidates []Candidate

	if s.PrecipMM >= floodPrecipMM {
		candidates = append(candidates, Candidate{
			Type:     AlertFlood,
			Severity: SeverityCritical,
			Detail:   fmt.Sprintf("Flood risk: %gmm extreme precipitation", s.PrecipMM),
		})
	}

	if s.PrecipMM >= heavyRainPrecipMM {
		severity := SeverityHigh
		if s.PrecipMM >= floodPrecipMM {
			severity = SeverityCritical
		}
		candidates = append(candidates, Candidate{
			Type:     AlertHeavyRain,
			Severity: severity,
			Detail:   fmt.Sprintf("Heavy rainfall: %gmm precipitation", s.PrecipMM),
		})
	}

	if s.TempC >= droughtTempMinC && s.Humidity <= droughtHumidityMax && s.PrecipMM <= droughtPrecipMaxMM {
		candidates = append(candidates, Candidate{
			Type:     AlertDrought,
			Severity: SeverityHigh,
			Detail:   fmt.Sprintf("Drought conditions: %g°C, %d%% humidity, %gmm rain", s.TempC, s.Humidity, s.PrecipMM),
		})
	}

	if hailConditionCodes[s.ConditionCode] {
		candidates = append(candidates, Candidate{
			Type:     AlertHailstorm,
			Severity: SeverityHigh,
			Detail:   fmt.Sprintf("Hailstorm detected: %s", s.ConditionText),
		})
	}

	if s.WindKPH >= cycloneWindKPH {
		candidates = append(candidates, Candidate{
			Type:     AlertCyclone,
			Severity: SeverityCritical,
			Detail:   fmt.Sprintf("Cyclonic winds: %g km/h", s.WindKPH),
		})
	}

	if s.TempC <= frostTempMaxC {
		severity := SeverityModerate
		if s.TempC <= 0 {
			severity = SeverityHigh
		}
		candidates = append(candidates, Candidate{
			Type:     AlertFrost,
			Severity: severity,
			Detail:   fmt.Sprintf("Frost conditions: %g°C", s.TempC),
		})
	}

	if len(candidates) == 0 {
		return AlertClassification{Triggered: false}
	}

	sortCandidatesBySeverity(candidates)
	top := candidates[0]
	return AlertClassification{
		Triggered:  true,
		AlertType:  top.Type,
		Severity:   top.Severity,
		Detail:     top.Detail,
		Candidates: candidates,
	}
}

// ClassifyGovernmentAlert synthesizes a moderate classification from the first
// government-issued alert. Used by the recorder when no threshold rule matched
// but the upstream feed carries an official warning; not an evaluator rule
// because it depends on a second data source.
func ClassifyGovernmentAlert(alerts []GovernmentAlert) (AlertClassification, bool) {
	if len(alerts) == 0 {
		return AlertClassification{}, false
	}
	detail := alerts[0].Headline
	if detail == "" {
		detail = "Government weather alert issued"
	}
	c := Candidate{Type: AlertHeavyRain, Severity: SeverityModerate, Detail: detail}
	return AlertClassification{
		Triggered:  true,
		AlertType:  c.Type,
		Severity:   c.Severity,
		Detail:     c.Detail,
		Candidates: []Candidate{c},
	}, true
}

// sortCandidatesBySeverity orders candidates most-to-least severe, keeping
// the append order within equal ranks.
func sortCandidatesBySeverity(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Severity.Rank() < candidates[j].Severity.Rank()
	})
}
