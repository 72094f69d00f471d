// Package domain models proactive PMFBY crop-insurance claims driven by
// weather calamity detection.
//
// # Calamity Thresholds
//
// A current-conditions reading from WeatherAPI.com is checked against fixed
// danger thresholds. Each rule is evaluated independently, so one snapshot can
// match several:
//
//	heavy_rain: precip ≥ 50mm   (critical at ≥ 100mm, else high)
//	flood:      precip ≥ 100mm  (critical)
//	drought:    temp ≥ 40°C AND humidity ≤ 20% AND precip ≤ 2mm  (high)
//	hailstorm:  condition code 1237, 1261 or 1264 (ice pellets / sleet)  (high)
//	cyclone:    wind ≥ 90 km/h  (critical)
//	frost:      temp ≤ 2°C      (high at ≤ 0°C, else moderate)
//
// Matched rules are sorted by severity rank (critical < high < moderate < low,
// lower wins) with a stable sort; the first candidate is the dominant alert and
// the full list is kept for audit. Flood is checked ahead of heavy rain so a
// 100mm+ reading reports flood, the more specific peril, rather than the heavy
// rain rule it necessarily co-matches.
//
// Condition codes follow the WeatherAPI.com code table; 1000 is "Clear".
//
// # Claim Lifecycle
//
// Claims move through
//
//	DRAFT → EVIDENCE_PENDING → DOCUMENTS_PENDING → READY_TO_SUBMIT →
//	SUBMITTED → UNDER_REVIEW → APPROVED | REJECTED
//
// Creation starts at EVIDENCE_PENDING; DRAFT exists only for manually
// constructed claims. Readiness is recomputed fresh on every document
// attachment and may move a claim backwards when a vault document disappears.
// SUBMITTED onward is controlled by the admin review flow.
//
// # Deadline
//
// PMFBY requires claims within 72 hours of the calamity. The deadline is
// midnight UTC of the calamity date plus 72 hours, computed exactly once when
// the calamity date becomes known and never recomputed. IsWithinDeadline is
// refreshed against the current clock on every save, so it flips to false on
// the first save after the deadline passes. A late submission still succeeds;
// deadline enforcement is advisory.
//
// # Claim Codes
//
// Human-readable claim codes look like "CLM-2026-48301": the current year and
// five random digits, assigned at first save and unique per claim.
package domain
