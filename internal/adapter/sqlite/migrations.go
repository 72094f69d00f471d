package sqlite

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "Initial schema",
		SQL: `
CREATE TABLE IF NOT EXISTS farmers (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    phone TEXT,
    state TEXT,
    district TEXT,
    village TEXT,
    land_size REAL DEFAULT 0,
    crop_type TEXT,
    land_type TEXT,
    farming_category TEXT,
    social_category TEXT,
    gender TEXT,
    age INTEGER DEFAULT 0,
    annual_income REAL DEFAULT 0,
    language TEXT
);

CREATE TABLE IF NOT EXISTS weather_alerts (
    id TEXT PRIMARY KEY,
    farmer_id TEXT NOT NULL REFERENCES farmers(id),
    alert_type TEXT,
    severity TEXT NOT NULL,
    detail TEXT,
    triggered BOOLEAN NOT NULL DEFAULT FALSE,
    candidates_json TEXT,
    snapshot_json TEXT NOT NULL,
    gov_alerts_json TEXT,
    location_name TEXT,
    triggered_at DATETIME NOT NULL,
    is_acknowledged BOOLEAN NOT NULL DEFAULT FALSE,
    has_damage BOOLEAN NOT NULL DEFAULT FALSE,
    acknowledged_at DATETIME
);

CREATE TABLE IF NOT EXISTS insurance_claims (
    id TEXT PRIMARY KEY,
    claim_code TEXT NOT NULL UNIQUE,
    farmer_id TEXT NOT NULL REFERENCES farmers(id),
    alert_id TEXT REFERENCES weather_alerts(id),
    loss_type TEXT NOT NULL,
    date_of_calamity DATETIME,
    survey_number TEXT,
    area_affected REAL DEFAULT 0,
    damage_description TEXT,
    form_json TEXT NOT NULL,
    photos_json TEXT,
    documents_json TEXT,
    status TEXT NOT NULL,
    deadline DATETIME,
    is_within_deadline BOOLEAN NOT NULL DEFAULT TRUE,
    admin_notes TEXT,
    rejection_reason TEXT,
    verified_by TEXT,
    verified_at DATETIME,
    submitted_at DATETIME,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS vault_documents (
    farmer_id TEXT NOT NULL REFERENCES farmers(id),
    document_type TEXT NOT NULL,
    url TEXT NOT NULL,
    filename TEXT,
    uploaded_at DATETIME,
    PRIMARY KEY (farmer_id, document_type)
);

CREATE INDEX IF NOT EXISTS idx_alerts_farmer_time ON weather_alerts(farmer_id, triggered_at);
CREATE INDEX IF NOT EXISTS idx_claims_farmer_time ON insurance_claims(farmer_id, created_at);
CREATE INDEX IF NOT EXISTS idx_claims_status ON insurance_claims(status);
`,
	},
}
