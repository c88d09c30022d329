package models

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// CalibrationRun is one offline calibration pass over the whole bag.
type CalibrationRun struct {
	ID           string          `db:"id" json:"id"`
	Budget       int             `db:"budget" json:"budget"`
	HeightWeight float64         `db:"height_weight" json:"height_weight"`
	Environment  json.RawMessage `db:"environment" json:"environment"`
	CreatedBy    string          `db:"created_by" json:"created_by"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// CalibrationClub is the calibrated result for one slot of a run.
type CalibrationClub struct {
	RunID       string  `db:"run_id" json:"run_id"`
	Slot        int     `db:"slot" json:"slot"`
	ClubType    string  `db:"club_type" json:"club_type"`
	Name        string  `db:"name" json:"name"`
	Power       float64 `db:"power" json:"power"`
	Loft        float64 `db:"loft" json:"loft"`
	Distance    float64 `db:"distance" json:"distance"`
	Apex        float64 `db:"apex" json:"apex"`
	Evaluations int     `db:"evaluations" json:"evaluations"`
	Converged   bool    `db:"converged" json:"converged"`
}

// AdminAccount may trigger and inspect calibration runs.
type AdminAccount struct {
	Username    string         `db:"username" json:"username"`
	DisplayName string         `db:"display_name" json:"display_name"`
	TokenHash   string         `db:"token_hash" json:"-"`
	Roles       pq.StringArray `db:"roles" json:"roles"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// AdminAudit records an admin action.
type AdminAudit struct {
	ID        int             `db:"id" json:"id"`
	Username  string          `db:"username" json:"username"`
	IP        string          `db:"ip" json:"ip"`
	Route     string          `db:"route" json:"route"`
	Action    string          `db:"action" json:"action"`
	Details   json.RawMessage `db:"details" json:"details"`
	Success   bool            `db:"success" json:"success"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
