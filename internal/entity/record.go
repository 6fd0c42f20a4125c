package entity

import (
	"time"

	"github.com/google/uuid"
)

// Record represents one parsed directory entry for data transfer between layers.
//
// Surname, GivenName, Occupation and HomeAddress are the core fields; the
// rest is provenance and supplemental data carried to the store and the
// XLSX export. The CSV export emits the core fields only. A Record is not
// modified after assembly.
type Record struct {
	ID             uuid.UUID `json:"id"`
	RunID          uuid.UUID `json:"run_id"`
	Surname        string    `json:"surname"`
	GivenName      string    `json:"given_name"`
	Occupation     string    `json:"occupation"`
	HomeAddress    string    `json:"home_address"`
	ResidenceType  string    `json:"residence_type,omitempty"`
	SpouseName     string    `json:"spouse_name,omitempty"`
	SurnameCarried bool      `json:"surname_carried,omitempty"`
	Year           string    `json:"year,omitempty"`
	Source         string    `json:"source,omitempty"`
	PageNo         int       `json:"page_no,omitempty"`
	LineNo         int       `json:"line_no,omitempty"`
	Raw            string    `json:"raw,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
