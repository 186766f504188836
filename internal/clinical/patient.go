package clinical

import (
	"strings"
	"time"
)

// Gender values accepted on patient records.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Valid reports whether the gender is one of the accepted values.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale || g == GenderOther
}

// DateOnly is the layout for date-only fields (date of birth, follow-up dates).
const DateOnly = "2006-01-02"

// Patient is a clinical patient record. Every patient is owned by exactly one
// doctor; admins have shared read access through the access filter.
type Patient struct {
	ID                 string    `dynamodbav:"id" json:"id"`
	FirstName          string    `dynamodbav:"firstName" json:"firstName"`
	LastName           string    `dynamodbav:"lastName" json:"lastName"`
	DateOfBirth        string    `dynamodbav:"dateOfBirth" json:"dateOfBirth"` // date only
	Gender             Gender    `dynamodbav:"gender" json:"gender"`
	Diagnosis          string    `dynamodbav:"diagnosis" json:"diagnosis"`
	Problem            string    `dynamodbav:"problem" json:"problem"`
	ReferringDoctor    string    `dynamodbav:"referringDoctor" json:"referringDoctor"`
	SedationRequired   bool      `dynamodbav:"sedationRequired" json:"sedationRequired"`
	CPAManaged         bool      `dynamodbav:"cpaManaged" json:"cpaManaged"`
	InjectionObjective string    `dynamodbav:"injectionObjective" json:"injectionObjective"`
	DoctorID           string    `dynamodbav:"doctorId" json:"doctorId"`
	CreatedAt          time.Time `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time `dynamodbav:"updatedAt" json:"updatedAt"`
}

// OwnerID implements access.Owned.
func (p Patient) OwnerID() string { return p.DoctorID }

// CPARelevant reports whether the anesthesia-coordination flag carries
// meaning. The stored flag is preserved as entered when sedation is toggled
// off; consumers must read it through this accessor.
func (p Patient) CPARelevant() bool {
	return p.SedationRequired && p.CPAManaged
}

// Vocabulary is the subset of the configuration catalog that record
// validation consults. Implemented by catalog.Catalog.
type Vocabulary interface {
	HasDiagnosis(name string) bool
	HasProduct(name string) bool
	HasGuidanceType(name string) bool
	HasMuscle(id string) bool
}

// Validate rejects a patient whose identity or diagnosis fields are blank.
// The diagnosis must exist in the current catalog at creation time; records
// keep their value if the catalog entry is later removed.
func (p *Patient) Validate(vocab Vocabulary) error {
	if strings.TrimSpace(p.FirstName) == "" {
		return invalid("firstName", "required")
	}
	if strings.TrimSpace(p.LastName) == "" {
		return invalid("lastName", "required")
	}
	if strings.TrimSpace(p.DateOfBirth) == "" {
		return invalid("dateOfBirth", "required")
	}
	if _, err := time.Parse(DateOnly, p.DateOfBirth); err != nil {
		return invalid("dateOfBirth", "must be a YYYY-MM-DD date")
	}
	if !p.Gender.Valid() {
		return invalid("gender", "must be male, female or other")
	}
	if strings.TrimSpace(p.Diagnosis) == "" {
		return invalid("diagnosis", "required")
	}
	if vocab != nil && !vocab.HasDiagnosis(p.Diagnosis) {
		return invalid("diagnosis", "not in the configured diagnosis list")
	}
	if strings.TrimSpace(p.DoctorID) == "" {
		return invalid("doctorId", "required")
	}
	return nil
}
