package clinical

import (
	"strings"
	"time"
)

// Side of the body an injected muscle belongs to.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Valid reports whether the side is left or right.
func (s Side) Valid() bool {
	return s == SideLeft || s == SideRight
}

// InjectedMuscle is one muscle/dosage entry within an injection session. The
// same muscle may appear twice (left and right).
type InjectedMuscle struct {
	MuscleID string  `dynamodbav:"muscleId" json:"muscleId"`
	Dosage   float64 `dynamodbav:"dosage" json:"dosage"` // UI (units)
	Side     Side    `dynamodbav:"side" json:"side"`
}

// Injection is a single toxin injection session, created as an atomic unit.
type Injection struct {
	ID                  string           `dynamodbav:"id" json:"id"`
	PatientID           string           `dynamodbav:"patientId" json:"patientId"`
	Date                time.Time        `dynamodbav:"date" json:"date"`
	Product             string           `dynamodbav:"product" json:"product"`
	Muscles             []InjectedMuscle `dynamodbav:"muscles" json:"muscles"`
	GuidanceType        []string         `dynamodbav:"guidanceType" json:"guidanceType"`
	PostInjectionEvents []string         `dynamodbav:"postInjectionEvents" json:"postInjectionEvents"`
	Notes               string           `dynamodbav:"notes" json:"notes"`
	DoctorID            string           `dynamodbav:"doctorId" json:"doctorId"`
	FollowUpDate        string           `dynamodbav:"followUpDate,omitempty" json:"followUpDate,omitempty"` // date only
}

// OwnerID implements access.Owned.
func (i Injection) OwnerID() string { return i.DoctorID }

// TotalDosage is the sum of all muscle dosages. Always computed; never stored.
func (i Injection) TotalDosage() float64 {
	var total float64
	for _, m := range i.Muscles {
		total += m.Dosage
	}
	return total
}

// UsesMuscle reports whether any entry references the given muscle id.
func (i Injection) UsesMuscle(muscleID string) bool {
	for _, m := range i.Muscles {
		if m.MuscleID == muscleID {
			return true
		}
	}
	return false
}

// MuscleDosage sums dosage across all entries for the given muscle id, so a
// left+right pair contributes both.
func (i Injection) MuscleDosage(muscleID string) float64 {
	var total float64
	for _, m := range i.Muscles {
		if m.MuscleID == muscleID {
			total += m.Dosage
		}
	}
	return total
}

// HasEvent reports whether the injection lists the given post-injection event.
func (i Injection) HasEvent(label string) bool {
	for _, e := range i.PostInjectionEvents {
		if e == label {
			return true
		}
	}
	return false
}

// Validate rejects an injection with an empty muscle list, a negative dosage,
// or an empty guidance-type list.
func (i *Injection) Validate(vocab Vocabulary) error {
	if strings.TrimSpace(i.PatientID) == "" {
		return invalid("patientId", "required")
	}
	if strings.TrimSpace(i.DoctorID) == "" {
		return invalid("doctorId", "required")
	}
	if i.Date.IsZero() {
		return invalid("date", "required")
	}
	if strings.TrimSpace(i.Product) == "" {
		return invalid("product", "required")
	}
	if vocab != nil && !vocab.HasProduct(i.Product) {
		return invalid("product", "not in the configured product list")
	}
	if len(i.Muscles) == 0 {
		return invalid("muscles", "at least one injected muscle is required")
	}
	for _, m := range i.Muscles {
		if strings.TrimSpace(m.MuscleID) == "" {
			return invalid("muscles", "muscleId required on every entry")
		}
		if vocab != nil && !vocab.HasMuscle(m.MuscleID) {
			return invalid("muscles", "unknown muscle "+m.MuscleID)
		}
		if m.Dosage < 0 {
			return invalid("muscles", "dosage must be non-negative")
		}
		if !m.Side.Valid() {
			return invalid("muscles", "side must be left or right")
		}
	}
	if len(i.GuidanceType) == 0 {
		return invalid("guidanceType", "at least one guidance type is required")
	}
	if vocab != nil {
		for _, g := range i.GuidanceType {
			if !vocab.HasGuidanceType(g) {
				return invalid("guidanceType", "unknown guidance type "+g)
			}
		}
	}
	if i.FollowUpDate != "" {
		if _, err := time.Parse(DateOnly, i.FollowUpDate); err != nil {
			return invalid("followUpDate", "must be a YYYY-MM-DD date")
		}
	}
	return nil
}
