package catalog

// MuscleSide describes which sides of the body a catalog muscle exists on.
type MuscleSide string

const (
	MuscleSideLeft  MuscleSide = "left"
	MuscleSideRight MuscleSide = "right"
	MuscleSideBoth  MuscleSide = "both"
)

// Muscle is one entry of the injectable-muscle catalog.
type Muscle struct {
	ID     string     `dynamodbav:"id" json:"id"`
	Name   string     `dynamodbav:"name" json:"name"`
	Region string     `dynamodbav:"region" json:"region"`
	Side   MuscleSide `dynamodbav:"side" json:"side"`
}

// Catalog is the controlled-vocabulary configuration. It is an explicit
// versioned value: every computation that needs it receives it as an
// argument, never through a process-wide singleton. Removing an entry never
// cascades to historical records, which keep the value they were saved with.
type Catalog struct {
	ID                  string   `dynamodbav:"id,omitempty" json:"id,omitempty"`
	Version             int64    `dynamodbav:"version" json:"version"`
	Diagnoses           []string `dynamodbav:"diagnoses" json:"diagnoses"`
	Muscles             []Muscle `dynamodbav:"muscles" json:"muscles"`
	Regions             []string `dynamodbav:"regions" json:"regions"`
	Products            []string `dynamodbav:"products" json:"products"`
	GuidanceTypes       []string `dynamodbav:"guidanceTypes" json:"guidanceTypes"`
	PostInjectionEvents []string `dynamodbav:"postInjectionEvents" json:"postInjectionEvents"`
}

// Defaults is the catalog a fresh deployment starts from.
func Defaults() Catalog {
	return Catalog{
		Version: 1,
		Diagnoses: []string{
			"Cervical dystonia",
			"Post-stroke spasticity",
			"Cerebral spasticity",
			"Chronic migraine",
			"Hypersalivation",
			"Overactive bladder",
			"Other",
		},
		Muscles: []Muscle{
			{ID: "1", Name: "Sternocleidomastoid", Region: "Neck", Side: MuscleSideBoth},
			{ID: "2", Name: "Splenius", Region: "Neck", Side: MuscleSideBoth},
			{ID: "3", Name: "Trapezius", Region: "Neck", Side: MuscleSideBoth},
			{ID: "4", Name: "Biceps brachii", Region: "Upper limb", Side: MuscleSideBoth},
			{ID: "5", Name: "Finger flexors", Region: "Upper limb", Side: MuscleSideBoth},
			{ID: "6", Name: "Gastrocnemius", Region: "Lower limb", Side: MuscleSideBoth},
			{ID: "7", Name: "Hamstrings", Region: "Lower limb", Side: MuscleSideBoth},
			{ID: "8", Name: "Temporalis", Region: "Face", Side: MuscleSideBoth},
			{ID: "9", Name: "Masseter", Region: "Face", Side: MuscleSideBoth},
		},
		Regions:       []string{"Neck", "Upper limb", "Lower limb", "Face"},
		Products:      []string{"Botox", "Dysport"},
		GuidanceTypes: []string{"Ultrasound", "Electrostimulation", "Anatomical landmarks"},
		PostInjectionEvents: []string{
			"Injection-site pain",
			"Hematoma",
			"Muscle weakness",
			"Swallowing difficulty",
			"Dry mouth",
			"No adverse event",
		},
	}
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

// HasDiagnosis implements clinical.Vocabulary.
func (c Catalog) HasDiagnosis(name string) bool { return contains(c.Diagnoses, name) }

// HasProduct implements clinical.Vocabulary.
func (c Catalog) HasProduct(name string) bool { return contains(c.Products, name) }

// HasGuidanceType implements clinical.Vocabulary.
func (c Catalog) HasGuidanceType(name string) bool { return contains(c.GuidanceTypes, name) }

// HasMuscle implements clinical.Vocabulary.
func (c Catalog) HasMuscle(id string) bool {
	_, ok := c.MuscleByID(id)
	return ok
}

// MuscleByID looks up a catalog muscle.
func (c Catalog) MuscleByID(id string) (Muscle, bool) {
	for _, m := range c.Muscles {
		if m.ID == id {
			return m, true
		}
	}
	return Muscle{}, false
}

// Update is a partial catalog mutation; nil fields are left untouched.
type Update struct {
	Diagnoses           *[]string `json:"diagnoses,omitempty"`
	Muscles             *[]Muscle `json:"muscles,omitempty"`
	Regions             *[]string `json:"regions,omitempty"`
	Products            *[]string `json:"products,omitempty"`
	GuidanceTypes       *[]string `json:"guidanceTypes,omitempty"`
	PostInjectionEvents *[]string `json:"postInjectionEvents,omitempty"`
}

// Apply returns a new catalog with the update applied and the version bumped.
// The receiver is never mutated.
func (c Catalog) Apply(u Update) Catalog {
	next := c
	if u.Diagnoses != nil {
		next.Diagnoses = *u.Diagnoses
	}
	if u.Muscles != nil {
		next.Muscles = *u.Muscles
	}
	if u.Regions != nil {
		next.Regions = *u.Regions
	}
	if u.Products != nil {
		next.Products = *u.Products
	}
	if u.GuidanceTypes != nil {
		next.GuidanceTypes = *u.GuidanceTypes
	}
	if u.PostInjectionEvents != nil {
		next.PostInjectionEvents = *u.PostInjectionEvents
	}
	next.Version = c.Version + 1
	return next
}
