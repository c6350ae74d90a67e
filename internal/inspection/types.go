package inspection

import (
	"fmt"
	"strings"
	"time"
)

// EquipmentType selects which variant fields a record carries.
type EquipmentType string

const (
	TypeExtinguisher EquipmentType = "extinguisher"
	TypeHydrant      EquipmentType = "hydrant"
)

// EquipmentTypes lists the accepted equipment types in form order.
var EquipmentTypes = []EquipmentType{TypeExtinguisher, TypeHydrant}

// ParseEquipmentType accepts the persisted spelling of an equipment type.
func ParseEquipmentType(s string) (EquipmentType, error) {
	switch EquipmentType(strings.TrimSpace(s)) {
	case TypeExtinguisher:
		return TypeExtinguisher, nil
	case TypeHydrant:
		return TypeHydrant, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEquipmentType, s)
}

// Label is the display name of the equipment type.
func (t EquipmentType) Label() string {
	switch t {
	case TypeExtinguisher:
		return "Extinguisher"
	case TypeHydrant:
		return "Hydrant"
	}
	return string(t)
}

// Status values offered by the inspection form. The store treats status as
// an opaque string, so records imported from elsewhere may carry others.
const (
	StatusOK        = "ok"
	StatusAttention = "attention"
	StatusFailed    = "failed"
)

var StatusOptions = []string{StatusOK, StatusAttention, StatusFailed}

// Photo is a single photographic attachment. Data holds the base64 payload
// of the image without any data-URL prefix.
type Photo struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

// Checklist holds the six named checks. Every key is always serialized.
type Checklist struct {
	Accessible    bool `json:"accessible"`
	Seal          bool `json:"seal"`
	Pressure      bool `json:"pressure"`
	Hose          bool `json:"hose"`
	Signalization bool `json:"signalization"`
	Valves        bool `json:"valves"`
}

// ChecklistItem describes one check for forms and reports.
type ChecklistItem struct {
	Key   string
	Label string
}

var ChecklistItems = []ChecklistItem{
	{"accessible", "Accessible"},
	{"seal", "Seal intact"},
	{"pressure", "Pressure OK"},
	{"hose", "Hose OK"},
	{"signalization", "Signalization"},
	{"valves", "Valves OK"},
}

// Get returns the value of the check named key.
func (c Checklist) Get(key string) bool {
	switch key {
	case "accessible":
		return c.Accessible
	case "seal":
		return c.Seal
	case "pressure":
		return c.Pressure
	case "hose":
		return c.Hose
	case "signalization":
		return c.Signalization
	case "valves":
		return c.Valves
	}
	return false
}

// Set updates the check named key. Unknown keys are ignored.
func (c *Checklist) Set(key string, v bool) {
	switch key {
	case "accessible":
		c.Accessible = v
	case "seal":
		c.Seal = v
	case "pressure":
		c.Pressure = v
	case "hose":
		c.Hose = v
	case "signalization":
		c.Signalization = v
	case "valves":
		c.Valves = v
	}
}

// Passed counts the checks that are set.
func (c Checklist) Passed() int {
	n := 0
	for _, item := range ChecklistItems {
		if c.Get(item.Key) {
			n++
		}
	}
	return n
}

// Extinguisher carries the extinguisher-only fields of a record.
type Extinguisher struct {
	ExtinguisherType     string `json:"extinguisherType"`
	ExtinguisherCapacity string `json:"extinguisherCapacity"`
	ExtinguisherDueDate  string `json:"extinguisherDueDate"`
}

// Hydrant carries the hydrant-only fields of a record.
type Hydrant struct {
	HydrantType     string `json:"hydrantType"`
	HydrantPressure string `json:"hydrantPressure"`
}

// Record is one inspection. Records are never edited after creation.
//
// The variant structs are embedded pointers so their keys are flattened into
// the record document and are absent entirely when the pointer is nil.
type Record struct {
	ID                 string        `json:"id"`
	Date               time.Time     `json:"date"`
	EquipmentType      EquipmentType `json:"equipmentType"`
	EquipmentID        string        `json:"equipmentId"`
	Location           string        `json:"location"`
	Floor              string        `json:"floor"`
	Status             string        `json:"status"`
	Inspector          string        `json:"inspector"`
	Photos             []Photo       `json:"photos"`
	Checklist          Checklist     `json:"checklist"`
	NextInspectionDate time.Time     `json:"nextInspectionDate"`

	*Extinguisher
	*Hydrant
}

// DueWithin reports whether the next inspection falls within d of now.
// Overdue records are due as well.
func (r Record) DueWithin(now time.Time, d time.Duration) bool {
	return !r.NextInspectionDate.After(now.Add(d))
}

// Overdue reports whether the next inspection date has passed.
func (r Record) Overdue(now time.Time) bool {
	return r.NextInspectionDate.Before(now)
}

// Summary is a one-line description used by list output.
func (r Record) Summary() string {
	return fmt.Sprintf("%s  %s  %-12s %-10s %s (floor %s)  next %s",
		r.ID,
		r.Date.Format("2006-01-02"),
		r.EquipmentType.Label(),
		r.EquipmentID,
		r.Location,
		r.Floor,
		r.NextInspectionDate.Format("2006-01-02"),
	) + "  " + r.Status
}

// Details renders the variant fields as label/value pairs.
func (r Record) Details() [][2]string {
	switch {
	case r.Extinguisher != nil:
		return [][2]string{
			{"Type", r.ExtinguisherType},
			{"Capacity", r.ExtinguisherCapacity},
			{"Due date", r.ExtinguisherDueDate},
		}
	case r.Hydrant != nil:
		return [][2]string{
			{"Type", r.HydrantType},
			{"Pressure", r.HydrantPressure},
		}
	}
	return nil
}
