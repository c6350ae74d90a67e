package inspection

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// IDPrefix starts every record id.
	IDPrefix = "insp-"
	// Interval between an inspection and the next one. Fixed 30x24h, no
	// calendar arithmetic.
	Interval = 30 * 24 * time.Hour

	DefaultInspector = "Inspetor"

	// maxDateSkew tolerates records written by clients that read the clock
	// separately for date and next inspection date.
	maxDateSkew = time.Second
)

var (
	ErrUnknownEquipmentType = errors.New("unknown equipment type")
	ErrVariant              = errors.New("record must carry exactly one equipment variant")
	ErrBadID                = errors.New("malformed record id")
	ErrNextInspection       = errors.New("next inspection date must be 30 days after date")
)

// Fields holds the form values for a new inspection. Presence of required
// values is checked by the form layer; Build only assembles and derives.
type Fields struct {
	EquipmentType string
	EquipmentID   string
	Location      string
	Floor         string
	Status        string

	ExtinguisherType     string
	ExtinguisherCapacity string
	ExtinguisherDueDate  string

	HydrantType     string
	HydrantPressure string
}

// Builder materializes records from form input.
type Builder struct {
	now       func() time.Time
	inspector string

	mu     sync.Mutex
	lastID int64
}

// NewBuilder returns a Builder stamping records with inspector. A nil now
// uses time.Now.
func NewBuilder(inspector string, now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	if inspector == "" {
		inspector = DefaultInspector
	}
	return &Builder{now: now, inspector: inspector}
}

// Inspector returns the name written into new records.
func (b *Builder) Inspector() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inspector
}

// SetInspector changes the name for records built from now on.
func (b *Builder) SetInspector(name string) {
	if name == "" {
		name = DefaultInspector
	}
	b.mu.Lock()
	b.inspector = name
	b.mu.Unlock()
}

// Build assembles one record. photos is copied; the caller keeps ownership
// of its slice.
func (b *Builder) Build(f Fields, photos []Photo, checklist Checklist) (Record, error) {
	kind, err := ParseEquipmentType(f.EquipmentType)
	if err != nil {
		return Record{}, err
	}

	date := b.now().UTC().Truncate(time.Millisecond)
	id, inspector := b.stamp(date)

	r := Record{
		ID:                 id,
		Date:               date,
		EquipmentType:      kind,
		EquipmentID:        f.EquipmentID,
		Location:           f.Location,
		Floor:              f.Floor,
		Status:             f.Status,
		Inspector:          inspector,
		Photos:             append([]Photo{}, photos...),
		Checklist:          checklist,
		NextInspectionDate: date.Add(Interval),
	}

	switch kind {
	case TypeExtinguisher:
		r.Extinguisher = &Extinguisher{
			ExtinguisherType:     f.ExtinguisherType,
			ExtinguisherCapacity: f.ExtinguisherCapacity,
			ExtinguisherDueDate:  f.ExtinguisherDueDate,
		}
	case TypeHydrant:
		r.Hydrant = &Hydrant{
			HydrantType:     f.HydrantType,
			HydrantPressure: f.HydrantPressure,
		}
	}
	return r, nil
}

// stamp derives the id from the creation instant. Two builds inside the same
// millisecond would collide, so the counter is bumped past the last issued
// value instead.
func (b *Builder) stamp(date time.Time) (id, inspector string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := date.UnixMilli()
	if n <= b.lastID {
		n = b.lastID + 1
	}
	b.lastID = n
	return IDPrefix + strconv.FormatInt(n, 10), b.inspector
}

// Validate checks the structural invariants of a built record.
func (r Record) Validate() error {
	rest, ok := strings.CutPrefix(r.ID, IDPrefix)
	if !ok {
		return fmt.Errorf("%w: %q", ErrBadID, r.ID)
	}
	if _, err := strconv.ParseInt(rest, 10, 64); err != nil {
		return fmt.Errorf("%w: %q", ErrBadID, r.ID)
	}

	kind, err := ParseEquipmentType(string(r.EquipmentType))
	if err != nil {
		return err
	}
	switch {
	case kind == TypeExtinguisher && (r.Extinguisher == nil || r.Hydrant != nil):
		return fmt.Errorf("%w: %s", ErrVariant, r.ID)
	case kind == TypeHydrant && (r.Hydrant == nil || r.Extinguisher != nil):
		return fmt.Errorf("%w: %s", ErrVariant, r.ID)
	}

	skew := r.NextInspectionDate.Sub(r.Date) - Interval
	if skew < 0 {
		skew = -skew
	}
	if skew > maxDateSkew {
		return fmt.Errorf("%w: %s", ErrNextInspection, r.ID)
	}
	return nil
}
