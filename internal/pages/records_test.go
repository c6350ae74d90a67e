package pages

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/app"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/inspection"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/photo"
)

func TestRecordsFilters(t *testing.T) {
	st, _ := newTestStore(t)
	b := inspection.NewBuilder("", fixedNow)
	seedRecord(t, st, b, inspection.TypeExtinguisher, "EXT-1", inspection.StatusOK)
	seedRecord(t, st, b, inspection.TypeExtinguisher, "EXT-2", inspection.StatusFailed)
	seedRecord(t, st, b, inspection.TypeHydrant, "HID-1", inspection.StatusOK)

	p := NewRecordsPage(st, photo.NewPreviewCache(16, time.Minute), fixedNow)
	if len(p.records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(p.records))
	}

	p.Update(press("t"))
	if len(p.records) != 2 || p.filter.EquipmentType != inspection.TypeExtinguisher {
		t.Fatalf("expected 2 extinguishers, got %d (%s)", len(p.records), p.filter.EquipmentType)
	}
	p.Update(press("t"))
	if len(p.records) != 1 || p.records[0].EquipmentID != "HID-1" {
		t.Fatalf("expected only HID-1, got %d records", len(p.records))
	}
	p.Update(press("t"))
	if len(p.records) != 3 {
		t.Fatalf("expected filter to wrap back to all, got %d", len(p.records))
	}

	p.Update(press("s"))
	if len(p.records) != 2 || p.filter.Status != inspection.StatusOK {
		t.Fatalf("expected 2 ok records, got %d", len(p.records))
	}
	p.Update(press("c"))
	if !p.filter.IsZero() || len(p.records) != 3 {
		t.Fatalf("expected cleared filter, got %+v with %d records", p.filter, len(p.records))
	}
}

func TestRecordsNewestFirstAndDetail(t *testing.T) {
	st, _ := newTestStore(t)
	b := inspection.NewBuilder("", fixedNow)
	seedRecord(t, st, b, inspection.TypeExtinguisher, "EXT-1", inspection.StatusOK)
	last := seedRecord(t, st, b, inspection.TypeHydrant, "HID-1", inspection.StatusAttention)

	p := NewRecordsPage(st, photo.NewPreviewCache(16, time.Minute), fixedNow)
	p.SetSize(100, 30)

	p.Update(press("enter"))
	if p.detail == nil {
		t.Fatal("expected detail view after enter")
	}
	if p.detail.ID != last.ID {
		t.Fatalf("expected newest record %s, got %s", last.ID, p.detail.ID)
	}
	if !strings.Contains(p.View(), "HID-1") {
		t.Fatal("expected detail view to show the equipment id")
	}

	p.Update(press("esc"))
	if p.detail != nil {
		t.Fatal("expected list view after esc")
	}
}

func TestRecordsDetailShowsPhotoPreview(t *testing.T) {
	st, _ := newTestStore(t)
	b := inspection.NewBuilder("", fixedNow)
	raw, err := os.ReadFile(writePNG(t, t.TempDir(), "porta.png"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	r, err := b.Build(inspection.Fields{
		EquipmentType: string(inspection.TypeExtinguisher),
		EquipmentID:   "EXT-9",
		Location:      "Doca",
		Floor:         "0",
		Status:        inspection.StatusOK,
	}, []inspection.Photo{photo.Encode("porta.png", raw)}, inspection.Checklist{Seal: true})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if err := st.Append(context.Background(), r); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	cache := photo.NewPreviewCache(16, time.Minute)
	p := NewRecordsPage(st, cache, fixedNow)
	detail := p.renderDetail(r)

	if !strings.Contains(detail, "porta.png") || !strings.Contains(detail, "png 2x2") {
		t.Fatalf("expected photo preview in detail, got:\n%s", detail)
	}
	if !strings.Contains(detail, "Checklist 1/6") {
		t.Fatalf("expected checklist summary, got:\n%s", detail)
	}
	if cache.Len() != 1 {
		t.Fatalf("expected 1 cached preview, got %d", cache.Len())
	}
}

func TestRecordsRefreshOnSaveAndReplace(t *testing.T) {
	st, _ := newTestStore(t)
	b := inspection.NewBuilder("", fixedNow)
	p := NewRecordsPage(st, photo.NewPreviewCache(16, time.Minute), fixedNow)
	if !strings.Contains(p.View(), "No inspections recorded yet") {
		t.Fatal("expected empty-state message")
	}

	r := seedRecord(t, st, b, inspection.TypeExtinguisher, "EXT-1", inspection.StatusOK)
	p.Update(app.RecordSavedMsg{Record: r})
	if len(p.records) != 1 {
		t.Fatalf("expected 1 record after save, got %d", len(p.records))
	}

	p.Update(press("enter"))
	if err := st.Replace(context.Background(), nil); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	p.Update(app.StoreReplacedMsg{Count: 0})
	if p.detail != nil || len(p.records) != 0 {
		t.Fatalf("expected list reset after replace, got %d records", len(p.records))
	}
}
