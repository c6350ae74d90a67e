package pages

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/inspection"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/kv"
	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/store"
)

var errReadOnly = errors.New("read-only medium")

// failingKV refuses writes once broken is set.
type failingKV struct {
	*kv.Memory
	broken bool
}

func (f *failingKV) Put(ctx context.Context, key string, value []byte) error {
	if f.broken {
		return errReadOnly
	}
	return f.Memory.Put(ctx, key, value)
}

var testClock = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testClock }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) (*store.Store, *failingKV) {
	t.Helper()
	backend := &failingKV{Memory: kv.NewMemory()}
	return store.Open(context.Background(), backend, quietLogger(), nil), backend
}

func seedRecord(t *testing.T, st *store.Store, b *inspection.Builder, kind inspection.EquipmentType, equipmentID, status string) inspection.Record {
	t.Helper()
	r, err := b.Build(inspection.Fields{
		EquipmentType: string(kind),
		EquipmentID:   equipmentID,
		Location:      "Piso L1",
		Floor:         "1",
		Status:        status,
	}, nil, inspection.Checklist{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if err := st.Append(context.Background(), r); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	return r
}

func writePNG(t *testing.T, dir, name string) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("png.Encode failed: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func writeText(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

// runCmd executes cmd and every command it batches, returning the messages
// in order.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func press(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
