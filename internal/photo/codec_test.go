package photo

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"
)

func TestIsImage(t *testing.T) {
	cases := map[string]bool{
		"image/jpeg":      true,
		"image/png":       true,
		"IMAGE/GIF":       true,
		"image/svg+xml":   true,
		"application/pdf": false,
		"text/plain":      false,
		"":                false,
	}
	for in, want := range cases {
		if got := IsImage(in); got != want {
			t.Errorf("IsImage(%q): expected %v, got %v", in, want, got)
		}
	}
}

func TestStripDataURL(t *testing.T) {
	if got := StripDataURL("data:image/png;base64,AAAA"); got != "AAAA" {
		t.Errorf("expected AAAA, got %q", got)
	}
	if got := StripDataURL("data:x,a,b"); got != "a,b" {
		t.Errorf("expected payload after first comma, got %q", got)
	}
	if got := StripDataURL("nocomma"); got != "" {
		t.Errorf("expected empty payload, got %q", got)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	raw := []byte{0x89, 'P', 'N', 'G', 0, 1, 2, 3}
	p := Encode("a.png", raw)

	if p.Name != "a.png" {
		t.Errorf("expected name a.png, got %s", p.Name)
	}
	back, err := Bytes(p)
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	if !bytes.Equal(back, raw) {
		t.Fatalf("expected %v, got %v", raw, back)
	}

	url := DataURL("image/png", p.Data)
	if StripDataURL(url) != p.Data {
		t.Fatalf("expected data URL payload to match, got %s", url)
	}
}

func TestDecodeSkipsNonImages(t *testing.T) {
	d := NewDecoder(Options{})
	files := []File{
		NewMemFile("a.jpg", "image/jpeg", []byte("one")),
		NewMemFile("doc.pdf", "application/pdf", []byte("two")),
		NewMemFile("b.png", "image/png", []byte("three")),
	}

	results := d.Decode(context.Background(), files)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !errors.Is(results[1].Err, ErrNotImage) {
		t.Errorf("expected ErrNotImage for pdf, got %v", results[1].Err)
	}

	photos := Accepted(results)
	if len(photos) != 2 {
		t.Fatalf("expected 2 accepted photos, got %d", len(photos))
	}
	if photos[0].Name != "a.jpg" || photos[1].Name != "b.png" {
		t.Errorf("expected a.jpg then b.png, got %s then %s", photos[0].Name, photos[1].Name)
	}
	if Rejected(results) != 1 {
		t.Errorf("expected 1 rejected, got %d", Rejected(results))
	}
}

type slowFile struct {
	*MemFile
	delay time.Duration
}

func (f slowFile) Open() (io.ReadCloser, error) {
	time.Sleep(f.delay)
	return f.MemFile.Open()
}

func TestDecodeKeepsSubmissionOrder(t *testing.T) {
	d := NewDecoder(Options{Workers: 3})
	files := []File{
		slowFile{NewMemFile("first.jpg", "image/jpeg", []byte("1")), 60 * time.Millisecond},
		slowFile{NewMemFile("second.jpg", "image/jpeg", []byte("2")), 30 * time.Millisecond},
		slowFile{NewMemFile("third.jpg", "image/jpeg", []byte("3")), 0},
	}

	results := d.Decode(context.Background(), files)
	for i, want := range []string{"first.jpg", "second.jpg", "third.jpg"} {
		if results[i].Index != i {
			t.Errorf("result %d: expected index %d, got %d", i, i, results[i].Index)
		}
		if results[i].Photo.Name != want {
			t.Errorf("result %d: expected %s, got %s", i, want, results[i].Photo.Name)
		}
	}
}

func TestDecodeRejectsOversized(t *testing.T) {
	d := NewDecoder(Options{MaxBytes: 4})
	results := d.Decode(context.Background(), []File{
		NewMemFile("small.jpg", "image/jpeg", []byte("1234")),
		NewMemFile("big.jpg", "image/jpeg", []byte("12345")),
	})

	if !results[0].Accepted() {
		t.Errorf("expected small file accepted, got %v", results[0].Err)
	}
	if !errors.Is(results[1].Err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", results[1].Err)
	}
}

func TestDecodeHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewDecoder(Options{})
	res := d.DecodeOne(ctx, 0, NewMemFile("a.jpg", "image/jpeg", []byte("x")))
	if !errors.Is(res.Err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", res.Err)
	}
}

type countingRecorder struct {
	mu       sync.Mutex
	accepted int
	rejected int
}

func (r *countingRecorder) PhotoDecoded(ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ok {
		r.accepted++
	} else {
		r.rejected++
	}
}

func TestDecodeReportsToRecorder(t *testing.T) {
	rec := &countingRecorder{}
	d := NewDecoder(Options{Recorder: rec})
	d.Decode(context.Background(), []File{
		NewMemFile("a.jpg", "image/jpeg", nil),
		NewMemFile("b.txt", "text/plain", nil),
		NewMemFile("c.gif", "image/gif", nil),
	})

	if rec.accepted != 2 || rec.rejected != 1 {
		t.Fatalf("expected 2 accepted and 1 rejected, got %d and %d", rec.accepted, rec.rejected)
	}
}

func TestAcceptedOfEmptyBatch(t *testing.T) {
	got := Accepted(nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}
