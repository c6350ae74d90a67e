package photo

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/inspection"
)

var (
	ErrNotImage = errors.New("not an image")
	ErrTooLarge = errors.New("file exceeds size limit")
)

// DefaultWorkers bounds concurrent decodes when Options.Workers is unset.
const DefaultWorkers = 4

// File is a selected file awaiting encoding.
type File interface {
	Name() string
	// Type is the declared MIME type, e.g. "image/jpeg".
	Type() string
	Open() (io.ReadCloser, error)
}

// IsImage reports whether mimeType names an image.
func IsImage(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/")
}

// Encode turns raw file bytes into an attachment.
func Encode(name string, raw []byte) inspection.Photo {
	return inspection.Photo{Name: name, Data: base64.StdEncoding.EncodeToString(raw)}
}

// DataURL renders a payload as a data URL for display.
func DataURL(mimeType, payload string) string {
	return "data:" + mimeType + ";base64," + payload
}

// StripDataURL returns everything after the first comma of url. A string
// without a comma has no payload.
func StripDataURL(url string) string {
	_, payload, ok := strings.Cut(url, ",")
	if !ok {
		return ""
	}
	return payload
}

// Bytes decodes an attachment payload back to the original file contents.
func Bytes(p inspection.Photo) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(p.Data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", p.Name, err)
	}
	return raw, nil
}

// Result is the outcome of decoding one file. Index is the position the file
// had in its submission batch.
type Result struct {
	Index int
	Name  string
	Photo inspection.Photo
	Err   error
}

// Accepted reports whether the file became an attachment.
func (r Result) Accepted() bool { return r.Err == nil }

// Accepted filters results down to their photos, preserving order.
func Accepted(results []Result) []inspection.Photo {
	out := make([]inspection.Photo, 0, len(results))
	for _, r := range results {
		if r.Accepted() {
			out = append(out, r.Photo)
		}
	}
	return out
}

// Rejected counts the results that were not accepted.
func Rejected(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Accepted() {
			n++
		}
	}
	return n
}

// Recorder receives decode outcomes.
type Recorder interface {
	PhotoDecoded(accepted bool)
}

type Options struct {
	Workers  int
	MaxBytes int64 // 0 disables the limit
	Logger   *slog.Logger
	Recorder Recorder
}

// Decoder encodes selected files into attachments.
type Decoder struct {
	workers  int
	maxBytes int64
	logger   *slog.Logger
	recorder Recorder
}

func NewDecoder(opts Options) *Decoder {
	d := &Decoder{
		workers:  opts.Workers,
		maxBytes: opts.MaxBytes,
		logger:   opts.Logger,
		recorder: opts.Recorder,
	}
	if d.workers <= 0 {
		d.workers = DefaultWorkers
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Decode encodes every file concurrently. The returned slice is indexed by
// input position whatever order the decodes finished in. A rejected file
// never fails the batch.
func (d *Decoder) Decode(ctx context.Context, files []File) []Result {
	results := make([]Result, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			results[i] = d.DecodeOne(ctx, i, f)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// DecodeOne encodes a single file carrying batch index i.
func (d *Decoder) DecodeOne(ctx context.Context, i int, f File) Result {
	res := Result{Index: i, Name: f.Name()}
	res.Photo, res.Err = d.decode(ctx, f)

	if res.Err != nil {
		d.logger.Warn("photo rejected",
			slog.String("name", res.Name),
			slog.String("type", f.Type()),
			slog.String("reason", res.Err.Error()))
	} else {
		d.logger.Debug("photo accepted",
			slog.String("name", res.Name),
			slog.Int("encoded_len", len(res.Photo.Data)))
	}
	if d.recorder != nil {
		d.recorder.PhotoDecoded(res.Accepted())
	}
	return res
}

func (d *Decoder) decode(ctx context.Context, f File) (inspection.Photo, error) {
	if err := ctx.Err(); err != nil {
		return inspection.Photo{}, err
	}
	if !IsImage(f.Type()) {
		return inspection.Photo{}, fmt.Errorf("%w: %s (%s)", ErrNotImage, f.Name(), f.Type())
	}

	rc, err := f.Open()
	if err != nil {
		return inspection.Photo{}, fmt.Errorf("open %s: %w", f.Name(), err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if d.maxBytes > 0 {
		r = io.LimitReader(rc, d.maxBytes+1)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return inspection.Photo{}, fmt.Errorf("read %s: %w", f.Name(), err)
	}
	if d.maxBytes > 0 && int64(len(raw)) > d.maxBytes {
		return inspection.Photo{}, fmt.Errorf("%w: %s", ErrTooLarge, f.Name())
	}
	if err := ctx.Err(); err != nil {
		return inspection.Photo{}, err
	}
	return Encode(f.Name(), raw), nil
}
