package store

import (
	"context"
	"errors"

	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/kv"
)

var errDiskFull = errors.New("disk full")

// flakyKV wraps a memory kv and fails Put while failPut is set.
type flakyKV struct {
	*kv.Memory
	failPut bool
	puts    int
}

func newFlakyKV() *flakyKV { return &flakyKV{Memory: kv.NewMemory()} }

func (f *flakyKV) Put(ctx context.Context, key string, value []byte) error {
	f.puts++
	if f.failPut {
		return errDiskFull
	}
	return f.Memory.Put(ctx, key, value)
}

type recorderFake struct {
	loaded  int
	written []string
	failed  int
}

func (r *recorderFake) StoreLoaded(n int) { r.loaded = n }

func (r *recorderFake) StoreWritten(op string, _ int, err error) {
	r.written = append(r.written, op)
	if err != nil {
		r.failed++
	}
}
