package photo

import (
	"encoding/base64"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/tiagoricardod-collab/Vistoria-shopping/internal/inspection"
)

// Preview is what the records view shows about an attachment without
// rendering it.
type Preview struct {
	Name   string
	Format string // empty when the payload is not a decodable image
	Width  int
	Height int
	Size   int // decoded byte length
}

// PreviewCache memoizes Preview by attachment key. Decoding image headers
// out of large base64 payloads is the slow part of opening a record.
type PreviewCache struct {
	cache *expirable.LRU[string, Preview]
}

func NewPreviewCache(size int, ttl time.Duration) *PreviewCache {
	return &PreviewCache{cache: expirable.NewLRU[string, Preview](size, nil, ttl)}
}

// Get returns the preview of photo p stored at position i of record id.
func (c *PreviewCache) Get(id string, i int, p inspection.Photo) Preview {
	key := previewKey(id, i, p)
	if v, ok := c.cache.Get(key); ok {
		return v
	}
	v := Inspect(p)
	c.cache.Add(key, v)
	return v
}

func (c *PreviewCache) Len() int { return c.cache.Len() }

func (c *PreviewCache) Purge() { c.cache.Purge() }

// Inspect reads the image header of p.
func Inspect(p inspection.Photo) Preview {
	v := Preview{Name: p.Name, Size: base64.StdEncoding.DecodedLen(len(p.Data))}
	if n := strings.Count(p.Data[max(0, len(p.Data)-2):], "="); n > 0 {
		v.Size -= n
	}

	cfg, format, err := image.DecodeConfig(base64.NewDecoder(base64.StdEncoding, strings.NewReader(p.Data)))
	if err != nil {
		return v
	}
	v.Format = format
	v.Width = cfg.Width
	v.Height = cfg.Height
	return v
}

func previewKey(id string, i int, p inspection.Photo) string {
	return id + "/" + strconv.Itoa(i) + "/" + p.Name + "/" + strconv.Itoa(len(p.Data))
}
