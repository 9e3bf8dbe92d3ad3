package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/fluxbase-eu/pdfextract/internal/extract"
	"github.com/rs/zerolog/log"
)

// LookupRecorder receives cache hit and miss events
type LookupRecorder interface {
	RecordCacheLookup(hit bool)
}

// entry is the cached form of an extraction result
type entry struct {
	Method    extract.Method `json:"method"`
	Text      string         `json:"text"`
	Pages     int            `json:"pages"`
	Truncated bool           `json:"truncated"`
}

// Extractor caches successful results of another extractor. Failed
// extractions are never cached. Cache backend errors are logged and the
// wrapped extractor is used instead.
type Extractor struct {
	next      extract.Extractor
	store     Store
	ttl       time.Duration
	namespace string
	recorder  LookupRecorder
}

// NewExtractor wraps next with a result cache. namespace must change
// whenever a setting that affects the output changes, so that results from
// a differently configured cascade are not served.
func NewExtractor(next extract.Extractor, store Store, ttl time.Duration, namespace string, recorder LookupRecorder) *Extractor {
	return &Extractor{
		next:      next,
		store:     store,
		ttl:       ttl,
		namespace: namespace,
		recorder:  recorder,
	}
}

// Key returns the cache key for a document
func (e *Extractor) Key(pdf []byte) string {
	h := sha256.New()
	h.Write([]byte(e.namespace))
	h.Write([]byte{0})
	h.Write(pdf)
	return hex.EncodeToString(h.Sum(nil))
}

func (e *Extractor) Extract(ctx context.Context, pdf []byte) (*extract.Result, error) {
	if len(pdf) == 0 {
		return e.next.Extract(ctx, pdf)
	}

	start := time.Now()
	key := e.Key(pdf)

	if cached, ok := e.lookup(ctx, key); ok {
		e.record(true)
		cached.Duration = time.Since(start)
		return cached, nil
	}
	e.record(false)

	result, err := e.next.Extract(ctx, pdf)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(entry{
		Method:    result.Method,
		Text:      result.Text,
		Pages:     result.Pages,
		Truncated: result.Truncated,
	})
	if err == nil {
		err = e.store.Set(ctx, key, data, e.ttl)
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to store extraction result in cache")
	}

	return result, nil
}

func (e *Extractor) lookup(ctx context.Context, key string) (*extract.Result, bool) {
	data, err := e.store.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Result cache lookup failed")
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	var cached entry
	if err := json.Unmarshal(data, &cached); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Discarding corrupt cache entry")
		return nil, false
	}

	log.Debug().Str("key", key).Str("method", string(cached.Method)).Msg("Serving extraction result from cache")

	return &extract.Result{
		Method:    cached.Method,
		Text:      cached.Text,
		Pages:     cached.Pages,
		Truncated: cached.Truncated,
	}, true
}

func (e *Extractor) record(hit bool) {
	if e.recorder != nil {
		e.recorder.RecordCacheLookup(hit)
	}
}
