// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package synthesis

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/danielhkuo/quickly-pulse/models"
)

// Controller caches one synthesis record per question and tracks the single
// outstanding call. The lock is never held across the collaborator call.
type Controller struct {
	collab Synthesizer

	mu       sync.Mutex
	current  string
	gen      uint64
	inFlight bool
	records  map[string]models.SynthesisRecord
	errs     map[string]string
}

func NewController(collab Synthesizer) *Controller {
	return &Controller{
		collab:  collab,
		records: make(map[string]models.SynthesisRecord),
		errs:    make(map[string]string),
	}
}

// SetQuestion re-targets the controller. Any call still outstanding for an
// earlier target will have its result discarded.
func (c *Controller) SetQuestion(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if key == c.current {
		return
	}
	c.current = key
	c.gen++
}

// Question returns the current target.
func (c *Controller) Question() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Run synthesizes req for the question key. A second call while one is
// outstanding returns ErrInFlight without reaching the collaborator. On
// failure the error message is kept for the question and any cached record
// stays as it was. The record's SourceCount is the number of non-blank items
// given, before the MaxItems cap or any budget trimming.
func (c *Controller) Run(ctx context.Context, key string, req models.SynthesisRequest) (models.SynthesisRecord, error) {
	eligible := 0
	for _, item := range req.Items {
		if strings.TrimSpace(item) != "" {
			eligible++
		}
	}
	req.Items = CleanItems(req.Items)

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return models.SynthesisRecord{}, ErrInFlight
	}
	if len(req.Items) == 0 {
		c.mu.Unlock()
		return models.SynthesisRecord{}, ErrNoItems
	}
	if key != c.current {
		c.current = key
		c.gen++
	}
	gen := c.gen
	c.inFlight = true
	delete(c.errs, key)
	c.mu.Unlock()

	record, err := c.collab.Synthesize(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false

	if c.gen != gen {
		return models.SynthesisRecord{}, ErrSuperseded
	}
	if err != nil {
		c.errs[key] = err.Error()
		return models.SynthesisRecord{}, fmt.Errorf("synthesize %s: %w", key, err)
	}

	record.SourceCount = eligible
	if record.Groups == nil {
		record.Groups = []models.SynthesisGroup{}
	}
	c.records[key] = record
	return record, nil
}

// InFlight reports whether a call is outstanding.
func (c *Controller) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Record returns the cached record for a question.
func (c *Controller) Record(key string) (models.SynthesisRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	record, ok := c.records[key]
	return record, ok
}

// Load seeds the cache with a record produced earlier, typically read back
// from storage. An existing record is kept.
func (c *Controller) Load(key string, record models.SynthesisRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.records[key]; !ok {
		c.records[key] = record
	}
}

// Err returns the last failure message for a question, if any.
func (c *Controller) Err(key string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errs[key]
}

// Stale reports whether the cached record was built from a different number
// of eligible answers than there are now. Without a record nothing is stale.
func (c *Controller) Stale(key string, eligible int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	record, ok := c.records[key]
	return ok && record.SourceCount != eligible
}

// Forget drops everything cached for a question.
func (c *Controller) Forget(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.records, key)
	delete(c.errs, key)
}
