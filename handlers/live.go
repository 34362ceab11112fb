// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"sync"

	"github.com/danielhkuo/quickly-pulse/layout"
	"github.com/danielhkuo/quickly-pulse/metrics"
	"github.com/danielhkuo/quickly-pulse/synthesis"
)

// DefaultCanvas names the canvas used when a client does not pick one.
const DefaultCanvas = "main"

// MaxCanvases bounds the named canvases kept per question. The default canvas
// is always available on top of them.
const MaxCanvases = 8

var errTooManyCanvases = errors.New("too many canvases for this question")

// canvas pairs a layout engine with the lock that makes it single-owner.
type canvas struct {
	mu     sync.Mutex
	engine *layout.Engine
}

// Live holds the in-memory state that outlives a request: one layout engine
// per (question, canvas) and one synthesis controller per session.
type Live struct {
	Metrics *metrics.Collector

	synth synthesis.Synthesizer

	mu          sync.Mutex
	canvases    map[string]map[string]*canvas
	controllers map[string]*synthesis.Controller
}

// NewLive creates the registry. synth may be nil when synthesis is not
// configured.
func NewLive(synth synthesis.Synthesizer, collector *metrics.Collector) *Live {
	if collector == nil {
		collector = metrics.NewCollector("quickly_pulse")
	}
	return &Live{
		Metrics:     collector,
		synth:       synth,
		canvases:    make(map[string]map[string]*canvas),
		controllers: make(map[string]*synthesis.Controller),
	}
}

// SynthesisEnabled reports whether a collaborator was configured.
func (l *Live) SynthesisEnabled() bool {
	return l.synth != nil
}

func canvasKey(questionID, name string) string {
	return questionID + "/" + name
}

// canvas returns the engine for a question's canvas, creating it with a seed
// derived from the key so layouts are reproducible. Creating a named canvas
// beyond MaxCanvases fails with errTooManyCanvases.
func (l *Live) canvas(questionID, name string) (*canvas, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	byName, ok := l.canvases[questionID]
	if !ok {
		byName = make(map[string]*canvas)
		l.canvases[questionID] = byName
	}
	if c, ok := byName[name]; ok {
		return c, nil
	}

	named := len(byName)
	if _, ok := byName[DefaultCanvas]; ok {
		named--
	}
	if name != DefaultCanvas && named >= MaxCanvases {
		return nil, errTooManyCanvases
	}

	key := canvasKey(questionID, name)
	c := &canvas{engine: layout.NewEngine(layout.NewSource(layout.SeedFor(key)))}
	byName[name] = c
	return c, nil
}

// controller returns the synthesis controller for a session.
func (l *Live) controller(sessionID string) *synthesis.Controller {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.controllers[sessionID]
	if !ok {
		c = synthesis.NewController(l.synth)
		l.controllers[sessionID] = c
	}
	return c
}

// forgetSession closes every engine for the given questions and drops the
// session's controller.
func (l *Live) forgetSession(sessionID string, questionIDs []string) {
	l.mu.Lock()
	var closing []*canvas
	for _, qid := range questionIDs {
		for _, c := range l.canvases[qid] {
			closing = append(closing, c)
		}
		delete(l.canvases, qid)
	}
	delete(l.controllers, sessionID)
	l.mu.Unlock()

	for _, c := range closing {
		c.mu.Lock()
		c.engine.Close()
		c.mu.Unlock()
	}
}
