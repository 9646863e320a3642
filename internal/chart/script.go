package chart

import (
	"encoding/json"
	"fmt"
)

// ScriptSink receives scripts to run in the page.
type ScriptSink interface {
	Script(js string)
}

// ScriptSurface drives the browser chart widget through the page's
// folio.charts API.
type ScriptSurface struct {
	sink ScriptSink
}

// NewScriptSurface returns a surface that queues scripts on sink.
func NewScriptSurface(sink ScriptSink) *ScriptSurface {
	return &ScriptSurface{sink: sink}
}

// Create queues a chart creation for target.
func (s *ScriptSurface) Create(target string, spec Spec) (Chart, error) {
	js, err := call("create", target, spec)
	if err != nil {
		return nil, err
	}
	s.sink.Script(js)
	return &scriptChart{sink: s.sink, target: target}, nil
}

type scriptChart struct {
	sink   ScriptSink
	target string
}

func (c *scriptChart) Update(data Data) error {
	js, err := call("update", c.target, data)
	if err != nil {
		return err
	}
	c.sink.Script(js)
	return nil
}

// call renders folio.charts.<fn>(target, payload). json.Marshal escapes
// <, > and & so the result is safe inside a script element.
func call(fn, target string, payload any) (string, error) {
	t, err := json.Marshal(target)
	if err != nil {
		return "", err
	}
	p, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode chart payload: %w", err)
	}
	return fmt.Sprintf("folio.charts.%s(%s, %s)", fn, t, p), nil
}
