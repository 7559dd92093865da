// Package transform turns a raw data source into named entities by running a
// user-supplied JavaScript function body in an embedded goja runtime.
//
// Every call gets a fresh runtime with no host objects registered, so the
// script only reaches ECMAScript built-ins (JSON, Math, Array, String,
// Number, Object, RegExp, Date and the global functions). It receives the raw
// source as its only argument, named dataSourceString, and must return an
// array of objects carrying a "name" and a "qrCode" property.
package transform

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"
	"golang.org/x/text/unicode/norm"
)

// ArgName is the parameter name the script body sees.
const ArgName = "dataSourceString"

// Property names read from each returned object.
const (
	NameKey    = "name"
	PayloadKey = "qrCode"
)

// DefaultTimeout bounds a single script run.
const DefaultTimeout = 5 * time.Second

// emptyScript is used when the user supplies nothing.
const emptyScript = "return [];"

// ErrTransform wraps every script failure.
var ErrTransform = errors.New("transform failed")

// Entity is one record produced by the script.
type Entity struct {
	Name    string
	Payload string
}

// Transformer runs transform scripts.
type Transformer struct {
	timeout time.Duration
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithTimeout bounds script run time. Zero or negative disables the bound;
// the context still applies.
func WithTimeout(d time.Duration) Option {
	return func(t *Transformer) {
		t.timeout = d
	}
}

// New creates a Transformer.
func New(opts ...Option) *Transformer {
	t := &Transformer{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transform runs script against source and returns the entities in the
// order the script produced them.
func (t *Transformer) Transform(ctx context.Context, source, script string) (entities []Entity, err error) {
	defer func() {
		if r := recover(); r != nil {
			entities = nil
			err = fmt.Errorf("%w: internal error: %v", ErrTransform, r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransform, err)
	}

	if strings.TrimSpace(script) == "" {
		script = emptyScript
	}

	vm := goja.New()

	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt(ctx.Err())
	})
	defer stop()

	if t.timeout > 0 {
		timer := time.AfterFunc(t.timeout, func() {
			vm.Interrupt(fmt.Sprintf("script exceeded %s", t.timeout))
		})
		defer timer.Stop()
	}

	fnValue, err := vm.RunString("(function(" + ArgName + ") {\n" + script + "\n})")
	if err != nil {
		return nil, wrapScriptError(err)
	}

	fn, ok := goja.AssertFunction(fnValue)
	if !ok {
		return nil, fmt.Errorf("%w: script did not compile to a function", ErrTransform)
	}

	result, err := fn(goja.Undefined(), vm.ToValue(source))
	if err != nil {
		return nil, wrapScriptError(err)
	}

	return toEntities(result)
}

// toEntities validates the returned value against the entity contract.
func toEntities(v goja.Value) ([]Entity, error) {
	obj, ok := v.(*goja.Object)
	if !ok || obj.ClassName() != "Array" {
		return nil, fmt.Errorf("%w: script must return an array, got %s", ErrTransform, describe(v))
	}

	n := obj.Get("length").ToInteger()
	entities := make([]Entity, 0, n)
	for i := int64(0); i < n; i++ {
		item, ok := obj.Get(fmt.Sprint(i)).(*goja.Object)
		if !ok {
			return nil, fmt.Errorf("%w: item %d is not an object", ErrTransform, i)
		}

		name, err := field(item, NameKey, i)
		if err != nil {
			return nil, err
		}
		payload, err := field(item, PayloadKey, i)
		if err != nil {
			return nil, err
		}

		entities = append(entities, Entity{
			Name:    norm.NFC.String(name),
			Payload: payload,
		})
	}
	return entities, nil
}

func field(item *goja.Object, key string, index int64) (string, error) {
	v := item.Get(key)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return "", fmt.Errorf("%w: item %d has no %q", ErrTransform, index, key)
	}
	if _, isObj := v.(*goja.Object); isObj {
		return "", fmt.Errorf("%w: item %d: %q must be a string, got %s", ErrTransform, index, key, describe(v))
	}
	return v.String(), nil
}

func describe(v goja.Value) string {
	switch {
	case v == nil || goja.IsUndefined(v):
		return "undefined"
	case goja.IsNull(v):
		return "null"
	}
	if obj, ok := v.(*goja.Object); ok {
		return obj.ClassName()
	}
	return fmt.Sprintf("%s %s", v.ExportType(), v.String())
}

// wrapScriptError keeps the script's own message (e.g. "Error: boom").
func wrapScriptError(err error) error {
	var exc *goja.Exception
	if errors.As(err, &exc) {
		return fmt.Errorf("%w: %s", ErrTransform, exc.Value().String())
	}
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return fmt.Errorf("%w: interrupted: %v", ErrTransform, interrupted.Value())
	}
	return fmt.Errorf("%w: %v", ErrTransform, err)
}
