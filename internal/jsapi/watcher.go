// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package jsapi

import (
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"
	"github.com/fsnotify/fsnotify"

	"github.com/aplane-algo/jsbridge/internal/class"
	"github.com/aplane-algo/jsbridge/internal/util"
)

// Watcher is the host value behind the Watcher class. It owns an fsnotify
// watcher, released by close() or, failing that, when the script object is
// collected.
type Watcher struct {
	w *fsnotify.Watcher
}

// WatchEvent is one filesystem change reported by poll().
type WatchEvent struct {
	Name string
	Op   string
}

// NewWatcher starts an fsnotify watcher watching paths.
func NewWatcher(paths ...string) (Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return Watcher{}, fmt.Errorf("failed to create file watcher: %w", err)
	}
	for _, p := range paths {
		if err := w.Add(p); err != nil {
			_ = w.Close()
			return Watcher{}, fmt.Errorf("failed to watch %s: %w", p, err)
		}
	}
	return Watcher{w: w}, nil
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error {
	if w.w == nil {
		return nil
	}
	err := w.w.Close()
	w.w = nil
	return err
}

// Poll waits up to timeout for the first event, then returns it together
// with any events already queued. A zero timeout never blocks.
func (w *Watcher) Poll(timeout time.Duration) ([]WatchEvent, error) {
	var events []WatchEvent
	add := func(ev fsnotify.Event) {
		events = append(events, WatchEvent{Name: ev.Name, Op: strings.ToLower(ev.Op.String())})
	}

	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case ev, ok := <-w.w.Events:
			if !ok {
				return nil, nil
			}
			add(ev)
		case err, ok := <-w.w.Errors:
			if ok {
				return nil, err
			}
		case <-timer.C:
			return nil, nil
		}
	}

	for {
		select {
		case ev, ok := <-w.w.Events:
			if !ok {
				return events, nil
			}
			add(ev)
		case err, ok := <-w.w.Errors:
			if ok {
				return events, err
			}
			return events, nil
		default:
			return events, nil
		}
	}
}

func (a *API) borrowWatcher(call goja.FunctionCall) *Watcher {
	w, err := class.Borrow[Watcher](a.reg, thisObject(call))
	if err != nil {
		a.reg.Throw(err)
	}
	return w
}

func (a *API) watcherSpec() class.Spec[Watcher] {
	return class.Spec[Watcher]{
		Name:   "Watcher",
		Length: 1,
		Construct: func(call goja.ConstructorCall) (Watcher, error) {
			var paths []string
			for _, arg := range call.Arguments {
				if list := toStringArray(arg); list != nil {
					paths = append(paths, list...)
					continue
				}
				paths = append(paths, arg.String())
			}
			return NewWatcher(paths...)
		},
		Methods: []class.Method{
			{
				Name:   "add",
				Length: 1,
				Call: func(call goja.FunctionCall) goja.Value {
					a.requireArgs(call, 1, "add() requires a path argument")
					w := a.borrowWatcher(call)
					if err := w.w.Add(call.Arguments[0].String()); err != nil {
						panic(a.runtime.ToValue(fmt.Sprintf("add() error: %v", err)))
					}
					return call.This
				},
			},
			{
				Name:   "remove",
				Length: 1,
				Call: func(call goja.FunctionCall) goja.Value {
					a.requireArgs(call, 1, "remove() requires a path argument")
					w := a.borrowWatcher(call)
					return a.runtime.ToValue(w.w.Remove(call.Arguments[0].String()) == nil)
				},
			},
			{
				Name: "list",
				Call: func(call goja.FunctionCall) goja.Value {
					return a.runtime.ToValue(a.borrowWatcher(call).w.WatchList())
				},
			},
			{
				// poll(timeoutMs) returns the pending events as {name, op}.
				Name:   "poll",
				Length: 1,
				Call: func(call goja.FunctionCall) goja.Value {
					w := a.borrowWatcher(call)
					timeout := time.Duration(call.Argument(0).ToInteger()) * time.Millisecond
					events, err := w.Poll(timeout)
					if err != nil {
						panic(a.runtime.ToValue(fmt.Sprintf("poll() error: %v", err)))
					}
					out := make([]interface{}, len(events))
					for i, ev := range events {
						out[i] = map[string]interface{}{"name": ev.Name, "op": ev.Op}
					}
					return a.runtime.ToValue(out)
				},
			},
			{
				// close() releases the watcher; the object is unusable after.
				Name: "close",
				Call: func(call goja.FunctionCall) goja.Value {
					w, err := class.Take[Watcher](a.reg, thisObject(call))
					if err != nil {
						a.reg.Throw(err)
					}
					if err := w.Close(); err != nil {
						panic(a.runtime.ToValue(fmt.Sprintf("close() error: %v", err)))
					}
					return goja.Undefined()
				},
			},
		},
		Finalize: func(w *Watcher) {
			if err := w.Close(); err != nil {
				util.Debug("failed to close collected watcher", "error", err)
			}
		},
	}
}
