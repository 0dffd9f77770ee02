package app

import (
	"context"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"observatory/app/interfaces"
)

// Events is the frontend event channel. Table sessions subscribe to UI
// events through it and the app emits notifications on it.
type Events interface {
	interfaces.EventBus
	interfaces.Emitter
}

// wailsEvents routes events through the Wails runtime of ctx
type wailsEvents struct {
	ctx context.Context
}

func (w wailsEvents) On(name string, cb func(data ...any)) func() {
	return runtime.EventsOn(w.ctx, name, cb)
}

func (w wailsEvents) Emit(name string, data ...any) {
	runtime.EventsEmit(w.ctx, name, data...)
}

// nopEvents is used until Startup provides a runtime context
type nopEvents struct{}

func (nopEvents) On(string, func(data ...any)) func() { return func() {} }

func (nopEvents) Emit(string, ...any) {}
