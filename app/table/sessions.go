package table

import (
	"fmt"
	"log/slog"
	"math"

	"observatory/app/interfaces"
	"observatory/app/values"
)

// EscapeKey is the key name that dismisses the filter popover
const EscapeKey = "Escape"

type popoverSession struct {
	key   string
	scope *listenerScope
}

type resizeSession struct {
	key        string
	startX     float64
	startWidth int
	scope      *listenerScope
}

type dragState struct {
	source string
	target string
}

func firstString(data []any) string {
	if len(data) == 0 {
		return ""
	}
	s, _ := data[0].(string)
	return s
}

func firstNumber(data []any) (float64, bool) {
	if len(data) == 0 {
		return 0, false
	}
	return values.Number(data[0])
}

// OpenFilter opens the filter popover of key, closing any other popover.
// While open, a click outside the popover or an Escape key press closes it.
// The outside-click payload is the filter key of the popover containing the
// click target, or empty.
func (e *Engine) OpenFilter(key string) error {
	if _, err := e.filterableColumn(key); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	e.openFilterLocked(key)
	return nil
}

// ToggleFilter opens the popover of key, or closes it when it is already open
func (e *Engine) ToggleFilter(key string) error {
	e.mu.Lock()
	if e.popover != nil && e.popover.key == key {
		e.closeFilterLocked()
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()
	return e.OpenFilter(key)
}

func (e *Engine) openFilterLocked(key string) {
	e.closeFilterLocked()

	p := &popoverSession{key: key, scope: newListenerScope(e.opts.Bus)}
	e.popover = p
	p.scope.On(interfaces.EventOutsideClick, func(data ...any) {
		if firstString(data) == p.key {
			return
		}
		e.dismissPopover(p)
	})
	p.scope.On(interfaces.EventKeyDown, func(data ...any) {
		if firstString(data) != EscapeKey {
			return
		}
		e.dismissPopover(p)
	})
	slog.Debug("filter popover opened", "story", e.story.ID, "column", key)
}

func (e *Engine) dismissPopover(p *popoverSession) {
	e.mu.Lock()
	if e.popover != p {
		e.mu.Unlock()
		return
	}
	e.closeFilterLocked()
	e.mu.Unlock()
	e.notify()
}

// CloseFilter closes the open filter popover, if any
func (e *Engine) CloseFilter() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closeFilterLocked()
}

func (e *Engine) closeFilterLocked() {
	if e.popover == nil {
		return
	}
	e.popover.scope.Release()
	slog.Debug("filter popover closed", "story", e.story.ID, "column", e.popover.key)
	e.popover = nil
}

// OpenFilterKey returns the column whose popover is open, or ""
func (e *Engine) OpenFilterKey() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.popover == nil {
		return ""
	}
	return e.popover.key
}

// BeginResize starts resizing a visible column from pointer position startX.
// startWidth is the rendered width of the column when the drag began.
// Pointer moves update the width until the pointer is released.
func (e *Engine) BeginResize(key string, startX float64, startWidth int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if !e.state.IsVisible(key) {
		return fmt.Errorf("resize %q: %w", key, ErrUnknownColumn)
	}
	e.endResizeLocked()

	if w, ok := e.state.ColumnWidths[key]; ok && startWidth <= 0 {
		startWidth = w
	}
	r := &resizeSession{
		key:        key,
		startX:     startX,
		startWidth: max(startWidth, MinColumnWidth),
		scope:      newListenerScope(e.opts.Bus),
	}
	e.resize = r
	r.scope.On(interfaces.EventPointerMove, func(data ...any) {
		x, ok := firstNumber(data)
		if !ok {
			return
		}
		e.mu.Lock()
		if e.resize != r {
			e.mu.Unlock()
			return
		}
		e.resizeToLocked(x)
		e.mu.Unlock()
		e.notify()
	})
	r.scope.On(interfaces.EventPointerUp, func(data ...any) {
		e.mu.Lock()
		if e.resize != r {
			e.mu.Unlock()
			return
		}
		e.endResizeLocked()
		e.mu.Unlock()
		e.notify()
	})
	return nil
}

// ResizeTo sets the width of the column being resized for pointer position x
func (e *Engine) ResizeTo(x float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resizeToLocked(x)
}

func (e *Engine) resizeToLocked(x float64) {
	if e.resize == nil {
		return
	}
	width := e.resize.startWidth + int(math.Round(x-e.resize.startX))
	e.state = SetColumnWidth(e.state, e.resize.key, width)
}

// EndResize finishes the resize session and releases its listeners
func (e *Engine) EndResize() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.endResizeLocked()
}

func (e *Engine) endResizeLocked() {
	if e.resize == nil {
		return
	}
	e.resize.scope.Release()
	e.resize = nil
}

// ResizingColumn returns the column being resized, or ""
func (e *Engine) ResizingColumn() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.resize == nil {
		return ""
	}
	return e.resize.key
}

// DragStart begins dragging a visible column header
func (e *Engine) DragStart(key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if !e.state.IsVisible(key) {
		return fmt.Errorf("drag %q: %w", key, ErrUnknownColumn)
	}
	e.drag = dragState{source: key}
	return nil
}

// DragOver marks key as the drop target. Hovering the source itself or a
// column that is not visible leaves the target unchanged.
func (e *Engine) DragOver(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.drag.source == "" || key == e.drag.source || !e.state.IsVisible(key) {
		return
	}
	e.drag.target = key
}

// Drop moves the source column to the target position and ends the drag
func (e *Engine) Drop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.finishDragLocked()
}

// DragEnd ends the drag. A pending target is applied the same way as Drop.
func (e *Engine) DragEnd() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.finishDragLocked()
}

func (e *Engine) finishDragLocked() {
	if e.drag.source != "" && e.drag.target != "" {
		e.state = MoveColumn(e.state, e.drag.source, e.drag.target)
	}
	e.drag = dragState{}
}

// DragState returns the current drag source and target, both "" when idle
func (e *Engine) DragState() (source, target string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.drag.source, e.drag.target
}
