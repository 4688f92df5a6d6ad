// Package interaction turns viewer events into display state changes and
// short-lived affordances: the per-line copy control shown on hover, the word
// detail popup and copy notifications.
//
// A Controller processes one event at a time to completion. The page and
// scene are only read; the display Machine is the only state events change.
// Rendering, clipboard access, notifications and timers are collaborators
// supplied by the host.
package interaction

import (
	"time"

	"github.com/gardar/ocrlens/pkg/display"
	"github.com/gardar/ocrlens/pkg/geometry"
	"github.com/gardar/ocrlens/pkg/scene"
)

// Default timings.
const (
	DefaultHideDelay      = 100 * time.Millisecond
	DefaultDetailDuration = 3000 * time.Millisecond
	DefaultNotifyDuration = 2000 * time.Millisecond
)

// Placement of affordances relative to their anchor.
const (
	ControlRightInset = 25.0
	ControlHalfHeight = 10.0
	DetailOffset      = 10.0
)

// Notification texts.
const (
	MsgCopied     = "Copied to clipboard!"
	MsgCopyFailed = "Failed to copy to clipboard"
)

// LineControl is the copy affordance of one line.
type LineControl struct {
	Line     int            `json:"line"`
	Label    string         `json:"label"`
	Title    string         `json:"title"`
	Position geometry.Point `json:"position"`
}

// Surface is the rendering surface the controller drives.
type Surface interface {
	Apply(directives []display.Directive)
	ShowLineControl(c LineControl)
	HideLineControl(line int)
}

// Clipboard writes text to the system clipboard and reports the outcome
// through done, possibly later and from another goroutine.
type Clipboard interface {
	WriteText(text string, done func(error))
}

// Notifier shows transient messages and word details.
type Notifier interface {
	Notify(message string, d time.Duration)
	ShowDetail(detail scene.WordDetail, at geometry.Point, d time.Duration)
}

// Timer is a pending scheduled call.
type Timer interface {
	Stop() bool
}

// Scheduler runs f after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemScheduler schedules with the time package.
type SystemScheduler struct{}

// AfterFunc implements Scheduler.
func (SystemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ControlPosition places a line control at the right edge of the line's
// extent, vertically centred.
func ControlPosition(extent geometry.Rect) geometry.Point {
	return geometry.Point{
		X: extent.Right - ControlRightInset,
		Y: extent.Top + extent.Height()/2 - ControlHalfHeight,
	}
}

// DetailPosition offsets a popup from the pointer.
func DetailPosition(pointer geometry.Point) geometry.Point {
	return geometry.Point{X: pointer.X + DetailOffset, Y: pointer.Y + DetailOffset}
}
