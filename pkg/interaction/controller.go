package interaction

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/gardar/ocrlens/pkg/display"
	"github.com/gardar/ocrlens/pkg/geometry"
	"github.com/gardar/ocrlens/pkg/scene"
)

// Options configures a Controller. Zero durations take the defaults.
type Options struct {
	HideDelay      time.Duration
	DetailDuration time.Duration
	NotifyDuration time.Duration
	Logger         *slog.Logger
	// OnCopy, when set, is called with the copy kind ("line" or "page") and
	// the clipboard outcome.
	OnCopy func(kind string, err error)
}

// Controller dispatches viewer events. All methods are safe for concurrent
// use; events are serialized.
type Controller struct {
	mu sync.Mutex

	scene   *scene.Scene
	machine *display.Machine

	surface   Surface
	clipboard Clipboard
	notifier  Notifier
	scheduler Scheduler

	opts   Options
	logger *slog.Logger

	controlLine int // -1 when no control is shown
	hideTimer   Timer
	hideGen     uint64
}

// New wires a controller. A nil scheduler means SystemScheduler.
func New(sc *scene.Scene, m *display.Machine, surface Surface, clipboard Clipboard,
	notifier Notifier, scheduler Scheduler, opts Options,
) *Controller {
	if scheduler == nil {
		scheduler = SystemScheduler{}
	}
	if opts.HideDelay <= 0 {
		opts.HideDelay = DefaultHideDelay
	}
	if opts.DetailDuration <= 0 {
		opts.DetailDuration = DefaultDetailDuration
	}
	if opts.NotifyDuration <= 0 {
		opts.NotifyDuration = DefaultNotifyDuration
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Controller{
		scene:       sc,
		machine:     m,
		surface:     surface,
		clipboard:   clipboard,
		notifier:    notifier,
		scheduler:   scheduler,
		opts:        opts,
		logger:      logger,
		controlLine: -1,
	}
}

// State returns the current display state.
func (c *Controller) State() display.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.State()
}

// Init applies the directives of the whole current state.
func (c *Controller) Init() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.surface.Apply(c.machine.State().Directives())
}

// SetFlag writes a flag and applies the resulting directives. It returns the
// directives, nil when the value did not change.
func (c *Controller) SetFlag(f display.Flag, v bool) []display.Directive {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setFlag(f, v)
}

// Toggle inverts a flag.
func (c *Controller) Toggle(f display.Flag) []display.Directive {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setFlag(f, !c.machine.State().Get(f))
}

func (c *Controller) setFlag(f display.Flag, v bool) []display.Directive {
	ds := c.machine.Set(f, v)
	if ds == nil {
		return nil
	}
	c.surface.Apply(ds)

	if f == display.EnableHoverControls && !v {
		c.cancelHide()
		c.hideControl()
	}
	return ds
}

// LineEnter shows the copy control of line, placed against the line's
// extent in viewport coordinates. Ignored while hover controls are disabled.
func (c *Controller) LineEnter(line int, extent geometry.Rect) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.machine.State().EnableHoverControls {
		return
	}
	c.cancelHide()

	page := c.scene.Page()
	if page == nil || line < 0 || line >= len(page.Lines) {
		c.logger.Debug("hover on unknown line", "line", line)
		return
	}
	if c.controlLine == line {
		return
	}

	c.hideControl()
	n := strconv.Itoa(line + 1)
	c.surface.ShowLineControl(LineControl{
		Line:     line,
		Label:    "Line " + n,
		Title:    "Copy line " + n,
		Position: ControlPosition(extent),
	})
	c.controlLine = line
}

// LineLeave schedules hiding the control after the hide delay.
func (c *Controller) LineLeave(line int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scheduleHide()
}

// ControlEnter keeps the control up while the pointer is over it.
func (c *Controller) ControlEnter() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelHide()
}

// ControlLeave schedules hiding the control.
func (c *Controller) ControlLeave() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scheduleHide()
}

// ControlVisible returns the line whose control is shown.
func (c *Controller) ControlVisible() (line int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controlLine, c.controlLine >= 0
}

// WordClick shows the detail popup of the word id near the pointer.
func (c *Controller) WordClick(id string, pointer geometry.Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	detail, err := c.scene.Detail(id)
	if err != nil {
		c.logger.Warn("word click on unknown word", "id", id, "error", err)
		return err
	}
	c.notifier.ShowDetail(detail, DetailPosition(pointer), c.opts.DetailDuration)
	return nil
}

// CopyLine copies the text of line to the clipboard.
func (c *Controller) CopyLine(line int) error {
	c.mu.Lock()
	page := c.scene.Page()
	var text string
	ok := false
	if page != nil {
		text, ok = page.LineText(line)
	}
	c.mu.Unlock()

	if !ok {
		return fmt.Errorf("line %d out of range", line)
	}
	c.copy("line", text)
	return nil
}

// CopyPage copies the text of the whole page to the clipboard.
func (c *Controller) CopyPage() {
	c.mu.Lock()
	text := ""
	if page := c.scene.Page(); page != nil {
		text = page.Text()
	}
	c.mu.Unlock()

	c.copy("page", text)
}

// copy hands text to the clipboard outside the lock, so a clipboard that
// reports synchronously re-enters cleanly.
func (c *Controller) copy(kind, text string) {
	c.clipboard.WriteText(text, func(err error) {
		c.mu.Lock()
		defer c.mu.Unlock()

		if c.opts.OnCopy != nil {
			c.opts.OnCopy(kind, err)
		}
		if err != nil {
			c.logger.Warn("clipboard write failed", "kind", kind, "error", err)
			c.notifier.Notify(MsgCopyFailed, c.opts.NotifyDuration)
			return
		}
		c.notifier.Notify(MsgCopied, c.opts.NotifyDuration)
	})
}

// Close stops the pending hide timer.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelHide()
}

func (c *Controller) scheduleHide() {
	c.cancelHide()
	if c.controlLine < 0 {
		return
	}
	gen := c.hideGen
	c.hideTimer = c.scheduler.AfterFunc(c.opts.HideDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		// a newer enter or leave superseded this timer
		if gen != c.hideGen {
			return
		}
		c.hideTimer = nil
		c.hideControl()
	})
}

func (c *Controller) cancelHide() {
	c.hideGen++
	if c.hideTimer != nil {
		c.hideTimer.Stop()
		c.hideTimer = nil
	}
}

func (c *Controller) hideControl() {
	if c.controlLine < 0 {
		return
	}
	c.surface.HideLineControl(c.controlLine)
	c.controlLine = -1
}
