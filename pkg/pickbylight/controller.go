package pickbylight

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"net"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/assys/brickguide/pkg/errors"
)

// Signaler lights storage locations.
type Signaler interface {
	// Highlight turns every LED off, then lights location in c. A zero c
	// uses the signaler's default color.
	Highlight(ctx context.Context, location int, c color.RGBA) error
	// Clear turns every LED off.
	Clear(ctx context.Context) error
}

// NoopSignaler accepts every request and does nothing.
type NoopSignaler struct{}

func (NoopSignaler) Highlight(context.Context, int, color.RGBA) error { return nil }
func (NoopSignaler) Clear(context.Context) error                      { return nil }

// ControllerOptions configures an Art-Net controller.
type ControllerOptions struct {
	Host     string
	Port     int // default 6454
	Universe int
	LEDCount int        // default 16
	Color    color.RGBA // default white
	Logger   *log.Logger
}

func (o *ControllerOptions) setDefaults() {
	if o.Port == 0 {
		o.Port = DefaultPort
	}
	if o.LEDCount == 0 {
		o.LEDCount = 16
	}
	if o.Color == (color.RGBA{}) {
		o.Color = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

type request struct {
	location int // -1 clears
	color    color.RGBA
}

// Controller drives an Art-Net LED strip. Requests are queued; only the
// goroutine running [Controller.Run] writes to the network.
type Controller struct {
	opts     ControllerOptions
	conn     net.Conn
	requests chan request

	mu       sync.Mutex
	values   []byte
	sequence uint8
}

// NewController dials the Art-Net node. UDP dialing does not contact the
// node, so an unreachable node only shows up as send errors in the log.
func NewController(opts ControllerOptions) (*Controller, error) {
	opts.setDefaults()
	if opts.Host == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "art-net host is required")
	}
	if opts.LEDCount < 1 || opts.LEDCount*3 > maxChannels {
		return nil, errors.New(errors.ErrCodeInvalidInput, "led count %d out of range [1, %d]", opts.LEDCount, maxChannels/3)
	}
	conn, err := net.Dial("udp", net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "dial art-net node")
	}
	return &Controller{
		opts:     opts,
		conn:     conn,
		requests: make(chan request, 8),
		values:   make([]byte, opts.LEDCount*3),
	}, nil
}

// Highlight queues a request to light location.
func (c *Controller) Highlight(ctx context.Context, location int, col color.RGBA) error {
	if location < 0 || location >= c.opts.LEDCount {
		return errors.New(errors.ErrCodeInvalidInput, "location %d out of range [0, %d)", location, c.opts.LEDCount)
	}
	if col == (color.RGBA{}) {
		col = c.opts.Color
	}
	return c.enqueue(ctx, request{location: location, color: col})
}

// Clear queues a request to turn every LED off.
func (c *Controller) Clear(ctx context.Context) error {
	return c.enqueue(ctx, request{location: -1})
}

func (c *Controller) enqueue(ctx context.Context, r request) error {
	select {
	case c.requests <- r:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run sends the blank frame, then serves queued requests until ctx is
// cancelled, when it turns the strip off and closes the connection.
func (c *Controller) Run(ctx context.Context) error {
	defer c.conn.Close()
	if err := c.apply(request{location: -1}); err != nil {
		c.opts.Logger.Warn("art-net send failed", "err", err)
	}
	for {
		select {
		case <-ctx.Done():
			if err := c.apply(request{location: -1}); err != nil {
				c.opts.Logger.Warn("art-net send failed", "err", err)
			}
			return nil
		case r := <-c.requests:
			if err := c.apply(r); err != nil {
				c.opts.Logger.Warn("art-net send failed", "location", r.location, "err", err)
				continue
			}
			c.opts.Logger.Debug("art-net frame sent", "location", r.location)
		}
	}
}

// apply turns every LED off, lights r.location (unless negative) and sends
// the frame.
func (c *Controller) apply(r request) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.values)
	if r.location >= 0 {
		i := r.location * 3
		c.values[i], c.values[i+1], c.values[i+2] = r.color.R, r.color.G, r.color.B
	}
	// Sequence 0 disables reordering on the receiver, so skip it.
	c.sequence++
	if c.sequence == 0 {
		c.sequence = 1
	}
	pkt, err := dmxPacket(c.opts.Universe, c.sequence, c.values)
	if err != nil {
		return err
	}
	if _, err := c.conn.Write(pkt); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

var (
	_ Signaler = (*Controller)(nil)
	_ Signaler = NoopSignaler{}
)
