package scan

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.bug.st/serial"

	"github.com/openasv/surveyor/internal/monitoring"
)

// PortOptions holds the serial-port settings for a ranging sensor.
type PortOptions struct {
	BaudRate int
	DataBits int
	Parity   serial.Parity
	StopBits serial.StopBits
}

// DefaultPortOptions returns the settings used by the stock sensor head.
func DefaultPortOptions() PortOptions {
	return PortOptions{
		BaudRate: 115200,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// SerialMode converts the options into a serial.Mode.
func (o PortOptions) SerialMode() *serial.Mode {
	return &serial.Mode{
		BaudRate: o.BaudRate,
		DataBits: o.DataBits,
		Parity:   o.Parity,
		StopBits: o.StopBits,
	}
}

// SerialSource reads sweep frames from a line-oriented ranging sensor. Each
// line is one full sweep: comma-separated readings, each reading a
// "distance:angle" pair, e.g. "1.25:-0.35,2.00:0.10".
type SerialSource struct {
	port   io.ReadCloser
	unit   AngleUnit
	frames chan Scan
	logf   monitoring.Logf
}

// NewSerialSource opens the serial port at path and returns a source emitting
// scans with angles in the given unit. A nil logf falls back to the standard
// logger.
func NewSerialSource(path string, opts PortOptions, unit AngleUnit, logf monitoring.Logf) (*SerialSource, error) {
	port, err := serial.Open(path, opts.SerialMode())
	if err != nil {
		return nil, fmt.Errorf("open sensor port %s: %w", path, err)
	}
	return newSerialSource(port, unit, logf), nil
}

// newSerialSource wraps an already-open port. Split out so tests can feed the
// source from an in-memory pipe.
func newSerialSource(port io.ReadCloser, unit AngleUnit, logf monitoring.Logf) *SerialSource {
	return &SerialSource{
		port:   port,
		unit:   unit,
		frames: make(chan Scan),
		logf:   monitoring.OrDefault(logf),
	}
}

// Frames returns the channel of parsed sweep frames. It is closed when
// Monitor returns.
func (s *SerialSource) Frames() <-chan Scan { return s.frames }

// Close closes the underlying port, which also unblocks Monitor.
func (s *SerialSource) Close() error { return s.port.Close() }

// Monitor reads lines from the port, parses them into scans and delivers them
// on the frames channel until the context is cancelled or the port fails.
// Malformed lines are logged and skipped; a sensor glitch must not kill the
// acquisition loop.
func (s *SerialSource) Monitor(ctx context.Context) error {
	defer close(s.frames)

	lines := bufio.NewScanner(s.port)
	for lines.Scan() {
		frame, err := ParseFrame(lines.Text(), s.unit)
		if err != nil {
			s.logf("scan: dropping malformed frame: %v", err)
			continue
		}

		select {
		case s.frames <- frame:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := lines.Err(); err != nil {
		return fmt.Errorf("sensor port read: %w", err)
	}
	return nil
}

// ParseFrame parses a single sweep line into a Scan. Empty lines produce an
// empty (zero-reading) scan, which is a valid sweep.
func ParseFrame(line string, unit AngleUnit) (Scan, error) {
	line = strings.TrimSpace(line)
	out := Scan{Unit: unit}
	if line == "" {
		return out, nil
	}

	for _, field := range strings.Split(line, ",") {
		pair := strings.SplitN(strings.TrimSpace(field), ":", 2)
		if len(pair) != 2 {
			return Scan{}, fmt.Errorf("reading %q: want distance:angle", field)
		}
		distance, err := strconv.ParseFloat(pair[0], 64)
		if err != nil {
			return Scan{}, fmt.Errorf("reading %q: bad distance: %w", field, err)
		}
		angle, err := strconv.ParseFloat(pair[1], 64)
		if err != nil {
			return Scan{}, fmt.Errorf("reading %q: bad angle: %w", field, err)
		}
		if distance < 0 {
			return Scan{}, fmt.Errorf("reading %q: negative distance", field)
		}
		out.Distances = append(out.Distances, distance)
		out.Angles = append(out.Angles, angle)
	}
	return out, nil
}
