// Package tcode implements the stroker.Device interface for devices
// speaking the T-Code line protocol over a serial port, such as the
// OSR2, SR6 and similar machines.
package tcode

import (
	"fmt"
	"io"
	"log"
	"time"

	"stroked/stroker"
)

const (
	// identifyTimeout bounds the wait for the two identity replies.
	identifyTimeout = 2 * time.Second
	// enumerateTimeout is the inactivity window that ends the D2 axis
	// table; the device sends no explicit terminator.
	enumerateTimeout = 200 * time.Millisecond

	suggestedSafeSpeed = 2.0
)

// Session is a live connection to a T-Code device.
type Session struct {
	conn *Conn

	axes  map[stroker.AxisID]discoveredAxis
	order []stroker.AxisID

	description string
}

var _ stroker.Device = &Session{}

// Connect performs the discovery handshake over rw and returns a live
// session. rw is typically an open serial port with cleared buffers.
//
// Discovery sends D0 and D1 (device identity and firmware info, one
// reply line each), then D2 and reads axis table lines until the device
// goes quiet. Lines that fail to parse are logged and skipped.
func Connect(rw io.ReadWriter) (*Session, error) {
	c := NewConn(rw)

	if err := c.WriteLine("D0"); err != nil {
		return nil, fmt.Errorf("send D0: %w", err)
	}
	d0, err := c.ReadLine(identifyTimeout)
	if err != nil {
		return nil, fmt.Errorf("read D0 response: %w", err)
	}

	if err = c.WriteLine("D1"); err != nil {
		return nil, fmt.Errorf("send D1: %w", err)
	}
	d1, err := c.ReadLine(identifyTimeout)
	if err != nil {
		return nil, fmt.Errorf("read D1 response: %w", err)
	}

	if err = c.WriteLine("D2"); err != nil {
		return nil, fmt.Errorf("send D2: %w", err)
	}

	s := &Session{
		conn:        c,
		axes:        make(map[stroker.AxisID]discoveredAxis),
		description: fmt.Sprintf("%s (%s)", d0, d1),
	}

	var id stroker.AxisID
	for {
		line, err := c.ReadLine(enumerateTimeout)
		if err == ErrReadTimeout {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read D2 response: %w", err)
		}
		ax, perr := parseAxisLine(line)
		if perr != nil {
			log.Printf("ERROR: parse D2 axis line %q: %v", line, perr)
			id++
			continue
		}
		s.axes[id] = ax
		s.order = append(s.order, id)
		id++
	}

	log.Printf("connected to T-Code device: %s, %d axes", s.description, len(s.order))
	return s, nil
}

// Axes returns descriptors for every discovered axis with a recognized
// name, in discovery order.
func (s *Session) Axes() []stroker.AxisDescriptor {
	result := make([]stroker.AxisDescriptor, 0, len(s.order))
	for _, id := range s.order {
		ax := s.axes[id]
		kind, ok := axisKinds[ax.name]
		if !ok {
			log.Printf("unrecognized T-Code axis %q; ignoring", ax.name)
			continue
		}
		result = append(result, stroker.AxisDescriptor{
			ID:             id,
			Kind:           kind,
			SafeSpeedLimit: suggestedSafeSpeed,
		})
	}
	return result
}

// Move encodes and sends a single movement command.
func (s *Session) Move(m stroker.Movement) error {
	cmd, err := moveCommand(s.axes, m)
	if err != nil {
		return err
	}
	if err = s.conn.WriteLine(cmd); err != nil {
		return fmt.Errorf("send move command: %w", err)
	}
	return nil
}

// Stop halts all motion immediately.
func (s *Session) Stop() error {
	if err := s.conn.WriteLine("DSTOP"); err != nil {
		return fmt.Errorf("send DSTOP: %w", err)
	}
	return nil
}

// Description returns the combined D0/D1 identity of the device.
func (s *Session) Description() string { return s.description }

// Close shuts down the session and the underlying transport.
func (s *Session) Close() error { return s.conn.Close() }

// moveCommand renders a Movement as a T-Code line, e.g. "L07500I0042".
// The target is truncated, never rounded, into the 0-9999 wire range.
func moveCommand(axes map[stroker.AxisID]discoveredAxis, m stroker.Movement) (string, error) {
	ax, ok := axes[m.Axis()]
	if !ok {
		return "", fmt.Errorf("no such axis: %d", m.Axis())
	}
	target := int(m.Target() * 10000)
	if target > 9999 {
		target = 9999
	}
	return fmt.Sprintf("%s%04dI%04d", ax.name, target, m.RampMillis()), nil
}
