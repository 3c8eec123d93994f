package tcode

import (
	"bufio"
	"errors"
	"io"
	"sync"
	"time"
)

// ErrReadTimeout is returned from ReadLine if the device stays silent
// for the full window.
var ErrReadTimeout = errors.New("tcode: read timeout")

// Conn frames line-based commands and responses over a byte stream.
type Conn struct {
	rw io.ReadWriter

	lines   chan string
	closeCh chan struct{}

	mx sync.Mutex

	readErr error
}

// NewConn creates a new Conn using the provided ReadWriter for data.
func NewConn(rw io.ReadWriter) *Conn {
	c := &Conn{
		rw:      rw,
		lines:   make(chan string, 16),
		closeCh: make(chan struct{}),
	}
	go c.readLoop()
	return c
}

func (c *Conn) readLoop() {
	scan := bufio.NewScanner(c.rw)
	for scan.Scan() {
		select {
		case c.lines <- scan.Text():
		case <-c.closeCh:
			return
		}
	}
	c.readErr = scan.Err()
	close(c.lines)
}

// WriteLine sends one command line to the device.
func (c *Conn) WriteLine(line string) error {
	select {
	case <-c.closeCh:
		return io.ErrClosedPipe
	default:
	}
	c.mx.Lock()
	_, err := io.WriteString(c.rw, line+"\n")
	c.mx.Unlock()
	return err
}

// ReadLine returns the next response line. If the device sends nothing
// within timeout, it returns ErrReadTimeout.
func (c *Conn) ReadLine(timeout time.Duration) (string, error) {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-c.closeCh:
		return "", io.ErrClosedPipe
	case line, ok := <-c.lines:
		if !ok {
			if c.readErr != nil {
				return "", c.readErr
			}
			return "", io.EOF
		}
		return line, nil
	case <-t.C:
		return "", ErrReadTimeout
	}
}

// Close aborts any pending reads and closes the underlying ReadWriter,
// if it implements io.Closer.
func (c *Conn) Close() error {
	close(c.closeCh)
	if closer, ok := c.rw.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
