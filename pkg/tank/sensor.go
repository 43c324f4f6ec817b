package tank

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"

	"github.com/gwillem/linetank/pkg/linefollow"
)

// SerialSensor reads the IR sensor array from a microcontroller on a serial
// link. Each request byte 'R' is answered with one line of '0'/'1' characters,
// leftmost sensor first.
type SerialSensor struct {
	port    io.ReadWriteCloser
	timeout time.Duration
	buf     []byte
}

// OpenSensor opens the sensor link on port.
func OpenSensor(port string, baudRate int) (*SerialSensor, error) {
	p, err := serial.Open(port, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("open sensor port: %w", err)
	}
	if err := p.SetReadTimeout(20 * time.Millisecond); err != nil {
		p.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}
	return newSensor(p, 200*time.Millisecond), nil
}

func newSensor(port io.ReadWriteCloser, timeout time.Duration) *SerialSensor {
	return &SerialSensor{
		port:    port,
		timeout: timeout,
		buf:     make([]byte, 64),
	}
}

// Close closes the serial link.
func (s *SerialSensor) Close() error {
	return s.port.Close()
}

// Read requests and returns one reading.
func (s *SerialSensor) Read(ctx context.Context) (linefollow.Reading, error) {
	// Drop stale bytes from earlier requests that timed out
	if r, ok := s.port.(interface{ ResetInputBuffer() error }); ok {
		if err := r.ResetInputBuffer(); err != nil {
			return nil, fmt.Errorf("reset input: %w", err)
		}
	}

	if _, err := s.port.Write([]byte{'R'}); err != nil {
		return nil, fmt.Errorf("request reading: %w", err)
	}

	line, err := s.readLine(ctx)
	if err != nil {
		return nil, err
	}

	reading := linefollow.ParseReading(line)
	if len(reading) == 0 {
		return nil, fmt.Errorf("malformed reading %q", line)
	}
	return reading, nil
}

func (s *SerialSensor) readLine(ctx context.Context) (string, error) {
	deadline := time.Now().Add(s.timeout)
	var line []byte

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if time.Now().After(deadline) {
			return "", fmt.Errorf("read sensor: timed out after %s", s.timeout)
		}

		n, err := s.port.Read(s.buf)
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("read sensor: %w", err)
		}
		for _, b := range s.buf[:n] {
			if b == '\n' {
				return string(line), nil
			}
			line = append(line, b)
		}
		if err == io.EOF && n == 0 {
			return "", fmt.Errorf("read sensor: %w", io.ErrUnexpectedEOF)
		}
	}
}
