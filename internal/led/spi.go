package led

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

var hostOnce struct {
	sync.Once
	err error
}

// initHost loads periph's host drivers once per process.
func initHost() error {
	hostOnce.Do(func() {
		_, hostOnce.err = host.Init()
	})
	return hostOnce.err
}

// SPI drives a WS2812 strip by bit-banging the waveform over SPI MOSI.
type SPI struct {
	mu     sync.Mutex
	port   spi.PortCloser
	conn   spi.Conn
	count  int
	enc    *ws2812
	frame  []byte
	resetN int
}

// OpenSPI opens a SPI port by periph name ("" for the first one, or e.g. "/dev/spidev0.0").
// speedHz in the 2_400_000-3_200_000 range works well with the 3x expand scheme.
// resetUs is the latch (usually >= 280µs; 300-400 is safe).
func OpenSPI(dev string, count int, colorOrder string, speedHz int, resetUs int) (*SPI, error) {
	if err := initHost(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	port, err := spireg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %w", dev, err)
	}
	s, err := NewSPI(port, count, colorOrder, speedHz, resetUs)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	return s, nil
}

// NewSPI wraps an already open port.
func NewSPI(port spi.PortCloser, count int, colorOrder string, speedHz int, resetUs int) (*SPI, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", count)
	}
	if speedHz <= 0 {
		speedHz = 2400000
	}
	if resetUs <= 0 {
		resetUs = 300
	}
	conn, err := port.Connect(physic.Frequency(speedHz)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("spi connect: %w", err)
	}
	// one SPI byte lasts 8 bit times; pad the latch with zeros, never under 128 bytes
	resetN := int(int64(resetUs) * int64(speedHz) / 8 / 1000000)
	if resetN < 128 {
		resetN = 128
	}
	return &SPI{
		port:   port,
		conn:   conn,
		count:  count,
		enc:    newWS2812(colorOrder),
		frame:  make([]byte, count*9+resetN),
		resetN: resetN,
	}, nil
}

// Write takes len(rgb)==3*count and sends 9 bytes per pixel plus the latch tail.
func (s *SPI) Write(rgb []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return fmt.Errorf("spi closed")
	}
	if len(rgb) != s.count*3 {
		return fmt.Errorf("rgb length %d does not match count %d", len(rgb), s.count)
	}
	s.enc.encode(s.frame[:s.count*9], rgb)
	if err := s.conn.Tx(s.frame, nil); err != nil {
		return fmt.Errorf("spi write: %w", err)
	}
	return nil
}

func (s *SPI) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port, s.conn = nil, nil
	return err
}
