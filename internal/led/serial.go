package led

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
)

const (
	SOF0        = 0xAA
	SOF1        = 0x55
	CmdRGBFrame = 0x20
)

// EncodeFrame builds the on-wire representation of one RGB frame:
//
//	[SOF0][SOF1][LEN hi][LEN lo][CMD][SEQ][rgb...][CKS]
//
// LEN counts CMD, SEQ and the payload. CKS is the XOR of every byte from LEN on.
func EncodeFrame(dst []byte, seq byte, rgb []byte) []byte {
	length := len(rgb) + 2
	dst = append(dst[:0], SOF0, SOF1, byte(length>>8), byte(length), CmdRGBFrame, seq)
	dst = append(dst, rgb...)
	var cks byte
	for _, b := range dst[2:] {
		cks ^= b
	}
	return append(dst, cks)
}

// Serial streams framed RGB to a microcontroller over a serial port.
type Serial struct {
	port io.WriteCloser
	seq  byte
	buf  []byte
}

// OpenSerial opens the named serial device at the given baud rate.
func OpenSerial(name string, baud int) (*Serial, error) {
	p, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("serial open %s: %w", name, err)
	}
	log.Info().Str("device", name).Int("baud", baud).Msg("serial port opened")
	return NewSerial(p), nil
}

// NewSerial frames onto any writer.
func NewSerial(w io.WriteCloser) *Serial { return &Serial{port: w} }

func (s *Serial) Write(rgb []byte) error {
	s.buf = EncodeFrame(s.buf, s.seq, rgb)
	s.seq++
	if _, err := s.port.Write(s.buf); err != nil {
		return fmt.Errorf("serial write: %w", err)
	}
	return nil
}

func (s *Serial) Close() error {
	log.Info().Msg("serial port closing")
	return s.port.Close()
}

// Ports lists serial devices, for -list-serial style discovery.
func Ports() ([]string, error) { return serial.GetPortsList() }
