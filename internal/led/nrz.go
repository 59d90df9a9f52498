package led

import (
	"fmt"
	"image"
	"image/color"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"
)

// NRZ draws frames through periph's nrzled driver, or onto the terminal when
// no SPI port is available.
type NRZ struct {
	drawer display.Drawer
	img    *image.NRGBA
	count  int
	// Console is true when frames go to the terminal.
	Console bool
}

// OpenNRZ opens dev ("" for the first port). Without a SPI port it falls back
// to a console preview.
func OpenNRZ(dev string, count int, freq physic.Frequency) (*NRZ, error) {
	if err := initHost(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	port, err := spireg.Open(dev)
	if err != nil {
		log.Warn().Err(err).Str("spi", dev).Msg("no SPI port; printing frames to the console")
		return newNRZ(screen.New(count), count, true), nil
	}
	return NewNRZ(port, count, freq)
}

// NewNRZ drives an nrzled strip on port.
func NewNRZ(port spi.Port, count int, freq physic.Frequency) (*NRZ, error) {
	if freq == 0 {
		freq = 2500 * physic.KiloHertz
	}
	d, err := nrzled.NewSPI(port, &nrzled.Opts{NumPixels: count, Channels: 3, Freq: freq})
	if err != nil {
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	if err := d.Halt(); err != nil {
		return nil, fmt.Errorf("nrzled halt: %w", err)
	}
	return newNRZ(d, count, false), nil
}

func newNRZ(d display.Drawer, count int, console bool) *NRZ {
	return &NRZ{
		drawer:  d,
		img:     image.NewNRGBA(image.Rect(0, 0, count, 1)),
		count:   count,
		Console: console,
	}
}

func (n *NRZ) String() string { return fmt.Sprint(n.drawer) }

func (n *NRZ) Write(rgb []byte) error {
	if len(rgb) != n.count*3 {
		return fmt.Errorf("rgb length %d does not match count %d", len(rgb), n.count)
	}
	for x := 0; x < n.count; x++ {
		n.img.SetNRGBA(x, 0, color.NRGBA{R: rgb[x*3], G: rgb[x*3+1], B: rgb[x*3+2], A: 255})
	}
	return n.drawer.Draw(n.drawer.Bounds(), n.img, image.Point{})
}

func (n *NRZ) Close() error { return n.drawer.Halt() }
