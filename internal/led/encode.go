package led

// ws2812 encodes RGB bytes for WS2812 strips driven from a SPI MOSI line: every
// data bit becomes three SPI bits, 1 -> 110 and 0 -> 100.
type ws2812 struct {
	order [3]byte
	// byte -> 24-bit encoded (3 bytes)
	lut [256][3]byte
}

// newWS2812 builds the encoder. colorOrder like "GRB" or "RGB"; anything else means GRB.
func newWS2812(colorOrder string) *ws2812 {
	e := &ws2812{order: [3]byte{'G', 'R', 'B'}}
	if len(colorOrder) == 3 {
		e.order = [3]byte{colorOrder[0], colorOrder[1], colorOrder[2]}
	}
	for v := 0; v < 256; v++ {
		out := uint32(0)
		for i := 7; i >= 0; i-- {
			tri := uint32(0b100)
			if (v>>i)&1 == 1 {
				tri = 0b110
			}
			out = (out << 3) | tri
		}
		e.lut[v] = [3]byte{byte(out >> 16), byte(out >> 8), byte(out)}
	}
	return e
}

// encode expands rgb (3 bytes per pixel) into dst (9 bytes per pixel).
func (e *ws2812) encode(dst, rgb []byte) {
	for px := 0; px*3+2 < len(rgb) && px*9+8 < len(dst); px++ {
		r, g, b := rgb[px*3], rgb[px*3+1], rgb[px*3+2]
		for i := 0; i < 3; i++ {
			var v byte
			switch e.order[i] {
			case 'R':
				v = r
			case 'B':
				v = b
			default:
				v = g
			}
			copy(dst[px*9+i*3:], e.lut[v][:])
		}
	}
}
