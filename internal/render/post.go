package render

// Power configures the output limiter. Zero fields take the defaults below.
type Power struct {
	// WhiteCap bounds R+G+B per LED in linear units; 3 leaves white untouched.
	WhiteCap float64
	// ChanmA is the draw of one channel at full scale. WS2812 is about 20mA.
	ChanmA float64
	// BudgetmA is the supply budget for the whole frame. Zero disables it.
	BudgetmA float64
	// Knee is where soft limiting starts, as a fraction of the budget.
	Knee float64
}

func (p Power) withDefaults() Power {
	if p.WhiteCap <= 0 {
		p.WhiteCap = 3
	}
	if p.ChanmA <= 0 {
		p.ChanmA = 20
	}
	if p.Knee <= 0 || p.Knee >= 1 {
		p.Knee = 0.9
	}
	return p
}

// Current estimates the frame's draw in mA.
func (p Power) Current(buf []RGB) float64 {
	p = p.withDefaults()
	var sum float64
	for _, c := range buf {
		sum += float64(c.R + c.G + c.B)
	}
	return sum * p.ChanmA
}

// ToRGB converts an HLS buffer into linear RGB, up to the shorter length.
func ToRGB(dst []RGB, src Buffer) {
	for i := 0; i < len(dst) && i < len(src); i++ {
		dst[i] = src[i].RGB()
	}
}

// Limit caps each LED at WhiteCap, then scales the frame so the estimated
// current stays under BudgetmA. Between Knee*budget and budget the scale ramps
// in gradually instead of jumping.
func Limit(buf []RGB, p Power) {
	p = p.withDefaults()
	capWhite(buf, float32(p.WhiteCap))
	if p.BudgetmA <= 0 {
		return
	}
	total := p.Current(buf)
	if total <= 0 {
		return
	}
	load := total / p.BudgetmA
	switch {
	case load <= p.Knee:
		return
	case load <= 1:
		full := p.BudgetmA / total
		t := (load - p.Knee) / (1 - p.Knee)
		scale(buf, float32(1-t*(1-full)))
	default:
		scale(buf, float32(p.BudgetmA/total))
	}
}

func capWhite(buf []RGB, limit float32) {
	for i, c := range buf {
		if sum := c.R + c.G + c.B; sum > limit {
			f := limit / sum
			buf[i] = RGB{c.R * f, c.G * f, c.B * f}
		}
	}
}

func scale(buf []RGB, f float32) {
	if f >= 1 {
		return
	}
	for i, c := range buf {
		buf[i] = RGB{c.R * f, c.G * f, c.B * f}
	}
}

func to8(x float32) byte {
	switch {
	case x <= 0:
		return 0
	case x >= 1:
		return 255
	}
	return byte(x*255 + 0.5)
}

// Pack writes 8-bit RGB triplets into dst (len 3*N).
func Pack(dst []byte, src []RGB) {
	for i := 0; i < len(src) && i*3+2 < len(dst); i++ {
		dst[i*3], dst[i*3+1], dst[i*3+2] = to8(src[i].R), to8(src[i].G), to8(src[i].B)
	}
}
