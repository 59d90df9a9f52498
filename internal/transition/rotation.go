package transition

import "math/rand"

// Rotation hands out every registered strategy in shuffled order, reshuffling
// once the list runs dry.
type Rotation struct {
	env  Env
	rng  *rand.Rand
	list []string
}

func NewRotation(env Env) *Rotation {
	rng := env.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Rotation{env: env, rng: rng}
}

func (r *Rotation) rebuild() {
	r.list = Names()
	r.rng.Shuffle(len(r.list), func(i, j int) { r.list[i], r.list[j] = r.list[j], r.list[i] })
}

// Next pops the next strategy and resets it, ready for use.
func (r *Rotation) Next() Strategy {
	if len(r.list) == 0 {
		r.rebuild()
	}
	if len(r.list) == 0 {
		return nil
	}
	name := r.list[len(r.list)-1]
	r.list = r.list[:len(r.list)-1]
	s, err := New(name, r.env)
	if err != nil {
		return nil
	}
	s.Reset()
	return s
}

// Remaining is how many strategies are left before the next reshuffle.
func (r *Rotation) Remaining() int { return len(r.list) }
