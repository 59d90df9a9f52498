package playlist

// Entry is one slot of a playlist: which preset kind to build, under what name,
// with which knobs.
type Entry struct {
	Name    string             `yaml:"name" json:"name"`
	Kind    string             `yaml:"kind" json:"kind"`
	Params  map[string]float64 `yaml:"params,omitempty" json:"params,omitempty"`
	Strings map[string]string  `yaml:"strings,omitempty" json:"strings,omitempty"`
}

// Program is an ordered list of entries. Playlists always loop.
type Program struct {
	Version string  `yaml:"version" json:"version"` // e.g., "playlist.v1"
	Entries []Entry `yaml:"entries" json:"entries"`
}
