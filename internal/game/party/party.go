// Package party defines the adventuring-party reference consumed by the
// difficulty strategies. Parties are owned by host settings; the tracker
// only references them by name.
package party

// Party describes one configured adventuring party.
type Party struct {
	Name    string `mapstructure:"name" yaml:"name" json:"name"`
	Players int    `mapstructure:"players" yaml:"players" json:"players"`
	Level   int    `mapstructure:"level" yaml:"level" json:"level"`
}

// Lookup resolves party names to definitions.
type Lookup interface {
	// PartyByName returns the party registered under name.
	PartyByName(name string) (Party, bool)
}

// List is a static Lookup over a slice of parties.
type List []Party

// PartyByName returns the first party whose name matches.
func (l List) PartyByName(name string) (Party, bool) {
	for _, p := range l {
		if p.Name == name {
			return p, true
		}
	}
	return Party{}, false
}
