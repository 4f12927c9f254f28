// Package encounter turns free-form encounter definitions into typed,
// deduplicated creature collections ready to seed a tracker.
package encounter

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/hearthrpg/tracker/internal/game/creature"
	"github.com/hearthrpg/tracker/internal/game/dice"
	"github.com/hearthrpg/tracker/internal/game/party"
)

// Bestiary resolves creature names to pre-authored definitions.
//
// Implementations must return a fresh Creature per call; the parser mutates
// the result while applying per-encounter stat overrides.
type Bestiary interface {
	GetCreatureFromBestiary(name string) (*creature.Creature, bool)
}

// Parameters is one raw encounter block as authored in a document.
// Creatures entries are heterogeneous: plain strings, arrays, single-pair
// maps, or fully structured maps.
type Parameters struct {
	Name      string `yaml:"name,omitempty"`
	Party     string `yaml:"party,omitempty"`
	Hide      any    `yaml:"hide,omitempty"`
	Creatures []any  `yaml:"creatures,omitempty"`
}

// Entry is one deduplicated creature with its quantity. Entries with a
// resolved count of 0 are retained; seeding skips them, preview contexts
// may still show them.
type Entry struct {
	Creature *creature.Creature
	Count    Amount
}

// Parsed is a fully parsed encounter definition.
type Parsed struct {
	Name     string
	Party    party.Party
	HasParty bool
	Hide     []string
	Entries  []Entry
}

// Parser converts encounter definitions into creature collections.
type Parser struct {
	bestiary Bestiary
	parties  party.Lookup
	roller   *dice.Roller // nil = dice counts collapse to 1
	logger   *zap.Logger
}

// NewParser creates a Parser. roller may be nil when dice expressions are
// unsupported; bestiary and parties may be nil when no catalog exists.
func NewParser(bestiary Bestiary, parties party.Lookup, roller *dice.Roller, logger *zap.Logger) *Parser {
	return &Parser{bestiary: bestiary, parties: parties, roller: roller, logger: logger}
}

// ParseBlocks splits src on "---" separators and parses each block as a
// YAML encounter definition. A malformed block is reported and skipped;
// sibling blocks still parse. The joined per-block errors are returned
// alongside the successfully parsed encounters.
func (p *Parser) ParseBlocks(src string) ([]Parsed, error) {
	var out []Parsed
	var errs []error
	for _, block := range strings.Split(src, "---") {
		if strings.TrimSpace(block) == "" {
			continue
		}
		var params Parameters
		if err := yaml.Unmarshal([]byte(block), &params); err != nil {
			p.logger.Warn("skipping malformed encounter block", zap.Error(err))
			errs = append(errs, fmt.Errorf("parsing encounter block: %w", err))
			continue
		}
		out = append(out, p.Parse(params))
	}
	return out, errors.Join(errs...)
}

// Parse converts one encounter definition into its creature collection.
func (p *Parser) Parse(params Parameters) Parsed {
	parsed := Parsed{
		Name: params.Name,
		Hide: parseHide(params.Hide),
	}
	if p.parties != nil && params.Party != "" {
		if pty, ok := p.parties.PartyByName(params.Party); ok {
			parsed.Party = pty
			parsed.HasParty = true
		}
	}

	for _, raw := range params.Creatures {
		c, count, ok := p.parseRawCreature(raw)
		if !ok {
			continue
		}
		stats := c.GetStats()
		merged := false
		for i := range parsed.Entries {
			if parsed.Entries[i].Creature.MatchesStats(stats) {
				parsed.Entries[i].Count = count.Add(parsed.Entries[i].Count)
				merged = true
				break
			}
		}
		if !merged {
			parsed.Entries = append(parsed.Entries, Entry{Creature: c, Count: count})
		}
	}
	return parsed
}

func parseHide(raw any) []string {
	switch v := raw.(type) {
	case string:
		if v == "creatures" {
			return []string{"creatures"}
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == "creatures" {
				return []string{"creatures"}
			}
		}
	}
	return nil
}

// rawStats is the intermediate stat record extracted from one raw entry
// before the bestiary lookup.
type rawStats struct {
	name     string
	display  string
	dc       int
	hp       int
	stress   int
	hidden   bool
	friendly bool
}

var countedName = regexp.MustCompile(`^(\d+)?:?\s?(.+)$`)

// parseRawCreature parses a single raw entry into a creature and count.
// Returns ok=false when the entry is empty or carries no usable name.
func (p *Parser) parseRawCreature(raw any) (*creature.Creature, Amount, bool) {
	if raw == nil {
		return nil, Amount{}, false
	}

	var monster any
	count := NumericAmount(1)

	switch v := raw.(type) {
	case string:
		match := countedName.FindStringSubmatch(v)
		if match == nil {
			return nil, Amount{}, false
		}
		if match[1] != "" {
			n, _ := strconv.Atoi(match[1])
			count = NumericAmount(n)
		}
		monster = match[2]
	case []any:
		monster = v
	case int, bool, float64:
		return nil, Amount{}, false
	default:
		entries := normalizeMap(raw)
		if entries == nil {
			return nil, Amount{}, false
		}
		if _, structured := entries["creature"]; structured {
			monster = entries
		} else {
			// Single-pair {count: name-or-array} form.
			for key, value := range entries {
				count = parseCount(key, p.roller != nil)
				monster = value
				break
			}
		}
	}

	stats, ok := parseMonster(monster)
	if !ok {
		return nil, Amount{}, false
	}

	// Counts below 1 collapse to 0; the entry stays in the collection.
	if count.IsNumeric() && count.Value() < 1 {
		count = NumericAmount(0)
	}

	var c *creature.Creature
	if p.bestiary != nil {
		if existing, found := p.bestiary.GetCreatureFromBestiary(stats.name); found {
			c = existing
		}
	}
	if c == nil {
		c = creature.New(stats.name)
	}

	c.Display = stats.display
	c.DC.Set(stats.dc)
	c.HP.Set(stats.hp)
	c.Stress.Set(stats.stress)
	if stats.hidden {
		c.Hidden = true
	}
	if stats.friendly {
		c.Friendly = true
	}

	return c, count, true
}

// parseCount interprets a count token from a map key. Dice expressions are
// accepted only when a roller is available; otherwise they collapse to 1.
// Anything non-numeric and non-dice defaults to 1.
func parseCount(token string, hasRoller bool) Amount {
	token = strings.TrimSpace(token)
	if n, err := strconv.Atoi(token); err == nil {
		return NumericAmount(n)
	}
	if dice.IsExpression(token) {
		if hasRoller {
			return SymbolicAmount(token)
		}
		return NumericAmount(1)
	}
	return NumericAmount(1)
}

// normalizeMap flattens either yaml map shape into string-keyed entries.
func normalizeMap(raw any) map[string]any {
	switch m := raw.(type) {
	case map[string]any:
		return m
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[fmt.Sprint(k)] = v
		}
		return out
	}
	return nil
}

var (
	hiddenFlag   = regexp.MustCompile(`,\s*hidden`)
	friendlyFlag = regexp.MustCompile(`,\s*(?:friend(?:ly)?|ally)`)
	fieldSplit   = regexp.MustCompile(`,\s?`)
)

// parseMonster extracts stats from the monster portion of a raw entry:
// a shorthand string, an array form, or a structured map.
func parseMonster(monster any) (rawStats, bool) {
	var stats rawStats

	switch m := monster.(type) {
	case string:
		if hiddenFlag.MatchString(m) {
			stats.hidden = true
			m = hiddenFlag.ReplaceAllString(m, "")
		}
		if friendlyFlag.MatchString(m) {
			stats.friendly = true
			m = friendlyFlag.ReplaceAllString(m, "")
		}
		fields := fieldSplit.Split(m, -1)
		stats.name = fields[0]
		assignNumbers(fields[1:], &stats)

	case []any:
		switch first := indexOrNil(m, 0).(type) {
		case string:
			// [Hobgoblin, Jim, ...]
			stats.name = first
			if display, ok := indexOrNil(m, 1).(string); ok {
				stats.display = display
			}
		case []any:
			// [[Hobgoblin, Jim], ...]
			if name, ok := indexOrNil(first, 0).(string); ok {
				stats.name = name
			}
			if display, ok := indexOrNil(first, 1).(string); ok {
				stats.display = display
			}
		}

		// Remaining elements fill dc/hp/stress positionally; a non-numeric
		// element (such as a flat-form display name) still consumes its
		// position, it just leaves the stat unset.
		var numbers []string
		for _, item := range m[min(1, len(m)):] {
			switch v := item.(type) {
			case string:
				switch v {
				case "hidden":
					stats.hidden = true
				case "friend", "friendly", "ally":
					stats.friendly = true
				default:
					numbers = append(numbers, v)
				}
			case int:
				numbers = append(numbers, strconv.Itoa(v))
			}
		}
		assignNumbers(numbers, &stats)

	default:
		entries := normalizeMap(monster)
		if entries == nil {
			return rawStats{}, false
		}
		stats.name, _ = entries["creature"].(string)
		stats.display, _ = entries["name"].(string)
		stats.dc = intField(entries, "dc")
		stats.hp = intField(entries, "hp")
		stats.stress = intField(entries, "stress")
		stats.hidden, _ = entries["hidden"].(bool)
		if friend, ok := entries["friend"].(bool); ok && friend {
			stats.friendly = true
		}
		if ally, ok := entries["ally"].(bool); ok && ally {
			stats.friendly = true
		}
	}

	if stats.name == "" {
		return rawStats{}, false
	}
	return stats, true
}

// assignNumbers fills dc, hp, stress positionally; non-numeric fields are
// treated as unset.
func assignNumbers(fields []string, stats *rawStats) {
	targets := []*int{&stats.dc, &stats.hp, &stats.stress}
	for i, field := range fields {
		if i >= len(targets) {
			break
		}
		if n, err := strconv.Atoi(strings.TrimSpace(field)); err == nil {
			*targets[i] = n
		}
	}
}

func intField(entries map[string]any, key string) int {
	switch v := entries[key].(type) {
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}

func indexOrNil(s []any, i int) any {
	if i < len(s) {
		return s[i]
	}
	return nil
}
