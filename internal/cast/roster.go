// Package cast loads the character roster and binds script lines to the
// portraits of the characters who speak them.
package cast

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Yates-Labs/sitcom/internal/script"
)

// CharactersKey is the top-level array field of a roster file.
const CharactersKey = "characters"

var (
	ErrRoster = errors.New("roster unavailable")
)

// Character is a member of the cast. Portrait is an optional image path,
// relative to the roster file.
type Character struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Portrait    string `json:"portrait,omitempty"`
}

// Roster is the fixed set of characters a script may use.
type Roster struct {
	Characters []Character
	dir        string
	byName     map[string]int
}

// LoadRoster reads a roster file of the form {"characters": [...]}.
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRoster, err)
	}

	r, err := ParseRoster(string(data))
	if err != nil {
		return nil, err
	}
	r.dir = filepath.Dir(path)
	return r, nil
}

// ParseRoster decodes roster JSON. Names must be present and unique.
func ParseRoster(raw string) (*Roster, error) {
	chars, err := script.ParseSection[Character](raw, CharactersKey)
	if err != nil {
		return nil, err
	}
	return NewRoster(chars)
}

// NewRoster builds a roster from characters.
func NewRoster(chars []Character) (*Roster, error) {
	if len(chars) == 0 {
		return nil, fmt.Errorf("%w: no characters defined", ErrRoster)
	}

	r := &Roster{
		Characters: make([]Character, 0, len(chars)),
		byName:     make(map[string]int, len(chars)),
	}
	for i, c := range chars {
		c.Name = strings.TrimSpace(c.Name)
		c.Description = strings.TrimSpace(c.Description)
		if c.Name == "" {
			return nil, fmt.Errorf("%w: character %d has no name", ErrRoster, i)
		}
		key := normalizeName(c.Name)
		if _, dup := r.byName[key]; dup {
			return nil, fmt.Errorf("%w: duplicate character %q", ErrRoster, c.Name)
		}
		r.byName[key] = len(r.Characters)
		r.Characters = append(r.Characters, c)
	}
	return r, nil
}

// Lookup finds a character by name, ignoring case and surrounding space.
func (r *Roster) Lookup(name string) (Character, bool) {
	i, ok := r.byName[normalizeName(name)]
	if !ok {
		return Character{}, false
	}
	return r.Characters[i], true
}

// Names returns the character names in roster order.
func (r *Roster) Names() []string {
	names := make([]string, len(r.Characters))
	for i, c := range r.Characters {
		names[i] = c.Name
	}
	return names
}

// Describe concatenates the character descriptions into the text handed
// to the model, one "<name> is <description>" sentence per character.
func (r *Roster) Describe() string {
	parts := make([]string, 0, len(r.Characters))
	for _, c := range r.Characters {
		desc := c.Description
		if desc == "" {
			parts = append(parts, c.Name+".")
			continue
		}
		if !strings.HasSuffix(desc, ".") {
			desc += "."
		}
		parts = append(parts, fmt.Sprintf("%s is %s", c.Name, desc))
	}
	return strings.Join(parts, " ")
}

// PortraitPath resolves a character's portrait relative to the roster file.
// It returns "" when the character has no portrait.
func (r *Roster) PortraitPath(c Character) string {
	if c.Portrait == "" {
		return ""
	}
	if filepath.IsAbs(c.Portrait) || r.dir == "" {
		return c.Portrait
	}
	return filepath.Join(r.dir, c.Portrait)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
