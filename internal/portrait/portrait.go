// Package portrait loads character images and renders them for the
// terminal, two image rows per text row using upper half blocks.
package portrait

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"
)

var (
	ErrLoad = errors.New("portrait load failed")
)

// Portrait is the image shown while a character speaks. A portrait
// without an image renders as a named placeholder card.
type Portrait struct {
	Name string
	Path string
	img  image.Image
}

// Load decodes the image at path (PNG, JPEG or GIF).
func Load(name, path string) (*Portrait, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, name, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: decode %s: %w", ErrLoad, name, path, err)
	}

	return &Portrait{Name: name, Path: path, img: img}, nil
}

// Placeholder returns a portrait with no image.
func Placeholder(name string) *Portrait {
	return &Portrait{Name: name}
}

// HasImage reports whether the portrait carries a decoded image.
func (p *Portrait) HasImage() bool {
	return p != nil && p.img != nil
}

// Initials returns up to two capital letters taken from the name,
// skipping titles such as "Dr." and "Prof.".
func (p *Portrait) Initials() string {
	var letters []rune
	for _, word := range strings.Fields(p.Name) {
		if strings.HasSuffix(word, ".") {
			continue
		}
		for _, r := range word {
			letters = append(letters, r)
			break
		}
		if len(letters) == 2 {
			break
		}
	}
	if len(letters) == 0 {
		return "?"
	}
	return strings.ToUpper(string(letters))
}
