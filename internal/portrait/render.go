package portrait

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/patrickmn/go-cache"
)

const (
	defaultCacheExpiration = 30 * time.Minute
	cacheCleanupInterval   = 1 * time.Hour

	halfBlock = "▀"
)

// Renderer draws portraits into a width x height cell box and caches the
// result, since the same few portraits are shown over and over.
type Renderer struct {
	cache *cache.Cache
}

// NewRenderer creates a renderer with an in-memory cache.
func NewRenderer() *Renderer {
	return &Renderer{
		cache: cache.New(defaultCacheExpiration, cacheCleanupInterval),
	}
}

// Render returns the portrait as width x height terminal cells.
func (r *Renderer) Render(p *Portrait, width, height int) string {
	if p == nil || width <= 0 || height <= 0 {
		return ""
	}

	key := fmt.Sprintf("%s|%s|%dx%d", p.Name, p.Path, width, height)
	if cached, ok := r.cache.Get(key); ok {
		return cached.(string)
	}

	var out string
	if p.HasImage() {
		out = renderImage(p.img, width, height)
	} else {
		out = renderPlaceholder(p, width, height)
	}

	r.cache.Set(key, out, cache.DefaultExpiration)
	return out
}

// renderImage scales img to fit the box, keeping the aspect ratio, and
// centres it horizontally.
func renderImage(img image.Image, width, height int) string {
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW == 0 || srcH == 0 {
		return blankBox(width, height)
	}

	// each cell holds two vertical pixels
	pxW, pxH := width, height*2
	scale := min(float64(pxW)/float64(srcW), float64(pxH)/float64(srcH))
	dstW := max(1, int(float64(srcW)*scale))
	dstH := max(2, int(float64(srcH)*scale))
	dstH -= dstH % 2

	sample := func(x, y int) color.Color {
		sx := bounds.Min.X + x*srcW/dstW
		sy := bounds.Min.Y + y*srcH/dstH
		return img.At(sx, sy)
	}

	padLeft := (width - dstW) / 2
	rows := make([]string, 0, height)
	for y := 0; y < dstH; y += 2 {
		var b strings.Builder
		b.WriteString(strings.Repeat(" ", padLeft))
		for x := 0; x < dstW; x++ {
			style := lipgloss.NewStyle().
				Foreground(hex(sample(x, y))).
				Background(hex(sample(x, y+1)))
			b.WriteString(style.Render(halfBlock))
		}
		b.WriteString(strings.Repeat(" ", width-padLeft-dstW))
		rows = append(rows, b.String())
	}
	for len(rows) < height {
		rows = append(rows, strings.Repeat(" ", width))
	}

	return strings.Join(rows, "\n")
}

func renderPlaceholder(p *Portrait, width, height int) string {
	if width < 3 || height < 3 {
		return blankBox(width, height)
	}

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#6272A4")).
		Foreground(lipgloss.Color("#BD93F9")).
		Bold(true).
		Width(width-2).
		Height(height-2).
		Align(lipgloss.Center, lipgloss.Center)

	return card.Render(p.Initials())
}

func blankBox(width, height int) string {
	row := strings.Repeat(" ", width)
	rows := make([]string, height)
	for i := range rows {
		rows[i] = row
	}
	return strings.Join(rows, "\n")
}

func hex(c color.Color) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}
