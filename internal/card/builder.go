// Package card builds the visitor signature card: an SVG that greets the
// caller with their IP, browser, system, location and local weather.
package card

import (
	"context"
	"net/http"
	"time"

	"github.com/xwteam/mascot/internal/lookup"
	"github.com/xwteam/mascot/internal/visitor"
)

// DefaultFooter is printed at the bottom of every card.
const DefaultFooter = "幸福の家 (www.xwteam.cn)"

// Locator resolves an IP to location and weather text. It must not fail;
// errors are expressed as placeholder text.
type Locator interface {
	Lookup(ctx context.Context, ip string) lookup.Result
}

// Builder assembles cards. It is safe for concurrent use.
type Builder struct {
	locator Locator
	footer  string
	now     func() time.Time
}

// NewBuilder creates a Builder. An empty footer uses DefaultFooter.
func NewBuilder(l Locator, footer string) *Builder {
	if footer == "" {
		footer = DefaultFooter
	}
	return &Builder{locator: l, footer: footer, now: time.Now}
}

// Collect gathers the card contents for a request's headers.
func (b *Builder) Collect(ctx context.Context, h http.Header) Record {
	info := visitor.ExtractClientInfo(h)
	res := b.locator.Lookup(ctx, info.IP)
	return Record{
		ClientInfo: info,
		Location:   res.Location,
		Weather:    res.Weather,
		Background: PickBackground(b.now()),
	}
}

// Build collects and renders the card for a request's headers.
func (b *Builder) Build(ctx context.Context, h http.Header) []byte {
	rec := b.Collect(ctx, h)
	return Render(rec, LabelsFor(h.Get("Accept-Language")), b.footer)
}
