package deck

import (
	"context"
	"io"

	reportdomain "github.com/healthdeck/healthdeck/internal/report/domain"
)

// Provider renders an assembled report document into a downloadable deck.
// Rendering is a blocking sink; the caller owns the returned bytes and any
// temp file it spills them to.
type Provider interface {
	Render(ctx context.Context, doc *reportdomain.Document) (io.Reader, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) Render(ctx context.Context, doc *reportdomain.Document) (io.Reader, error) {
	return nil, nil
}
