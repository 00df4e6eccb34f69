// Package fetch retrieves registrar listing pages.
package fetch

import (
	"context"

	"github.com/law-makers/cheapreg/pkg/models"
)

// Fetcher is the interface that all page retrieval backends implement
type Fetcher interface {
	// Fetch retrieves the page described by opts. A non-2xx status is an error.
	Fetch(ctx context.Context, opts models.RequestOptions) (*models.Page, error)

	// Name returns the name of the fetcher implementation
	Name() string
}

// DefaultHeaders are sent with every request unless overridden
var DefaultHeaders = map[string]string{
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9,fr;q=0.8",
}
