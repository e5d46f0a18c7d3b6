package normalizer

import (
	"fmt"

	"github.com/tidwall/gjson"

	"userfetch/internal/models"
)

// Processor turns one raw response body into canonical users.
type Processor struct {
	dispatcher *Dispatcher
}

// NewProcessor creates a processor that routes through the given dispatcher.
func NewProcessor(dispatcher *Dispatcher) *Processor {
	return &Processor{dispatcher: dispatcher}
}

// NewDefaultProcessor creates a processor over the built-in route table.
func NewDefaultProcessor() *Processor {
	return NewProcessor(NewDispatcher(DefaultRoutes()...))
}

// Process parses body, resolves the adapter for endpoint and runs it.
// Errors wrap ErrParse, ErrUnknownEndpoint or ErrMalformedPayload.
func (p *Processor) Process(endpoint string, body []byte) ([]models.User, Kind, error) {
	// 1. Parse
	if !gjson.ValidBytes(body) {
		return nil, 0, fmt.Errorf("%w (%d bytes)", ErrParse, len(body))
	}

	payload := gjson.ParseBytes(body)

	// 2. Dispatch
	adapter, kind, err := p.dispatcher.Dispatch(endpoint)
	if err != nil {
		return nil, 0, err
	}

	// 3. Adapt
	users, err := adapter(payload)
	if err != nil {
		return nil, kind, fmt.Errorf("%s adapter: %w", kind, err)
	}

	return users, kind, nil
}
