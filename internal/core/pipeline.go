package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"soapcore/internal/query"
)

var graphQLErrorsPath = jp.MustParseString("$.errors[*].message")

type envelope struct {
	Query string `json:"query"`
}

// send posts the request envelope. Transport errors are returned unchanged.
func (c *Client) send(ctx context.Context, req query.Request) ([]byte, error) {
	body, err := json.Marshal(envelope{Query: req.Body})
	if err != nil {
		return nil, requestInit(err)
	}
	return c.transport.Do(ctx, body)
}

// receive unwraps a reply and dispatches its payload. Pass-through kinds
// return the raw payload.
func (c *Client) receive(reply []byte, req query.Request, rep *Report) (any, error) {
	payload, err := unwrap(reply, req)
	if err != nil {
		return nil, err
	}
	return c.registry.apply(req.Payload, payload, rep)
}

func (c *Client) execute(ctx context.Context, req query.Request, rep *Report) (any, error) {
	reply, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.receive(reply, req, rep)
}

// do runs a request built by the query package. A build error fails the
// operation before anything is sent.
func (c *Client) do(ctx context.Context, op query.Operation, req query.Request, buildErr error) (Report, error) {
	return c.run(ctx, op, func(ctx context.Context, rep *Report) error {
		if buildErr != nil {
			return requestInit(buildErr)
		}
		_, err := c.execute(ctx, req, rep)
		return err
	})
}

// unwrap extracts data.<container>.<payload field> from a reply body.
func unwrap(reply []byte, req query.Request) (any, error) {
	if len(bytes.TrimSpace(reply)) == 0 {
		return nil, ErrEmptyBody
	}
	doc, err := oj.Parse(reply)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingData, err)
	}
	root, _ := doc.(map[string]any)
	data, ok := root["data"].(map[string]any)
	if !ok {
		return nil, withServerErrors(ErrMissingData, doc)
	}
	container, ok := data[req.Container].(map[string]any)
	if !ok {
		return nil, withServerErrors(fmt.Errorf("%w: %s", ErrMissingContainer, req.Container), doc)
	}
	field := req.Payload.Field()
	payload, ok := container[field]
	if !ok || payload == nil {
		return nil, fmt.Errorf("%w: %s.%s", ErrMissingPayload, req.Container, field)
	}
	return payload, nil
}

// withServerErrors appends the GraphQL error messages of a reply, if any.
func withServerErrors(err error, doc any) error {
	var msgs []string
	for _, m := range graphQLErrorsPath.Get(doc) {
		if s, ok := m.(string); ok && s != "" {
			msgs = append(msgs, s)
		}
	}
	if len(msgs) == 0 {
		return err
	}
	return fmt.Errorf("%w: server errors: %s", err, strings.Join(msgs, "; "))
}
