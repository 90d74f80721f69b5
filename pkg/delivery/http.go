package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/cbodonnell/puzzleflow/pkg/log"
	"github.com/cbodonnell/puzzleflow/pkg/messages"
	"github.com/cbodonnell/puzzleflow/pkg/reports"
)

// HTTPChannel posts batches to the report service.
type HTTPChannel struct {
	*dispatcher
	serverURL string
	token     string
	client    *http.Client
}

// NewHTTPChannelOptions contains options for creating a new HTTPChannel.
type NewHTTPChannelOptions struct {
	ServerURL string
	Token     string
	Client    *http.Client
	Poster    Poster
	Clock     clock.Clock
	Timeout   time.Duration
}

func NewHTTPChannel(opts NewHTTPChannelOptions) *HTTPChannel {
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	c := &HTTPChannel{
		serverURL: strings.TrimRight(opts.ServerURL, "/"),
		token:     opts.Token,
		client:    client,
	}
	c.dispatcher = newDispatcher(opts.Poster, opts.Clock, opts.Timeout, c.post, log.Component("HTTPChannel"))
	return c
}

func (c *HTTPChannel) post(ctx context.Context, batch *messages.Batch) *messages.ReportResponse {
	if c.serverURL == "" || c.token == "" {
		return failed(reports.NotInitialized("report server url or token is not configured"))
	}

	body, err := messages.SerializeBatch(batch)
	if err != nil {
		return failed(reports.Error{Code: reports.CodeBadRequest, Message: err.Error()})
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.serverURL+messages.ReportsPath, bytes.NewReader(body))
	if err != nil {
		return failed(reports.NotInitialized(fmt.Sprintf("failed to create request: %v", err)))
	}
	req.Header.Set("Content-Type", messages.ContentTypeBatch)
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return failed(reports.NoInternet(err))
	}
	defer resp.Body.Close()

	return decodeResponse(resp.StatusCode, resp.Body)
}

// decodeResponse maps an HTTP reply to a report response. Errors declared by the
// report service are kept; otherwise the status code is the error code.
func decodeResponse(statusCode int, body io.Reader) *messages.ReportResponse {
	b, err := io.ReadAll(body)
	if err != nil {
		return failed(reports.NoInternet(err))
	}

	if statusCode == http.StatusUnauthorized {
		return failed(reports.InvalidToken(strings.TrimSpace(string(b))))
	}

	response := &messages.ReportResponse{}
	if err := json.Unmarshal(b, response); err != nil {
		if statusCode >= 200 && statusCode < 300 {
			return failed(reports.Error{Code: http.StatusBadGateway, Message: fmt.Sprintf("failed to decode response: %v", err)})
		}
		return failed(reports.Error{Code: statusCode, Message: strings.TrimSpace(string(b))})
	}

	if statusCode < 200 || statusCode >= 300 {
		response.Completed = false
		if len(response.Errors) == 0 {
			response.Errors = []reports.Error{{Code: statusCode, Message: http.StatusText(statusCode)}}
		}
	}
	if !response.Completed && len(response.Errors) == 0 {
		return failed(reports.Error{Code: http.StatusBadGateway, Message: "response carries no outcome"})
	}
	return response
}
