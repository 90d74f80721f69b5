package delivery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/cbodonnell/puzzleflow/pkg/log"
	"github.com/cbodonnell/puzzleflow/pkg/messages"
	"github.com/cbodonnell/puzzleflow/pkg/reports"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// WSChannel sends each batch as one binary message over a short-lived
// websocket connection and reads a JSON reply.
type WSChannel struct {
	*dispatcher
	serverURL string
	token     string
}

// NewWSChannelOptions contains options for creating a new WSChannel.
type NewWSChannelOptions struct {
	// ServerURL is the http(s) or ws(s) base URL of the report service.
	ServerURL string
	Token     string
	Poster    Poster
	Clock     clock.Clock
	Timeout   time.Duration
}

func NewWSChannel(opts NewWSChannelOptions) *WSChannel {
	c := &WSChannel{
		serverURL: websocketURL(strings.TrimRight(opts.ServerURL, "/")),
		token:     opts.Token,
	}
	c.dispatcher = newDispatcher(opts.Poster, opts.Clock, opts.Timeout, c.exchange, log.Component("WSChannel"))
	return c
}

func websocketURL(serverURL string) string {
	switch {
	case strings.HasPrefix(serverURL, "https://"):
		return "wss://" + strings.TrimPrefix(serverURL, "https://")
	case strings.HasPrefix(serverURL, "http://"):
		return "ws://" + strings.TrimPrefix(serverURL, "http://")
	}
	return serverURL
}

func (c *WSChannel) exchange(ctx context.Context, batch *messages.Batch) *messages.ReportResponse {
	if c.serverURL == "" || c.token == "" {
		return failed(reports.NotInitialized("report server url or token is not configured"))
	}

	body, err := messages.SerializeBatch(batch)
	if err != nil {
		return failed(reports.Error{Code: reports.CodeBadRequest, Message: err.Error()})
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.token)
	conn, resp, err := websocket.Dial(ctx, c.serverURL+messages.ReportsWebSocketPath, &websocket.DialOptions{
		HTTPHeader: header,
	})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return failed(reports.InvalidToken("report server rejected the token"))
		}
		if resp != nil && resp.StatusCode >= 400 {
			return failed(reports.Error{Code: resp.StatusCode, Message: fmt.Sprintf("failed to connect to report server: %v", err)})
		}
		return failed(reports.NoInternet(err))
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	if err := conn.Write(ctx, websocket.MessageBinary, body); err != nil {
		return failed(reports.NoInternet(fmt.Errorf("failed to write batch: %v", err)))
	}

	response := &messages.ReportResponse{}
	if err := wsjson.Read(ctx, conn, response); err != nil {
		var closeErr websocket.CloseError
		if errors.As(err, &closeErr) && closeErr.Code == websocket.StatusPolicyViolation {
			return failed(reports.InvalidToken(closeErr.Reason))
		}
		return failed(reports.NoInternet(fmt.Errorf("failed to read response: %v", err)))
	}
	if !response.Completed && len(response.Errors) == 0 {
		return failed(reports.Error{Code: http.StatusBadGateway, Message: "response carries no outcome"})
	}
	return response
}
