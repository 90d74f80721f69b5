package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/cbodonnell/puzzleflow/pkg/api/middleware"
	"github.com/cbodonnell/puzzleflow/pkg/log"
	"github.com/cbodonnell/puzzleflow/pkg/messages"
	"github.com/cbodonnell/puzzleflow/pkg/reports"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// maxBatchBytes bounds the size of a compressed batch.
const maxBatchBytes = 1 << 20

func HandleSubmitReports(processor *ReportProcessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFromContext(r.Context())
		if !ok {
			log.Error("failed to get user from context")
			http.Error(w, "Failed to get user from context", http.StatusInternalServerError)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBatchBytes))
		if err != nil {
			log.Error("failed to read batch: %v", err)
			writeResponse(w, http.StatusBadRequest, rejected(err))
			return
		}

		status, response := handleBatch(r.Context(), processor, user.ID, body)
		writeResponse(w, status, response)
	}
}

// HandleReportsWebSocket answers every binary batch message with a JSON response.
func HandleReportsWebSocket(processor *ReportProcessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFromContext(r.Context())
		if !ok {
			log.Error("failed to get user from context")
			http.Error(w, "Failed to get user from context", http.StatusInternalServerError)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			log.Error("failed to accept websocket connection: %v", err)
			return
		}
		defer conn.Close(websocket.StatusInternalError, "")

		ctx := r.Context()
		for {
			messageType, data, err := conn.Read(ctx)
			if err != nil {
				if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
					log.Debug("websocket connection of %s ended: %v", user.ID, err)
				}
				return
			}
			if messageType != websocket.MessageBinary {
				conn.Close(websocket.StatusUnsupportedData, "expected a binary batch")
				return
			}

			_, response := handleBatch(ctx, processor, user.ID, data)
			if err := wsjson.Write(ctx, conn, response); err != nil {
				log.Error("failed to write websocket response: %v", err)
				return
			}
		}
	}
}

func handleBatch(ctx context.Context, processor *ReportProcessor, userID string, data []byte) (int, *messages.ReportResponse) {
	batch, err := messages.DeserializeBatch(data)
	if err != nil {
		log.Error("failed to deserialize batch: %v", err)
		return http.StatusBadRequest, rejected(err)
	}

	response, err := processor.Process(ctx, userID, batch)
	if err != nil {
		log.Error("failed to process batch of %s: %v", userID, err)
		return http.StatusInternalServerError, &messages.ReportResponse{
			Errors: []reports.Error{{Code: http.StatusInternalServerError, Message: "failed to process batch"}},
		}
	}

	log.Debug("recorded batch of %d results for %s", len(batch.Results), userID)
	return http.StatusOK, response
}

// rejected is the reply to batches the service will never accept.
func rejected(err error) *messages.ReportResponse {
	return &messages.ReportResponse{
		Errors: []reports.Error{{Code: reports.CodeBadRequest, Message: fmt.Sprintf("invalid batch: %v", err)}},
	}
}

func writeResponse(w http.ResponseWriter, status int, response *messages.ReportResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error("failed to encode response: %v", err)
	}
}
