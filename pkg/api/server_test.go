package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cbodonnell/puzzleflow/pkg/api/handlers"
	authproviders "github.com/cbodonnell/puzzleflow/pkg/auth/providers"
	"github.com/cbodonnell/puzzleflow/pkg/delivery"
	"github.com/cbodonnell/puzzleflow/pkg/game"
	"github.com/cbodonnell/puzzleflow/pkg/game/types"
	"github.com/cbodonnell/puzzleflow/pkg/messages"
	"github.com/cbodonnell/puzzleflow/pkg/reports"
	"github.com/cbodonnell/puzzleflow/pkg/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "token-1"

type chanPoster chan func()

func (p chanPoster) Post(fn func()) error {
	p <- fn
	return nil
}

func newTestServer(t *testing.T) (*httptest.Server, *repositories.MemoryRepository) {
	repository := repositories.NewMemoryRepository()
	server := NewAPIServer(NewAPIServerOptions{
		AuthProvider:      authproviders.NewStaticAuthProvider(map[string]string{testToken: "user-1"}),
		Repository:        repository,
		StartingInventory: types.Inventory{ExtraHintCount: 3, ExtraLiveCount: 2},
	})
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts, repository
}

func testResults() []*game.Result {
	return []*game.Result{
		{
			ID:        "daily-win",
			Type:      types.GameTypeBusted,
			Subtype:   types.GameSubtypeToday,
			LevelID:   "busted-easy-1",
			StartedAt: time.UnixMilli(1000),
			Won:       true,
			Cost:      game.Cost{Hints: 1},
		},
		{
			ID:        "classic-loss",
			Type:      types.GameTypeClassic,
			LevelID:   "classic-hard-1",
			StartedAt: time.UnixMilli(2000),
			Mistakes:  5,
			Cost:      game.Cost{Lives: 2, TimeSeconds: 30},
		},
	}
}

func postBatch(t *testing.T, url string, token string, body []byte) (int, *messages.ReportResponse) {
	req, err := http.NewRequest(http.MethodPost, url+messages.ReportsPath, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", messages.ContentTypeBatch)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return resp.StatusCode, nil
	}
	response := &messages.ReportResponse{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(response))
	return resp.StatusCode, response
}

func TestSubmitReports(t *testing.T) {
	ts, repository := newTestServer(t)
	body, err := messages.SerializeBatch(&messages.Batch{SentAt: time.Now(), Results: testResults()})
	require.NoError(t, err)

	status, response := postBatch(t, ts.URL, testToken, body)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, response.Completed)
	assert.Equal(t, &types.Inventory{ExtraHintCount: 2}, response.Inventory)
	assert.ElementsMatch(t, []string{
		handlers.AchievementFirstWin,
		handlers.AchievementNoMistakes,
		handlers.AchievementDailyPlayer,
	}, response.NewAchievements)

	// replaying the batch spends nothing
	status, response = postBatch(t, ts.URL, testToken, body)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, response.Completed)
	assert.Equal(t, &types.Inventory{ExtraHintCount: 2}, response.Inventory)
	assert.Empty(t, response.NewAchievements)

	wins, err := repository.CountWins(t.Context(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, wins)
}

func TestSubmitReportsRejections(t *testing.T) {
	ts, _ := newTestServer(t)

	status, _ := postBatch(t, ts.URL, "wrong", []byte("irrelevant"))
	assert.Equal(t, http.StatusUnauthorized, status)

	status, response := postBatch(t, ts.URL, testToken, []byte("not a batch"))
	require.Equal(t, http.StatusBadRequest, status)
	assert.False(t, response.Completed)
	require.Len(t, response.Errors, 1)
	assert.Equal(t, reports.CodeBadRequest, response.Errors[0].Code)
	assert.False(t, reports.AnyRetryable(response.Errors))
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestDeliveryChannels(t *testing.T) {
	tests := []struct {
		name       string
		newChannel func(url string, token string, poster chanPoster) delivery.Channel
	}{
		{
			name: "http",
			newChannel: func(url string, token string, poster chanPoster) delivery.Channel {
				return delivery.NewHTTPChannel(delivery.NewHTTPChannelOptions{ServerURL: url, Token: token, Poster: poster, Timeout: 5 * time.Second})
			},
		},
		{
			name: "websocket",
			newChannel: func(url string, token string, poster chanPoster) delivery.Channel {
				return delivery.NewWSChannel(delivery.NewWSChannelOptions{ServerURL: url, Token: token, Poster: poster, Timeout: 5 * time.Second})
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, _ := newTestServer(t)
			poster := make(chanPoster, 1)

			send := func(token string) *messages.ReportResponse {
				var got *messages.ReportResponse
				tt.newChannel(ts.URL, token, poster).Send(testResults(), func(response *messages.ReportResponse) {
					got = response
				})
				select {
				case fn := <-poster:
					fn()
				case <-time.After(5 * time.Second):
					t.Fatal("delivery callback was not posted")
				}
				return got
			}

			response := send(testToken)
			require.NotNil(t, response)
			assert.True(t, response.Completed)
			assert.Equal(t, 2, response.Inventory.ExtraHintCount)

			response = send("wrong")
			require.NotNil(t, response)
			assert.False(t, response.Completed)
			require.Len(t, response.Errors, 1)
			assert.Equal(t, reports.CodeInvalidToken, response.Errors[0].Code)
		})
	}
}
