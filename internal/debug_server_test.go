package internal

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"roomcast/observability"
)

func TestStatsMux_Healthz(t *testing.T) {
	req := require.New(t)
	log := slog.New(slog.DiscardHandler)
	server := httptest.NewServer(statsMux(log, func() observability.StatsSnapshot {
		return observability.StatsSnapshot{}
	}))
	defer server.Close()

	resp, err := http.Get(server.URL + "/healthz")
	req.NoError(err)
	defer resp.Body.Close()

	req.Equal(http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	req.NoError(err)
	req.Equal("ok", string(body))
}

func TestStatsMux_StatsServesTheProviderSnapshot(t *testing.T) {
	req := require.New(t)
	log := slog.New(slog.DiscardHandler)
	server := httptest.NewServer(statsMux(log, func() observability.StatsSnapshot {
		return observability.StatsSnapshot{
			ActiveSessionCount:  4,
			ActiveIdentityCount: 3,
			RoomCount:           2,
			CommandsProcessed:   17,
			EventsDelivered:     42,
		}
	}))
	defer server.Close()

	resp, err := http.Get(server.URL + "/stats")
	req.NoError(err)
	defer resp.Body.Close()

	req.Equal(http.StatusOK, resp.StatusCode)
	req.Contains(resp.Header.Get("Content-Type"), "application/json")

	var snapshot observability.StatsSnapshot
	req.NoError(json.NewDecoder(resp.Body).Decode(&snapshot))
	req.Equal(int64(4), snapshot.ActiveSessionCount)
	req.Equal(int64(3), snapshot.ActiveIdentityCount)
	req.Equal(int64(2), snapshot.RoomCount)
	req.Equal(uint64(17), snapshot.CommandsProcessed)
	req.Equal(uint64(42), snapshot.EventsDelivered)
}
