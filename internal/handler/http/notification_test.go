package http

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type streamEvent struct {
	Event string
	Data  string
}

// readEvent reads one "event:/data:" block from an SSE body.
func readEvent(t *testing.T, r *bufio.Reader) streamEvent {
	t.Helper()

	var e streamEvent
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			if e.Event != "" {
				return e
			}
		case strings.HasPrefix(line, "event: "):
			e.Event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			e.Data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func (s *testServer) streamToken(t *testing.T, accessToken string) string {
	t.Helper()

	rec, env := s.do(t, http.MethodPost, "/api/auth/stream-token", accessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var stream struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stream))
	return stream.Token
}

func startHTTPServer(t *testing.T, s *testServer) *httptest.Server {
	t.Helper()

	ts := httptest.NewUnstartedServer(s.router)
	ts.Config.RegisterOnShutdown(s.hub.Close)
	ts.Start()
	t.Cleanup(ts.Close)
	return ts
}

func openStream(t *testing.T, ts *httptest.Server, token string) (*http.Response, *bufio.Reader) {
	t.Helper()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(ts.URL + "/api/events/stream?token=" + token)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	return resp, bufio.NewReader(resp.Body)
}

func TestNotification_StreamDeliversManagerEvents(t *testing.T) {
	s := newTestServer(t)
	ts := startHTTPServer(t, s)

	bossToken := s.login(t, bossEmpID, bossPassword)
	_, body := openStream(t, ts, s.streamToken(t, bossToken))

	connected := readEvent(t, body)
	assert.Equal(t, "connected", connected.Event)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(connected.Data), &info))
	assert.Equal(t, "boss", info["role"])

	employeeToken := s.register(t, "EMP-001")
	rec, _ := s.do(t, http.MethodPost, "/api/leave", employeeToken, map[string]string{
		"type": "sick", "start_date": "2030-02-01", "end_date": "2030-02-01", "reason": "flu",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	event := readEvent(t, body)
	assert.Equal(t, "leave.requested", event.Event)
	var payload struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal([]byte(event.Data), &payload))
	assert.Equal(t, "leave.requested", payload.Type)
	assert.Contains(t, payload.Message, "EMP-001")
}

func TestNotification_StreamEndsOnShutdown(t *testing.T) {
	s := newTestServer(t)
	ts := startHTTPServer(t, s)

	token := s.register(t, "EMP-001")
	_, body := openStream(t, ts, s.streamToken(t, token))
	assert.Equal(t, "connected", readEvent(t, body).Event)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, ts.Config.Shutdown(ctx))

	_, err := body.ReadString('\n')
	assert.Error(t, err, "stream body should end once the server shuts down")
}
