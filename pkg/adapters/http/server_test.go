package http

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/automata/internal/testutils"
	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/observability"
	"github.com/aretw0/automata/pkg/world"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lampLayout = domain.Layout{
	Sensors:   []domain.Signal{{Name: "button"}},
	Actuators: []domain.Signal{{Name: "lamp"}},
}

func newWorld(t *testing.T) (*world.World, *testutils.ManualClock) {
	t.Helper()
	clock := testutils.NewManualClock()
	w := world.New(lampLayout, world.WithClock(clock))
	w.Edit(func(m *domain.StateMachine) {
		off := m.CreateState().SetName("off")
		on := m.CreateState().SetName("on")
		m.CreateTransition(off, on).SetInput(0, domain.GuardOne).SetOutput(0, domain.One)
		m.CreateTransition(on, off).SetInput(0, domain.GuardZero)
	})
	w.Reset()
	return w, clock
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) world.View {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var v world.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestGetMachine(t *testing.T) {
	w, _ := newWorld(t)
	h := NewHandler(w)

	rec := do(t, h, "GET", "/machine", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var doc struct {
		States      []map[string]any `json:"states"`
		Transitions []map[string]any `json:"transitions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Len(t, doc.States, 2)
	assert.Len(t, doc.Transitions, 2)
}

func TestGetMermaid(t *testing.T) {
	w, _ := newWorld(t)
	h := NewHandler(w)

	rec := do(t, h, "GET", "/machine/mermaid", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "graph TD"))
	assert.Contains(t, body, fmt.Sprintf("class s%d current;", w.CurrentState().ID()))
}

func TestControl(t *testing.T) {
	w, clock := newWorld(t)
	h := NewHandler(w)

	v := decodeView(t, do(t, h, "POST", "/world/start", ""))
	assert.True(t, v.Running)
	assert.Equal(t, 1, clock.Pending())

	v = decodeView(t, do(t, h, "POST", "/world/pause", ""))
	assert.False(t, v.Running)
	assert.Equal(t, 0, clock.Pending())

	decodeView(t, do(t, h, "POST", "/world/stop", ""))
	decodeView(t, do(t, h, "POST", "/world/reset", ""))

	rec := do(t, h, "POST", "/world/explode", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStep(t *testing.T) {
	w, _ := newWorld(t)
	h := NewHandler(w)
	off := w.CurrentState().ID()

	decodeView(t, do(t, h, "PUT", "/world/sensors/0", `{"value":"1"}`))

	// paused: elapsed time is not consumed
	v := decodeView(t, do(t, h, "POST", "/world/step?elapsed=100ms", ""))
	assert.Equal(t, off, v.State.ID)

	v = decodeView(t, do(t, h, "POST", "/world/step", ""))
	assert.NotEqual(t, off, v.State.ID)
	assert.Equal(t, "1", v.Actuators)
	assert.NotZero(t, v.Fired)

	rec := do(t, h, "POST", "/world/step?elapsed=soon", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, h, "POST", "/world/step?elapsed=-5", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStep_RunningConsumesElapsed(t *testing.T) {
	w, _ := newWorld(t)
	h := NewHandler(w)
	var ticks int
	w.AddListener(world.EventTick, func(domain.Event) { ticks++ })

	decodeView(t, do(t, h, "POST", "/world/start", ""))
	require.Equal(t, 1, ticks)

	// bare numbers are milliseconds; the default step is 20ms
	decodeView(t, do(t, h, "POST", "/world/step?elapsed=60", ""))
	assert.Equal(t, 4, ticks)
}

func TestPutSensor_Errors(t *testing.T) {
	w, _ := newWorld(t)
	h := NewHandler(w)

	assert.Equal(t, http.StatusNotFound, do(t, h, "PUT", "/world/sensors/3", `{"value":"1"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, "PUT", "/world/sensors/x", `{"value":"1"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, "PUT", "/world/sensors/0", `{"value":"-"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, "PUT", "/world/sensors/0", `nope`).Code)
}

func TestPutMachine(t *testing.T) {
	w, _ := newWorld(t)
	h := NewHandler(w)

	yamlDoc := `
version: "1"
sensors: [{name: button}]
actuators: [{name: lamp}]
states:
  - {id: 1, name: solo}
transitions:
  - {id: 1, source: 1, target: 1, inputs: "-", outputs: "1"}
world:
  time_step: 40
`
	req := httptest.NewRequest("PUT", "/machine", strings.NewReader(yamlDoc))
	req.Header.Set("Content-Type", "application/yaml")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	v := decodeView(t, rec)
	require.NotNil(t, v.State)
	assert.Equal(t, "solo", v.State.Name)
	assert.Equal(t, int64(40), v.TimeStepMS)

	bad := `{"version":"1","sensors":[{"name":"button"}],"actuators":[{"name":"lamp"}],
		"states":[{"id":1}],"transitions":[{"id":1,"source":1,"target":9}]}`
	rec = do(t, h, "PUT", "/machine", bad)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body struct {
		Details []string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Details)
	assert.Equal(t, "solo", w.CurrentState().Name(), "a rejected document leaves the machine alone")

	assert.Equal(t, http.StatusBadRequest, do(t, h, "PUT", "/machine", "{").Code)
}

func TestPutMachine_ForeignLayoutKeepsRunning(t *testing.T) {
	w, clock := newWorld(t)
	h := NewHandler(w)
	decodeView(t, do(t, h, "POST", "/world/start", ""))

	doc := `{"version":"1","sensors":[{"name":"switch"}],"actuators":[{"name":"lamp"}],
		"states":[{"id":1}]}`
	rec := do(t, h, "PUT", "/machine", doc)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "switch")

	assert.True(t, w.IsRunning())
	assert.Equal(t, 1, clock.Pending())
	assert.Equal(t, "button", w.Layout().Sensors[0].Name)
}

func TestMetricsEndpoint(t *testing.T) {
	w, _ := newWorld(t)
	reg := prometheus.NewRegistry()
	detach := observability.NewMetrics(reg).Attach(w)
	defer detach()

	h := NewHandler(w, WithMetrics(reg))
	do(t, h, "POST", "/world/step", "")

	rec := do(t, h, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "automata_ticks_total 1")

	assert.Equal(t, http.StatusNotFound, do(t, NewHandler(w), "GET", "/metrics", "").Code)
}

func TestHealthAndCORS(t *testing.T) {
	w, _ := newWorld(t)
	h := NewHandler(w)

	rec := do(t, h, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	assert.Equal(t, http.StatusOK, do(t, h, "OPTIONS", "/world/start", "").Code)
}

func TestSubscribeEvents(t *testing.T) {
	w, _ := newWorld(t)
	handler := NewHandler(w)
	srv := httptest.NewServer(handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	waitFor := func(prefix string) string {
		t.Helper()
		for lines.Scan() {
			if strings.HasPrefix(lines.Text(), prefix) {
				return lines.Text()
			}
		}
		t.Fatalf("stream ended before %q: %v", prefix, lines.Err())
		return ""
	}

	waitFor("data: connected")
	require.NoError(t, w.SetSensorValue(0, domain.One))

	waitFor("event: changed")
	data := strings.TrimPrefix(waitFor("data: "), "data: ")
	var v world.View
	require.NoError(t, json.Unmarshal([]byte(data), &v))
	assert.Equal(t, "1", v.Sensors)
}

func TestStreamManager(t *testing.T) {
	sm := NewStreamManager()
	ch, cancel := sm.Subscribe()
	assert.Equal(t, 1, sm.Len())

	sm.Notify()
	sm.Notify() // coalesced
	<-ch
	select {
	case <-ch:
		t.Fatal("expected a single pending notification")
	default:
	}

	cancel()
	cancel()
	assert.Equal(t, 0, sm.Len())
	_, ok := <-ch
	assert.False(t, ok)
}
