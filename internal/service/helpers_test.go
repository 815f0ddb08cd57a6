package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/MKhiriev/go-remote-config/internal/logger"
	"github.com/MKhiriev/go-remote-config/internal/mock"
	"github.com/MKhiriev/go-remote-config/models"
	"go.uber.org/mock/gomock"
)

// fakeRunner records how the manager drives the poll loop.
type fakeRunner struct {
	mu      sync.Mutex
	starts  int
	stops   int
	running bool
}

func (f *fakeRunner) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	f.running = true
}

func (f *fakeRunner) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	f.running = false
}

func (f *fakeRunner) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

func (f *fakeRunner) counts() (starts, stops int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts, f.stops
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testConfig() Config {
	return Config{
		Service:       "checkout",
		Env:           "test",
		AppVersion:    "1.2.3",
		ClientVersion: "0.1.0",
		Tags:          []string{"team:core"},
		PollInterval:  time.Hour,
		AckTimeout:    -1,
	}
}

// newTestManager builds a manager whose poll loop is replaced by a fakeRunner
// so polls only happen when the test calls Poll.
func newTestManager(t *testing.T, cfg Config, opts ...Option) (*SyncManager, *mock.MockConfigClient, *fakeRunner) {
	t.Helper()
	ctrl := gomock.NewController(t)
	client := mock.NewMockConfigClient(ctrl)

	m := NewSyncManager(client, cfg, logger.Nop(), opts...)
	runner := &fakeRunner{}
	m.scheduler = runner

	return m, client, runner
}

type target struct {
	path string
	hash string
	raw  string
}

// response builds a populated poll response carrying targets at version.
func response(version int64, targets ...target) models.ConfigResponse {
	metas := make(map[string]models.TargetMeta, len(targets))
	resp := models.ConfigResponse{
		ClientConfigs: []string{},
		TargetFiles:   []models.TargetFile{},
	}

	for _, tg := range targets {
		metas[tg.path] = models.TargetMeta{
			Hashes: map[string]string{"sha256": tg.hash},
			Length: int64(len(tg.raw)),
			Custom: models.TargetMetaCustom{V: version},
		}
		resp.ClientConfigs = append(resp.ClientConfigs, tg.path)
		resp.TargetFiles = append(resp.TargetFiles, models.TargetFile{Path: tg.path, Raw: []byte(tg.raw)})
	}

	envelope := models.Targets{Signed: models.SignedTargets{
		Version: version,
		Targets: metas,
		Custom:  models.TargetsCustom{OpaqueBackendState: fmt.Sprintf("state-%d", version)},
	}}
	resp.Targets, _ = json.Marshal(envelope)
	return resp
}

// requestLog captures the requests sent through a mock client.
type requestLog struct {
	mu   sync.Mutex
	reqs []models.ConfigRequest
}

func (l *requestLog) last() models.ConfigRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reqs[len(l.reqs)-1]
}

// expectPoll queues one exchange returning resp and err.
func expectPoll(client *mock.MockConfigClient, log *requestLog, resp models.ConfigResponse, err error) {
	client.EXPECT().
		FetchConfigs(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req models.ConfigRequest) (models.ConfigResponse, error) {
			if log != nil {
				log.mu.Lock()
				log.reqs = append(log.reqs, req)
				log.mu.Unlock()
			}
			return resp, err
		})
}

// call is one recorded product handler invocation.
type call struct {
	action Action
	file   string
	id     string
}

type callRecorder struct {
	mu    sync.Mutex
	calls []call
}

func (r *callRecorder) record(action Action, file []byte, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{action: action, file: string(file), id: id})
}

func (r *callRecorder) all() []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]call, len(r.calls))
	copy(out, r.calls)
	return out
}

func (r *callRecorder) syncHandler(err error) ProductHandler {
	return SyncHandler(func(action Action, file []byte, id string) error {
		r.record(action, file, id)
		return err
	})
}

func stateOf(s Status, id string) (models.ConfigState, bool) {
	for _, cs := range s.ConfigStates {
		if cs.ID == id {
			return cs, true
		}
	}
	return models.ConfigState{}, false
}
