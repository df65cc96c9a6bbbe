package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/shaiso/skyfetch/internal/domain"
	"github.com/shaiso/skyfetch/internal/pipeline"
	"github.com/shaiso/skyfetch/internal/repo"
)

// fakeEngine — Engine на картах для тестов обработчиков.
type fakeEngine struct {
	jobs     map[uuid.UUID]*domain.Job
	results  map[uuid.UUID]*domain.JobResult
	counters map[uuid.UUID]domain.Counters
	state    map[string][]byte

	submitErr error
	cancelErr error
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		jobs:     make(map[uuid.UUID]*domain.Job),
		results:  make(map[uuid.UUID]*domain.JobResult),
		counters: make(map[uuid.UUID]domain.Counters),
		state:    make(map[string][]byte),
	}
}

func (f *fakeEngine) Submit(text string) (*domain.Job, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	job := domain.NewJob(text)
	job.MarkReady(nil)
	job.MarkQueued()
	f.jobs[job.ID] = job
	return job, nil
}

func (f *fakeEngine) Job(id uuid.UUID) (*domain.Job, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return job, nil
}

func (f *fakeEngine) Result(id uuid.UUID) (*domain.JobResult, error) {
	if _, ok := f.jobs[id]; !ok {
		return nil, domain.ErrJobNotFound
	}
	if res, ok := f.results[id]; ok {
		return res, nil
	}
	return nil, domain.ErrJobPending
}

func (f *fakeEngine) Cancel(id uuid.UUID) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	if _, ok := f.jobs[id]; !ok {
		return domain.ErrJobNotFound
	}
	return nil
}

func (f *fakeEngine) List() ([]*domain.Job, error) {
	jobs := make([]*domain.Job, 0, len(f.jobs))
	for _, j := range f.jobs {
		jobs = append(jobs, j)
	}
	return jobs, nil
}

func (f *fakeEngine) Kinds() []domain.KindInfo { return domain.Kinds() }

func (f *fakeEngine) Counters(id uuid.UUID) (domain.Counters, bool) {
	c, ok := f.counters[id]
	return c, ok
}

func (f *fakeEngine) CountersAll() map[uuid.UUID]domain.Counters {
	all := make(map[uuid.UUID]domain.Counters, len(f.counters))
	for id, c := range f.counters {
		all[id] = c
	}
	return all
}

func (f *fakeEngine) StateGet(tag string) ([]byte, bool) {
	p, ok := f.state[tag]
	return p, ok
}

func (f *fakeEngine) StateTags() []string {
	tags := make([]string, 0, len(f.state))
	for tag := range f.state {
		tags = append(tags, tag)
	}
	return tags
}

func (f *fakeEngine) QueueLens() (int, int, int, error) {
	return 2, 1, 3, nil
}

// fakeJournal — Journal на карте финальных заданий.
type fakeJournal struct {
	jobs map[uuid.UUID]*domain.Job
}

func (f *fakeJournal) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return job, nil
}

func (f *fakeJournal) ListRecent(ctx context.Context, limit int) ([]*domain.Job, error) {
	jobs := make([]*domain.Job, 0, len(f.jobs))
	for _, j := range f.jobs {
		if len(jobs) == limit {
			break
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

// fakeAreas — Areas на карте счётчиков областей.
type fakeAreas struct {
	counts map[string]int64
}

func (f *fakeAreas) CountByArea(ctx context.Context, area string) (int64, error) {
	return f.counts[area], nil
}

func newTestServer(engine Engine) *httptest.Server {
	return newTestServerWith(Config{Engine: engine})
}

func newTestServerWith(cfg Config) *httptest.Server {
	cfg.Logger = slog.New(slog.DiscardHandler)
	h := NewHandler(cfg)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return httptest.NewServer(mux)
}

func decodeData(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wrapper); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if err := json.Unmarshal(wrapper.Data, into); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func errorCode(t *testing.T, resp *http.Response) ErrorCode {
	t.Helper()
	var er ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return er.Error.Code
}

func TestSubmitJob(t *testing.T) {
	engine := newFakeEngine()
	srv := newTestServer(engine)
	defer srv.Close()

	body := `{"pipeline": "read(path=/tmp/in.csv) -> save(out=/tmp/out.csv)"}`
	resp, err := http.Post(srv.URL+"/api/v1/jobs", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var job JobResponse
	decodeData(t, resp, &job)
	if job.ID == uuid.Nil || job.State != string(domain.JobStateQueued) {
		t.Errorf("unexpected job: %+v", job)
	}
}

func TestSubmitJob_Invalid(t *testing.T) {
	engine := newFakeEngine()
	srv := newTestServer(engine)
	defer srv.Close()

	cases := []struct {
		name string
		body string
		prep func()
		code ErrorCode
	}{
		{"bad json", `{{{`, nil, ErrCodeBadRequest},
		{"empty pipeline", `{"pipeline": "  "}`, nil, ErrCodeBadRequest},
		{"validation error", `{"pipeline": "save() -> fetch()"}`, func() {
			engine.submitErr = pipeline.NewValidationError(0, "save",
				"first task must be a producer", pipeline.ErrFirstNotProducer)
		}, ErrCodeBadRequest},
	}

	for _, c := range cases {
		engine.submitErr = nil
		if c.prep != nil {
			c.prep()
		}

		resp, err := http.Post(srv.URL+"/api/v1/jobs", "application/json", strings.NewReader(c.body))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", c.name, resp.StatusCode)
		}
		if code := errorCode(t, resp); code != c.code {
			t.Errorf("%s: code = %s, want %s", c.name, code, c.code)
		}
		resp.Body.Close()
	}
}

func TestGetJob(t *testing.T) {
	engine := newFakeEngine()
	srv := newTestServer(engine)
	defer srv.Close()

	job, _ := engine.Submit("read(path=/tmp/a) -> save(out=/tmp/b)")

	resp, err := http.Get(srv.URL + "/api/v1/jobs/" + job.ID.String())
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var got JobResponse
	decodeData(t, resp, &got)
	if got.ID != job.ID || got.Pipeline != job.Text {
		t.Errorf("unexpected job: %+v", got)
	}
}

func TestGetJob_Errors(t *testing.T) {
	engine := newFakeEngine()
	srv := newTestServer(engine)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/jobs/not-a-uuid")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad uuid: status = %d, want 400", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/v1/jobs/" + uuid.NewString())
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown id: status = %d, want 404", resp.StatusCode)
	}
	if code := errorCode(t, resp); code != ErrCodeNotFound {
		t.Errorf("code = %s, want NOT_FOUND", code)
	}
}

func TestGetJobResult(t *testing.T) {
	engine := newFakeEngine()
	srv := newTestServer(engine)
	defer srv.Close()

	job, _ := engine.Submit("read(path=/tmp/a) -> save(out=/tmp/b)")

	// Задание ещё не завершилось.
	resp, err := http.Get(srv.URL + "/api/v1/jobs/" + job.ID.String() + "/result")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("pending: status = %d, want 409", resp.StatusCode)
	}

	engine.results[job.ID] = &domain.JobResult{Output: "/tmp/b"}

	resp, err = http.Get(srv.URL + "/api/v1/jobs/" + job.ID.String() + "/result")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("finished: status = %d, want 200", resp.StatusCode)
	}

	var result ResultResponse
	decodeData(t, resp, &result)
	if result.Output != "/tmp/b" {
		t.Errorf("output = %q, want /tmp/b", result.Output)
	}
}

func TestCancelJob_Terminal(t *testing.T) {
	engine := newFakeEngine()
	srv := newTestServer(engine)
	defer srv.Close()

	job, _ := engine.Submit("read(path=/tmp/a) -> save(out=/tmp/b)")
	engine.cancelErr = domain.ErrJobTerminal

	resp, err := http.Post(srv.URL+"/api/v1/jobs/"+job.ID.String()+"/cancel", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}
	if code := errorCode(t, resp); code != ErrCodeInvalidState {
		t.Errorf("code = %s, want INVALID_STATE", code)
	}
}

func TestListKinds(t *testing.T) {
	srv := newTestServer(newFakeEngine())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/kinds")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var list struct {
		Data  []domain.KindInfo `json:"data"`
		Total int               `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if list.Total != 12 || len(list.Data) != 12 {
		t.Errorf("expected 12 kinds, got total=%d len=%d", list.Total, len(list.Data))
	}
	if list.Data[0].Name != domain.KindFetch {
		t.Errorf("first kind = %s, want fetch", list.Data[0].Name)
	}
}

func TestGetQueues(t *testing.T) {
	srv := newTestServer(newFakeEngine())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/queues")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var q QueuesResponse
	decodeData(t, resp, &q)
	if q.Waiting != 2 || q.Running != 1 || q.Finished != 3 {
		t.Errorf("unexpected queues: %+v", q)
	}
}

func TestGetState(t *testing.T) {
	engine := newFakeEngine()
	engine.state["job:demo"] = []byte(`{"state":"FINISHED"}`)
	srv := newTestServer(engine)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/state/job:demo")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var st StateResponse
	decodeData(t, resp, &st)
	if st.Tag != "job:demo" || !strings.Contains(string(st.Payload), "FINISHED") {
		t.Errorf("unexpected state: %+v", st)
	}

	resp, err = http.Get(srv.URL + "/api/v1/state/missing")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing tag: status = %d, want 404", resp.StatusCode)
	}
}

func TestListStateTags(t *testing.T) {
	engine := newFakeEngine()
	engine.state["job:a"] = []byte(`{}`)
	engine.state["job:b"] = []byte(`{}`)
	srv := newTestServer(engine)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/state")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var list struct {
		Data  []string `json:"data"`
		Total int      `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if list.Total != 2 || len(list.Data) != 2 {
		t.Fatalf("expected 2 tags, got total=%d %v", list.Total, list.Data)
	}
	// Теги отсортированы — ответ стабилен между запросами.
	if list.Data[0] != "job:a" || list.Data[1] != "job:b" {
		t.Errorf("unexpected tag order: %v", list.Data)
	}
}

func TestListStats(t *testing.T) {
	engine := newFakeEngine()
	id := uuid.New()
	engine.counters[id] = domain.Counters{Packets: 7, Bytes: 128}
	srv := newTestServer(engine)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/stats")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var list struct {
		Data []JobStatsResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list.Data) != 1 || list.Data[0].JobID != id || list.Data[0].Packets != 7 {
		t.Errorf("unexpected stats list: %+v", list.Data)
	}
}

func TestJournal(t *testing.T) {
	job := domain.NewJob("read(path=/tmp/a) -> save(out=/tmp/b)")
	job.MarkReady(nil)
	job.MarkQueued()
	job.MarkRunning()
	job.MarkFinished("/tmp/b")

	journal := &fakeJournal{jobs: map[uuid.UUID]*domain.Job{job.ID: job}}
	srv := newTestServerWith(Config{Engine: newFakeEngine(), Journal: journal})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/journal")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: status = %d, want 200", resp.StatusCode)
	}

	var list struct {
		Data []JobResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list.Data) != 1 || list.Data[0].ID != job.ID {
		t.Fatalf("unexpected journal list: %+v", list.Data)
	}

	resp, err = http.Get(srv.URL + "/api/v1/journal/" + job.ID.String())
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get: status = %d, want 200", resp.StatusCode)
	}

	var got JobResponse
	decodeData(t, resp, &got)
	if got.ID != job.ID || got.Output != "/tmp/b" {
		t.Errorf("unexpected journal job: %+v", got)
	}

	resp, err = http.Get(srv.URL + "/api/v1/journal/" + uuid.NewString())
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown id: status = %d, want 404", resp.StatusCode)
	}
}

func TestJournal_RequiresDatabase(t *testing.T) {
	srv := newTestServer(newFakeEngine()) // без Journal
	defer srv.Close()

	for _, path := range []string{"/api/v1/journal", "/api/v1/journal/" + uuid.NewString()} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("%s: status = %d, want 503", path, resp.StatusCode)
		}
		if code := errorCode(t, resp); code != ErrCodeUnavailable {
			t.Errorf("%s: code = %s, want UNAVAILABLE", path, code)
		}
		resp.Body.Close()
	}
}

func TestGetArea(t *testing.T) {
	areas := &fakeAreas{counts: map[string]int64{"adsb": 42}}
	srv := newTestServerWith(Config{Engine: newFakeEngine(), Areas: areas})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/areas/adsb")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var area AreaResponse
	decodeData(t, resp, &area)
	if area.Area != "adsb" || area.Packets != 42 {
		t.Errorf("unexpected area: %+v", area)
	}
}
