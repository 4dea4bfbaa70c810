package syncer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authdomain "smartrfq/internal/auth/domain"
	projectdomain "smartrfq/internal/project/domain"
	projectdto "smartrfq/internal/project/dto"
	rfqdomain "smartrfq/internal/rfq/domain"
	rfqdto "smartrfq/internal/rfq/dto"
	"smartrfq/internal/store"
	"smartrfq/pkg/apierr"
	"smartrfq/pkg/metrics"
	"smartrfq/pkg/notify"
)

type fakeProjectAPI struct {
	calls   atomic.Int32
	gate    chan struct{}
	started chan struct{}
	result  []projectdomain.Project
	err     error
}

func (f *fakeProjectAPI) ListProjects(ctx context.Context) ([]projectdomain.Project, error) {
	f.calls.Add(1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	return f.result, f.err
}

func (f *fakeProjectAPI) CreateProject(ctx context.Context, req projectdto.CreateProjectRequest) (*projectdomain.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &projectdomain.Project{ID: "new", Name: req.Name}, nil
}

func (f *fakeProjectAPI) UpdateProject(ctx context.Context, id string, patch projectdomain.Patch) (*projectdomain.Project, error) {
	p := projectdomain.Project{ID: id}
	patch.Apply(&p)
	return &p, nil
}

func (f *fakeProjectAPI) DeleteProject(ctx context.Context, id string) error { return f.err }

func testDeps() (Deps, *notify.ChanNotifier, *metrics.Sync) {
	n := notify.NewChanNotifier(16)
	m := metrics.NewSync(prometheus.NewRegistry())
	return Deps{Notifier: n, Metrics: m}, n, m
}

func TestProjectSync_LoadIsCacheFirst(t *testing.T) {
	api := &fakeProjectAPI{result: []projectdomain.Project{{ID: "p1"}}}
	deps, _, m := testDeps()
	st := store.NewProjectStore()
	s := NewProjectSync(api, st, deps)

	_, err := s.Load(context.Background())
	require.NoError(t, err)
	got, err := s.Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, got, 1)
	assert.Equal(t, int32(1), api.calls.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHits.WithLabelValues("projects")))

	_, err = s.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), api.calls.Load())
}

func TestProjectSync_OverlappingRefreshIsSingleFlight(t *testing.T) {
	api := &fakeProjectAPI{gate: make(chan struct{}), started: make(chan struct{}, 1)}
	deps, _, _ := testDeps()
	s := NewProjectSync(api, store.NewProjectStore(), deps)

	errCh := make(chan error, 1)
	go func() {
		_, err := s.Refresh(context.Background())
		errCh <- err
	}()
	<-api.started

	_, err := s.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrInProgress)

	close(api.gate)
	require.NoError(t, <-errCh)
	assert.Equal(t, int32(1), api.calls.Load())
}

func TestProjectSync_ErrorIsRecordedAndNotified(t *testing.T) {
	api := &fakeProjectAPI{err: apierr.New(500, "Internal Server Error", errors.New("database unavailable"))}
	deps, notices, m := testDeps()
	st := store.NewProjectStore()
	s := NewProjectSync(api, st, deps)

	_, err := s.Load(context.Background())
	require.Error(t, err)

	state := st.State()
	assert.Equal(t, "database unavailable", state.Error)
	assert.False(t, state.Loading)

	got := notices.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, notify.LevelError, got[0].Level)
	assert.Equal(t, "Failed to load projects", got[0].Title)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchFailures.WithLabelValues("projects")))
	assert.Equal(t, int32(1), api.calls.Load())
}

func TestProjectSync_AuthErrorTitle(t *testing.T) {
	api := &fakeProjectAPI{err: apierr.Auth(errors.New("no token"))}
	deps, notices, _ := testDeps()
	s := NewProjectSync(api, store.NewProjectStore(), deps)

	_, err := s.Refresh(context.Background())
	assert.True(t, apierr.IsAuth(err))
	got := notices.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, "Authentication required", got[0].Title)
}

func TestProjectSync_StaleResponseFromOtherInstanceDiscarded(t *testing.T) {
	st := store.NewProjectStore()
	deps, _, m := testDeps()

	slow := &fakeProjectAPI{
		gate:    make(chan struct{}),
		started: make(chan struct{}, 1),
		result:  []projectdomain.Project{{ID: "old"}},
	}
	fast := &fakeProjectAPI{result: []projectdomain.Project{{ID: "new"}}}

	first := NewProjectSync(slow, st, deps)
	second := NewProjectSync(fast, st, deps)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = first.Refresh(context.Background())
	}()
	<-slow.started

	_, err := second.Refresh(context.Background())
	require.NoError(t, err)
	close(slow.gate)
	<-done

	list := st.List(store.OrganizationKey)
	require.Len(t, list, 1)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StaleDiscards.WithLabelValues("projects")))
}

func TestProjectSync_Mutations(t *testing.T) {
	api := &fakeProjectAPI{}
	deps, _, _ := testDeps()
	st := store.NewProjectStore()
	s := NewProjectSync(api, st, deps)

	p, err := s.Create(context.Background(), projectdto.CreateProjectRequest{Name: "Bracket"})
	require.NoError(t, err)
	assert.Len(t, st.List(store.OrganizationKey), 1)

	name := "Bracket v2"
	_, err = s.Update(context.Background(), p.ID, projectdomain.Patch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Bracket v2", st.List(store.OrganizationKey)[0].Name)

	require.NoError(t, s.Delete(context.Background(), p.ID))
	assert.Empty(t, st.List(store.OrganizationKey))
}

type fakeItemsAPI struct {
	RFQAPI
	mu    sync.Mutex
	calls map[string]int
	items map[string][]rfqdomain.Part
	err   error

	// gates holds ListItems for a project until the channel is closed.
	gates   map[string]chan struct{}
	started chan string
	// during runs inside write calls, before the server answers.
	during func()
}

func (f *fakeItemsAPI) ListItems(ctx context.Context, projectID string) ([]rfqdomain.Part, error) {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[projectID]++
	gate := f.gates[projectID]
	f.mu.Unlock()

	if f.started != nil {
		f.started <- projectID
	}
	if gate != nil {
		<-gate
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.items[projectID], nil
}

func (f *fakeItemsAPI) CreateItem(ctx context.Context, projectID string, req rfqdto.CreateItemRequest) (*rfqdomain.Part, error) {
	if f.during != nil {
		f.during()
	}
	return &rfqdomain.Part{ID: "new", ProjectID: projectID, Name: req.Name}, nil
}

func (f *fakeItemsAPI) ListFiles(ctx context.Context, projectID string) ([]rfqdomain.File, error) {
	if f.during != nil {
		f.during()
	}
	return []rfqdomain.File{{ID: "f1", ProjectID: projectID}}, nil
}

func (f *fakeItemsAPI) DeleteItems(ctx context.Context, ids []string) (int, error) {
	return len(ids), f.err
}

func TestRFQSync_LoadAllProjectItems_ZeroProjects(t *testing.T) {
	api := &fakeItemsAPI{}
	deps, _, _ := testDeps()
	st := store.NewRFQStore()
	s := NewRFQSync(api, st, deps)

	require.NoError(t, s.LoadAllProjectItems(context.Background(), nil))
	assert.True(t, st.InitialDataLoaded())
	assert.Zero(t, st.Stats().TotalItems)
	assert.False(t, st.State().Loading)

	require.NoError(t, s.LoadAllProjectItems(context.Background(), nil))
	assert.Empty(t, api.calls)
}

func TestRFQSync_LoadAllProjectItems_Concurrent(t *testing.T) {
	api := &fakeItemsAPI{items: map[string][]rfqdomain.Part{
		"p1": {{ID: "a", ProjectID: "p1"}, {ID: "b", ProjectID: "p1"}},
		"p2": {{ID: "c", ProjectID: "p2"}},
	}}
	deps, _, _ := testDeps()
	st := store.NewRFQStore()
	s := NewRFQSync(api, st, deps)

	require.NoError(t, s.LoadAllProjectItems(context.Background(), []string{"p1", "p2", "p3"}))
	stats := st.Stats()
	assert.Equal(t, 3, stats.TotalItems)
	assert.Equal(t, map[string]int{"p1": 2, "p2": 1, "p3": 0}, stats.ItemsByProject)
	assert.Equal(t, map[string]int{"p1": 1, "p2": 1, "p3": 1}, api.calls)

	_, err := s.LoadItems(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, api.calls["p1"])
}

func TestRFQSync_LoadAllProjectItems_Failure(t *testing.T) {
	api := &fakeItemsAPI{err: errors.New("timeout")}
	deps, notices, _ := testDeps()
	st := store.NewRFQStore()
	s := NewRFQSync(api, st, deps)

	err := s.LoadAllProjectItems(context.Background(), []string{"p1"})
	require.Error(t, err)
	assert.False(t, st.InitialDataLoaded())
	assert.Contains(t, st.State().Error, "timeout")
	assert.Len(t, notices.Drain(), 1)
}

func TestRFQSync_DeleteSelected(t *testing.T) {
	api := &fakeItemsAPI{}
	deps, _, _ := testDeps()
	st := store.NewRFQStore()
	st.SetAll("p1", []rfqdomain.Part{{ID: "a", ProjectID: "p1"}, {ID: "b", ProjectID: "p1"}, {ID: "c", ProjectID: "p1"}})
	st.Toggle("a")
	st.Toggle("c")
	s := NewRFQSync(api, st, deps)

	n, err := s.DeleteSelected(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, st.SelectedIDs())
	assert.Equal(t, 1, st.Stats().TotalItems)
}

func TestRFQSync_SingleFlightIsPerProject(t *testing.T) {
	api := &fakeItemsAPI{
		items:   map[string][]rfqdomain.Part{"p2": {{ID: "c", ProjectID: "p2"}}},
		gates:   map[string]chan struct{}{"p1": make(chan struct{})},
		started: make(chan string, 4),
	}
	deps, _, _ := testDeps()
	st := store.NewRFQStore()
	s := NewRFQSync(api, st, deps)

	errCh := make(chan error, 1)
	go func() {
		_, err := s.RefreshItems(context.Background(), "p1")
		errCh <- err
	}()
	require.Equal(t, "p1", <-api.started)

	got, err := s.RefreshItems(context.Background(), "p2")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	<-api.started

	_, err = s.RefreshItems(context.Background(), "p1")
	assert.ErrorIs(t, err, ErrInProgress)

	close(api.gates["p1"])
	require.NoError(t, <-errCh)
	assert.Equal(t, 1, api.calls["p1"])
}

func TestRFQSync_ResetDropsInFlightWrites(t *testing.T) {
	deps, _, m := testDeps()
	st := store.NewRFQStore()
	api := &fakeItemsAPI{during: st.Reset}
	s := NewRFQSync(api, st, deps)

	p, err := s.CreateItem(context.Background(), "p1", rfqdto.CreateItemRequest{Name: "Bolt"})
	require.NoError(t, err)
	assert.Equal(t, "new", p.ID)
	assert.Zero(t, st.Stats().TotalItems)

	_, err = s.RefreshFiles(context.Background(), "p1")
	require.NoError(t, err)
	assert.False(t, st.HasFiles("p1"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StaleDiscards.WithLabelValues("rfq")))
	assert.Equal(t, store.InitialRFQState(), st.State())
}

func TestRFQSync_BulkLoadAfterResetIsDropped(t *testing.T) {
	api := &fakeItemsAPI{
		items:   map[string][]rfqdomain.Part{"p1": {{ID: "a", ProjectID: "p1"}}},
		gates:   map[string]chan struct{}{"p1": make(chan struct{})},
		started: make(chan string, 1),
	}
	deps, _, _ := testDeps()
	st := store.NewRFQStore()
	s := NewRFQSync(api, st, deps)

	errCh := make(chan error, 1)
	go func() { errCh <- s.RefreshAllProjectItems(context.Background(), []string{"p1"}) }()
	<-api.started
	st.Reset()
	close(api.gates["p1"])
	require.NoError(t, <-errCh)

	assert.False(t, st.InitialDataLoaded())
	assert.Zero(t, st.Stats().TotalItems)
}

type fakeUserAPI struct {
	calls atomic.Int32
	user  authdomain.User
}

func (f *fakeUserAPI) SyncUser(ctx context.Context) (*authdomain.User, error) {
	f.calls.Add(1)
	u := f.user
	return &u, nil
}

func TestUserSync_ReconcileOncePerSession(t *testing.T) {
	api := &fakeUserAPI{user: authdomain.User{ID: "u1", OrgID: "org-a"}}
	deps, _, _ := testDeps()
	st := store.NewUserStore()
	s := NewUserSync(api, st, deps)
	var orgs []string
	s.OnOrg = func(org string) { orgs = append(orgs, org) }

	u, err := s.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	_, err = s.Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(1), api.calls.Load())
	assert.Equal(t, []string{"org-a"}, orgs)
}

func TestUserSync_UserSurvivesTenantReset(t *testing.T) {
	api := &fakeUserAPI{user: authdomain.User{ID: "u1", OrgID: "org-b"}}
	deps, _, _ := testDeps()
	st := store.NewUserStore()
	s := NewUserSync(api, st, deps)
	s.OnOrg = func(string) { st.Reset() }

	_, err := s.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "org-b", st.OrgID())
	assert.True(t, st.Reconciled())
}
