package service

import (
	"context"
	"sort"
	"testing"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// --- In-memory fakes ---

type fakeRequestRepo struct {
	requests map[uuid.UUID]*model.ServiceRequest
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[uuid.UUID]*model.ServiceRequest)}
}

func (f *fakeRequestRepo) Create(_ context.Context, req *model.ServiceRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	cp := *req
	f.requests[req.ID] = &cp
	return nil
}

func (f *fakeRequestRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ServiceRequest, error) {
	req, ok := f.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *req
	return &cp, nil
}

func (f *fakeRequestRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeRequestRepo) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeRequestRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]model.ServiceRequest, error) {
	var out []model.ServiceRequest
	for _, r := range f.requests {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.After(out[j].RequestedAt) })
	return out, nil
}

func (f *fakeRequestRepo) ListByStatus(_ context.Context, status string) ([]model.ServiceRequest, error) {
	var out []model.ServiceRequest
	for _, r := range f.requests {
		if r.Status == status {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.Before(out[j].RequestedAt) })
	return out, nil
}

func (f *fakeRequestRepo) Update(_ context.Context, req *model.ServiceRequest) error {
	if _, ok := f.requests[req.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *req
	f.requests[req.ID] = &cp
	return nil
}

type fakeTimelineRepo struct {
	entries []model.TimelineEntry
}

func (f *fakeTimelineRepo) Create(_ context.Context, entry *model.TimelineEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeTimelineRepo) ListByRequest(_ context.Context, requestID uuid.UUID) ([]model.TimelineEntry, error) {
	var out []model.TimelineEntry
	for _, e := range f.entries {
		if e.ServiceRequestID == requestID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	f := &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) List(_ context.Context, _, _ int) ([]model.User, int64, error) {
	var out []model.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.users, id)
	return nil
}

type fakeServiceRepo struct {
	services map[uuid.UUID]*model.Service
}

func newFakeServiceRepo(services ...*model.Service) *fakeServiceRepo {
	f := &fakeServiceRepo{services: make(map[uuid.UUID]*model.Service)}
	for _, s := range services {
		f.services[s.ID] = s
	}
	return f
}

func (f *fakeServiceRepo) Create(_ context.Context, svc *model.Service) error {
	if svc.ID == uuid.Nil {
		svc.ID = uuid.New()
	}
	f.services[svc.ID] = svc
	return nil
}

func (f *fakeServiceRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Service, error) {
	s, ok := f.services[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (f *fakeServiceRepo) GetByName(_ context.Context, name string) (*model.Service, error) {
	for _, s := range f.services {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeServiceRepo) List(_ context.Context) ([]model.Service, error) {
	var out []model.Service
	for _, s := range f.services {
		out = append(out, *s)
	}
	return out, nil
}

// passthroughTx runs the callback directly; the fakes mutate shared maps so
// there is nothing to commit or roll back.
type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// --- Fixtures ---

type requestServiceFixture struct {
	svc      RequestService
	requests *fakeRequestRepo
	timeline *fakeTimelineRepo
	customer *model.User
	admin    *model.User
	catalog  *model.Service
}

func newRequestServiceFixture(t *testing.T) *requestServiceFixture {
	t.Helper()

	customer := &model.User{ID: uuid.New(), FullName: "Dana Customer", Email: "dana@example.com", Role: model.RoleCustomer, Active: true}
	admin := &model.User{ID: uuid.New(), FullName: "Alex Admin", Email: "alex@example.com", Role: model.RoleSubAdmin, Active: true}
	catalog := &model.Service{ID: uuid.New(), Name: "Software Development", Category: "engineering"}

	requests := newFakeRequestRepo()
	timeline := &fakeTimelineRepo{}

	svc := NewRequestService(
		requests,
		timeline,
		newFakeUserRepo(customer, admin),
		newFakeServiceRepo(catalog),
		passthroughTx{},
	)

	return &requestServiceFixture{
		svc:      svc,
		requests: requests,
		timeline: timeline,
		customer: customer,
		admin:    admin,
		catalog:  catalog,
	}
}

func (f *requestServiceFixture) createRequest(t *testing.T) ServiceRequestResponse {
	t.Helper()
	resp, err := f.svc.CreateRequest(context.Background(), f.customer.ID, CreateRequestDTO{
		ServiceID: f.catalog.ID.String(),
		Details:   "Need a booking platform",
	})
	require.NoError(t, err)
	return resp
}

// --- Tests ---

func TestCreateRequest_StartsPendingWithRequestedEntry(t *testing.T) {
	f := newRequestServiceFixture(t)

	resp := f.createRequest(t)

	require.Equal(t, model.RequestPending, resp.Status)
	require.Equal(t, f.customer.ID.String(), resp.UserID)
	require.Equal(t, f.catalog.ID.String(), resp.ServiceID)
	require.Equal(t, "Software Development", resp.ServiceName)
	require.Nil(t, resp.ApprovedByID)
	require.Nil(t, resp.ApprovedAt)

	require.Len(t, f.timeline.entries, 1)
	entry := f.timeline.entries[0]
	require.Equal(t, model.EventRequested, entry.Event)
	require.Equal(t, resp.ID, entry.ServiceRequestID.String())
	require.Equal(t, "User requested service: Software Development", entry.Details)
}

func TestCreateRequest_MalformedServiceID(t *testing.T) {
	f := newRequestServiceFixture(t)

	_, err := f.svc.CreateRequest(context.Background(), f.customer.ID, CreateRequestDTO{
		ServiceID: "not-a-uuid",
	})

	require.ErrorIs(t, err, ErrInvalid)
	require.Empty(t, f.requests.requests)
	require.Empty(t, f.timeline.entries)
}

func TestCreateRequest_UnknownServiceLeavesNoState(t *testing.T) {
	f := newRequestServiceFixture(t)

	_, err := f.svc.CreateRequest(context.Background(), f.customer.ID, CreateRequestDTO{
		ServiceID: uuid.New().String(),
	})

	require.ErrorIs(t, err, ErrNotFound)
	require.Empty(t, f.requests.requests)
	require.Empty(t, f.timeline.entries)
}

func TestCreateRequest_UnknownUser(t *testing.T) {
	f := newRequestServiceFixture(t)

	_, err := f.svc.CreateRequest(context.Background(), uuid.New(), CreateRequestDTO{
		ServiceID: f.catalog.ID.String(),
	})

	require.ErrorIs(t, err, ErrNotFound)
	require.Empty(t, f.timeline.entries)
}

func TestDecide_ApproveSetsApproverAndAppendsEntry(t *testing.T) {
	f := newRequestServiceFixture(t)
	created := f.createRequest(t)
	requestID := uuid.MustParse(created.ID)

	resp, err := f.svc.Decide(context.Background(), requestID, f.admin.ID, true)
	require.NoError(t, err)

	require.Equal(t, model.RequestApproved, resp.Status)
	require.NotNil(t, resp.ApprovedByID)
	require.Equal(t, f.admin.ID.String(), *resp.ApprovedByID)
	require.NotNil(t, resp.ApprovedAt)

	entries, err := f.timeline.ListByRequest(context.Background(), requestID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, model.EventApproved, entries[1].Event)
	require.Equal(t, "Approved by Alex Admin", entries[1].Details)
}

func TestDecide_RejectSetsStatusAndEntry(t *testing.T) {
	f := newRequestServiceFixture(t)
	created := f.createRequest(t)
	requestID := uuid.MustParse(created.ID)

	resp, err := f.svc.Decide(context.Background(), requestID, f.admin.ID, false)
	require.NoError(t, err)

	require.Equal(t, model.RequestRejected, resp.Status)

	entries, err := f.timeline.ListByRequest(context.Background(), requestID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, model.EventRejected, entries[1].Event)
	require.Equal(t, "Rejected by Alex Admin", entries[1].Details)
}

func TestDecide_SecondDecisionConflicts(t *testing.T) {
	f := newRequestServiceFixture(t)
	created := f.createRequest(t)
	requestID := uuid.MustParse(created.ID)

	_, err := f.svc.Decide(context.Background(), requestID, f.admin.ID, true)
	require.NoError(t, err)

	_, err = f.svc.Decide(context.Background(), requestID, f.admin.ID, false)
	require.ErrorIs(t, err, ErrConflict)

	// the losing decision must not have touched the record or the timeline
	stored, findErr := f.requests.FindByID(context.Background(), requestID)
	require.NoError(t, findErr)
	require.Equal(t, model.RequestApproved, stored.Status)

	entries, listErr := f.timeline.ListByRequest(context.Background(), requestID)
	require.NoError(t, listErr)
	require.Len(t, entries, 2)
}

func TestDecide_UnknownRequest(t *testing.T) {
	f := newRequestServiceFixture(t)

	_, err := f.svc.Decide(context.Background(), uuid.New(), f.admin.ID, true)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTimeline_AscendingWithRequestedFirst(t *testing.T) {
	f := newRequestServiceFixture(t)
	created := f.createRequest(t)
	requestID := uuid.MustParse(created.ID)

	_, err := f.svc.Decide(context.Background(), requestID, f.admin.ID, true)
	require.NoError(t, err)

	entries, err := f.svc.Timeline(context.Background(), requestID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, model.EventRequested, entries[0].Event)
	require.Equal(t, model.EventApproved, entries[1].Event)
	require.LessOrEqual(t, entries[0].Timestamp, entries[1].Timestamp)
}

func TestTimeline_UnknownRequest(t *testing.T) {
	f := newRequestServiceFixture(t)

	_, err := f.svc.Timeline(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPendingRequests_ExcludesDecided(t *testing.T) {
	f := newRequestServiceFixture(t)

	first := f.createRequest(t)
	second := f.createRequest(t)

	_, err := f.svc.Decide(context.Background(), uuid.MustParse(first.ID), f.admin.ID, true)
	require.NoError(t, err)

	pending, err := f.svc.PendingRequests(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, second.ID, pending[0].ID)
}

func TestRequestsForUser_OnlyOwnRequests(t *testing.T) {
	f := newRequestServiceFixture(t)
	f.createRequest(t)

	mine, err := f.svc.RequestsForUser(context.Background(), f.customer.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	theirs, err := f.svc.RequestsForUser(context.Background(), f.admin.ID)
	require.NoError(t, err)
	require.Empty(t, theirs)
}
