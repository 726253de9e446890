package handlers

import (
	"context"
	"net/http"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/gearguard/gearguard/internal/db"
	"github.com/gearguard/gearguard/internal/events"
	"github.com/gearguard/gearguard/internal/middleware"
	"github.com/gearguard/gearguard/internal/models"
)

// MockRequestCollection is a mock implementation of RequestCollection
type MockRequestCollection struct {
	mock.Mock
}

func (m *MockRequestCollection) InsertRequest(ctx context.Context, request models.MaintenanceRequest) (string, error) {
	args := m.Called(ctx, request)
	return args.String(0), args.Error(1)
}

func (m *MockRequestCollection) FindRequestByID(ctx context.Context, id string) (*models.MaintenanceRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MaintenanceRequest), args.Error(1)
}

func (m *MockRequestCollection) FindRequests(ctx context.Context, filter bson.M) ([]models.MaintenanceRequest, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MaintenanceRequest), args.Error(1)
}

func (m *MockRequestCollection) UpdateRequestFields(ctx context.Context, id string, fields bson.M) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockRequestCollection) DeleteRequest(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAssetCollection is a mock implementation of AssetCollection
type MockAssetCollection struct {
	mock.Mock
}

func (m *MockAssetCollection) InsertAsset(ctx context.Context, asset models.Asset) (string, error) {
	args := m.Called(ctx, asset)
	return args.String(0), args.Error(1)
}

func (m *MockAssetCollection) FindAssetByID(ctx context.Context, id string) (*models.Asset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Asset), args.Error(1)
}

func (m *MockAssetCollection) FindAssets(ctx context.Context, filter bson.M) ([]models.Asset, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Asset), args.Error(1)
}

func (m *MockAssetCollection) UpdateAssetFields(ctx context.Context, id string, fields bson.M) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockAssetCollection) DeleteAsset(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTeamCollection is a mock implementation of TeamCollection
type MockTeamCollection struct {
	mock.Mock
}

func (m *MockTeamCollection) InsertTeam(ctx context.Context, team models.Team) (string, error) {
	args := m.Called(ctx, team)
	return args.String(0), args.Error(1)
}

func (m *MockTeamCollection) FindTeamByID(ctx context.Context, id string) (*models.Team, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamCollection) FindTeams(ctx context.Context, filter bson.M) ([]models.Team, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Team), args.Error(1)
}

func (m *MockTeamCollection) UpdateTeamFields(ctx context.Context, id string, fields bson.M) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockTeamCollection) DeleteTeam(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockUserCollection is a mock implementation of UserCollection
type MockUserCollection struct {
	mock.Mock
}

func (m *MockUserCollection) InsertUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *MockUserCollection) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUsers(ctx context.Context, filter bson.M) ([]models.User, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserCollection) UpdateUserFields(ctx context.Context, id string, fields bson.M) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockUserCollection) DeleteUser(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserCollection) UpdateLastLogin(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCounterCollection is a mock implementation of CounterCollection
type MockCounterCollection struct {
	mock.Mock
}

func (m *MockCounterCollection) Next(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

// testCollections bundles fresh mocks into a db.Collections for handler tests.
type testCollections struct {
	requests *MockRequestCollection
	assets   *MockAssetCollection
	teams    *MockTeamCollection
	users    *MockUserCollection
	counters *MockCounterCollection
}

func newTestCollections() (*testCollections, *db.Collections) {
	tc := &testCollections{
		requests: new(MockRequestCollection),
		assets:   new(MockAssetCollection),
		teams:    new(MockTeamCollection),
		users:    new(MockUserCollection),
		counters: new(MockCounterCollection),
	}
	return tc, &db.Collections{
		Requests: tc.requests,
		Assets:   tc.assets,
		Teams:    tc.teams,
		Users:    tc.users,
		Counters: tc.counters,
	}
}

// withClaims attaches caller claims the way the auth middleware would.
func withClaims(r *http.Request, claims *models.Claims) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UserContextKey, claims)
	return r.WithContext(ctx)
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	events []events.RequestEvent
}

func (p *recordingPublisher) PublishRequestEvent(event events.RequestEvent) {
	p.events = append(p.events, event)
}
