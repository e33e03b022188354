package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/ipede/user-manager-service/internal/domain"
	httperrors "github.com/ipede/user-manager-service/internal/interfaces/http/errors"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) ListUsers(ctx context.Context, query domain.UserQuery) ([]*domain.UserView, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.UserView), args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, id domain.ULID) (*domain.UserView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserView), args.Error(1)
}

func (m *MockUserService) CreateUser(ctx context.Context, input domain.UserInput) (*domain.UserInput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserInput), args.Error(1)
}

func (m *MockUserService) UpdateUser(ctx context.Context, id domain.ULID, input domain.UserInput) (*domain.UserView, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserView), args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, id domain.ULID) (*domain.UserView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserView), args.Error(1)
}

func (m *MockUserService) AddRoles(ctx context.Context, userID domain.ULID, roleIDs []int) error {
	args := m.Called(ctx, userID, roleIDs)
	return args.Error(0)
}

func (m *MockUserService) RemoveRoles(ctx context.Context, userID domain.ULID, roleIDs []int) error {
	args := m.Called(ctx, userID, roleIDs)
	return args.Error(0)
}

func intPtr(v int) *int {
	return &v
}

func userRouter(service domain.UserService) *chi.Mux {
	logger, _ := zap.NewProduction()
	handler := NewUserHandler(service, logger)

	r := chi.NewRouter()
	r.Get("/user", handler.ListUsersHandler)
	r.Post("/user", handler.CreateUserHandler)
	r.Post("/user/set-roles", handler.AddRolesHandler)
	r.Delete("/user/delete-roles", handler.RemoveRolesHandler)
	r.Get("/user/{id}", handler.GetUserHandler)
	r.Put("/user/{id}", handler.UpdateUserHandler)
	r.Delete("/user/{id}", handler.DeleteUserHandler)
	return r
}

func TestListUsersHandler(t *testing.T) {
	t.Run("successful list applies page defaults", func(t *testing.T) {
		service := new(MockUserService)
		router := userRouter(service)

		views := []*domain.UserView{
			{ID: ulid.Make(), Name: "Alice", Age: intPtr(30), Email: "alice@example.com"},
		}
		service.On("ListUsers", mock.Anything, domain.UserQuery{PageNumber: 1, PageSize: 10}).
			Return(views, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var body []json.RawMessage
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Len(t, body, 1)
	})

	t.Run("filters reach the service", func(t *testing.T) {
		service := new(MockUserService)
		router := userRouter(service)

		expected := domain.UserQuery{
			Name: "Alice", RoleName: "Admin", OrderBy: "age",
			PageNumber: 2, PageSize: 5,
		}
		service.On("ListUsers", mock.Anything, expected).Return([]*domain.UserView{}, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
			"/user?Name=Alice&RoleName=Admin&OrderBy=age&PageNumber=2&PageSize=5", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		service.AssertExpectations(t)
	})

	t.Run("invalid page size is rejected before the service", func(t *testing.T) {
		service := new(MockUserService)
		router := userRouter(service)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user?PageSize=51", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		service.AssertNotCalled(t, "ListUsers")
	})

	t.Run("inverted age range maps to 422", func(t *testing.T) {
		service := new(MockUserService)
		router := userRouter(service)

		service.On("ListUsers", mock.Anything, mock.Anything).Return(nil, domain.ErrInvalidAgeRange)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user?AgeFrom=40&AgeTo=30", nil))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestGetUserHandler(t *testing.T) {
	t.Run("successful get", func(t *testing.T) {
		service := new(MockUserService)
		router := userRouter(service)

		id := ulid.Make()
		view := &domain.UserView{ID: id, Name: "Alice", Email: "alice@example.com",
			Roles: []domain.Role{{ID: 1, Name: "User"}}}
		service.On("GetUser", mock.Anything, id).Return(view, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user/"+id.String(), nil))

		assert.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, id.String(), body["id"])
	})

	t.Run("malformed id", func(t *testing.T) {
		service := new(MockUserService)
		router := userRouter(service)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user/not-a-ulid", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		service.AssertNotCalled(t, "GetUser")
	})

	t.Run("unknown user maps to 404", func(t *testing.T) {
		service := new(MockUserService)
		router := userRouter(service)

		id := ulid.Make()
		service.On("GetUser", mock.Anything, id).Return(nil, domain.ErrUserNotFound)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user/"+id.String(), nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)

		var body httperrors.ErrorResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, http.StatusNotFound, body.StatusCode)
		assert.Equal(t, domain.ErrUserNotFound.Error(), body.Message)
	})
}

func TestCreateUserHandler(t *testing.T) {
	payload := `{"name":"Alice","age":30,"email":"alice@example.com","roles":[1,2]}`

	t.Run("successful create echoes the payload", func(t *testing.T) {
		service := new(MockUserService)
		router := userRouter(service)

		input := domain.UserInput{Name: "Alice", Age: intPtr(30), Email: "alice@example.com", RoleIDs: []int{1, 2}}
		service.On("CreateUser", mock.Anything, input).Return(&input, nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/user", strings.NewReader(payload))
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Alice", body["name"])
		assert.NotContains(t, body, "id")
	})

	t.Run("invalid body", func(t *testing.T) {
		service := new(MockUserService)
		router := userRouter(service)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/user", strings.NewReader("{"))
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		service.AssertNotCalled(t, "CreateUser")
	})

	t.Run("validation failure", func(t *testing.T) {
		service := new(MockUserService)
		router := userRouter(service)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/user",
			strings.NewReader(`{"name":"A","age":30,"email":"alice@example.com","roles":[1]}`))
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		service.AssertNotCalled(t, "CreateUser")
	})

	t.Run("taken email maps to 400", func(t *testing.T) {
		service := new(MockUserService)
		router := userRouter(service)

		service.On("CreateUser", mock.Anything, mock.Anything).Return(nil, domain.ErrUserExists)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/user", strings.NewReader(payload))
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateUserHandler(t *testing.T) {
	payload := `{"name":"Bob","age":40,"email":"bob@example.com","roles":[2]}`

	t.Run("successful update returns the view", func(t *testing.T) {
		service := new(MockUserService)
		router := userRouter(service)

		id := ulid.Make()
		input := domain.UserInput{Name: "Bob", Age: intPtr(40), Email: "bob@example.com", RoleIDs: []int{2}}
		view := &domain.UserView{ID: id, Name: "Bob", Age: intPtr(40), Email: "bob@example.com",
			Roles: []domain.Role{{ID: 2, Name: "Admin"}}}
		service.On("UpdateUser", mock.Anything, id, input).Return(view, nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/user/"+id.String(), strings.NewReader(payload))
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Bob", body["name"])
		assert.Equal(t, id.String(), body["id"])
	})

	t.Run("unknown user maps to 404", func(t *testing.T) {
		service := new(MockUserService)
		router := userRouter(service)

		id := ulid.Make()
		service.On("UpdateUser", mock.Anything, id, mock.Anything).Return(nil, domain.ErrUserNotFound)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/user/"+id.String(), strings.NewReader(payload))
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDeleteUserHandler(t *testing.T) {
	t.Run("successful delete returns the removed user", func(t *testing.T) {
		service := new(MockUserService)
		router := userRouter(service)

		id := ulid.Make()
		view := &domain.UserView{ID: id, Name: "Alice", Email: "alice@example.com"}
		service.On("DeleteUser", mock.Anything, id).Return(view, nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/user/"+id.String(), nil))

		assert.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Alice", body["name"])
	})
}

func TestAddRolesHandler(t *testing.T) {
	t.Run("repeated form keys", func(t *testing.T) {
		service := new(MockUserService)
		router := userRouter(service)

		id := ulid.Make()
		service.On("AddRoles", mock.Anything, id, []int{1, 2}).Return(nil)

		form := url.Values{}
		form.Set("UserId", id.String())
		form.Add("RoleIds", "1")
		form.Add("RoleIds", "2")

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/user/set-roles", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		service.AssertExpectations(t)
	})

	t.Run("comma-separated values", func(t *testing.T) {
		service := new(MockUserService)
		router := userRouter(service)

		id := ulid.Make()
		service.On("AddRoles", mock.Anything, id, []int{1, 2, 3}).Return(nil)

		form := url.Values{}
		form.Set("UserId", id.String())
		form.Set("RoleIds", "1, 2,3")

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/user/set-roles", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		service.AssertExpectations(t)
	})

	t.Run("non-numeric role id", func(t *testing.T) {
		service := new(MockUserService)
		router := userRouter(service)

		form := url.Values{}
		form.Set("UserId", ulid.Make().String())
		form.Set("RoleIds", "one")

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/user/set-roles", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		service.AssertNotCalled(t, "AddRoles")
	})

	t.Run("duplicate roles map to 400", func(t *testing.T) {
		service := new(MockUserService)
		router := userRouter(service)

		id := ulid.Make()
		service.On("AddRoles", mock.Anything, id, []int{5, 5}).Return(domain.ErrDuplicateRoles)

		form := url.Values{}
		form.Set("UserId", id.String())
		form.Set("RoleIds", "5,5")

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/user/set-roles", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRemoveRolesHandler(t *testing.T) {
	t.Run("successful remove", func(t *testing.T) {
		service := new(MockUserService)
		router := userRouter(service)

		id := ulid.Make()
		service.On("RemoveRoles", mock.Anything, id, []int{2}).Return(nil)

		form := url.Values{}
		form.Set("UserId", id.String())
		form.Set("RoleIds", "2")

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/user/delete-roles", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		service.AssertExpectations(t)
	})

	t.Run("no matching roles map to 400", func(t *testing.T) {
		service := new(MockUserService)
		router := userRouter(service)

		id := ulid.Make()
		service.On("RemoveRoles", mock.Anything, id, []int{3}).Return(domain.ErrNoMatchingRoles)

		form := url.Values{}
		form.Set("UserId", id.String())
		form.Set("RoleIds", "3")

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/user/delete-roles", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
