package dto

import (
	"net/url"
	"testing"

	"github.com/ipede/user-manager-service/internal/domain"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int {
	return &v
}

func validCreateRequest() UserCreateRequest {
	return UserCreateRequest{
		Name:  "Alice",
		Age:   intPtr(30),
		Email: "alice@example.com",
		Roles: []int{1, 2},
	}
}

func TestUserCreateRequest_Validate(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		assert.NoError(t, validCreateRequest().Validate())
	})

	t.Run("name too short", func(t *testing.T) {
		req := validCreateRequest()
		req.Name = "A"
		assert.Error(t, req.Validate())
	})

	t.Run("name required", func(t *testing.T) {
		req := validCreateRequest()
		req.Name = ""
		assert.Error(t, req.Validate())
	})

	t.Run("age required", func(t *testing.T) {
		req := validCreateRequest()
		req.Age = nil
		assert.Error(t, req.Validate())
	})

	t.Run("age out of range", func(t *testing.T) {
		req := validCreateRequest()
		req.Age = intPtr(101)
		assert.Error(t, req.Validate())

		req.Age = intPtr(0)
		assert.Error(t, req.Validate())
	})

	t.Run("invalid email", func(t *testing.T) {
		req := validCreateRequest()
		req.Email = "not-an-email"
		assert.Error(t, req.Validate())
	})

	t.Run("roles required", func(t *testing.T) {
		req := validCreateRequest()
		req.Roles = nil
		assert.Error(t, req.Validate())
	})

	t.Run("non-positive role id", func(t *testing.T) {
		req := validCreateRequest()
		req.Roles = []int{1, 0}
		assert.Error(t, req.Validate())
	})
}

func TestUserCreateRequest_Input(t *testing.T) {
	req := validCreateRequest()
	input := req.Input()

	assert.Equal(t, domain.UserInput{
		Name:    "Alice",
		Age:     intPtr(30),
		Email:   "alice@example.com",
		RoleIDs: []int{1, 2},
	}, input)
}

func TestParseUserQuery(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		req, err := ParseUserQuery(url.Values{})
		assert.NoError(t, err)
		assert.Equal(t, 1, req.PageNumber)
		assert.Equal(t, domain.DefaultPageSize, req.PageSize)
		assert.Nil(t, req.AgeFrom)
		assert.Nil(t, req.AgeTo)
	})

	t.Run("all parameters", func(t *testing.T) {
		values := url.Values{}
		values.Set("Name", "Alice")
		values.Set("AgeFrom", "18")
		values.Set("AgeTo", "65")
		values.Set("Email", "alice@example.com")
		values.Set("RoleName", "Admin")
		values.Set("OrderBy", "name")
		values.Set("PageNumber", "2")
		values.Set("PageSize", "25")

		req, err := ParseUserQuery(values)
		assert.NoError(t, err)
		assert.Equal(t, "Alice", req.Name)
		assert.Equal(t, 18, *req.AgeFrom)
		assert.Equal(t, 65, *req.AgeTo)
		assert.Equal(t, "Admin", req.RoleName)
		assert.Equal(t, 2, req.PageNumber)
		assert.Equal(t, 25, req.PageSize)
	})

	t.Run("non-numeric age", func(t *testing.T) {
		values := url.Values{}
		values.Set("AgeFrom", "young")

		_, err := ParseUserQuery(values)
		assert.Error(t, err)
		assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
	})
}

func TestUserQueryRequest_Validate(t *testing.T) {
	valid := func() UserQueryRequest {
		return UserQueryRequest{PageNumber: 1, PageSize: 10}
	}

	t.Run("valid query", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("page number below one", func(t *testing.T) {
		req := valid()
		req.PageNumber = 0
		assert.Error(t, req.Validate())
	})

	t.Run("page size above the limit", func(t *testing.T) {
		req := valid()
		req.PageSize = domain.MaxPageSize + 1
		assert.Error(t, req.Validate())
	})

	t.Run("sort key is case-insensitive", func(t *testing.T) {
		req := valid()
		req.OrderBy = "ROLENAME"
		assert.NoError(t, req.Validate())
	})

	t.Run("unknown sort key", func(t *testing.T) {
		req := valid()
		req.OrderBy = "phone"
		assert.Error(t, req.Validate())
	})

	t.Run("name with digits", func(t *testing.T) {
		req := valid()
		req.Name = "Alice3"
		assert.Error(t, req.Validate())
	})

	t.Run("negative age bound", func(t *testing.T) {
		req := valid()
		req.AgeFrom = intPtr(-1)
		assert.Error(t, req.Validate())
	})

	t.Run("role name outside the catalog", func(t *testing.T) {
		req := valid()
		req.RoleName = "Wizard"
		assert.Error(t, req.Validate())
	})

	t.Run("catalog role names pass in any case", func(t *testing.T) {
		for _, name := range []string{"user", "Admin", "SUPPORT", "superadmin"} {
			req := valid()
			req.RoleName = name
			assert.NoError(t, req.Validate(), name)
		}
	})
}

func TestNewUserResponse(t *testing.T) {
	id := ulid.Make()
	view := &domain.UserView{
		ID:    id,
		Name:  "Alice",
		Age:   intPtr(30),
		Email: "alice@example.com",
		Roles: []domain.Role{{ID: 1, Name: "User"}},
	}

	resp := NewUserResponse(view)
	assert.Equal(t, id.String(), resp.ID)
	assert.Equal(t, "Alice", resp.Name)
	assert.Equal(t, []RoleResponse{{ID: 1, Name: "User"}}, resp.Roles)
}
