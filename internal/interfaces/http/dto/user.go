package dto

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/ipede/user-manager-service/internal/domain"
)

var lettersAndSpaces = regexp.MustCompile(`^[a-zA-Z\s]*$`)

// RoleResponse is one resolved role of a user.
type RoleResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// UserResponse is the read-shaped user representation.
type UserResponse struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Age   *int           `json:"age,omitempty"`
	Email string         `json:"email"`
	Roles []RoleResponse `json:"roles"`
}

func NewUserResponse(view *domain.UserView) *UserResponse {
	roles := make([]RoleResponse, len(view.Roles))
	for i, role := range view.Roles {
		roles[i] = RoleResponse{ID: role.ID, Name: role.Name}
	}
	return &UserResponse{
		ID:    view.ID.String(),
		Name:  view.Name,
		Age:   view.Age,
		Email: view.Email,
		Roles: roles,
	}
}

// UserCreateRequest is the payload of user creation and update.
type UserCreateRequest struct {
	Name  string `json:"name"`
	Age   *int   `json:"age"`
	Email string `json:"email"`
	Roles []int  `json:"roles"`
}

// Validate checks the payload before it reaches the core.
func (r UserCreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(2, 50)),
		validation.Field(&r.Age, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Roles, validation.Required, validation.By(positiveRoleIDs)),
	)
}

// Input converts the payload for the core.
func (r UserCreateRequest) Input() domain.UserInput {
	return domain.UserInput{
		Name:    r.Name,
		Age:     r.Age,
		Email:   r.Email,
		RoleIDs: r.Roles,
	}
}

// NewUserEcho maps a created user's input back to the response shape. The
// creation response echoes the payload; the generated id is not included.
func NewUserEcho(input *domain.UserInput) *UserCreateRequest {
	return &UserCreateRequest{
		Name:  input.Name,
		Age:   input.Age,
		Email: input.Email,
		Roles: input.RoleIDs,
	}
}

func positiveRoleIDs(value interface{}) error {
	ids, _ := value.([]int)
	for _, id := range ids {
		if id <= 0 {
			return errors.New("all role IDs must be positive integers")
		}
	}
	return nil
}

// UserQueryRequest carries the listing filters, sort key and page.
type UserQueryRequest struct {
	Name       string
	AgeFrom    *int
	AgeTo      *int
	Email      string
	RoleName   string
	OrderBy    string
	PageNumber int
	PageSize   int
}

// ParseUserQuery reads a UserQueryRequest from the query string, applying
// the page defaults. Non-numeric values in numeric parameters fail with a
// validation error.
func ParseUserQuery(values url.Values) (*UserQueryRequest, error) {
	req := &UserQueryRequest{
		Name:       values.Get("Name"),
		Email:      values.Get("Email"),
		RoleName:   values.Get("RoleName"),
		OrderBy:    values.Get("OrderBy"),
		PageNumber: 1,
		PageSize:   domain.DefaultPageSize,
	}

	var err error
	if req.AgeFrom, err = optionalInt(values, "AgeFrom"); err != nil {
		return nil, err
	}
	if req.AgeTo, err = optionalInt(values, "AgeTo"); err != nil {
		return nil, err
	}
	if v, err := optionalInt(values, "PageNumber"); err != nil {
		return nil, err
	} else if v != nil {
		req.PageNumber = *v
	}
	if v, err := optionalInt(values, "PageSize"); err != nil {
		return nil, err
	} else if v != nil {
		req.PageSize = *v
	}

	return req, nil
}

func optionalInt(values url.Values, key string) (*int, error) {
	raw := values.Get(key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("%s must be an integer", key))
	}
	return &n, nil
}

// Validate checks the query parameters before they reach the core.
func (r UserQueryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PageNumber, validation.Required, validation.Min(1)),
		validation.Field(&r.PageSize, validation.Required, validation.Min(1), validation.Max(domain.MaxPageSize)),
		validation.Field(&r.OrderBy, validation.By(oneOfFold("name", "age", "email", "roleName"))),
		validation.Field(&r.Name, validation.Match(lettersAndSpaces).Error("can only contain letters and spaces")),
		validation.Field(&r.AgeFrom, validation.Min(0)),
		validation.Field(&r.AgeTo, validation.Min(0)),
		validation.Field(&r.Email, is.Email),
		validation.Field(&r.RoleName,
			validation.Match(lettersAndSpaces).Error("can only contain letters and spaces"),
			validation.By(oneOfFold("user", "admin", "support", "superAdmin"))),
	)
}

// Query converts the request for the core.
func (r UserQueryRequest) Query() domain.UserQuery {
	return domain.UserQuery{
		Name:       r.Name,
		AgeFrom:    r.AgeFrom,
		AgeTo:      r.AgeTo,
		Email:      r.Email,
		RoleName:   r.RoleName,
		OrderBy:    r.OrderBy,
		PageNumber: r.PageNumber,
		PageSize:   r.PageSize,
	}
}

// oneOfFold accepts the empty string or any of allowed, compared
// case-insensitively.
func oneOfFold(allowed ...string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		for _, a := range allowed {
			if strings.EqualFold(s, a) {
				return nil
			}
		}
		return fmt.Errorf("must be one of '%s'", strings.Join(allowed, "', '"))
	}
}
