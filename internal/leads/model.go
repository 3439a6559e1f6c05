package leads

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Lead is one stored customer enquiry from a project page.
type Lead struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	ProjectID string    `json:"project_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCustomerRequest is the body of POST /customers.
type CreateCustomerRequest struct {
	Name      string `json:"name" validate:"required,max=200"`
	Email     string `json:"email" validate:"required,max=254"`
	Phone     string `json:"phone" validate:"max=32"`
	ProjectID string `json:"project_id" validate:"max=128"`
}

// ListFilter narrows the operator listing.
type ListFilter struct {
	ProjectID string
	Limit     int
	Offset    int
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Normalize clamps paging values into range.
func (f ListFilter) Normalize() ListFilter {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	f.ProjectID = strings.TrimSpace(f.ProjectID)
	return f
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the request. Missing name or email maps to
// ErrMissingNameEmail; any other rule maps to ErrInvalidField.
func (r *CreateCustomerRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return ErrMissingNameEmail
		}
	}
	fe := verrs[0]
	return &FieldError{Field: strings.ToLower(fe.Field()), Rule: fe.Tag()}
}
