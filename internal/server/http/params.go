package httpserver

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/helixir/research-metadata-api/internal/domain"
)

// Limits bounds the numeric query parameters.
type Limits struct {
	DefaultLimit int
	MaxLimit     int
	DefaultTop   int
	MaxTop       int
}

// DefaultLimits returns the bounds of the public API.
func DefaultLimits() Limits {
	return Limits{
		DefaultLimit: 20,
		MaxLimit:     50,
		DefaultTop:   10,
		MaxTop:       50,
	}
}

// paramValidator checks parsed query parameters against tag rules.
type paramValidator struct {
	validate *validator.Validate
	limits   Limits
}

func newParamValidator(limits Limits) *paramValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// notblank rejects whitespace-only strings, which "required" accepts.
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return &paramValidator{validate: v, limits: limits}
}

// collectionParams are the parameters shared by search and trends.
type collectionParams struct {
	Query    string
	FromYear *int
	ToYear   *int
	Limit    int
	Top      int
}

// Years returns the year bounds; zero bounds are unset.
func (p collectionParams) Years() domain.YearRange {
	var r domain.YearRange
	if p.FromYear != nil {
		r.From = *p.FromYear
	}
	if p.ToYear != nil {
		r.To = *p.ToYear
	}
	return r
}

// parseCollection reads query, from_year, to_year and limit, plus top when
// withTop is set. The first invalid parameter is reported.
func (v *paramValidator) parseCollection(q url.Values, withTop bool) (collectionParams, error) {
	var (
		p   collectionParams
		err error
	)

	p.Query = q.Get("query")
	if err := v.validate.Var(p.Query, "notblank"); err != nil {
		return p, domain.NewValidationError("query", "query must not be empty")
	}

	if p.FromYear, err = optionalInt(q, "from_year"); err != nil {
		return p, err
	}
	if p.ToYear, err = optionalInt(q, "to_year"); err != nil {
		return p, err
	}

	if p.Limit, err = v.boundedInt(q, "limit", v.limits.DefaultLimit, v.limits.MaxLimit); err != nil {
		return p, err
	}

	if withTop {
		if p.Top, err = v.boundedInt(q, "top", v.limits.DefaultTop, v.limits.MaxTop); err != nil {
			return p, err
		}
	}

	return p, nil
}

// parseDOI reads and cleans the doi parameter.
func (v *paramValidator) parseDOI(q url.Values) (string, error) {
	doi := domain.CleanDOI(q.Get("doi"))
	if err := v.validate.Var(doi, "required"); err != nil {
		return "", domain.NewValidationError("doi", "doi must not be empty")
	}
	return doi, nil
}

// boundedInt parses name as an integer in [1, maxValue], falling back to def
// when the parameter is absent.
func (v *paramValidator) boundedInt(q url.Values, name string, def, maxValue int) (int, error) {
	n, err := optionalInt(q, name)
	if err != nil {
		return 0, err
	}
	if n == nil {
		return def, nil
	}
	if err := v.validate.Var(*n, fmt.Sprintf("min=1,max=%d", maxValue)); err != nil {
		return 0, domain.NewValidationError(name, fmt.Sprintf("%s must be between 1 and %d", name, maxValue))
	}
	return *n, nil
}

func optionalInt(q url.Values, name string) (*int, error) {
	if !q.Has(name) {
		return nil, nil
	}
	raw := strings.TrimSpace(q.Get(name))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, domain.NewValidationError(name, fmt.Sprintf("%s must be an integer", name))
	}
	return &n, nil
}
