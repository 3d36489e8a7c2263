package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"service-marketplace/pkg/apperror"
	"service-marketplace/pkg/response"
	"service-marketplace/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// writeError maps usecase errors to responses. Errors without a category are
// logged and reported as a generic 500.
func writeError(w http.ResponseWriter, log *logrus.Logger, err error) {
	if appErr, ok := apperror.As(err); ok && appErr.Type != apperror.TypeInternal {
		response.Error(w, appErr.HTTPStatus(), appErr.Message)
		return
	}
	log.Errorf("Unhandled error: %+v", err)
	response.InternalServerError(w, "Internal server error")
}

// decodeAndValidate writes the error response itself and reports whether the
// handler may continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.CustomValidator, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return false
	}
	if err := v.Validate(req); err != nil {
		response.ValidationError(w, v.FormatValidationErrors(err))
		return false
	}
	return true
}

func pathUUID(w http.ResponseWriter, r *http.Request, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// queryParser collects the first malformed query parameter.
type queryParser struct {
	values  map[string][]string
	invalid string
}

func newQueryParser(r *http.Request) *queryParser {
	return &queryParser{values: r.URL.Query()}
}

func (p *queryParser) get(key string) string {
	if vs := p.values[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func (p *queryParser) fail(key string) {
	if p.invalid == "" {
		p.invalid = key
	}
}

func (p *queryParser) String(key string) string {
	return p.get(key)
}

func (p *queryParser) Int(key string) int {
	raw := p.get(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key)
	}
	return n
}

func (p *queryParser) IntPtr(key string) *int {
	if p.get(key) == "" {
		return nil
	}
	n := p.Int(key)
	return &n
}

func (p *queryParser) UUID(key string) *uuid.UUID {
	raw := p.get(key)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		p.fail(key)
		return nil
	}
	return &id
}

func (p *queryParser) Float(key string) *float64 {
	raw := p.get(key)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.fail(key)
		return nil
	}
	return &f
}

func (p *queryParser) Bool(key string) *bool {
	raw := p.get(key)
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(key)
		return nil
	}
	return &b
}

func (p *queryParser) Decimal(key string) *decimal.Decimal {
	raw := p.get(key)
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		p.fail(key)
		return nil
	}
	return &d
}

// Time accepts RFC 3339 timestamps and plain dates.
func (p *queryParser) Time(key string) *time.Time {
	raw := p.get(key)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	p.fail(key)
	return nil
}

// Check writes a 400 if any parameter was malformed.
func (p *queryParser) Check(w http.ResponseWriter) bool {
	if p.invalid != "" {
		response.BadRequest(w, "Invalid query parameter: "+p.invalid)
		return false
	}
	return true
}
