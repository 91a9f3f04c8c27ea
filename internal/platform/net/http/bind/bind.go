// Package bind maps query strings and path parameters onto typed, validated values
package bind

import (
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	perr "curator/internal/platform/errors"
	"curator/internal/platform/validate"

	"github.com/go-chi/chi/v5"
)

var durationType = reflect.TypeFor[time.Duration]()

// Query fills the fields of T tagged `query:"name"` from r's query string, then validates T.
// Supported kinds are string, bool, signed ints, float64, time.Duration and []string
// (repeated keys or a comma list).
func Query[T any](r *http.Request) (T, error) {
	var dst T
	rv := reflect.ValueOf(&dst).Elem()
	if rv.Kind() != reflect.Struct {
		return dst, nil
	}
	q := r.URL.Query()
	rt := rv.Type()
	for i := range rt.NumField() {
		f := rt.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("query"), ",")
		if name == "" || name == "-" || !f.IsExported() {
			continue
		}
		vals, ok := q[name]
		if !ok || len(vals) == 0 {
			continue
		}
		if err := set(rv.Field(i), vals); err != nil {
			return dst, perr.WithField(perr.InvalidArgf("query %s: %v", name, err), name)
		}
	}
	if err := validate.Struct(dst); err != nil {
		return dst, err
	}
	return dst, nil
}

func set(v reflect.Value, vals []string) error {
	raw := strings.TrimSpace(vals[len(vals)-1])
	if v.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		v.SetInt(int64(d))
		return nil
	}
	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Bool:
		if raw == "" {
			v.SetBool(true)
			return nil
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetInt(n)
	case reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		v.SetFloat(f)
	case reflect.Slice:
		if v.Type().Elem().Kind() != reflect.String {
			return perr.InvalidArgf("unsupported slice type %s", v.Type())
		}
		var out []string
		for _, s := range vals {
			for _, p := range strings.Split(s, ",") {
				if p = strings.TrimSpace(p); p != "" {
					out = append(out, p)
				}
			}
		}
		v.Set(reflect.ValueOf(out))
	default:
		return perr.InvalidArgf("unsupported field type %s", v.Type())
	}
	return nil
}

// PathInt64 reads the chi url parameter name as a positive int64
func PathInt64(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, perr.WithField(perr.InvalidArgf("%s must be a positive integer, got %q", name, raw), name)
	}
	return n, nil
}

// PathString reads the chi url parameter name, rejecting an empty value
func PathString(r *http.Request, name string) (string, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return "", perr.WithField(perr.InvalidArgf("%s is required", name), name)
	}
	return raw, nil
}
