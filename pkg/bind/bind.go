// Package bind decodes request bodies and query strings into structs and
// runs pkg/validate over the result.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/diamantrouge/maison/config"
	"github.com/diamantrouge/maison/pkg/validate"
)

const defaultMaxBody = 4 << 20

func maxBody() int64 {
	n, err := strconv.ParseInt(config.Get("MAX_BODY_BYTES", ""), 10, 64)
	if err != nil || n <= 0 {
		return defaultMaxBody
	}
	return n
}

// JSON decodes the body into dest. A malformed, empty or oversized body is
// an error; failed rules come back as the field map with a nil error.
func JSON(r *http.Request, dest any) (map[string]string, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBody())
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return nil, fmt.Errorf("request body too large (max %d bytes)", tooLarge.Limit)
		case errors.Is(err, io.EOF):
			return nil, errors.New("request body is empty")
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return check(dest), nil
}

// Query fills the `query:"name"` fields of the struct dest points at.
// Strings, bools, ints and uints are supported, and pointers to them so a
// handler can tell "featured=false" from no filter at all.
func Query(r *http.Request, dest any) (map[string]string, error) {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return nil, errors.New("bind: query destination must be a pointer to struct")
	}
	rv = rv.Elem()
	values := r.URL.Query()
	for i := range rv.NumField() {
		name := rv.Type().Field(i).Tag.Get("query")
		raw := strings.TrimSpace(values.Get(name))
		if name == "" || raw == "" {
			continue
		}
		if err := set(rv.Field(i), raw); err != nil {
			return nil, fmt.Errorf("query parameter %q %s", name, err)
		}
	}
	return check(dest), nil
}

func set(f reflect.Value, raw string) error {
	if f.Kind() == reflect.Pointer {
		v := reflect.New(f.Type().Elem())
		if err := set(v.Elem(), raw); err != nil {
			return err
		}
		f.Set(v)
		return nil
	}
	switch f.Kind() {
	case reflect.String:
		f.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return errors.New("must be true or false")
		}
		f.SetBool(b)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return errors.New("must be an integer")
		}
		f.SetInt(n)
	case reflect.Uint, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return errors.New("must be a positive integer")
		}
		f.SetUint(n)
	default:
		return fmt.Errorf("has unsupported kind %s", f.Kind())
	}
	return nil
}

func check(dest any) map[string]string {
	if errs := validate.Struct(dest); validate.HasErrors(errs) {
		return errs
	}
	return nil
}
