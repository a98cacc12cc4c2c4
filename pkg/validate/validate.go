// Package validate checks request payloads against `validate` struct tags.
//
// Rules, comma separated:
//
//	required          not zero, not blank
//	nullable          skip the remaining rules when the value is empty
//	email, slug       format checks
//	date              2006-01-02, RFC3339, 02/01/2006 or "2006-01-02 15:04:05"
//	clock             "15:04"
//	alpha_dash        letters, digits, '-' and '_'
//	min=N, max=N      length for strings, item count for slices, value for numbers
//	gt=N, gte=N, lte=N
//	between=A,B       value (numbers) or length (strings), inclusive
//	in=a,b,c          one of the listed values
//	dive              validate each struct in a slice, keyed "items.0.field"
//
// decimal.Decimal fields count as numbers.
//
//	type AddToCart struct {
//	    ProductID   uint  `json:"productId"   validate:"required"`
//	    VariationID *uint `json:"variationId" validate:"nullable,gte=1"`
//	    Quantity    int   `json:"quantity"    validate:"required,gte=1,lte=99"`
//	}
package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// Struct validates v and returns field → message for every failing field.
// Only the first failing rule of a field is reported.
func Struct(v any) map[string]string {
	errs := make(map[string]string)
	walk(errs, "", reflect.ValueOf(v))
	return errs
}

func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

// IsEmail reports whether s looks like a deliverable address.
func IsEmail(s string) bool { return emailRE.MatchString(s) }

// ParseDate accepts the layouts of the `date` rule.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("validate: %q is not a date", s)
}

var (
	emailRE     = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	slugRE      = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	dateLayouts = []string{"2006-01-02", time.RFC3339, "02/01/2006", "2006-01-02 15:04:05"}
	decimalType = reflect.TypeOf(decimal.Decimal{})
)

func walk(errs map[string]string, prefix string, rv reflect.Value) {
	rv = indirect(rv)
	if !rv.IsValid() || rv.Kind() != reflect.Struct {
		return
	}
	for i := range rv.NumField() {
		sf := rv.Type().Field(i)
		tag := sf.Tag.Get("validate")
		if tag == "" || !sf.IsExported() {
			continue
		}
		f := newField(prefix+jsonName(sf), rv.Field(i))
		list := split(tag)
		if slices.Contains(list, "nullable") && f.absent() {
			continue
		}
		if msg := f.check(list); msg != "" {
			errs[f.name] = msg
			continue
		}
		if slices.Contains(list, "dive") && f.v.Kind() == reflect.Slice {
			for j := range f.v.Len() {
				walk(errs, fmt.Sprintf("%s.%d.", f.name, j), f.v.Index(j))
			}
		}
	}
}

// field is one tagged value, dereferenced, with its string and numeric
// readings precomputed.
type field struct {
	name  string
	v     reflect.Value
	ptr   bool
	raw   string
	num   float64
	isNum bool
}

func newField(name string, v reflect.Value) field {
	f := field{name: name, v: indirect(v), ptr: v.Kind() == reflect.Pointer && !v.IsNil()}
	if !f.v.IsValid() {
		return f
	}
	if f.v.Type() == decimalType {
		d := f.v.Interface().(decimal.Decimal)
		f.raw, f.num, f.isNum = d.String(), d.InexactFloat64(), true
		return f
	}
	f.raw = fmt.Sprint(f.v.Interface())
	switch f.v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f.num, f.isNum = float64(f.v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		f.num, f.isNum = float64(f.v.Uint()), true
	case reflect.Float32, reflect.Float64:
		f.num, f.isNum = f.v.Float(), true
	}
	return f
}

// absent is what nullable skips on: a set pointer is present even when it
// points at a zero value.
func (f field) absent() bool { return !f.ptr && f.empty() }

func (f field) empty() bool {
	switch {
	case !f.v.IsValid():
		return true
	case f.isNum:
		return f.num == 0
	}
	switch f.v.Kind() {
	case reflect.String:
		return strings.TrimSpace(f.raw) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return f.v.Len() == 0
	case reflect.Interface:
		return f.v.IsNil()
	}
	return false
}

// size is what min/max/between compare: the value of numbers, the item
// count of slices, the rune count of everything else.
func (f field) size() (float64, string) {
	switch {
	case f.isNum:
		return f.num, ""
	case f.v.IsValid() && f.v.Kind() == reflect.Slice:
		return float64(f.v.Len()), " items"
	}
	return float64(len([]rune(f.raw))), " characters"
}

func (f field) check(list []string) string {
	for _, r := range list {
		key, param, _ := strings.Cut(r, "=")
		spec, ok := rules[key]
		if !ok || spec.test == nil {
			continue
		}
		if msg := spec.test(f, param); msg != "" {
			return msg
		}
	}
	return ""
}

type rule struct {
	param bool
	test  func(f field, param string) string
}

var rules = map[string]rule{
	"nullable": {},
	"dive":     {},
	"required": {test: func(f field, _ string) string {
		if f.empty() {
			return fmt.Sprintf("The %s field is required.", f.name)
		}
		return ""
	}},
	"email": {test: func(f field, _ string) string {
		if !emailRE.MatchString(f.raw) {
			return fmt.Sprintf("The %s must be a valid email address.", f.name)
		}
		return ""
	}},
	"slug": {test: func(f field, _ string) string {
		if !slugRE.MatchString(f.raw) {
			return fmt.Sprintf("The %s may only contain lowercase letters, numbers and hyphens.", f.name)
		}
		return ""
	}},
	"date": {test: func(f field, _ string) string {
		if _, err := ParseDate(f.raw); err != nil {
			return fmt.Sprintf("The %s is not a valid date.", f.name)
		}
		return ""
	}},
	"clock": {test: func(f field, _ string) string {
		if _, err := time.Parse("15:04", f.raw); err != nil {
			return fmt.Sprintf("The %s must be a time formatted as HH:MM.", f.name)
		}
		return ""
	}},
	"alpha_dash": {test: func(f field, _ string) string {
		for _, c := range f.raw {
			if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '-' && c != '_' {
				return fmt.Sprintf("The %s may only contain letters, numbers, dashes and underscores.", f.name)
			}
		}
		return ""
	}},
	"min": {param: true, test: func(f field, p string) string {
		if n, unit := f.size(); n < number(p) {
			return fmt.Sprintf("The %s must have at least %s%s.", f.name, p, unit)
		}
		return ""
	}},
	"max": {param: true, test: func(f field, p string) string {
		if n, unit := f.size(); n > number(p) {
			return fmt.Sprintf("The %s may not have more than %s%s.", f.name, p, unit)
		}
		return ""
	}},
	"gt":  {param: true, test: bound(func(a, b float64) bool { return a > b }, "greater than")},
	"gte": {param: true, test: bound(func(a, b float64) bool { return a >= b }, "at least")},
	"lte": {param: true, test: bound(func(a, b float64) bool { return a <= b }, "at most")},
	"between": {param: true, test: func(f field, p string) string {
		lo, hi, ok := strings.Cut(p, ",")
		if !ok {
			return ""
		}
		n, unit := f.size()
		if n < number(lo) || n > number(hi) {
			return fmt.Sprintf("The %s must be between %s and %s%s.", f.name, lo, hi, unit)
		}
		return ""
	}},
	"in": {param: true, test: func(f field, p string) string {
		for _, opt := range strings.Split(p, ",") {
			if f.raw == strings.TrimSpace(opt) {
				return ""
			}
		}
		return fmt.Sprintf("The selected %s is invalid.", f.name)
	}},
}

func bound(ok func(v, limit float64) bool, phrase string) func(field, string) string {
	return func(f field, p string) string {
		if !ok(f.num, number(p)) {
			return fmt.Sprintf("The %s must be %s %s.", f.name, phrase, p)
		}
		return ""
	}
}

// split cuts a tag on commas, folding the values of in= and between= back
// into their rule: "required,in=regular,gold,max=8" gives
// ["required", "in=regular,gold", "max=8"].
func split(tag string) []string {
	var out []string
	for _, tok := range strings.Split(tag, ",") {
		tok = strings.TrimSpace(tok)
		if n := len(out); n > 0 && listParam(out[n-1]) && !startsRule(tok) {
			out[n-1] += "," + tok
			continue
		}
		out = append(out, tok)
	}
	return out
}

func listParam(r string) bool {
	return strings.HasPrefix(r, "in=") || strings.HasPrefix(r, "between=")
}

func startsRule(tok string) bool {
	key, _, hasParam := strings.Cut(tok, "=")
	r, ok := rules[key]
	return ok && r.param == hasParam
}

func number(s string) float64 {
	n, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return n
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func jsonName(sf reflect.StructField) string {
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return strings.ToLower(sf.Name)
	}
	return name
}
