package directory

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/zoobzio/sentinel"

	"github.com/srwicak/freelance-directory/fieldcrypt"
	"github.com/srwicak/freelance-directory/hrana"
)

func init() {
	// Register column and compound tags with sentinel
	sentinel.Tag("db")
	sentinel.Tag("load.decrypt")
	sentinel.Tag("store.encrypt")
	sentinel.Tag("send.mask")
	sentinel.Tag("send.redact")
}

// tablePlan maps a model type onto table columns.
// Plans are immutable after construction and shared between repositories.
type tablePlan struct {
	typeName string
	columns  []columnPlan
}

// columnPlan describes one mapped struct field.
type columnPlan struct {
	index   []int        // reflect.Value.FieldByIndex access path
	field   string       // Go field name for error messages
	name    string       // column name
	kind    reflect.Kind // String or Int64
	encrypt bool         // store.encrypt present
	decrypt bool         // load.decrypt present
	mask    MaskType     // send.mask value, empty when absent
	redact  *string      // send.redact value, nil when absent
}

// buildPlan scans T's struct tags.
// Only fields with a db tag are mapped; they must be strings or int64.
func buildPlan[T any]() (*tablePlan, error) {
	meta := sentinel.Scan[T]()
	rt := reflect.TypeFor[T]()

	plan := &tablePlan{typeName: meta.TypeName}

	for _, field := range meta.Fields {
		sf := rt.FieldByIndex(field.Index)
		lookup := func(key string) (string, bool) {
			if v, ok := field.Tags[key]; ok {
				return v, true
			}
			return sf.Tag.Lookup(key)
		}

		name, ok := lookup("db")
		if !ok {
			continue
		}
		name, _, _ = strings.Cut(name, ",")
		if name == "" || name == "-" {
			continue
		}

		col := columnPlan{
			index: append([]int{}, field.Index...),
			field: field.Name,
			name:  name,
			kind:  sf.Type.Kind(),
		}

		if col.kind != reflect.String && col.kind != reflect.Int64 {
			return nil, newTagError(field.Name, "db", name)
		}

		if val, ok := lookup("store.encrypt"); ok {
			if !IsValidEncryptAlgo(EncryptAlgo(val)) || col.kind != reflect.String {
				return nil, newTagError(field.Name, "store.encrypt", val)
			}
			col.encrypt = true
		}

		if val, ok := lookup("load.decrypt"); ok {
			if !IsValidEncryptAlgo(EncryptAlgo(val)) || col.kind != reflect.String {
				return nil, newTagError(field.Name, "load.decrypt", val)
			}
			col.decrypt = true
		}

		if val, ok := lookup("send.mask"); ok {
			if !IsValidMaskType(MaskType(val)) || col.kind != reflect.String {
				return nil, newTagError(field.Name, "send.mask", val)
			}
			col.mask = MaskType(val)
		}

		if val, ok := lookup("send.redact"); ok {
			// Redact values are arbitrary strings, no validation needed
			if col.kind != reflect.String {
				return nil, newTagError(field.Name, "send.redact", val)
			}
			v := val
			col.redact = &v
		}

		plan.columns = append(plan.columns, col)
	}

	if len(plan.columns) == 0 {
		return nil, fmt.Errorf("%w: %s has no db columns", ErrInvalidTag, plan.typeName)
	}

	return plan, nil
}

// names returns all column names in field order.
func (p *tablePlan) names() []string {
	out := make([]string, len(p.columns))
	for i, c := range p.columns {
		out[i] = c.name
	}
	return out
}

// encrypted returns the columns written as ciphertext.
func (p *tablePlan) encrypted() []string {
	var out []string
	for _, c := range p.columns {
		if c.encrypt {
			out = append(out, c.name)
		}
	}
	return out
}

// decrypted returns the columns opened after reading.
func (p *tablePlan) decrypted() []string {
	var out []string
	for _, c := range p.columns {
		if c.decrypt {
			out = append(out, c.name)
		}
	}
	return out
}

// record copies the mapped fields of v, a struct value, into a Fields record.
func (p *tablePlan) record(v reflect.Value) fieldcrypt.Fields {
	out := make(fieldcrypt.Fields, len(p.columns))
	for _, c := range p.columns {
		f := v.FieldByIndex(c.index)
		if c.kind == reflect.String {
			out[c.name] = f.String()
		} else {
			out[c.name] = f.Int()
		}
	}
	return out
}

// load assigns row values to the mapped fields of v, an addressable struct.
// Columns absent from the row or holding NULL leave the zero value.
func (p *tablePlan) load(row *hrana.Row, v reflect.Value) error {
	for _, c := range p.columns {
		raw, ok := row.Get(c.name)
		if !ok || raw == nil {
			continue
		}

		f := v.FieldByIndex(c.index)
		if c.kind == reflect.String {
			f.SetString(asString(raw))
			continue
		}

		n, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("%w: column %s: %w", ErrInvalidRow, c.name, err)
		}
		f.SetInt(n)
	}
	return nil
}

// conceal applies send.mask and send.redact to v, an addressable struct.
func (p *tablePlan) conceal(v reflect.Value, maskers map[MaskType]Masker) {
	for _, c := range p.columns {
		f := v.FieldByIndex(c.index)
		if !f.CanSet() {
			continue
		}
		switch {
		case c.redact != nil:
			f.SetString(*c.redact)
		case c.mask != "" && f.String() != "":
			if m, ok := maskers[c.mask]; ok {
				f.SetString(m.Mask(f.String()))
			}
		}
	}
}

func asString(raw any) string {
	switch x := raw.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

func asInt(raw any) (int64, error) {
	switch x := raw.(type) {
	case int64:
		return x, nil
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) || math.IsNaN(x) {
			return 0, fmt.Errorf("%v is not an integer", x)
		}
		return int64(x), nil
	case string:
		return strconv.ParseInt(x, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected %T", raw)
	}
}
