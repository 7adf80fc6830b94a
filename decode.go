package mse

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"
	"unicode"
)

// Decoder populates Go values from a document, driving the Reader's
// enter/handle/exit cursor through struct fields by reflection. It is the
// schema-driven layer on top of the Reader; callers needing full control
// over lookahead and recovery use the Reader directly.
type Decoder struct {
	r *Reader
}

// NewDecoder constructs a Decoder reading from input. Options are passed
// through to the underlying Reader.
func NewDecoder(input io.Reader, opts ...Option) (*Decoder, error) {
	r, err := NewReader(input, opts...)
	if err != nil {
		return nil, err
	}
	return &Decoder{r: r}, nil
}

// Reader returns the underlying Reader, for access to warnings and the
// file version after decoding.
func (d *Decoder) Reader() *Reader { return d.r }

// Decode reads the whole document into the value pointed to by v, which
// must be a pointer to a struct or to a map with string keys.
//
// Struct fields map to keys through the `mse` tag, or by the field name
// spelled in canonical form ("DisplayName" matches the key "display name",
// which is how the writer spells "display_name"). A tag of "-" skips the
// field. Repeated keys append to slice fields. Keys matching no field draw
// an "unexpected key" warning and are skipped, unless the Reader is in
// leniency mode.
func (d *Decoder) Decode(v any) error {
	if v == nil {
		return errors.New("mse: cannot decode into a nil value")
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.New("mse: destination must be a non-nil pointer")
	}
	elem := rv.Elem()
	switch elem.Kind() {
	case reflect.Struct, reflect.Map:
		if err := d.decodeBlock(elem); err != nil {
			return err
		}
	default:
		return fmt.Errorf("mse: cannot decode document into %s", elem.Type())
	}
	return d.r.Err()
}

// Unmarshal reads a complete document held in memory into v. See
// Decoder.Decode for the mapping rules.
func Unmarshal(data []byte, v any, opts ...Option) error {
	d, err := NewDecoder(bytes.NewReader(data), opts...)
	if err != nil {
		return err
	}
	return d.Decode(v)
}

// decodeBlock reads all keys at the current nesting level into dst, which
// is a struct or map.
func (d *Decoder) decodeBlock(dst reflect.Value) error {
	if dst.Kind() == reflect.Map {
		return d.decodeMap(dst)
	}

	fields := structFields(dst.Type())
	for d.r.EnterAnyBlock() {
		key := d.r.Key()
		if idx, ok := fields[key]; ok {
			if err := d.decodeField(dst.Field(idx)); err != nil {
				return err
			}
		} else if !d.r.ignoreInvalid {
			d.r.WarnAt("Unexpected key: '"+key+"'", 0, false)
		}
		if err := d.r.ExitBlock(); err != nil {
			return err
		}
	}
	return d.r.Err()
}

// decodeMap reads all keys at the current nesting level as map entries.
func (d *Decoder) decodeMap(dst reflect.Value) error {
	t := dst.Type()
	if t.Key().Kind() != reflect.String {
		return fmt.Errorf("mse: cannot decode into map with %s keys", t.Key())
	}
	if dst.IsNil() {
		dst.Set(reflect.MakeMap(t))
	}
	for d.r.EnterAnyBlock() {
		key := d.r.Key()
		val := reflect.New(t.Elem()).Elem()
		if err := d.decodeField(val); err != nil {
			return err
		}
		if err := d.r.ExitBlock(); err != nil {
			return err
		}
		dst.SetMapIndex(reflect.ValueOf(key).Convert(t.Key()), val)
	}
	return d.r.Err()
}

// decodeField reads the just-entered key's content into f.
func (d *Decoder) decodeField(f reflect.Value) error {
	// Types with their own coercion rule come first, before plain kinds.
	if f.CanAddr() {
		switch f.Addr().Interface().(type) {
		case *time.Time, *Vector2D, *Tribool, *FileName, *Version:
			return d.r.Handle(f.Addr().Interface())
		}
	}

	switch f.Kind() {
	case reflect.String:
		var s string
		if err := d.r.Handle(&s); err != nil {
			return err
		}
		f.SetString(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var i int
		if err := d.r.Handle(&i); err != nil {
			return err
		}
		if f.OverflowInt(int64(i)) {
			return fmt.Errorf("mse: value %d overflows %s", i, f.Type())
		}
		f.SetInt(int64(i))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var u uint
		if err := d.r.Handle(&u); err != nil {
			return err
		}
		if f.OverflowUint(uint64(u)) {
			return fmt.Errorf("mse: value %d overflows %s", u, f.Type())
		}
		f.SetUint(uint64(u))
	case reflect.Float32, reflect.Float64:
		var fl float64
		if err := d.r.Handle(&fl); err != nil {
			return err
		}
		f.SetFloat(fl)
	case reflect.Bool:
		var b bool
		if err := d.r.Handle(&b); err != nil {
			return err
		}
		f.SetBool(b)
	case reflect.Interface:
		// Untyped destinations get the value as text.
		v, err := d.r.GetValue()
		if err != nil {
			return err
		}
		if !reflect.TypeOf(v).AssignableTo(f.Type()) {
			return fmt.Errorf("mse: cannot decode into %s", f.Type())
		}
		f.Set(reflect.ValueOf(v))
	case reflect.Ptr:
		if f.IsNil() {
			f.Set(reflect.New(f.Type().Elem()))
		}
		return d.decodeField(f.Elem())
	case reflect.Slice:
		// Each occurrence of a repeated key appends one element.
		elem := reflect.New(f.Type().Elem()).Elem()
		if err := d.decodeField(elem); err != nil {
			return err
		}
		f.Set(reflect.Append(f, elem))
	case reflect.Struct, reflect.Map:
		return d.decodeBlock(f)
	default:
		return fmt.Errorf("mse: cannot decode into %s", f.Type())
	}
	return nil
}

// structFields maps canonical key names to exported field indices.
func structFields(t reflect.Type) map[string]int {
	fields := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := fieldKey(field)
		if name == "-" {
			continue
		}
		fields[name] = i
	}
	return fields
}

// fieldKey returns the canonical key a struct field matches: the mse tag
// if present, otherwise the field name with camel-case humps spelled as
// spaces.
func fieldKey(field reflect.StructField) string {
	if tag, ok := field.Tag.Lookup("mse"); ok {
		name, _, _ := strings.Cut(tag, ",")
		if name == "-" {
			return "-"
		}
		if name != "" {
			return canonicalName(name)
		}
	}
	var b strings.Builder
	prevLower := false
	for _, r := range field.Name {
		if unicode.IsUpper(r) {
			if prevLower {
				b.WriteByte(' ')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLower = false
		} else {
			b.WriteRune(r)
			prevLower = true
		}
	}
	return b.String()
}
