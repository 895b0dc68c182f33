// Package fields declares the fields a form collects and validates candidate records
// against that declaration.
package fields

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

type Kind string

const (
	String  Kind = "string"
	Integer Kind = "integer"
	Number  Kind = "number"
	Boolean Kind = "boolean"
	Enum    Kind = "enum"
	Date    Kind = "date"
	Email   Kind = "email"
	List    Kind = "list"
)

// TypeName is the type shown to the model in extraction prompts.
func (k Kind) TypeName() string {
	switch k {
	case Integer:
		return "int"
	case Number:
		return "float"
	case Boolean:
		return "bool"
	case Enum, Email:
		return "str"
	case Date:
		return "date"
	case List:
		return "list[str]"
	default:
		return "str"
	}
}

var ErrInvalidDescriptor = errors.New("invalid field descriptor")

type Field struct {
	Name        string
	Kind        Kind
	Description string
	Required    bool

	// Options lists the accepted values of an Enum field.
	Options []string
	// Pattern is a regular expression a String field must match.
	Pattern string
	// Min and Max bound Integer and Number fields.
	Min *float64
	Max *float64
	// MinLength and MaxLength bound string length in runes, or item count for List. Zero means unbounded.
	MinLength int
	MaxLength int
	// Default is used for an absent optional field.
	Default any

	pattern *regexp.Regexp
}

// Bound is a helper for filling Field.Min and Field.Max.
func Bound(v float64) *float64 {
	return &v
}

// Descriptor is an ordered, immutable set of fields.
type Descriptor struct {
	fields []Field
	index  map[string]int
}

func New(fields ...Field) (*Descriptor, error) {
	d := &Descriptor{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		f.Name = strings.TrimSpace(f.Name)
		if f.Name == "" {
			return nil, fmt.Errorf("%w: empty field name", ErrInvalidDescriptor)
		}
		if _, dup := d.index[f.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate field %q", ErrInvalidDescriptor, f.Name)
		}
		if f.Kind == "" {
			f.Kind = String
		}
		if f.Kind == Enum && len(f.Options) == 0 {
			return nil, fmt.Errorf("%w: enum field %q has no options", ErrInvalidDescriptor, f.Name)
		}
		if f.Pattern != "" {
			re, err := regexp.Compile(f.Pattern)
			if err != nil {
				return nil, fmt.Errorf("%w: field %q pattern: %v", ErrInvalidDescriptor, f.Name, err)
			}
			f.pattern = re
		}
		f.Options = append([]string(nil), f.Options...)
		if f.Default != nil {
			v, msg := f.coerce(f.Default)
			if msg != "" {
				return nil, fmt.Errorf("%w: field %q default: %s", ErrInvalidDescriptor, f.Name, msg)
			}
			f.Default = v
		}
		d.index[f.Name] = len(d.fields)
		d.fields = append(d.fields, f)
	}
	return d, nil
}

func MustNew(fields ...Field) *Descriptor {
	d, err := New(fields...)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Descriptor) Fields() []Field {
	return append([]Field(nil), d.fields...)
}

func (d *Descriptor) Field(name string) (Field, bool) {
	i, ok := d.index[name]
	if !ok {
		return Field{}, false
	}
	return d.fields[i], true
}

func (d *Descriptor) Names() []string {
	names := make([]string, len(d.fields))
	for i, f := range d.fields {
		names[i] = f.Name
	}
	return names
}

func (d *Descriptor) Len() int {
	return len(d.fields)
}
