package fields

import (
	"fmt"
	"strings"

	"github.com/eino-contrib/jsonschema"
	"github.com/tbxark/formfiller/types"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Structure renders the JSON shape the extraction prompt asks the model to fill,
// one commented line per field.
func (d *Descriptor) Structure() string {
	var sb strings.Builder
	sb.WriteString("{")
	for _, f := range d.fields {
		sb.WriteString(fmt.Sprintf("\n\t%q: // ", f.Name))
		if f.Description != "" {
			sb.WriteString(f.Description)
			sb.WriteString(" ")
		}
		sb.WriteString(fmt.Sprintf("Must be of type `%s`", f.Kind.TypeName()))
		if hint := f.hint(); hint != "" {
			sb.WriteString(" (")
			sb.WriteString(hint)
			sb.WriteString(")")
		}
		sb.WriteString(" or `null`")
	}
	sb.WriteString("\n}")
	return sb.String()
}

func (f Field) hint() string {
	var parts []string
	if len(f.Options) > 0 {
		parts = append(parts, "one of: "+strings.Join(f.Options, ", "))
	}
	if f.Kind == Date {
		parts = append(parts, "YYYY-MM-DD")
	}
	if f.Min != nil {
		parts = append(parts, ">= "+formatNumber(*f.Min))
	}
	if f.Max != nil {
		parts = append(parts, "<= "+formatNumber(*f.Max))
	}
	return strings.Join(parts, ", ")
}

// Table renders the fields as a markdown table for tool-calling prompts.
func (d *Descriptor) Table() string {
	rows := make([][]string, 0, len(d.fields))
	for _, f := range d.fields {
		required := "no"
		if f.Required {
			required = "yes"
		}
		desc := f.Description
		if hint := f.hint(); hint != "" {
			desc = strings.TrimSpace(desc + " (" + hint + ")")
		}
		rows = append(rows, []string{f.Name, f.Kind.TypeName(), required, desc})
	}
	return types.FormatTable("Form fields", []string{"Field", "Type", "Required", "Description"}, rows)
}

// JSONSchema describes the record as a JSON object schema. Every property is optional
// so the model can leave out what the user has not said yet.
func (d *Descriptor) JSONSchema() *jsonschema.Schema {
	props := orderedmap.New[string, *jsonschema.Schema]()
	for _, f := range d.fields {
		props.Set(f.Name, f.jsonSchema())
	}
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
	}
}

func (f Field) jsonSchema() *jsonschema.Schema {
	s := &jsonschema.Schema{Description: f.Description}
	if hint := f.hint(); hint != "" {
		s.Description = strings.TrimSpace(s.Description + " (" + hint + ")")
	}
	switch f.Kind {
	case Integer:
		s.Type = "integer"
	case Number:
		s.Type = "number"
	case Boolean:
		s.Type = "boolean"
	case Enum:
		s.Type = "string"
		for _, opt := range f.Options {
			s.Enum = append(s.Enum, opt)
		}
	case Date:
		s.Type = "string"
		s.Format = "date"
	case Email:
		s.Type = "string"
		s.Format = "email"
	case List:
		s.Type = "array"
		s.Items = &jsonschema.Schema{Type: "string"}
	default:
		s.Type = "string"
		s.Pattern = f.Pattern
	}
	return s
}
