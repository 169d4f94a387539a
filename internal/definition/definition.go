// Package definition loads form definitions from YAML files and binds them
// to a form. A definition lists fields with their shorthand rules; nested
// fields make a group and item fields make an array.
package definition

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	formerrors "github.com/conneroisu/formstate/internal/errors"
)

// Definition describes one form.
type Definition struct {
	Name         string            `yaml:"name"`
	DefaultValue map[string]any    `yaml:"default_value,omitempty"`
	Messages     map[string]string `yaml:"messages,omitempty"`
	Fields       []Field           `yaml:"fields"`

	Path string `yaml:"-"`
}

// Field describes a field, a group (Fields set) or an array (Items set).
type Field struct {
	Name      string            `yaml:"name"`
	Label     string            `yaml:"label,omitempty"`
	Required  bool              `yaml:"required,omitempty"`
	MinLength int               `yaml:"min_length,omitempty"`
	InitValue any               `yaml:"init_value,omitempty"`
	Disabled  bool              `yaml:"disabled,omitempty"`
	Messages  map[string]string `yaml:"messages,omitempty"`
	Fields    []Field           `yaml:"fields,omitempty"`
	Items     []Field           `yaml:"items,omitempty"`
}

// IsGroup reports whether the field opens a nested mapping scope.
func (f Field) IsGroup() bool { return len(f.Fields) > 0 }

// IsArray reports whether the field opens a sequence scope.
func (f Field) IsArray() bool { return len(f.Items) > 0 }

// Load reads and validates the definition at path.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		code := formerrors.ErrCodeInternalError
		if errors.Is(err, fs.ErrNotExist) {
			code = formerrors.ErrCodeFileNotFound
		}
		return nil, formerrors.WrapIO(err, code, "reading form definition").WithFile(path)
	}

	def, err := Parse(data)
	if err != nil {
		var fe *formerrors.FormError
		if errors.As(err, &fe) {
			return nil, fe.WithFile(path)
		}
		return nil, err
	}
	def.Path = path
	return def, nil
}

// Parse decodes a definition. Unknown keys are rejected.
func Parse(data []byte) (*Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, formerrors.ErrInvalidDefinition("definition is empty")
		}
		return nil, formerrors.WrapDefinition(err, formerrors.ErrCodeDecodeFailed, "decoding form definition")
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}
	def.applyLabels()
	return &def, nil
}

// Validate checks names and shapes. Item fields may have an empty name to
// address the element itself; every other field needs one, unique among its
// siblings.
func (d *Definition) Validate() error {
	if len(d.Fields) == 0 {
		return formerrors.ErrInvalidDefinition("definition has no fields")
	}
	return validateFields(d.Fields, "", false)
}

func validateFields(fields []Field, parent string, items bool) error {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		path := joinPath(parent, f.Name)
		if f.Name == "" && !items {
			return formerrors.ErrInvalidDefinition("field without a name").WithScope(parent)
		}
		if seen[f.Name] {
			return formerrors.ErrInvalidDefinition(fmt.Sprintf("duplicate field %q", f.Name)).WithScope(path)
		}
		seen[f.Name] = true

		if f.IsGroup() && f.IsArray() {
			return formerrors.ErrInvalidDefinition("a field cannot have both fields and items").WithScope(path)
		}
		if f.MinLength < 0 {
			return formerrors.ErrInvalidDefinition("min_length must not be negative").WithScope(path)
		}
		if f.IsGroup() {
			if err := validateFields(f.Fields, path, false); err != nil {
				return err
			}
		}
		if f.IsArray() {
			if err := validateFields(f.Items, path, true); err != nil {
				return err
			}
		}
	}
	return nil
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	if name == "" {
		return parent
	}
	return parent + "." + name
}

// applyLabels derives a label from the name where none is given, so
// "first_name" is labelled "First Name".
func (d *Definition) applyLabels() {
	caser := cases.Title(language.English)
	var walk func(fields []Field)
	walk = func(fields []Field) {
		for i := range fields {
			if fields[i].Label == "" && fields[i].Name != "" {
				fields[i].Label = caser.String(strings.ReplaceAll(fields[i].Name, "_", " "))
			}
			walk(fields[i].Fields)
			walk(fields[i].Items)
		}
	}
	walk(d.Fields)
}

// LoadData reads a YAML or JSON document to check against a definition. An
// empty file is an empty mapping.
func LoadData(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		code := formerrors.ErrCodeInternalError
		if errors.Is(err, fs.ErrNotExist) {
			code = formerrors.ErrCodeFileNotFound
		}
		return nil, formerrors.WrapIO(err, code, "reading form data").WithFile(path)
	}

	data := make(map[string]any)
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, formerrors.WrapDefinition(err, formerrors.ErrCodeDecodeFailed, "decoding form data").WithFile(path)
	}
	return data, nil
}
