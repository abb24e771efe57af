package form

import "slices"

// Kind selects how a field cleans its values.
type Kind int

// Field kinds.
const (
	KindText Kind = iota
	KindChoice
	KindMultiChoice
)

// Choice is one selectable option of a choice field.
type Choice struct {
	Value string
	Label string
}

// Field describes one form input.
type Field struct {
	Name     string
	Label    string
	Kind     Kind
	Required bool
	Choices  []Choice
	// Initial is the preselected value set shown for an unbound form.
	Initial []string
}

// TextField returns a single valued text field.
func TextField(name, label string, required bool) *Field {
	return &Field{Name: name, Label: label, Kind: KindText, Required: required}
}

// ChoiceField returns a single choice field.
func ChoiceField(name, label string, choices []Choice) *Field {
	return &Field{Name: name, Label: label, Kind: KindChoice, Choices: choices}
}

// MultiChoiceField returns an optional multiple choice field.
func MultiChoiceField(name, label string, choices []Choice) *Field {
	return &Field{Name: name, Label: label, Kind: KindMultiChoice, Choices: choices}
}

// Clean validates submitted values and returns the cleaned values.
func (fd *Field) Clean(values []string) ([]string, error) {
	switch fd.Kind {
	case KindMultiChoice:
		var cleaned []string
		for _, v := range values {
			if v == "" {
				continue
			}
			if !fd.hasChoice(v) {
				return nil, ErrInvalidChoice
			}
			if !slices.Contains(cleaned, v) {
				cleaned = append(cleaned, v)
			}
		}
		if fd.Required && len(cleaned) == 0 {
			return nil, ErrRequiredField
		}
		return cleaned, nil
	case KindChoice:
		v := first(values)
		if v == "" {
			if fd.Required {
				return nil, ErrRequiredField
			}
			return nil, nil
		}
		if !fd.hasChoice(v) {
			return nil, ErrInvalidChoice
		}
		return []string{v}, nil
	default:
		v := first(values)
		if v == "" && fd.Required {
			return nil, ErrRequiredField
		}
		return []string{v}, nil
	}
}

func (fd *Field) hasChoice(v string) bool {
	for _, c := range fd.Choices {
		if c.Value == v {
			return true
		}
	}
	return false
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
