package blocks

// FieldKind selects the editor control for a payload field.
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldTextarea FieldKind = "textarea"
	FieldRichText FieldKind = "richtext"
	FieldBool     FieldKind = "bool"
	FieldNumber   FieldKind = "number"
	FieldSelect   FieldKind = "select"
	FieldList     FieldKind = "list"
	FieldObject   FieldKind = "object"
)

// Field describes one editable payload key. List and object fields
// describe their entries in Item.
type Field struct {
	Key     string    `json:"key"`
	Label   string    `json:"label"`
	Kind    FieldKind `json:"kind"`
	Options []string  `json:"options,omitempty"`
	Item    []Field   `json:"item,omitempty"`
}

func textField(key, label string) Field { return Field{Key: key, Label: label, Kind: FieldText} }
func textareaField(key, label string) Field { return Field{Key: key, Label: label, Kind: FieldTextarea} }
func richField(key, label string) Field { return Field{Key: key, Label: label, Kind: FieldRichText} }
func boolField(key, label string) Field { return Field{Key: key, Label: label, Kind: FieldBool} }

func selectField(key, label string, options ...string) Field {
	return Field{Key: key, Label: label, Kind: FieldSelect, Options: options}
}

func listField(key, label string, item ...Field) Field {
	return Field{Key: key, Label: label, Kind: FieldList, Item: item}
}

func objectField(key, label string, item ...Field) Field {
	return Field{Key: key, Label: label, Kind: FieldObject, Item: item}
}
