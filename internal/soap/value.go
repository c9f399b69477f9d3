package soap

// Value is one node of a method result: Text, Map or List.
type Value interface {
	soapValue()
}

// Text is a scalar serialized as escaped character data.
type Text string

// Field is a named entry of a Map.
type Field struct {
	Name  string
	Value Value
}

// Map is an ordered mapping; field order is preserved on the wire.
type Map []Field

// List serializes as one element per item, each named after the owning field.
type List []Value

func (Text) soapValue() {}
func (Map) soapValue()  {}
func (List) soapValue() {}

// Get returns the value of the first field called name.
func (m Map) Get(name string) (Value, bool) {
	for _, f := range m {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Args holds the arguments of a method call. A nil value records an argument
// element that carried no text.
type Args map[string]*string

// Get returns the argument text and whether it was present and non-null.
func (a Args) Get(name string) (string, bool) {
	v, ok := a[name]
	if !ok || v == nil {
		return "", false
	}
	return *v, true
}

// Value returns the argument text, or "" when absent or null.
func (a Args) Value(name string) string {
	v, _ := a.Get(name)
	return v
}

// Has reports whether the argument is present with non-empty text.
func (a Args) Has(name string) bool {
	return a.Value(name) != ""
}

// Set stores a non-null argument.
func (a Args) Set(name, value string) {
	a[name] = &value
}

// Flatten converts the arguments for structured logging.
func (a Args) Flatten() map[string]any {
	out := make(map[string]any, len(a))
	for k, v := range a {
		if v == nil {
			out[k] = nil
			continue
		}
		out[k] = *v
	}
	return out
}
