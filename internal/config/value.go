package config

import "gopkg.in/yaml.v3"

// Value is an optional string setting. The zero Value is unset, which is
// distinct from a Value set to the empty string.
type Value struct {
	v   string
	set bool
}

func Set(v string) Value {
	return Value{v: v, set: true}
}

func (o Value) Get() (string, bool) {
	return o.v, o.set
}

func (o Value) IsSet() bool {
	return o.set
}

// Or returns the value if set, otherwise fallback.
func (o Value) Or(fallback string) string {
	if o.set {
		return o.v
	}
	return fallback
}

func (o Value) String() string {
	if !o.set {
		return "<unset>"
	}
	return o.v
}

// UnmarshalYAML treats an explicit null as unset.
func (o *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!null" {
		*o = Value{}
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	*o = Set(s)
	return nil
}
