package config

import (
	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/polyreg/linear"
)

// UpdateRule is a linear.UpdateRule that unmarshals from its name.
type UpdateRule linear.UpdateRule

// UnmarshalYAML implements the yaml.Unmarshaler interface for UpdateRule.
func (u *UpdateRule) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	rule, err := linear.ParseUpdateRule(s)
	if err != nil {
		return err
	}
	*u = UpdateRule(rule)
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface for UpdateRule.
func (u UpdateRule) MarshalYAML() (interface{}, error) {
	return linear.UpdateRule(u).String(), nil
}

func (u UpdateRule) String() string {
	return linear.UpdateRule(u).String()
}
