package models

// EntityContext is the subject entity a dashboard is scoped to.
type EntityContext struct {
	ShortName  string         `json:"shortName,omitempty" yaml:"shortName,omitempty"`
	FullName   string         `json:"fullName,omitempty" yaml:"fullName,omitempty"`
	Domain     string         `json:"domain,omitempty" yaml:"domain,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}
