package bank

import "digital.vasic.specs/pkg/matcher"

// BankFile is the document structure of a spec bank, in YAML or
// JSON.
type BankFile struct {
	Version  string         `json:"version" yaml:"version" validate:"required"`
	Name     string         `json:"name" yaml:"name" validate:"required"`
	Groups   []GroupDef     `json:"groups" yaml:"groups" validate:"required,min=1,dive"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// GroupDef declares a group. Version is a range expression as
// accepted by version.ParseRange.
type GroupDef struct {
	Describe string       `json:"describe" yaml:"describe" validate:"required"`
	Version  string       `json:"version,omitempty" yaml:"version,omitempty"`
	Platform []string     `json:"platform,omitempty" yaml:"platform,omitempty"`
	Features []string     `json:"features,omitempty" yaml:"features,omitempty"`
	Before   []StepDef    `json:"before,omitempty" yaml:"before,omitempty" validate:"dive"`
	After    []StepDef    `json:"after,omitempty" yaml:"after,omitempty" validate:"dive"`
	Examples []ExampleDef `json:"examples,omitempty" yaml:"examples,omitempty" validate:"dive"`
	Groups   []GroupDef   `json:"groups,omitempty" yaml:"groups,omitempty" validate:"dive"`
}

// StepDef calls a subject from a hook. The returned value is kept
// on the scratch pad under Record, or appended when Record is
// empty.
type StepDef struct {
	Subject string `json:"subject" yaml:"subject" validate:"required"`
	Args    []any  `json:"args,omitempty" yaml:"args,omitempty"`
	Record  string `json:"record,omitempty" yaml:"record,omitempty"`
}

// ExampleDef declares an example that calls Subject with Args and
// checks the outcome with Expect. String arguments of the form
// "$name" are replaced by the scratch value recorded as name.
type ExampleDef struct {
	It      string              `json:"it" yaml:"it" validate:"required"`
	Subject string              `json:"subject,omitempty" yaml:"subject,omitempty" validate:"required_without=Pending"`
	Args    []any               `json:"args,omitempty" yaml:"args,omitempty"`
	Expect  *matcher.Definition `json:"expect,omitempty" yaml:"expect,omitempty"`
	Pending string              `json:"pending,omitempty" yaml:"pending,omitempty"`
	Version string              `json:"version,omitempty" yaml:"version,omitempty"`
}
