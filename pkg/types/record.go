package types

// Param describes one parameter from a method signature
type Param struct {
	Name    string
	Type    string // empty when the signature carries no annotation
	Default string // empty when the parameter has no default value
}

// ClassRecord holds the overview documentation extracted for a class
type ClassRecord struct {
	// Identification
	Name string
	Line int // 1-based line of the definition marker

	// Content
	Description string
	Properties  []string // member names in document order
	Methods     []string

	// Extraction state
	Truncated bool // the block hit its read budget before the closing marker
	Warnings  []ParseWarning
}

// PropertyRecord holds the documentation for a single class property
type PropertyRecord struct {
	// Identification
	Class string
	Name  string
	Line  int

	// Content
	Assignment  string // raw default-assignment line, e.g. "size = 0"
	Type        string
	Description string
	Examples    []string // fenced code samples in document order

	// Extraction state
	Truncated bool
	Warnings  []ParseWarning
}

// MethodRecord holds the documentation for a single class method
type MethodRecord struct {
	// Identification
	Class string
	Name  string
	Line  int

	// Content
	Signature   string // first signature line of the block, markup stripped
	Params      []Param
	Returns     string
	Description string
	Examples    []string // fenced code samples in document order

	// Extraction state
	Truncated bool
	Warnings  []ParseWarning
}

// FunctionRecord holds the documentation for a module-level function.
// Free functions are documented more loosely than methods, so the record
// carries no structured parameter list.
type FunctionRecord struct {
	// Identification
	Name string
	Line int

	// Content
	Signature   string
	Returns     string
	Description string

	// Extraction state
	Truncated bool
	Warnings  []ParseWarning
}

// ConstantRecord holds the documentation for a module-level constant
type ConstantRecord struct {
	// Identification
	Name string
	Line int

	// Content
	Value       string
	Type        string
	Description string

	// Extraction state
	Truncated bool
	Warnings  []ParseWarning
}

// Validate checks the invariants every class record must satisfy
func (c *ClassRecord) Validate() error {
	if c.Name == "" {
		return ErrEmptyName
	}
	if c.Line <= 0 {
		return ErrInvalidLine
	}
	return nil
}

// Validate checks the invariants every property record must satisfy
func (p *PropertyRecord) Validate() error {
	if p.Name == "" {
		return ErrEmptyName
	}
	if p.Class == "" {
		return ErrMissingClass
	}
	if p.Line <= 0 {
		return ErrInvalidLine
	}
	return nil
}

// Validate checks the invariants every method record must satisfy
func (m *MethodRecord) Validate() error {
	if m.Name == "" {
		return ErrEmptyName
	}
	if m.Class == "" {
		return ErrMissingClass
	}
	if m.Line <= 0 {
		return ErrInvalidLine
	}
	return nil
}

// Validate checks the invariants every function record must satisfy
func (f *FunctionRecord) Validate() error {
	if f.Name == "" {
		return ErrEmptyName
	}
	if f.Line <= 0 {
		return ErrInvalidLine
	}
	return nil
}

// Validate checks the invariants every constant record must satisfy
func (k *ConstantRecord) Validate() error {
	if k.Name == "" {
		return ErrEmptyName
	}
	if k.Line <= 0 {
		return ErrInvalidLine
	}
	return nil
}
