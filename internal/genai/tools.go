package genai

// Tool enables one capability for a generation call: a built-in search or
// URL-context tool, or a set of caller-defined function declarations.
type Tool struct {
	GoogleSearch         *struct{}             `json:"googleSearch,omitempty"`
	URLContext           *struct{}             `json:"urlContext,omitempty"`
	FunctionDeclarations []FunctionDeclaration `json:"functionDeclarations,omitempty"`
}

// FunctionDeclaration describes one callable function to the model.
type FunctionDeclaration struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Parameters  *Schema `json:"parameters,omitempty"`
}

// Schema is a minimal OpenAPI-style parameter schema.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// GoogleSearchTool enables the hosted web-search tool.
func GoogleSearchTool() Tool { return Tool{GoogleSearch: &struct{}{}} }

// URLContextTool enables the hosted URL-fetch tool.
func URLContextTool() Tool { return Tool{URLContext: &struct{}{}} }

// FunctionTool wraps function declarations as a tool.
func FunctionTool(decls ...FunctionDeclaration) Tool {
	return Tool{FunctionDeclarations: decls}
}

// ThinkingConfig controls whether thought parts are surfaced and how much
// the model may spend on them.
type ThinkingConfig struct {
	IncludeThoughts bool `json:"includeThoughts,omitempty"`
	ThinkingBudget  *int `json:"thinkingBudget,omitempty"`
}
