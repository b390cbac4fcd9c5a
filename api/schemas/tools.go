package schemas

// ParamType is the JSON schema type of a tool parameter.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamInteger ParamType = "integer"
	ParamNumber  ParamType = "number"
	ParamArray   ParamType = "array"
)

// ParamSpec declares one parameter of a tool.
type ParamSpec struct {
	Name        string
	Type        ParamType
	Description string
	Enum        []string
	Items       ParamType // element type for arrays
	MinItems    int
	MaxItems    int
	Required    bool
}

// ToolDescriptor advertises one tool to the model.
type ToolDescriptor struct {
	Name        string
	Description string
	Params      []ParamSpec
}

// RequiredParams lists the names of the required parameters in declaration order.
func (d ToolDescriptor) RequiredParams() []string {
	req := []string{}
	for _, p := range d.Params {
		if p.Required {
			req = append(req, p.Name)
		}
	}
	return req
}

// Properties renders the parameters as a JSON schema "properties" object.
func (d ToolDescriptor) Properties() map[string]any {
	props := make(map[string]any, len(d.Params))
	for _, p := range d.Params {
		prop := map[string]any{"type": string(p.Type)}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		if p.Type == ParamArray {
			prop["items"] = map[string]any{"type": string(p.Items)}
			if p.MinItems > 0 {
				prop["minItems"] = p.MinItems
			}
			if p.MaxItems > 0 {
				prop["maxItems"] = p.MaxItems
			}
		}
		props[p.Name] = prop
	}
	return props
}

// InputSchema renders the full JSON schema object for the tool input.
func (d ToolDescriptor) InputSchema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": d.Properties(),
		"required":   d.RequiredParams(),
	}
}
