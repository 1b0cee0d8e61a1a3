package llm

import "strings"

// BashToolType is the Anthropic server-defined bash tool version.
const BashToolType = "bash_20250124"

// BashTool returns the default bash tool descriptor.
func BashTool() Tool {
	return Tool{Type: BashToolType, Name: "bash"}
}

// FunctionSpec is the portable function-calling form of a Tool, used by
// providers that have no server-defined tool types.
type FunctionSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// FunctionSpecFor translates a tool descriptor into a function declaration.
// Bash tools get the command/restart input schema; other tools accept a
// free-form object.
func FunctionSpecFor(t Tool) FunctionSpec {
	if isBashTool(t) {
		return FunctionSpec{
			Name:        t.Name,
			Description: "Run a command in a bash shell. Use restart to start a fresh session.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"command": map[string]any{
						"type":        "string",
						"description": "The bash command to run.",
					},
					"restart": map[string]any{
						"type":        "boolean",
						"description": "Restart the bash session.",
					},
				},
			},
		}
	}
	return FunctionSpec{
		Name:        t.Name,
		Description: "Invoke the " + t.Name + " tool.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	}
}

func isBashTool(t Tool) bool {
	return strings.HasPrefix(t.Type, "bash_") || (t.Type == "" && t.Name == "bash")
}
