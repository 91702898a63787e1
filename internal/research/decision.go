package research

import (
	"encoding/json"
	"strings"

	"github.com/mohammad-safakhou/deepdive/internal/genai"
)

// Action is the control phase's verdict on how the session proceeds.
type Action string

const (
	ActionResearch Action = "research"
	ActionFinal    Action = "final"
)

// decisionCallName is the function the control phase is asked to call.
const decisionCallName = "next_step"

// Decision is the normalized result of the control phase. The rest of the
// orchestrator only ever sees this shape, never the raw call arguments.
type Decision struct {
	Action Action
	Notes  string
}

// ParseDecision scans a phase's function calls for the decision call and
// normalizes its arguments. Fallback order: object arguments, then
// JSON-string arguments, then a default of ActionFinal when the call is
// missing or unreadable. The action is read from "action", then "step".
func ParseDecision(calls []genai.FunctionCall) Decision {
	for _, call := range calls {
		if call.Name != decisionCallName {
			continue
		}
		args := decodeArgs(call.Args)
		if args == nil {
			return Decision{Action: ActionFinal}
		}
		dec := Decision{Action: ActionFinal}
		action, ok := args["action"].(string)
		if !ok {
			action, _ = args["step"].(string)
		}
		if strings.EqualFold(strings.TrimSpace(action), string(ActionResearch)) {
			dec.Action = ActionResearch
		}
		if notes, ok := args["notes"].(string); ok {
			dec.Notes = strings.TrimSpace(notes)
		}
		return dec
	}
	return Decision{Action: ActionFinal}
}

// DecisionTool declares the single function enabled during the control phase.
func DecisionTool() genai.Tool {
	return genai.FunctionTool(genai.FunctionDeclaration{
		Name:        decisionCallName,
		Description: "Decide whether the session needs another research cycle or is ready for the final answer.",
		Parameters: &genai.Schema{
			Type: "object",
			Properties: map[string]*genai.Schema{
				"action": {
					Type:        "string",
					Enum:        []string{string(ActionResearch), string(ActionFinal)},
					Description: "Next step for the session.",
				},
				"notes": {
					Type:        "string",
					Description: "What the next research cycle should focus on, or why the session is done.",
				},
			},
			Required: []string{"action"},
		},
	})
}

// decodeArgs tolerates both shapes the service produces for call arguments:
// a JSON object, or that same object encoded as a JSON string.
func decodeArgs(raw json.RawMessage) map[string]interface{} {
	if len(raw) == 0 {
		return nil
	}
	var args map[string]interface{}
	if err := json.Unmarshal(raw, &args); err == nil {
		return args
	}
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil
	}
	if err := json.Unmarshal([]byte(encoded), &args); err != nil {
		return nil
	}
	return args
}
