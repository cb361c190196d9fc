package actions

// Result is the uniform action response. For failures OK is false and
// Error carries the taxonomy code; deferred actions report busyUntilTick
// inside Data.
type Result struct {
	OK      bool           `json:"ok"`
	Tick    uint64         `json:"tick"`
	Message string         `json:"message,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
	Error   Code           `json:"error,omitempty"`
}

// outcome is what a verb handler returns on success; the dispatcher wraps
// it into a Result stamped with the commit tick.
type outcome struct {
	Message string
	Data    map[string]any
}

func ok(message string) *outcome {
	return &outcome{Message: message}
}

func (o *outcome) with(key string, v any) *outcome {
	if o.Data == nil {
		o.Data = make(map[string]any)
	}
	o.Data[key] = v
	return o
}
