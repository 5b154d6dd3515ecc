package tools

// Hints summarizes a tool's side effects. None of the project tools delete
// or reach outside the local filesystem, so only two axes vary.
type Hints struct {
	ReadOnly   bool
	Idempotent bool
}

var (
	ReadOnly = Hints{ReadOnly: true, Idempotent: true}
	// Repair covers tools that only create missing files or fill empty ones.
	Repair = Hints{Idempotent: true}
	// Additive covers tools that write new files on every call.
	Additive = Hints{}
)

// Annotations renders h as MCP tool annotations.
func (h Hints) Annotations() map[string]bool {
	return map[string]bool{
		"readOnlyHint":    h.ReadOnly,
		"destructiveHint": false,
		"idempotentHint":  h.Idempotent,
		"openWorldHint":   false,
	}
}
