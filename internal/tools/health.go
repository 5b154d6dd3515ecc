package tools

import (
	"encoding/json"
	"time"
)

type HealthTool struct {
	registry *Registry
	version  string
	started  time.Time
}

func NewHealthTool(registry *Registry, version string) *HealthTool {
	return &HealthTool{registry: registry, version: version, started: time.Now()}
}

func (t *HealthTool) Name() string {
	return "health"
}

func (t *HealthTool) Description() string {
	return "Report server status, version and the tools it exposes"
}

func (t *HealthTool) Title() string {
	return "Server Health"
}

func (t *HealthTool) Annotations() map[string]bool {
	return ReadOnly.Annotations()
}

func (t *HealthTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {},
		"required": []
	}`)
}

func (t *HealthTool) Execute(input json.RawMessage) (any, error) {
	return map[string]any{
		"status":  "healthy",
		"version": t.version,
		"uptime":  int64(time.Since(t.started).Seconds()),
		"tools":   t.registry.Names(),
	}, nil
}
