package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/alucardeht/antigravity/internal/logger"
	"github.com/alucardeht/antigravity/internal/tools"
	"github.com/alucardeht/antigravity/pkg/protocol"
	"github.com/alucardeht/antigravity/pkg/version"
)

var log = logger.ForComponent("mcp")

const instructions = "Tools for agent-first projects: assimilate brain dumps into rules, " +
	"workflows, skills and docs; audit and repair the generated tree with doctor."

type Handler struct {
	registry   *tools.Registry
	serverInfo protocol.ServerInfo

	mu          sync.Mutex
	initialized bool
	clientInfo  protocol.ClientInfo
}

func NewHandler(registry *tools.Registry, name, serverVersion string) *Handler {
	return &Handler{
		registry:   registry,
		serverInfo: protocol.ServerInfo{Name: name, Version: serverVersion},
	}
}

// Handle dispatches one request. Notifications get no reply from jsonrpc2,
// whatever is returned here.
func (h *Handler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
	switch req.Method {
	case "initialize":
		return h.handleInitialize(req)
	case "notifications/initialized":
		h.mu.Lock()
		h.initialized = true
		h.mu.Unlock()
		return nil, nil
	case "ping":
		return map[string]any{}, nil
	case "tools/list":
		return h.handleListTools(), nil
	case "tools/call":
		return h.handleCallTool(req)
	}

	if req.Notif {
		return nil, nil
	}
	return nil, &jsonrpc2.Error{
		Code:    jsonrpc2.CodeMethodNotFound,
		Message: fmt.Sprintf("Method not found: %s", req.Method),
	}
}

func (h *Handler) Initialized() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.initialized
}

func (h *Handler) handleInitialize(req *jsonrpc2.Request) (any, error) {
	var params protocol.InitializeParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.clientInfo = params.ClientInfo
	h.mu.Unlock()
	log.Info("client connected", "client", params.ClientInfo.Name, "version", params.ClientInfo.Version)

	return &protocol.InitializeResult{
		ProtocolVersion: negotiateProtocolVersion(params.ProtocolVersion),
		Capabilities: map[string]any{
			"tools": map[string]any{},
		},
		ServerInfo:   h.serverInfo,
		Instructions: instructions,
	}, nil
}

func negotiateProtocolVersion(clientVersion string) string {
	for _, v := range version.SupportedProtocolVersions {
		if clientVersion == v {
			return v
		}
	}
	return version.ProtocolVersion
}

func (h *Handler) handleListTools() *protocol.ListToolsResult {
	list := h.registry.List()
	result := &protocol.ListToolsResult{Tools: make([]protocol.Tool, 0, len(list))}

	for _, t := range list {
		tool := protocol.Tool{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.Schema(),
		}
		if annotated, ok := t.(tools.AnnotatedTool); ok {
			tool.Title = annotated.Title()
			tool.Annotations = annotated.Annotations()
		}
		result.Tools = append(result.Tools, tool)
	}
	return result
}

// handleCallTool reports unknown tools and bad arguments as protocol errors
// and tool failures as an error result the model can read.
func (h *Handler) handleCallTool(req *jsonrpc2.Request) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("tool panic recovered", "panic", r, "stack", string(debug.Stack()))
			result, err = protocol.TextResult(fmt.Sprintf("tool execution panicked: %v", r), true), nil
		}
	}()

	var params protocol.CallToolParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	if params.Name == "" {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "tool name is required"}
	}

	out, err := h.registry.Execute(params.Name, params.Arguments)
	if err != nil {
		code := tools.Code(err)
		if code == tools.CodeInternalError {
			log.Warn("tool failed", "tool", params.Name, "error", err)
			return protocol.TextResult(err.Error(), true), nil
		}
		return nil, &jsonrpc2.Error{Code: int64(code), Message: err.Error()}
	}

	text, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return protocol.TextResult(string(text), false), nil
}

func decodeParams(req *jsonrpc2.Request, v any) error {
	if req.Params == nil {
		return nil
	}
	if err := json.Unmarshal(*req.Params, v); err != nil {
		return &jsonrpc2.Error{
			Code:    jsonrpc2.CodeInvalidParams,
			Message: fmt.Sprintf("invalid params for %s: %v", req.Method, err),
		}
	}
	return nil
}
