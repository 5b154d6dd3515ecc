package project

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/alucardeht/antigravity/internal/tools"
)

func GetTools(env *Env) []tools.Tool {
	return []tools.Tool{
		NewAssimilateTool(env),
		NewDoctorTool(env),
		NewInitTool(env),
		NewKeywordsTool(env),
	}
}

func decode(input json.RawMessage, v any) error {
	if err := json.Unmarshal(input, v); err != nil {
		return tools.NewInvalidParamsError("invalid arguments: %v", err)
	}
	return nil
}

type AssimilateTool struct {
	env *Env
}

func NewAssimilateTool(env *Env) *AssimilateTool {
	return &AssimilateTool{env: env}
}

func (t *AssimilateTool) Name() string {
	return "assimilate"
}

func (t *AssimilateTool) Title() string {
	return "Assimilate Brain Dump"
}

func (t *AssimilateTool) Description() string {
	return `Split a free-text brain dump into sections and file each one into the project.

Sections start at Markdown headers. Each is classified by keyword counts into
rules (.agent/rules), workflows (.agent/workflows), skills (.agent/skills) or
docs (docs/imported) and written as a new imported_<title>.md file. Existing
files are never overwritten; repeated titles get -2, -3 suffixes. The raw
input is always kept under context/raw.

Pass either content (the text itself) or file (a path to read).`
}

func (t *AssimilateTool) Annotations() map[string]bool {
	return tools.Additive.Annotations()
}

func (t *AssimilateTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"root": {"type": "string", "description": "Project root directory"},
			"content": {"type": "string", "description": "Brain dump text"},
			"file": {"type": "string", "description": "Path to a brain dump file"}
		},
		"required": ["root"]
	}`)
}

type assimilateArgs struct {
	Root    string  `json:"root"`
	Content *string `json:"content"`
	File    string  `json:"file"`
}

func (t *AssimilateTool) Execute(input json.RawMessage) (any, error) {
	var args assimilateArgs
	if err := decode(input, &args); err != nil {
		return nil, err
	}
	if strings.TrimSpace(args.Root) == "" {
		return nil, tools.NewInvalidParamsError("root is required")
	}
	switch {
	case args.Content != nil && args.File != "":
		return nil, tools.NewInvalidParamsError("pass content or file, not both")
	case args.Content != nil:
		return t.env.Assimilate(args.Root, *args.Content)
	case args.File != "":
		path := args.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(args.Root, path)
		}
		return t.env.AssimilateFile(args.Root, path)
	}
	return nil, tools.NewInvalidParamsError("content or file is required")
}

type DoctorTool struct {
	env *Env
}

func NewDoctorTool(env *Env) *DoctorTool {
	return &DoctorTool{env: env}
}

func (t *DoctorTool) Name() string {
	return "doctor"
}

func (t *DoctorTool) Title() string {
	return "Project Doctor"
}

func (t *DoctorTool) Description() string {
	return `Check a project against the agent-first manifest and report missing or
empty entries. With fix=true, create what is missing and fill empty files from
the default templates. Files with content are never modified.`
}

func (t *DoctorTool) Annotations() map[string]bool {
	return tools.Repair.Annotations()
}

func (t *DoctorTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"root": {"type": "string", "description": "Project root directory"},
			"fix": {"type": "boolean", "description": "Repair missing and empty entries", "default": false}
		},
		"required": ["root"]
	}`)
}

func (t *DoctorTool) Execute(input json.RawMessage) (any, error) {
	var args struct {
		Root string `json:"root"`
		Fix  bool   `json:"fix"`
	}
	if err := decode(input, &args); err != nil {
		return nil, err
	}
	if strings.TrimSpace(args.Root) == "" {
		return nil, tools.NewInvalidParamsError("root is required")
	}
	return t.env.Doctor(args.Root, args.Fix)
}

type InitTool struct {
	env *Env
}

func NewInitTool(env *Env) *InitTool {
	return &InitTool{env: env}
}

func (t *InitTool) Name() string {
	return "init"
}

func (t *InitTool) Title() string {
	return "Create Project"
}

func (t *InitTool) Description() string {
	return `Generate an agent-first project tree: rules, workflows, skills, memory,
docs/imported and context/raw. The name is sanitized into a safe directory name.
An optional brain dump is assimilated into the new project and its technology
keywords are added to the tech stack rule. A blueprint adds its stack, source
directories and rules. Re-running over an existing project only fills in what
is missing.`
}

func (t *InitTool) Annotations() map[string]bool {
	return tools.Repair.Annotations()
}

func (t *InitTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"name": {"type": "string", "description": "Project name"},
			"parent": {"type": "string", "description": "Directory to create the project in"},
			"brain_dump": {"type": "string", "description": "Optional brain dump text"},
			"stack": {"type": "array", "items": {"type": "string"}, "description": "Technology keywords"},
			"blueprint": {"type": "string", "description": "Built-in blueprint (fastapi, go-fiber, nextjs, rust-axum) or a local blueprint file"},
			"dry_run": {"type": "boolean", "default": false}
		},
		"required": ["name", "parent"]
	}`)
}

func (t *InitTool) Execute(input json.RawMessage) (any, error) {
	var req InitRequest
	if err := decode(input, &req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Parent) == "" {
		return nil, tools.NewInvalidParamsError("parent is required")
	}
	return t.env.Init(req)
}

type KeywordsTool struct {
	env *Env
}

func NewKeywordsTool(env *Env) *KeywordsTool {
	return &KeywordsTool{env: env}
}

func (t *KeywordsTool) Name() string {
	return "keywords"
}

func (t *KeywordsTool) Title() string {
	return "Classification Keywords"
}

func (t *KeywordsTool) Description() string {
	return "List the keywords used to classify brain dump sections and to detect the technology stack."
}

func (t *KeywordsTool) Annotations() map[string]bool {
	return tools.ReadOnly.Annotations()
}

func (t *KeywordsTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {},
		"required": []
	}`)
}

func (t *KeywordsTool) Execute(input json.RawMessage) (any, error) {
	return t.env.Keywords()
}
