package scaffold

import (
	"encoding/json"
	"fmt"

	"github.com/starford/ansuz/internal/layout"
)

// RegisterProject merges this project's entry into the Cursor MCP registry
// at .cursor/mcp.json, preserving entries of other projects. A registry that
// fails to parse is rebuilt from scratch rather than aborting init.
func (s *Service) RegisterProject(project, root, memoryPath string, mcpCommand []string) error {
	var data map[string]any
	exists, err := s.store.Exists(layout.CursorConfigFile)
	if err != nil {
		return fmt.Errorf("scaffold: %w", err)
	}
	if exists {
		raw, err := s.store.Read(layout.CursorConfigFile)
		if err != nil {
			return fmt.Errorf("scaffold: %w", err)
		}
		if err := json.Unmarshal(raw, &data); err != nil {
			data = nil
		}
	}
	if data == nil {
		data = map[string]any{}
	}

	projects, ok := data["projects"].(map[string]any)
	if !ok {
		projects = map[string]any{}
		data["projects"] = projects
	}

	var command string
	var args []string
	if len(mcpCommand) > 0 {
		command = mcpCommand[0]
		args = mcpCommand[1:]
	}
	projects[project] = map[string]any{
		"root": root,
		"memory": map[string]any{
			"command": command,
			"args":    args,
			"env":     map[string]string{"MEMORY_FILE_PATH": memoryPath},
		},
		"canonical_docs": []string{
			s.tree.Spec(),
			s.tree.Roadmap(),
			s.tree.Progress(),
			s.tree.Phases() + "/*.md",
			s.tree.Stages() + "/*.md",
			s.tree.Reports() + "/*.md",
		},
	}

	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("scaffold: encode registry: %w", err)
	}
	if err := s.store.Write(layout.CursorConfigFile, out); err != nil {
		return fmt.Errorf("scaffold: %w", err)
	}
	return nil
}
