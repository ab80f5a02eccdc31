package mcpserver

import (
	"bytes"
	"context"
	"embed"
	"path"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/*.md
var promptFiles embed.FS

// promptArgument is one {{name}} placeholder of a prompt body.
type promptArgument struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Default     string `yaml:"default"`
}

// promptDoc is a prompt file: YAML front matter followed by a body.
type promptDoc struct {
	Description string           `yaml:"description"`
	Arguments   []promptArgument `yaml:"arguments"`
	Body        string           `yaml:"-"`
}

// registerPrompts registers every embedded prompt under its file name.
func (s *Server) registerPrompts() {
	entries, err := promptFiles.ReadDir("prompts")
	if err != nil {
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		content, err := promptFiles.ReadFile(path.Join("prompts", entry.Name()))
		if err != nil {
			continue
		}

		doc := parsePrompt(content)
		prompt := &mcp.Prompt{
			Name:        strings.TrimSuffix(entry.Name(), ".md"),
			Description: doc.Description,
		}
		for _, arg := range doc.Arguments {
			prompt.Arguments = append(prompt.Arguments, &mcp.PromptArgument{
				Name:        arg.Name,
				Description: arg.Description,
				Required:    arg.Default == "",
			})
		}
		s.server.AddPrompt(prompt, makePromptHandler(doc))
	}
}

// parsePrompt splits YAML front matter from the body. Content without valid
// front matter is all body.
func parsePrompt(content []byte) promptDoc {
	if !bytes.HasPrefix(content, []byte("---\n")) {
		return promptDoc{Body: string(content)}
	}

	rest := content[4:]
	end := bytes.Index(rest, []byte("\n---\n"))
	if end == -1 {
		return promptDoc{Body: string(content)}
	}

	var doc promptDoc
	if err := yaml.Unmarshal(rest[:end], &doc); err != nil {
		return promptDoc{Body: string(content)}
	}
	doc.Body = strings.TrimPrefix(string(rest[end+5:]), "\n")
	return doc
}

// render replaces each {{name}} with the given argument or its default.
func (d promptDoc) render(args map[string]string) string {
	pairs := make([]string, 0, 2*len(d.Arguments))
	for _, arg := range d.Arguments {
		value := args[arg.Name]
		if value == "" {
			value = arg.Default
		}
		pairs = append(pairs, "{{"+arg.Name+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(d.Body)
}

func makePromptHandler(doc promptDoc) mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		var args map[string]string
		if req != nil && req.Params != nil {
			args = req.Params.Arguments
		}
		return &mcp.GetPromptResult{
			Description: doc.Description,
			Messages: []*mcp.PromptMessage{
				{
					Role:    "user",
					Content: &mcp.TextContent{Text: doc.render(args)},
				},
			},
		}, nil
	}
}
