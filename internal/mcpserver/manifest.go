package mcpserver

import "encoding/json"

const (
	manifestSchema = "https://static.modelcontextprotocol.io/schemas/2025-10-17/server.schema.json"
	serverName     = "io.github.panbanda/codemetrics"
	repositoryURL  = "https://github.com/panbanda/codemetrics"
	imageName      = "ghcr.io/panbanda/codemetrics"
)

// Manifest is the server.json entry published to the MCP registry.
type Manifest struct {
	Schema      string      `json:"$schema"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Version     string      `json:"version"`
	Repository  *Repository `json:"repository,omitempty"`
	Packages    []Package   `json:"packages,omitempty"`
}

type Repository struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// Package is one way of installing and starting the server.
type Package struct {
	RegistryType         string        `json:"registryType"`
	Identifier           string        `json:"identifier"`
	Version              string        `json:"version,omitempty"`
	RuntimeArguments     []Argument    `json:"runtimeArguments,omitempty"`
	PackageArguments     []Argument    `json:"packageArguments,omitempty"`
	EnvironmentVariables []EnvVariable `json:"environmentVariables,omitempty"`
	Transport            Transport     `json:"transport"`
}

// Argument is a positional or named command-line argument.
type Argument struct {
	Type        string `json:"type"`
	Name        string `json:"name,omitempty"`
	Value       string `json:"value,omitempty"`
	Description string `json:"description,omitempty"`
}

type EnvVariable struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsRequired  bool   `json:"isRequired"`
}

type Transport struct {
	Type string `json:"type"`
}

// GenerateManifest renders the registry manifest for version, which
// defaults to 0.0.0.
func GenerateManifest(version string) ([]byte, error) {
	if version == "" {
		version = "0.0.0"
	}

	image := Package{
		RegistryType: "oci",
		Identifier:   imageName + ":" + version,
		RuntimeArguments: []Argument{
			{Type: "named", Name: "-v", Value: "${workspaceFolder}:/src:ro", Description: "Mount the code to analyze"},
		},
		PackageArguments: []Argument{
			{Type: "positional", Value: "mcp"},
		},
		EnvironmentVariables: []EnvVariable{
			{Name: "CODEMETRICS_CONFIG", Description: "Path of a codemetrics.toml to use instead of discovery"},
		},
		Transport: Transport{Type: "stdio"},
	}

	return json.MarshalIndent(Manifest{
		Schema:      manifestSchema,
		Name:        serverName,
		Description: "Code metrics for Java, C# and Go: complexity, maintainability and cross-file duplicates",
		Version:     version,
		Repository:  &Repository{URL: repositoryURL, Source: "github"},
		Packages:    []Package{image},
	}, "", "  ")
}
