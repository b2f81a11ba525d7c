package mcpserver

import (
	"encoding/json"
	"strings"
)

const (
	manifestSchema = "https://static.modelcontextprotocol.io/schemas/2025-10-17/server.schema.json"
	registryName   = "io.github.panbanda/codepulse"
	repositoryURL  = "https://github.com/panbanda/codepulse"
	imageName      = "ghcr.io/panbanda/codepulse"

	// The registry rejects longer descriptions.
	maxDescriptionLen = 100
)

// Manifest is the registry entry (server.json) for the codepulse MCP server.
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

// Package is one way of launching the server: an image run with the mcp
// subcommand over stdio.
type Package struct {
	RegistryType     string     `json:"registryType"`
	Identifier       string     `json:"identifier"`
	PackageArguments []Argument `json:"packageArguments,omitempty"`
	Transport        Transport  `json:"transport"`
}

type Argument struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

type Transport struct {
	Type string `json:"type"`
}

// NewManifest describes the server at version. The description names the
// tools the server registers, so it follows the tool set.
func NewManifest(version string) Manifest {
	if version == "" {
		version = "0.0.0"
	}
	return Manifest{
		Schema:      manifestSchema,
		Name:        registryName,
		Description: manifestDescription(),
		Version:     version,
		Repository:  &Repository{URL: repositoryURL, Source: "github"},
		Packages: []Package{{
			RegistryType:     "oci",
			Identifier:       imageName + ":" + version,
			PackageArguments: []Argument{{Type: "positional", Value: "mcp"}},
			Transport:        Transport{Type: "stdio"},
		}},
	}
}

// GenerateManifest renders NewManifest(version) as indented JSON.
func GenerateManifest(version string) ([]byte, error) {
	return json.MarshalIndent(NewManifest(version), "", "  ")
}

func manifestDescription() string {
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.name)
	}
	desc := "JavaScript and Python code quality scoring. Tools: " + strings.Join(names, ", ")
	if len(desc) > maxDescriptionLen {
		desc = desc[:maxDescriptionLen-3] + "..."
	}
	return desc
}
