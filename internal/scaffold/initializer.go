// Package scaffold creates a starter altar project.
package scaffold

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/dyluth/altar/internal/config"
	"github.com/dyluth/altar/internal/instance"
	"gopkg.in/yaml.v3"
)

//go:embed templates/*
var templatesFS embed.FS

// CatalogFile is the sample catalog written next to altar.yml.
const CatalogFile = "catalog.txt"

// FileInfo represents a file to be created during initialization
type FileInfo struct {
	Path        string
	Content     []byte
	Permissions os.FileMode
}

type templateData struct {
	Namespace string
	RedisURL  string
}

// Initialize writes altar.yml and a sample catalog into dir. Unless force
// is set it refuses to overwrite either file.
func Initialize(dir string, force bool) error {
	if !force {
		if err := CheckExisting(dir); err != nil {
			return err
		}
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	files, err := getTemplateFiles(templateData{
		Namespace: instance.NameFromPath(abs),
		RedisURL:  instance.GetRedisURL(instance.DefaultRedisPort),
	})
	if err != nil {
		return err
	}

	if err := writeFiles(dir, files); err != nil {
		return err
	}

	return validateCreatedFiles(dir)
}

// getTemplateFiles renders every template.
func getTemplateFiles(data templateData) ([]FileInfo, error) {
	configTmpl, err := template.ParseFS(templatesFS, "templates/altar.yml.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to read altar.yml template: %w", err)
	}
	var rendered bytes.Buffer
	if err := configTmpl.Execute(&rendered, data); err != nil {
		return nil, fmt.Errorf("failed to render altar.yml: %w", err)
	}

	sample, err := templatesFS.ReadFile("templates/catalog.txt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog template: %w", err)
	}

	return []FileInfo{
		{Path: config.DefaultPath, Content: rendered.Bytes(), Permissions: 0644},
		{Path: CatalogFile, Content: sample, Permissions: 0644},
	}, nil
}

// writeFiles writes all files relative to dir
func writeFiles(dir string, files []FileInfo) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	for _, file := range files {
		path := filepath.Join(dir, file.Path)
		if err := os.WriteFile(path, file.Content, file.Permissions); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.Path, err)
		}
	}

	return nil
}

// validateCreatedFiles checks that the written altar.yml is valid YAML and
// a valid configuration.
func validateCreatedFiles(dir string) error {
	path := filepath.Join(dir, config.DefaultPath)
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read created %s: %w", config.DefaultPath, err)
	}

	var yamlData interface{}
	if err := yaml.Unmarshal(content, &yamlData); err != nil {
		return fmt.Errorf("created %s is not valid YAML: %w", config.DefaultPath, err)
	}

	if _, err := config.Load(path); err != nil {
		return fmt.Errorf("created %s is invalid: %w", config.DefaultPath, err)
	}

	return nil
}

// CreatedFiles lists what Initialize writes, for reporting.
func CreatedFiles() []string {
	return []string{config.DefaultPath, CatalogFile}
}
