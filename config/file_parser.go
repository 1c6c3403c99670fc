package config

import (
	"path/filepath"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/v2"
)

// FileType is the format of a preset file.
type FileType string

const (
	FileTypeYAML FileType = "yaml"
	FileTypeTOML FileType = "toml"
	FileTypeJSON FileType = "json"
)

func (f FileType) String() string {
	return string(f)
}

// Parser returns the koanf parser for f.
func (f FileType) Parser() (koanf.Parser, error) {
	switch f {
	case FileTypeJSON:
		return json.Parser(), nil
	case FileTypeTOML:
		return toml.Parser(), nil
	case FileTypeYAML:
		return yaml.Parser(), nil
	default:
		return nil, errors.New("invalid preset file type", errors.CategoryValidation).
			WithTextCode("INVALID_FILE_TYPE").
			WithMetadata(map[string]any{
				"file_type":   string(f),
				"valid_types": []string{string(FileTypeJSON), string(FileTypeYAML), string(FileTypeTOML)},
			})
	}
}

// FileTypeOf infers the format from the extension of path. Unknown
// extensions fall back to fallback, or JSON.
func FileTypeOf(path string, fallback ...FileType) FileType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FileTypeTOML
	case ".json":
		return FileTypeJSON
	case ".yaml", ".yml":
		return FileTypeYAML
	}
	if len(fallback) > 0 {
		return fallback[0]
	}
	return FileTypeJSON
}
