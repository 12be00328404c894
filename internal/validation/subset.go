package validation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedKeyword flags schema keywords outside the supported subset.
var ErrUnsupportedKeyword = errors.New("front-matter schema: unsupported keyword")

// Site schemas stick to a reviewable subset of JSON Schema. Vendor extensions
// (x- prefixed keys) pass through untouched.
var allowedKeywords = map[string]struct{}{
	"$schema":              {},
	"$id":                  {},
	"$ref":                 {},
	"$defs":                {},
	"$anchor":              {},
	"type":                 {},
	"properties":           {},
	"required":             {},
	"items":                {},
	"oneOf":                {},
	"anyOf":                {},
	"allOf":                {},
	"const":                {},
	"enum":                 {},
	"default":              {},
	"title":                {},
	"description":          {},
	"format":               {},
	"pattern":              {},
	"minimum":              {},
	"maximum":              {},
	"minLength":            {},
	"maxLength":            {},
	"minItems":             {},
	"maxItems":             {},
	"uniqueItems":          {},
	"additionalProperties": {},
}

func validateSchemaSubset(schema map[string]any) error {
	return validateSchemaNode(schema, "")
}

func validateSchemaNode(node map[string]any, path string) error {
	if node == nil {
		return nil
	}
	for key, value := range node {
		if strings.HasPrefix(key, "x-") {
			continue
		}
		if _, ok := allowedKeywords[key]; !ok {
			return fmt.Errorf("%w: %s at %s", ErrUnsupportedKeyword, key, locationOrRoot(path))
		}

		switch key {
		case "properties":
			props, ok := value.(map[string]any)
			if !ok {
				return fmt.Errorf("%w: properties at %s", ErrUnsupportedKeyword, locationOrRoot(path))
			}
			for name, child := range props {
				childSchema, ok := child.(map[string]any)
				if !ok {
					return fmt.Errorf("%w: properties/%s at %s", ErrUnsupportedKeyword, name, locationOrRoot(path))
				}
				if err := validateSchemaNode(childSchema, joinPath(path, "properties", name)); err != nil {
					return err
				}
			}
		case "items":
			switch typed := value.(type) {
			case map[string]any:
				if err := validateSchemaNode(typed, joinPath(path, "items")); err != nil {
					return err
				}
			default:
				return fmt.Errorf("%w: items at %s", ErrUnsupportedKeyword, locationOrRoot(path))
			}
		case "oneOf", "anyOf", "allOf":
			if err := validateSchemaArray(value, joinPath(path, key)); err != nil {
				return err
			}
		case "$defs":
			if defs, ok := value.(map[string]any); ok {
				for name, child := range defs {
					childSchema, ok := child.(map[string]any)
					if !ok {
						return fmt.Errorf("%w: $defs/%s at %s", ErrUnsupportedKeyword, name, locationOrRoot(path))
					}
					if err := validateSchemaNode(childSchema, joinPath(path, "$defs", name)); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func validateSchemaArray(value any, path string) error {
	items, ok := value.([]any)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedKeyword, path)
	}
	for idx, entry := range items {
		child, ok := entry.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %s/%d", ErrUnsupportedKeyword, path, idx)
		}
		if err := validateSchemaNode(child, fmt.Sprintf("%s/%d", path, idx)); err != nil {
			return err
		}
	}
	return nil
}

func locationOrRoot(path string) string {
	if path == "" {
		return "#"
	}
	return path
}

func joinPath(parts ...string) string {
	trimmed := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		trimmed = append(trimmed, part)
	}
	if len(trimmed) == 0 {
		return ""
	}
	return strings.Join(trimmed, "/")
}
