// Package persona loads TOML persona files: a system prompt plus optional
// per-persona generation overrides.
package persona

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Persona represents the structure of a TOML persona file
type Persona struct {
	System   string         `toml:"system"`
	Model    *string        `toml:"model,omitempty"`
	Sampling map[string]any `toml:"sampling,omitempty"`
}

// Load loads a persona file and returns its contents
func Load(filePath string) (*Persona, error) {
	var p Persona
	if _, err := toml.DecodeFile(filePath, &p); err != nil {
		return nil, fmt.Errorf("error decoding persona file: %v", err)
	}
	return &p, nil
}

// Find locates a persona file by name across the configured directories.
// Later directories take precedence over earlier ones.
func Find(name string, personaDirs []string) (string, error) {
	personaFile := name
	if !strings.HasSuffix(personaFile, ".toml") {
		personaFile = personaFile + ".toml"
	}

	var personaPath string
	var found bool
	for _, personaDir := range personaDirs {
		candidatePath := filepath.Join(personaDir, personaFile)
		if _, err := os.Stat(candidatePath); err == nil {
			personaPath = candidatePath
			found = true
			// Keep searching so later directories win
		}
	}

	if !found {
		return "", fmt.Errorf("persona file '%s' not found in any of the persona directories: %v", personaFile, personaDirs)
	}
	return personaPath, nil
}

// Resolve finds, loads and renders a persona by name, substituting
// {{key}} placeholders in the system prompt with the given arguments.
func Resolve(name string, personaDirs []string, args []string) (*Persona, error) {
	path, err := Find(name, personaDirs)
	if err != nil {
		return nil, err
	}

	p, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("error loading persona file: %v", err)
	}

	argMap, err := processArgs(args)
	if err != nil {
		return nil, fmt.Errorf("error processing arguments: %v", err)
	}

	for key, value := range argMap {
		placeholder := fmt.Sprintf("{{%s}}", key)
		p.System = strings.ReplaceAll(p.System, placeholder, value)
	}

	return p, nil
}

// processArgs processes the command line arguments and returns a map of key-value pairs
func processArgs(args []string) (map[string]string, error) {
	result := make(map[string]string)
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if strings.HasPrefix(arg, `"`) && strings.HasSuffix(arg, `"`) {
			arg = strings.Trim(arg, `"`)
		}

		parts := strings.SplitN(arg, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid argument format: %s. Expected format: key:value", arg)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove escape characters from value
		value = strings.ReplaceAll(value, `\:`, ":")
		value = strings.ReplaceAll(value, `\"`, `"`)

		result[key] = value
	}
	return result, nil
}
