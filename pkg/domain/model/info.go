package model

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

// ModuleInfo holds the metadata declared in a module's .info or .info.yml file
type ModuleInfo struct {
	Name        string
	Description string
	Package     string
	Core        string
	Version     string
	Project     string

	Values map[string]string   // every scalar key, including the ones above
	Lists  map[string][]string // keys declared as key[] = value, or YAML sequences
}

// IsInfoFile reports whether name looks like a module info file
func IsInfoFile(name string) bool {
	base := path.Base(name)
	return strings.HasSuffix(base, ".info") || strings.HasSuffix(base, ".info.yml")
}

// ParseInfoFile parses data according to the extension of name
func ParseInfoFile(name string, data []byte) (*ModuleInfo, error) {
	var (
		info *ModuleInfo
		err  error
	)
	if strings.HasSuffix(name, ".yml") {
		info, err = ParseInfoYAML(bytes.NewReader(data))
	} else {
		info, err = ParseInfo(bytes.NewReader(data))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse info file", goerr.V("file", name))
	}
	return info, nil
}

// ParseInfo parses the Drupal 6/7 "key = value" info format
func ParseInfo(r io.Reader) (*ModuleInfo, error) {
	info := newModuleInfo()

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, goerr.New("info line is not key = value",
				goerr.V("line", lineNo),
				goerr.V("text", line),
			)
		}
		key = unquote(key)
		value = unquote(value)

		if list, ok := strings.CutSuffix(key, "[]"); ok {
			info.Lists[list] = append(info.Lists[list], value)
			continue
		}
		info.Values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to read info file")
	}

	return info.finish()
}

// ParseInfoYAML parses the Drupal 8 .info.yml format
func ParseInfoYAML(r io.Reader) (*ModuleInfo, error) {
	var raw map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, goerr.Wrap(err, "failed to decode info yaml")
	}

	info := newModuleInfo()
	for key, value := range raw {
		switch v := value.(type) {
		case []any:
			for _, item := range v {
				info.Lists[key] = append(info.Lists[key], fmt.Sprint(item))
			}
		case map[string]any, nil:
			// nested mappings carry nothing the descriptor needs
		default:
			info.Values[key] = fmt.Sprint(v)
		}
	}

	return info.finish()
}

// ShortName is the machine name used for short_name and storage keys
func (i *ModuleInfo) ShortName() string {
	if i.Project != "" {
		return i.Project
	}
	return strings.ToLower(strings.ReplaceAll(i.Name, " ", ""))
}

func newModuleInfo() *ModuleInfo {
	return &ModuleInfo{
		Values: make(map[string]string),
		Lists:  make(map[string][]string),
	}
}

func (i *ModuleInfo) finish() (*ModuleInfo, error) {
	i.Name = i.Values["name"]
	i.Description = i.Values["description"]
	i.Package = i.Values["package"]
	i.Core = i.Values["core"]
	i.Version = i.Values["version"]
	i.Project = i.Values["project"]

	if i.Name == "" {
		return nil, goerr.New("info file has no name")
	}
	return i, nil
}

func unquote(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"'`)
}
