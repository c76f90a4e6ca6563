// Package prompts provides externalized LLM prompt templates, embedded at
// compile time. Templates use literal {{placeholder}} tokens with no escaping
// or conditional logic; the set of placeholders is part of each template's
// contract with its caller.
package prompts

import (
	"embed"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

//go:embed *.md
var promptFiles embed.FS

// Template names.
const (
	RankJobFit  = "rank_job_fit.md"
	TailorCover = "tailor_cover.md"
)

var placeholderPattern = regexp.MustCompile(`\{\{[a-z_]+\}\}`)

// cache stores loaded templates to avoid repeated filesystem reads.
var (
	cache   = make(map[string]string)
	cacheMu sync.RWMutex
)

// Get returns the raw template text for name.
func Get(name string) (string, error) {
	cacheMu.RLock()
	if tmpl, ok := cache[name]; ok {
		cacheMu.RUnlock()
		return tmpl, nil
	}
	cacheMu.RUnlock()

	data, err := promptFiles.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt template %s: %w", name, err)
	}

	cacheMu.Lock()
	cache[name] = string(data)
	cacheMu.Unlock()

	return string(data), nil
}

// Render loads the named template and substitutes every {{key}} token with
// its value from vars, literally. It returns an error if the rendered text
// still contains a placeholder, which means the caller and the template
// disagree on the contract.
func Render(name string, vars map[string]string) (string, error) {
	tmpl, err := Get(name)
	if err != nil {
		return "", err
	}

	result := tmpl
	for key, value := range vars {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}

	if missing := placeholderPattern.FindString(result); missing != "" {
		return "", fmt.Errorf("prompt template %s: placeholder %s was not substituted", name, missing)
	}

	return result, nil
}

// Placeholders returns the distinct placeholder keys a template expects.
func Placeholders(name string) ([]string, error) {
	tmpl, err := Get(name)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var keys []string
	for _, match := range placeholderPattern.FindAllString(tmpl, -1) {
		key := strings.Trim(match, "{}")
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys, nil
}
