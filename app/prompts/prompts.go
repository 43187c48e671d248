package prompts

import (
	"fmt"
	"strings"

	_ "embed"
)

//go:embed detection.txt
var detectionTemplate string

//go:embed persona.txt
var personaTemplate string

//go:embed extraction.txt
var extractionTemplate string

//go:embed strategy.txt
var strategyTemplate string

type Name string

const (
	Detection  Name = "detection"
	Persona    Name = "persona"
	Extraction Name = "extraction"
	Strategy   Name = "strategy"
)

var templates = map[Name]string{
	Detection:  detectionTemplate,
	Persona:    personaTemplate,
	Extraction: extractionTemplate,
	Strategy:   strategyTemplate,
}

// Render substitutes {key} placeholders in the named template.
func Render(name Name, values map[string]any) (string, error) {
	template, ok := templates[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt template: %s", name)
	}

	for key, value := range values {
		template = strings.ReplaceAll(template, "{"+key+"}", fmt.Sprint(value))
	}

	return template, nil
}
