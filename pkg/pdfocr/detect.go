package pdfocr

import (
	"fmt"
	"regexp"
	"strings"
)

var ocgPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/Type\s*/OCG\s*/Name\s*\(([^)]+)\)`),
	regexp.MustCompile(`/OCG\s*<<[^>]*?/Name\s*\(([^)]+)\)`),
	regexp.MustCompile(`<</Type/OCG/Name\(([^)]+)\)`),
	regexp.MustCompile(`/Name\s*\(([^)]+)\)[\s\S]{1,50}/Type\s*/OCG`),
}

// DetectLayers attempts to find optional content group names in the raw PDF
// data. Names are returned once each, in order of discovery.
func DetectLayers(pdfData []byte) ([]string, error) {
	if len(pdfData) == 0 {
		return nil, fmt.Errorf("empty PDF data")
	}

	content := string(pdfData)
	var layers []string
	for _, pattern := range ocgPatterns {
		for _, match := range pattern.FindAllStringSubmatch(content, -1) {
			if len(match) >= 2 {
				layers = append(layers, decodePDFString(match[1]))
			}
		}
	}

	unique := make([]string, 0, len(layers))
	seen := make(map[string]bool)
	for _, l := range layers {
		if !seen[l] {
			seen[l] = true
			unique = append(unique, l)
		}
	}
	return unique, nil
}

// LayerCheckResult contains the results of checking for overlay layers
type LayerCheckResult struct {
	Layers   []string // All detected layers
	Existing []string // Detected layers matching the wanted names
	Warnings []string // Layers that look like a previous overlay under another name
}

// CheckExistingLayers reports which of names the PDF already carries.
func CheckExistingLayers(pdfData []byte, names []string) (LayerCheckResult, error) {
	result := LayerCheckResult{}

	layers, err := DetectLayers(pdfData)
	if err != nil {
		return result, fmt.Errorf("cannot analyze layers: %w", err)
	}
	result.Layers = layers

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	for _, layer := range layers {
		if wanted[layer] {
			result.Existing = append(result.Existing, layer)
			continue
		}
		lower := strings.ToLower(layer)
		if strings.Contains(lower, "ocr") || strings.Contains(lower, "box") {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("existing layer might contain an overlay: %s", layer))
		}
	}

	return result, nil
}
