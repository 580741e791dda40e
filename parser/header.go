package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
	"github.com/pivolan/ecommerce_analyzer/schema"
)

var specialSymbols = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// replaceSpecialSymbols схлопывает всё, кроме латиницы и цифр, в "_"
func replaceSpecialSymbols(s string) string {
	return strings.Trim(specialSymbols.ReplaceAllString(s, "_"), "_")
}

// generateColumnName создает имя столбца по индексу
func generateColumnName(index int) string {
	return fmt.Sprintf("column_%d", index+1)
}

// cleanHeaderName приводит заголовок к виду snake_case в ASCII
func cleanHeaderName(header string, index int) string {
	header = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
	if header == "" {
		return generateColumnName(index)
	}
	cleaned := replaceSpecialSymbols(strings.ToLower(unidecode.Unidecode(header)))
	if cleaned == "" {
		return generateColumnName(index)
	}
	return cleaned
}

// dedupeHeaders проверяет и исправляет дубликаты в заголовках
func dedupeHeaders(headers []string) []string {
	seen := make(map[string]bool, len(headers))
	result := make([]string, len(headers))

	for i, header := range headers {
		candidate := header
		for counter := 1; seen[candidate]; counter++ {
			candidate = fmt.Sprintf("%s_%d", header, counter)
		}
		seen[candidate] = true
		result[i] = candidate
	}
	return result
}

// NormalizeHeaders maps raw header text to unique canonical column names.
func NormalizeHeaders(raw []string, aliases schema.Aliases) []string {
	out := make([]string, len(raw))
	for i, h := range raw {
		out[i] = aliases.Canonical(cleanHeaderName(h, i))
	}
	return dedupeHeaders(out)
}
