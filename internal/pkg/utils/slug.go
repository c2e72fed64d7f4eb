package utils

import (
	"regexp"
	"strings"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug делает из названия места безопасное имя для файлов и ключей кэша
func Slug(place string) string {
	s := nonSlug.ReplaceAllString(strings.ToLower(place), "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "graph"
	}
	return s
}
