package analysis

import (
	"path/filepath"
	"sort"
	"strings"
)

// Unknown is returned by DetectLanguage for unrecognized extensions. No visitor
// is registered under it.
const Unknown = "unknown"

var extensionLanguages = map[string]string{
	".py":   "python",
	".pyw":  "python",
	".js":   "javascript",
	".jsx":  "javascript",
	".mjs":  "javascript",
	".cjs":  "javascript",
	".ts":   "typescript",
	".tsx":  "typescript",
	".java": "java",
	".rb":   "ruby",
	".rs":   "rust",
	".c":    "c",
	".h":    "c",
	".php":  "php",
	".go":   "go",
	".cpp":  "cpp",
	".cc":   "cpp",
	".hpp":  "cpp",
	".cs":   "csharp",
}

// DetectLanguage maps a file name to a language identifier by extension.
func DetectLanguage(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if lang, ok := extensionLanguages[ext]; ok {
		return lang
	}
	return Unknown
}

// Extensions returns the sorted file extensions detected as lang.
func Extensions(lang string) []string {
	out := []string{}
	for ext, l := range extensionLanguages {
		if l == lang {
			out = append(out, ext)
		}
	}
	sort.Strings(out)
	return out
}

// AllExtensions returns every extension DetectLanguage recognizes, sorted.
func AllExtensions() []string {
	out := make([]string, 0, len(extensionLanguages))
	for ext := range extensionLanguages {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
