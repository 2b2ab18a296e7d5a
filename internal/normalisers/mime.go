package normalisers

import (
	"mime"
	"path/filepath"
	"strings"
)

// Extensions with fixed types, so detection does not depend on the
// platform's MIME registry.
var knownExtensions = map[string]string{
	".pdf":      "application/pdf",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":      "text/plain",
	".text":     "text/plain",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".html":     "text/html",
	".htm":      "text/html",
	".csv":      "text/csv",
	".json":     "application/json",
}

// DetectMIMEType guesses a MIME type from a file name. The result never
// carries parameters. Unknown extensions yield "application/octet-stream".
func DetectMIMEType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if mt, ok := knownExtensions[ext]; ok {
		return mt
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		return baseMIMEType(mt)
	}
	return "application/octet-stream"
}

// IngestibleExtension reports whether files with this name can be ingested
// by the default registry.
func IngestibleExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".docx", ".txt", ".md", ".markdown", ".html", ".htm":
		return true
	default:
		return false
	}
}
