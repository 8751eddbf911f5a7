package tinyServer

import "strings"

const defaultContentType = "text/plain"

// first match wins
var contentTypes = []struct {
	suffixes    []string
	contentType string
}{
	{[]string{".htm", ".html"}, "text/html"},
	{[]string{".gif"}, "image/gif"},
	{[]string{".jpg", ".jpeg"}, "image/jpeg"},
	{[]string{".class", ".jar"}, "application/octet-stream"},
}

// ContentType maps a lower-cased request target to its MIME type by suffix.
func ContentType(target string) string {
	for _, ct := range contentTypes {
		for _, suffix := range ct.suffixes {
			if strings.HasSuffix(target, suffix) {
				return ct.contentType
			}
		}
	}
	return defaultContentType
}
