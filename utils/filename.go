package utils

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// now is swapped in tests.
var now = time.Now

// KeyByFilename strips the final extension of name and appends a millisecond
// timestamp: "photo.front.jpg" -> "photo.front_1700000000000". Characters
// outside [A-Za-z0-9._-] become "_" so the key survives a trip through a URL.
func KeyByFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		base = ""
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s_%d", SafeSegment(stem), now().UnixMilli())
}

// ObjectKey builds "<entity>/<parent>/<stem>_<suffix>".
func ObjectKey(entity string, parent interface{}, filename string) string {
	return fmt.Sprintf("%s/%s/%s", SafeSegment(entity), SafeSegment(fmt.Sprint(parent)), KeyByFilename(filename))
}

// SafeSegment replaces every byte outside [A-Za-z0-9._-] with "_". A segment
// made only of dots is replaced as well.
func SafeSegment(s string) string {
	b := []byte(s)
	for i, c := range b {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '.', c == '_', c == '-':
		default:
			b[i] = '_'
		}
	}
	if strings.Trim(string(b), ".") == "" && len(b) > 0 {
		return strings.Repeat("_", len(b))
	}
	return string(b)
}
