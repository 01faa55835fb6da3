package ooxml

import (
	"net/url"
	"path"
	"strings"

	"github.com/custodia-labs/deckmend/internal/core/domain"
)

const relsDir = "_rels/"

// RelsPathFor returns the .rels path that belongs to partPath.
// An empty partPath names the package root.
func RelsPathFor(partPath string) string {
	dir, file := path.Split(domain.NormalizePath(partPath))
	return dir + relsDir + file + ".rels"
}

// SourcePartOf returns the part that owns relsPath. The root
// relationships part is owned by the package itself (""). The boolean
// is false when relsPath does not sit in a _rels directory.
func SourcePartOf(relsPath string) (string, bool) {
	dir, file := path.Split(domain.NormalizePath(relsPath))
	if !strings.HasSuffix(dir, relsDir) || !strings.HasSuffix(file, ".rels") {
		return "", false
	}
	return strings.TrimSuffix(dir, relsDir) + strings.TrimSuffix(file, ".rels"), true
}

// RelsBaseDir returns the directory targets in relsPath are relative to:
// the owning part's directory, or "" for the package root.
func RelsBaseDir(relsPath string) string {
	dir, _ := path.Split(domain.NormalizePath(relsPath))
	return strings.TrimSuffix(strings.TrimSuffix(dir, relsDir), "/")
}

// IsAbsoluteTarget reports whether target is package-root-absolute.
func IsAbsoluteTarget(target string) bool {
	return strings.HasPrefix(target, "/") || strings.HasPrefix(target, "\\")
}

// ResolveTarget resolves an internal relationship target against baseDir
// and returns the package path it addresses. The boolean is false when the
// target climbs above the package root or is empty.
func ResolveTarget(baseDir, target string) (string, bool) {
	t := strings.ReplaceAll(target, "\\", "/")
	if i := strings.IndexByte(t, '#'); i >= 0 {
		t = t[:i]
	}
	if unescaped, err := url.PathUnescape(t); err == nil {
		t = unescaped
	}
	if t == "" {
		return "", false
	}

	var resolved string
	if strings.HasPrefix(t, "/") {
		resolved = strings.TrimPrefix(path.Clean(t), "/")
	} else {
		resolved = path.Join(baseDir, t)
		if resolved == ".." || strings.HasPrefix(resolved, "../") {
			return "", false
		}
	}
	if resolved == "" || resolved == "." {
		return "", false
	}
	return resolved, true
}

// RelativizeTarget rewrites the package-root-absolute target as the
// equivalent target relative to baseDir. Segments keep their escaping and a
// #fragment is carried over. The boolean is false when target names the
// package root rather than a part; the result then climbs to the root.
func RelativizeTarget(baseDir, target string) (string, bool) {
	t := strings.ReplaceAll(target, "\\", "/")
	fragment := ""
	if i := strings.IndexByte(t, '#'); i >= 0 {
		t, fragment = t[:i], t[i:]
	}

	to := splitSegments(strings.TrimPrefix(path.Clean("/"+t), "/"))
	from := splitSegments(domain.NormalizePath(baseDir))

	common := 0
	for common < len(from) && common < len(to)-1 && from[common] == unescapeSegment(to[common]) {
		common++
	}

	segments := make([]string, 0, len(from)-common+len(to)-common)
	for i := common; i < len(from); i++ {
		segments = append(segments, "..")
	}
	segments = append(segments, to[common:]...)

	rel := strings.Join(segments, "/")
	if rel == "" {
		rel = "."
	}
	return rel + fragment, len(to) > 0
}

func unescapeSegment(seg string) string {
	if s, err := url.PathUnescape(seg); err == nil {
		return s
	}
	return seg
}

func splitSegments(p string) []string {
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// PartName returns the absolute part name used in [Content_Types].xml.
func PartName(partPath string) string {
	return "/" + domain.NormalizePath(partPath)
}

// PathFromPartName converts a part name back to a package path.
func PathFromPartName(name string) string {
	return domain.NormalizePath(name)
}
