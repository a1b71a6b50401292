// Package pathutil turns asset references found in markup and stylesheets
// into canonical filesystem paths.
package pathutil

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Resolve maps a reference found in baseDocument onto the filesystem.
//
// Root-absolute references ("/img/a.png") are joined with root, everything
// else is joined with the directory containing baseDocument. The result is
// always cleaned, so different spellings of the same file compare equal.
// The second return value is false when the reference cannot name a local
// file (external URL, data URI, fragment-only link, empty value).
func Resolve(baseDocument, reference, root string) (string, bool) {
	p, ok := localPath(reference)
	if !ok {
		return "", false
	}

	if strings.HasPrefix(p, "/") {
		// path.Clean on a rooted path never climbs above "/"
		return filepath.Join(root, filepath.FromSlash(path.Clean(p))), true
	}
	return filepath.Join(filepath.Dir(baseDocument), filepath.FromSlash(p)), true
}

// localPath extracts the decoded path component of a reference, rejecting
// anything that points off the local filesystem.
func localPath(reference string) (string, bool) {
	ref := strings.TrimSpace(reference)
	if ref == "" {
		return "", false
	}
	ref = strings.ReplaceAll(ref, `\`, "/")

	// protocol-relative
	if strings.HasPrefix(ref, "//") {
		return "", false
	}

	u, err := url.Parse(ref)
	if err != nil {
		// Malformed escapes: fall back to the raw text minus query/fragment.
		if i := strings.IndexAny(ref, "?#"); i >= 0 {
			ref = ref[:i]
		}
		if ref == "" || strings.Contains(ref, ":") {
			return "", false
		}
		return ref, true
	}

	if u.Scheme != "" || u.Host != "" || u.Opaque != "" {
		return "", false
	}
	if u.Path == "" {
		return "", false
	}
	return u.Path, true
}

// SrcsetURLs returns the candidate URLs of a srcset attribute value,
// dropping their width/density descriptors.
func SrcsetURLs(srcset string) []string {
	var urls []string
	for _, candidate := range strings.Split(srcset, ",") {
		fields := strings.Fields(candidate)
		if len(fields) == 0 {
			continue
		}
		urls = append(urls, fields[0])
	}
	return urls
}

// Rel returns target relative to root using forward slashes, or target
// itself when it does not live under root.
func Rel(root, target string) string {
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(target)
	}
	return filepath.ToSlash(rel)
}
