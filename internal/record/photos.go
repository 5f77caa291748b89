package record

import "strings"

// UploadPrefix marks photo entries that point at uploaded files. Anything
// else in the photos field is free text carried over from the visitor log.
const UploadPrefix = "/uploads"

// IsUploadPath reports whether a photos entry refers to an uploaded file.
func IsUploadPath(p string) bool {
	return strings.HasPrefix(strings.TrimSpace(p), UploadPrefix)
}

// PhotoPaths returns the uploaded-file entries of a photos field, trimmed.
func PhotoPaths(photos string) []string {
	var paths []string
	for _, p := range strings.Split(photos, ",") {
		if IsUploadPath(p) {
			paths = append(paths, strings.TrimSpace(p))
		}
	}
	return paths
}

// LegacyPhotoNote returns the whole photos field when it holds any entry that
// is not an upload path, and "" otherwise.
func LegacyPhotoNote(photos string) string {
	for _, p := range strings.Split(photos, ",") {
		if strings.TrimSpace(p) != "" && !IsUploadPath(p) {
			return photos
		}
	}
	return ""
}

// AppendPhotos appends paths to an existing comma-joined photos field.
// Existing entries are preserved verbatim.
func AppendPhotos(photos string, paths ...string) string {
	added := strings.Join(paths, ",")
	if added == "" {
		return photos
	}
	if photos == "" {
		return added
	}
	return photos + "," + added
}

// RemovePhoto removes the first entry whose trimmed value equals the trimmed
// path. It reports whether an entry was removed.
func RemovePhoto(photos, path string) (string, bool) {
	target := strings.TrimSpace(path)
	parts := strings.Split(photos, ",")
	for i, p := range parts {
		if strings.TrimSpace(p) == target {
			parts = append(parts[:i], parts[i+1:]...)
			return strings.Join(parts, ","), true
		}
	}
	return photos, false
}
