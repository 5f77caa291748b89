package record

import (
	"reflect"
	"testing"
)

func TestAppendPhotos(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		add      []string
		want     string
	}{
		{"empty existing", "", []string{"/uploads/a.jpg"}, "/uploads/a.jpg"},
		{"append two", "/uploads/a.jpg", []string{"/uploads/b.jpg", "/uploads/c.jpg"}, "/uploads/a.jpg,/uploads/b.jpg,/uploads/c.jpg"},
		{"legacy text preserved", "photo taken at stall", []string{"/uploads/a.jpg"}, "photo taken at stall,/uploads/a.jpg"},
		{"nothing to add", "/uploads/a.jpg", nil, "/uploads/a.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AppendPhotos(tt.existing, tt.add...); got != tt.want {
				t.Errorf("AppendPhotos = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRemovePhoto(t *testing.T) {
	tests := []struct {
		name        string
		photos      string
		path        string
		want        string
		wantRemoved bool
	}{
		{"middle", "/uploads/a.jpg,/uploads/b.jpg,/uploads/c.jpg", "/uploads/b.jpg", "/uploads/a.jpg,/uploads/c.jpg", true},
		{"trimmed match", "/uploads/a.jpg, /uploads/b.jpg", " /uploads/b.jpg ", "/uploads/a.jpg", true},
		{"first of duplicates only", "/uploads/a.jpg,/uploads/a.jpg", "/uploads/a.jpg", "/uploads/a.jpg", true},
		{"last entry", "/uploads/a.jpg", "/uploads/a.jpg", "", true},
		{"absent", "/uploads/a.jpg", "/uploads/z.jpg", "/uploads/a.jpg", false},
		{"prefix is not a match", "/uploads/ab.jpg", "/uploads/a", "/uploads/ab.jpg", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, removed := RemovePhoto(tt.photos, tt.path)
			if got != tt.want || removed != tt.wantRemoved {
				t.Errorf("RemovePhoto = (%q, %v), want (%q, %v)", got, removed, tt.want, tt.wantRemoved)
			}
		})
	}
}

func TestPhotoPathsAndLegacyNote(t *testing.T) {
	photos := "/uploads/a.jpg, see drive folder ,/uploads/b.png"

	if got, want := PhotoPaths(photos), []string{"/uploads/a.jpg", "/uploads/b.png"}; !reflect.DeepEqual(got, want) {
		t.Errorf("PhotoPaths = %v, want %v", got, want)
	}
	if got := LegacyPhotoNote(photos); got != photos {
		t.Errorf("LegacyPhotoNote = %q, want whole field", got)
	}
	if got := LegacyPhotoNote("/uploads/a.jpg,/uploads/b.png"); got != "" {
		t.Errorf("LegacyPhotoNote = %q, want empty", got)
	}
	if got := PhotoPaths(""); got != nil {
		t.Errorf("PhotoPaths(\"\") = %v, want nil", got)
	}
}
