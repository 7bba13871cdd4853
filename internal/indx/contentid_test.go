package indx

import (
	"strings"
	"testing"
	"time"
)

func TestNewFilenameContentID(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	id := NewFilenameContentID("/media/music/song.mp3", created)
	if !id.Valid() {
		t.Fatalf("generated id %q is not valid", id)
	}
	if id.Source() != SourceFilename {
		t.Errorf("Source() = %q, want %q", id.Source(), SourceFilename)
	}

	t.Run("deterministic", func(t *testing.T) {
		again := NewFilenameContentID("/media/music/song.mp3", created)
		if id != again {
			t.Errorf("same inputs produced %q and %q", id, again)
		}
	})

	t.Run("path changes the id", func(t *testing.T) {
		other := NewFilenameContentID("/media/music/other.mp3", created)
		if id == other {
			t.Error("different paths produced the same id")
		}
	})

	t.Run("creation time changes the id", func(t *testing.T) {
		other := NewFilenameContentID("/media/music/song.mp3", created.Add(time.Second))
		if id == other {
			t.Error("different creation times produced the same id")
		}
	})
}

func TestNewContentContentID(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	id := NewContentContentID([]byte("file bytes"), created)
	if !id.Valid() {
		t.Fatalf("generated id %q is not valid", id)
	}
	if id.Source() != SourceContent {
		t.Errorf("Source() = %q, want %q", id.Source(), SourceContent)
	}

	// Identical bytes at different times must stay distinct.
	other := NewContentContentID([]byte("file bytes"), created.Add(time.Minute))
	if id == other {
		t.Error("identical bytes at different times produced the same id")
	}
}

func TestNewRandomContentID(t *testing.T) {
	id := NewRandomContentID(UUIDGenerator{})
	if !id.Valid() {
		t.Fatalf("generated id %q is not valid", id)
	}
	if id.Source() != SourceRandom {
		t.Errorf("Source() = %q, want %q", id.Source(), SourceRandom)
	}
	if strings.Contains(string(id), "-") {
		t.Errorf("id %q contains dashes", id)
	}
}

func TestParseContentID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid filename id", "filename:0123456789abcdef0123456789abcdef", false},
		{"valid content id", "content:0123456789abcdef0123456789abcdef", false},
		{"valid random id", "random:0123456789ABCDEF0123456789ABCDEF", false},
		{"unknown source", "sha256:0123456789abcdef0123456789abcdef", true},
		{"short token", "filename:abc", true},
		{"long token", "filename:0123456789abcdef0123456789abcdef00", true},
		{"non-hex token", "filename:0123456789abcdef0123456789abcdeg", true},
		{"missing separator", "filename0123456789abcdef0123456789abcdef", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseContentID(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseContentID(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Errorf("ParseContentID(%q) error = %v", tt.input, err)
			}
			if got.String() != tt.input {
				t.Errorf("ParseContentID(%q) = %q", tt.input, got)
			}
		})
	}
}

func TestContentID_Source_Malformed(t *testing.T) {
	if src := ContentID("nonsense").Source(); src != "" {
		t.Errorf("Source() = %q, want empty", src)
	}
	if src := ContentID("bogus:0123456789abcdef0123456789abcdef").Source(); src != "" {
		t.Errorf("Source() = %q, want empty", src)
	}
}
