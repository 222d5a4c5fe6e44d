package assets

import (
	"os"
	"path/filepath"
	"testing"
)

func TestVerifyFile(t *testing.T) {
	tempDir := t.TempDir()

	path := filepath.Join(tempDir, "artifact.jar")
	if err := os.WriteFile(path, []byte("hello world"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	// SHA-1 of "hello world"
	const wantHash = "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed"

	tests := []struct {
		name         string
		expectedHash string
		path         string
		want         bool
	}{
		{
			name:         "matching hash",
			expectedHash: wantHash,
			path:         path,
			want:         true,
		},
		{
			name:         "matching hash uppercase",
			expectedHash: "2AAE6C35C94FCFB415DBE95F408B9CE91EE846ED",
			path:         path,
			want:         true,
		},
		{
			name:         "mismatched hash",
			expectedHash: "da39a3ee5e6b4b0d3255bfef95601890afd80709",
			path:         path,
			want:         false,
		},
		{
			name:         "missing file is a needs-download signal",
			expectedHash: wantHash,
			path:         filepath.Join(tempDir, "does-not-exist.jar"),
			want:         false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifyFile(tt.expectedHash, tt.path); got != tt.want {
				t.Errorf("VerifyFile() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerifyFile_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	// SHA-1 of the empty string
	if !VerifyFile("da39a3ee5e6b4b0d3255bfef95601890afd80709", path) {
		t.Error("VerifyFile() = false for empty file with empty-string hash")
	}
}
