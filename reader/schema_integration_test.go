package reader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/vegasq/pqview/pqerr"
)

func writeRaw(path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}

func TestSchemaMode_MultipleGlobMatches(t *testing.T) {
	tmpDir := t.TempDir()

	type Row struct {
		ID   int64  `parquet:"id"`
		Name string `parquet:"name"`
	}
	for i := 1; i <= 3; i++ {
		writeTestFile(t, filepath.Join(tmpDir, fmt.Sprintf("data%d.parquet", i)), []Row{{ID: int64(i), Name: "x"}})
	}

	matches, err := Expand(filepath.Join(tmpDir, "data*.parquet"))
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}

	// Schema mode reads the first match
	schemaInfos, err := ExtractSchemaInfo(matches[0])
	if err != nil {
		t.Fatalf("ExtractSchemaInfo() error = %v", err)
	}
	if len(schemaInfos) != 2 {
		t.Errorf("ExtractSchemaInfo() returned %d fields, want 2", len(schemaInfos))
	}
}

func TestSchemaMode_PermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}
	testFile := filepath.Join(t.TempDir(), "restricted.parquet")

	type Row struct {
		ID int64 `parquet:"id"`
	}
	writeTestFile(t, testFile, []Row{{ID: 1}})

	if err := os.Chmod(testFile, 0000); err != nil {
		t.Skipf("cannot change file permissions: %v", err)
	}
	defer func() { _ = os.Chmod(testFile, 0644) }()

	_, err := ExtractSchemaInfo(testFile)
	if err == nil {
		t.Errorf("ExtractSchemaInfo() expected permission error, got nil")
	}
}

func TestSchemaMode_CorruptedParquetFile(t *testing.T) {
	tmpDir := t.TempDir()

	type Row struct {
		ID int64 `parquet:"id"`
	}

	tests := []struct {
		name    string
		corrupt func(data []byte) []byte
		want    error
	}{
		{"truncated", func(data []byte) []byte { return data[:100] }, pqerr.ErrInvalidMagic},
		{"trailer only", func(data []byte) []byte { return []byte("PAR1") }, pqerr.ErrTruncatedInput},
		{"footer length too large", func(data []byte) []byte {
			out := append([]byte(nil), data...)
			out[len(out)-5] = 0x7f
			return out
		}, pqerr.ErrTruncatedInput},
		{"garbage footer", func(data []byte) []byte {
			out := append([]byte(nil), data...)
			for i := len(out) - 30; i < len(out)-8; i++ {
				out[i] = 0xff
			}
			return out
		}, pqerr.ErrCorruptFooter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testFile := filepath.Join(tmpDir, tt.name+".parquet")
			writeTestFile(t, testFile, []Row{{ID: 1}, {ID: 2}})
			data, err := os.ReadFile(testFile)
			if err != nil {
				t.Fatalf("failed to read test file: %v", err)
			}
			if err := writeRaw(testFile, tt.corrupt(data)); err != nil {
				t.Fatalf("failed to corrupt file: %v", err)
			}

			_, err = ExtractSchemaInfo(testFile)
			if err == nil {
				t.Fatalf("ExtractSchemaInfo() expected error for corrupted file, got nil")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("ExtractSchemaInfo() error = %v, want kind %v", err, tt.want)
			}
		})
	}
}
