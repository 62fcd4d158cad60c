package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mercator-hq/retain/pkg/timestamp"
)

func extractor() Extractor {
	return timestamp.DefaultExtractor(time.UTC)
}

func TestLines_Read(t *testing.T) {
	input := strings.Join([]string{
		"2024-06-15T03:00:00Z",
		"",
		"   2024-06-14T03:00:00Z  \r",
		"  \t",
		"not a timestamp",
		"2024-06-13",
		"snap 2024-06-12T23:00:00Z ",
	}, "\n")

	src := NewLines(extractor(), Input{Name: "stdin", Reader: strings.NewReader(input)})
	batch, err := src.Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	wantIDs := []string{
		"2024-06-15T03:00:00Z",
		"   2024-06-14T03:00:00Z  ",
		"2024-06-13",
		"snap 2024-06-12T23:00:00Z ",
	}
	if len(batch.Records) != len(wantIDs) {
		t.Fatalf("Read() returned %d records, want %d", len(batch.Records), len(wantIDs))
	}
	for i, want := range wantIDs {
		if batch.Records[i].ID != want {
			t.Errorf("Records[%d].ID = %q, want %q", i, batch.Records[i].ID, want)
		}
	}
	if !batch.Records[2].Time.Equal(time.Date(2024, 6, 13, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Records[2].Time = %v", batch.Records[2].Time)
	}
	if len(batch.Unmatched) != 1 || batch.Unmatched[0] != "not a timestamp" {
		t.Errorf("Unmatched = %q, want [not a timestamp]", batch.Unmatched)
	}
	if !batch.Records[3].Time.Equal(time.Date(2024, 6, 12, 23, 0, 0, 0, time.UTC)) {
		t.Errorf("Records[3].Time = %v", batch.Records[3].Time)
	}
	if batch.Len() != 5 {
		t.Errorf("Len() = %d, want 5", batch.Len())
	}
	if src.String() != "stdin" {
		t.Errorf("String() = %q, want stdin", src.String())
	}
}

func TestFiles_Read(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(a, []byte("2024-06-01\n2024-06-02\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte("2024-06-03\n"), 0644); err != nil {
		t.Fatal(err)
	}

	src := Files(extractor(), a, b)
	batch, err := src.Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(batch.Records) != 3 {
		t.Errorf("Read() returned %d records, want 3", len(batch.Records))
	}
	if !strings.HasPrefix(src.String(), "files:") {
		t.Errorf("String() = %q, want files: prefix", src.String())
	}
}

func TestFiles_Missing(t *testing.T) {
	src := Files(extractor(), filepath.Join(t.TempDir(), "missing.txt"))
	_, err := src.Read(context.Background())

	var srcErr *SourceError
	if !errors.As(err, &srcErr) {
		t.Fatalf("Read() error = %v, want *SourceError", err)
	}
	if srcErr.Operation != "open" {
		t.Errorf("Operation = %q, want open", srcErr.Operation)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("SourceError does not unwrap to os.ErrNotExist")
	}
}

func TestLines_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewLines(extractor(), Input{Name: "stdin", Reader: strings.NewReader("2024-06-01\n")})
	if _, err := src.Read(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Read() error = %v, want context.Canceled", err)
	}
}

func TestMatcher(t *testing.T) {
	m, err := NewMatcher([]string{"*.tar.gz", "snap-*"}, []string{"*-partial*"})
	if err != nil {
		t.Fatalf("NewMatcher() error = %v", err)
	}

	tests := []struct {
		name string
		want bool
	}{
		{name: "db-2024-06-01.tar.gz", want: true},
		{name: "snap-20240601", want: true},
		{name: "db-2024-06-01-partial.tar.gz", want: false},
		{name: "notes.txt", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Match(tt.name); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestMatcher_Empty(t *testing.T) {
	m, err := NewMatcher(nil, nil)
	if err != nil {
		t.Fatalf("NewMatcher() error = %v", err)
	}
	if !m.Match("anything") {
		t.Error("empty matcher should accept everything")
	}
}

func TestNewMatcher_Invalid(t *testing.T) {
	if _, err := NewMatcher([]string{"[unclosed"}, nil); err == nil {
		t.Error("NewMatcher() with invalid pattern should fail")
	}
}

func TestDirectory_Read(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"db-2024-06-01.tar.gz",
		"db-2024-06-02.tar.gz",
		"db-latest.tar.gz",
		"notes.txt",
		".db-2024-06-03.tar.gz",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "db-2024-06-04.tar.gz"), 0755); err != nil {
		t.Fatal(err)
	}

	m, err := NewMatcher([]string{"*.tar.gz"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	src := NewDirectory(dir, m, extractor())
	batch, err := src.Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	want := []string{"db-2024-06-01.tar.gz", "db-2024-06-02.tar.gz", "db-2024-06-04.tar.gz"}
	if len(batch.Records) != len(want) {
		t.Fatalf("Records = %v, want %v", batch.Records, want)
	}
	for i := range want {
		if batch.Records[i].ID != want[i] {
			t.Errorf("Records[%d].ID = %q, want %q", i, batch.Records[i].ID, want[i])
		}
	}
	if len(batch.Unmatched) != 1 || batch.Unmatched[0] != "db-latest.tar.gz" {
		t.Errorf("Unmatched = %q, want [db-latest.tar.gz]", batch.Unmatched)
	}
	if src.String() != "dir:"+dir {
		t.Errorf("String() = %q", src.String())
	}
}

func TestDirectory_Missing(t *testing.T) {
	src := NewDirectory(filepath.Join(t.TempDir(), "missing"), nil, extractor())
	_, err := src.Read(context.Background())

	var srcErr *SourceError
	if !errors.As(err, &srcErr) || srcErr.Operation != "scan" {
		t.Fatalf("Read() error = %v, want scan *SourceError", err)
	}
}
