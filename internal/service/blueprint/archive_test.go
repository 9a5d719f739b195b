package blueprint

import (
	"archive/zip"
	"bytes"
	"testing"

	"terraai/internal/domain/models"
)

func TestArchive_RoundTrip(t *testing.T) {
	files := models.FileSet{
		"main.tf":      "resource \"aws_vpc\" \"main\" {\n  cidr_block = \"10.0.0.0/16\"\n}\n",
		"variables.tf": "variable \"region\" {\n  default = \"us-east-1\"\n}",
		"outputs.tf":   "",
		"README.md":    "unicode ✓ and trailing spaces   \n",
	}

	var buf bytes.Buffer
	if err := WriteArchive(&buf, files); err != nil {
		t.Fatalf("WriteArchive: %v", err)
	}

	got, err := ReadArchive(buf.Bytes(), 100)
	if err != nil {
		t.Fatalf("ReadArchive: %v", err)
	}
	if len(got.Skipped) != 0 {
		t.Errorf("Skipped = %v", got.Skipped)
	}
	if len(got.Files) != len(files) {
		t.Fatalf("got %d files, want %d", len(got.Files), len(files))
	}
	for name, content := range files {
		if got.Files[name] != content {
			t.Errorf("%s = %q, want %q", name, got.Files[name], content)
		}
	}
}

func TestReadArchive_SkipsUnusableEntries(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range map[string]string{
		"nested/dir/main.tf": "a",
		"__MACOSX/._main.tf": "junk",
		"bad name.tf":        "b",
		"folder/":            "",
		"outputs.tf":         "c",
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		w.Write([]byte(body))
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := ReadArchive(buf.Bytes(), 100)
	if err != nil {
		t.Fatalf("ReadArchive: %v", err)
	}
	if got.Files["main.tf"] != "a" || got.Files["outputs.tf"] != "c" || len(got.Files) != 2 {
		t.Errorf("Files = %v", got.Files)
	}
	if len(got.Skipped) != 2 {
		t.Errorf("Skipped = %v, want 2 entries", got.Skipped)
	}
}

func TestReadArchive_NotAZip(t *testing.T) {
	if _, err := ReadArchive([]byte("plain text"), 10); err == nil {
		t.Error("expected error for non-zip input")
	}
}

func TestArchiveName(t *testing.T) {
	if got := ArchiveName("VPC Stack"); got != "VPC Stack-terraform.zip" {
		t.Errorf("ArchiveName = %q", got)
	}
	if got := ArchiveName("  "); got != "Cloud Stack-terraform.zip" {
		t.Errorf("ArchiveName(blank) = %q", got)
	}
}
