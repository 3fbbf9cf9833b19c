package fsutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileCreatesParents(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "a", "b", "c.md")

	if err := WriteFile(path, []byte("hello")); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written file: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("content = %q, want %q", data, "hello")
	}
}

func TestWriteFileOverwrites(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "f.md")

	if err := WriteFile(path, []byte("one")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteFile(path, []byte("two")); err != nil {
		t.Fatalf("second write: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "two" {
		t.Errorf("content = %q, want %q", data, "two")
	}

	// No temp files left behind
	entries, _ := os.ReadDir(tmpDir)
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1", len(entries))
	}
}

func TestCopyFile(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "src.md")
	dst := filepath.Join(tmpDir, "nested", "dst.md")

	if err := os.WriteFile(src, []byte("content"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile() failed: %v", err)
	}

	data, _ := os.ReadFile(dst)
	if string(data) != "content" {
		t.Errorf("content = %q, want %q", data, "content")
	}
}

func TestCopyDir(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "src")
	dst := filepath.Join(tmpDir, "dst")

	if err := os.MkdirAll(filepath.Join(src, "sub"), 0o750); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(src, "top.md"), []byte("top"), 0o644)
	os.WriteFile(filepath.Join(src, "sub", "deep.md"), []byte("deep"), 0o644)

	if err := CopyDir(src, dst); err != nil {
		t.Fatalf("CopyDir() failed: %v", err)
	}

	for _, f := range []struct{ path, want string }{
		{filepath.Join(dst, "top.md"), "top"},
		{filepath.Join(dst, "sub", "deep.md"), "deep"},
	} {
		data, err := os.ReadFile(f.path)
		if err != nil {
			t.Fatalf("reading %s: %v", f.path, err)
		}
		if string(data) != f.want {
			t.Errorf("%s = %q, want %q", f.path, data, f.want)
		}
	}
}

func TestRemoveFileAndCleanParents(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, ".claude", "commands")
	if err := os.MkdirAll(nested, 0o750); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(nested, "init-session.md")
	os.WriteFile(target, []byte("x"), 0o644)

	if err := RemoveFileAndCleanParents(target, root); err != nil {
		t.Fatalf("RemoveFileAndCleanParents() failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, ".claude", "commands")); !os.IsNotExist(err) {
		t.Error("empty .claude/commands directory should have been removed")
	}
	if _, err := os.Stat(filepath.Join(root, ".claude")); !os.IsNotExist(err) {
		t.Error("empty .claude directory should have been removed")
	}
	if _, err := os.Stat(root); err != nil {
		t.Error("workspace root must never be removed")
	}
}

func TestRemoveFileStopsAtNonEmptyParent(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".cursor")
	os.MkdirAll(dir, 0o750)
	os.WriteFile(filepath.Join(dir, "keep.md"), []byte("keep"), 0o644)
	os.WriteFile(filepath.Join(dir, "gone.md"), []byte("gone"), 0o644)

	if err := RemoveFileAndCleanParents(filepath.Join(dir, "gone.md"), root); err != nil {
		t.Fatalf("RemoveFileAndCleanParents() failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "keep.md")); err != nil {
		t.Error("sibling file must survive")
	}
	if _, err := os.Stat(dir); err != nil {
		t.Error("non-empty parent must survive")
	}
}

func TestRemoveFileNeverCrossesRoot(t *testing.T) {
	outer := t.TempDir()
	root := filepath.Join(outer, "project")
	os.MkdirAll(root, 0o750)
	target := filepath.Join(root, "AGENTS.md")
	os.WriteFile(target, []byte("x"), 0o644)

	if err := RemoveFileAndCleanParents(target, root); err != nil {
		t.Fatalf("RemoveFileAndCleanParents() failed: %v", err)
	}

	if _, err := os.Stat(root); err != nil {
		t.Error("root should remain even when emptied")
	}
}

func TestDirIsEmpty(t *testing.T) {
	tmpDir := t.TempDir()
	if !DirIsEmpty(tmpDir) {
		t.Error("fresh temp dir should be empty")
	}

	os.WriteFile(filepath.Join(tmpDir, "f"), []byte("x"), 0o644)
	if DirIsEmpty(tmpDir) {
		t.Error("dir with a file is not empty")
	}

	if DirIsEmpty(filepath.Join(tmpDir, "missing")) {
		t.Error("missing dir is not empty")
	}
}

func TestJoinLocal(t *testing.T) {
	root := filepath.Join("/tmp", "bundle")

	tests := []struct {
		name    string
		rel     string
		want    string
		wantErr bool
	}{
		{
			name: "plain file",
			rel:  "AGENTS.md",
			want: filepath.Join(root, "AGENTS.md"),
		},
		{
			name: "nested path",
			rel:  "languages/go.md",
			want: filepath.Join(root, "languages", "go.md"),
		},
		{
			name: "inner dot-dot that stays inside",
			rel:  "languages/../mission/mission.md",
			want: filepath.Join(root, "mission", "mission.md"),
		},
		{
			name:    "leading dot-dot",
			rel:     "../evil.md",
			wantErr: true,
		},
		{
			name:    "deep escape",
			rel:     "languages/../../evil.md",
			wantErr: true,
		},
		{
			name:    "absolute path",
			rel:     "/etc/passwd",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JoinLocal(root, tt.rel)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("JoinLocal(%q, %q) = %q, want error", root, tt.rel, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("JoinLocal(%q, %q) failed: %v", root, tt.rel, err)
			}
			if got != tt.want {
				t.Errorf("JoinLocal(%q, %q) = %q, want %q", root, tt.rel, got, tt.want)
			}
		})
	}
}
