package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/eykd/entitygraph-go/internal/entity"
)

// mockEditIO is a test double for EditIO. Its editor replaces the scratch
// file content with edit(original).
type mockEditIO struct {
	*mockDocumentIO
	scratch   map[string][]byte
	edit      func(original []byte) []byte
	editorErr error
	removed   []string
	editors   []string
}

func newMockEditIO(edit func([]byte) []byte) *mockEditIO {
	return &mockEditIO{
		mockDocumentIO: newMockDocumentIO(map[string]string{testDocPath: testDoc}),
		scratch:        make(map[string][]byte),
		edit:           edit,
	}
}

func (m *mockEditIO) WriteScratch(pattern string, data []byte) (string, error) {
	path := "/tmp/" + strings.Replace(pattern, "*", "1", 1)
	m.scratch[path] = data
	return path, nil
}

func (m *mockEditIO) ReadScratch(path string) ([]byte, error) {
	return m.scratch[path], nil
}

func (m *mockEditIO) RemoveScratch(path string) error {
	m.removed = append(m.removed, path)
	delete(m.scratch, path)
	return nil
}

func (m *mockEditIO) OpenEditor(editor, path string) error {
	m.editors = append(m.editors, editor+" "+path)
	if m.editorErr != nil {
		return m.editorErr
	}
	m.scratch[path] = m.edit(m.scratch[path])
	return nil
}

func editEnv(editor string) func(string) string {
	return func(key string) string {
		if key == "EDITOR" {
			return editor
		}
		return ""
	}
}

func TestEditCmd_StoresEditedSubEntity(t *testing.T) {
	m := newMockEditIO(func(b []byte) []byte {
		return []byte(strings.Replace(string(b), `"Switch"`, `"Big Switch"`, 1))
	})

	out, _, err := execute(newEditCmdWithGetenv(m, editEnv("vi")), "--id", "switch", testDocPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Updated switch\n" {
		t.Errorf("stdout = %q, want Updated switch", out)
	}
	sw, _ := m.document(t, testDocPath).Entities.Get("switch")
	if sw.Name != "Big Switch" {
		t.Errorf("name = %q, want Big Switch", sw.Name)
	}
	if len(m.editors) != 1 || m.editors[0] != "vi /tmp/qne-switch-1.json" {
		t.Errorf("editor calls = %v", m.editors)
	}
	if len(m.removed) != 1 {
		t.Errorf("scratch files removed = %v, want one", m.removed)
	}
	if len(m.journal.records) != 1 || m.journal.records[0].Op != "replace" {
		t.Errorf("journal = %+v, want one replace record", m.journal.records)
	}
}

func TestEditCmd_NoChanges(t *testing.T) {
	m := newMockEditIO(func(b []byte) []byte { return b })

	out, _, err := execute(newEditCmdWithGetenv(m, editEnv("vi")), "--id", "switch", testDocPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "No changes to switch\n" {
		t.Errorf("stdout = %q", out)
	}
	if len(m.writes) != 0 {
		t.Errorf("writes = %v, want none", m.writes)
	}
}

func TestEditCmd_RejectsDanglingEdit(t *testing.T) {
	m := newMockEditIO(func(b []byte) []byte {
		return []byte(strings.Replace(string(b), `"light"`, `"ghost"`, 1))
	})

	_, errOut, err := execute(newEditCmdWithGetenv(m, editEnv("vi")), "--id", "switch", testDocPath)
	if err == nil {
		t.Fatal("expected error for dangling reference")
	}
	if !strings.Contains(errOut, entity.CodeDanglingReference) {
		t.Errorf("stderr = %q, want %s", errOut, entity.CodeDanglingReference)
	}
	if len(m.writes) != 0 {
		t.Errorf("writes = %v, want none", m.writes)
	}
}

func TestEditCmd_Errors(t *testing.T) {
	tests := []struct {
		name   string
		editor string
		id     string
		setup  func(m *mockEditIO)
		want   string
	}{
		{name: "no editor", editor: "  ", id: "switch", want: "$EDITOR is not set"},
		{name: "unknown id", editor: "vi", id: "nope", want: "edit failed"},
		{name: "missing id flag", editor: "vi", want: "--id is required"},
		{
			name:   "editor fails",
			editor: "vi",
			id:     "switch",
			setup:  func(m *mockEditIO) { m.editorErr = errors.New("exit status 1") },
			want:   "editor:",
		},
		{
			name:   "edited file is not JSON",
			editor: "vi",
			id:     "switch",
			setup: func(m *mockEditIO) {
				m.edit = func([]byte) []byte { return []byte("{") }
			},
			want: "operation failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockEditIO(func(b []byte) []byte { return b })
			if tt.setup != nil {
				tt.setup(m)
			}
			args := []string{testDocPath}
			if tt.id != "" {
				args = append(args, "--id", tt.id)
			}

			_, _, err := execute(newEditCmdWithGetenv(m, editEnv(tt.editor)), args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to contain %q", err, tt.want)
			}
			if len(m.writes) != 0 {
				t.Errorf("writes = %v, want none", m.writes)
			}
		})
	}
}

func TestSanitizeFileName(t *testing.T) {
	if got := sanitizeFileName("a/b c\x00d-E_9"); got != "a_b_c_d-E_9" {
		t.Errorf("sanitizeFileName = %q", got)
	}
}
