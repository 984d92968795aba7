package cmd

import (
	"strings"
	"testing"

	"github.com/eykd/entitygraph-go/internal/entity"
)

func TestNewDeleteCmd_HasFlags(t *testing.T) {
	c := NewDeleteCmd(nil)
	for _, name := range []string{"id", "yes", "json"} {
		t.Run(name, func(t *testing.T) {
			if c.Flags().Lookup(name) == nil {
				t.Errorf("expected --%s flag on delete command", name)
			}
		})
	}
}

func TestDeleteCmd_RemovesSubtreeAndRepairs(t *testing.T) {
	m := newMockDocumentIO(map[string]string{testDocPath: testDoc})

	out, errOut, err := execute(NewDeleteCmd(m), "--id", "light", "--yes", testDocPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "Deleted light (2 entities) from scene.json\n"; out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}
	if !strings.Contains(errOut, entity.CodeReferencesRepaired) {
		t.Errorf("stderr = %q, want %s warning", errOut, entity.CodeReferencesRepaired)
	}

	doc := m.document(t, testDocPath)
	if got := doc.Entities.IDs(); strings.Join(got, ",") != "root,switch" {
		t.Errorf("remaining entities = %v, want [root switch]", got)
	}
	sw, _ := doc.Entities.Get("switch")
	if _, ok := sw.Properties["m_target"]; ok {
		t.Error("m_target still present after its target was deleted")
	}
	if _, ok := sw.Properties["m_remote"]; !ok {
		t.Error("external reference m_remote was removed")
	}
	if got := sw.Events["OnPressed"]["TurnOn"]; len(got) != 0 {
		t.Errorf("TurnOn connections = %v, want none", got)
	}
}

func TestDeleteCmd_JSONResult(t *testing.T) {
	m := newMockDocumentIO(map[string]string{testDocPath: testDoc})

	out, _, err := execute(NewDeleteCmd(m), "--id", "light", "--yes", "--json", testDocPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res := decodeResult(t, out)
	if !res.Changed {
		t.Error("Changed = false, want true")
	}
	if !hasCode(res.Diagnostics, entity.CodeReferencesRepaired) {
		t.Errorf("diagnostics = %+v, want %s", res.Diagnostics, entity.CodeReferencesRepaired)
	}
	result, ok := res.Result.(map[string]any)
	if !ok {
		t.Fatalf("result = %#v, want object", res.Result)
	}
	if got := result["referencesRepaired"]; got != float64(2) {
		t.Errorf("referencesRepaired = %v, want 2", got)
	}
}

func TestDeleteCmd_RequiresConfirmation(t *testing.T) {
	m := newMockDocumentIO(map[string]string{testDocPath: testDoc})

	out, _, err := execute(NewDeleteCmd(m), "--id", "light", "--json", testDocPath)
	if err == nil {
		t.Fatal("expected error without --yes")
	}
	if len(m.writes) != 0 {
		t.Errorf("writes = %v, want none", m.writes)
	}
	res := decodeResult(t, out)
	if !hasCode(res.Diagnostics, entity.CodeConfirmation) {
		t.Errorf("diagnostics = %+v, want %s", res.Diagnostics, entity.CodeConfirmation)
	}
}

func TestDeleteCmd_Errors(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		wantCode string
	}{
		{"unknown id", "nope", entity.CodeNoSuchNode},
		{"root entity", "root", entity.CodeRootEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockDocumentIO(map[string]string{testDocPath: testDoc})

			out, _, err := execute(NewDeleteCmd(m), "--id", tt.id, "--yes", "--json", testDocPath)
			if err == nil {
				t.Fatal("expected error")
			}
			if len(m.writes) != 0 {
				t.Errorf("writes = %v, want none", m.writes)
			}
			res := decodeResult(t, out)
			if !hasCode(res.Diagnostics, tt.wantCode) {
				t.Errorf("diagnostics = %+v, want %s", res.Diagnostics, tt.wantCode)
			}
		})
	}
}

func TestDeleteCmd_RequiresID(t *testing.T) {
	m := newMockDocumentIO(map[string]string{testDocPath: testDoc})

	if _, _, err := execute(NewDeleteCmd(m), "--yes", testDocPath); err == nil {
		t.Error("expected error without --id")
	}
}
