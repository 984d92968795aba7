package cmd

import (
	"strings"
	"testing"

	"github.com/eykd/entitygraph-go/internal/entity"
)

const testClipboard = `{
	"rootEntity": "lamp",
	"data": {
		"lamp": {
			"parent": "elsewhere",
			"name": "Lamp",
			"factory": "f",
			"blueprint": "b",
			"properties": {
				"m_owner": {"type": "SEntityTemplateReference", "value": "missing"},
				"m_far": {"type": "SEntityTemplateReference", "value": {"ref": "x", "externalScene": "[assembly:/new.entity].pc_entitytype"}}
			}
		},
		"shade": {"parent": "lamp", "name": "Shade", "factory": "f", "blueprint": "b"}
	}
}`

func TestPasteCmd_FromStdin(t *testing.T) {
	m := newMockDocumentIO(map[string]string{testDocPath: testDoc})
	c := NewPasteCmd(m)
	c.SetIn(strings.NewReader(testClipboard))

	out := new(strings.Builder)
	errOut := new(strings.Builder)
	c.SetOut(out)
	c.SetErr(errOut)
	c.SetArgs([]string{"--parent", "switch", testDocPath})
	if err := c.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(out.String(), "Pasted 2 entities under switch as ") {
		t.Errorf("stdout = %q", out.String())
	}
	for _, code := range []string{entity.CodeExternalSceneAdded, entity.CodeReferencesDropped} {
		if !strings.Contains(errOut.String(), code) {
			t.Errorf("stderr = %q, want %s warning", errOut.String(), code)
		}
	}

	doc := m.document(t, testDocPath)
	if got := doc.Entities.Len(); got != 6 {
		t.Errorf("entities = %d, want 6", got)
	}
	if got := len(doc.ExternalScenes); got != 2 {
		t.Errorf("external scenes = %d, want 2", got)
	}
}

func TestPasteCmd_FromFileJSON(t *testing.T) {
	m := newMockDocumentIO(map[string]string{testDocPath: testDoc, "clip.json": testClipboard})

	out, _, err := execute(NewPasteCmd(m), "--parent", "root", "--from", "clip.json", "--json", testDocPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res := decodeResult(t, out)
	if !res.Changed {
		t.Error("Changed = false, want true")
	}
	result, ok := res.Result.(map[string]any)
	if !ok {
		t.Fatalf("result = %#v, want object", res.Result)
	}
	changelist, _ := result["changelist"].(map[string]any)
	if len(changelist) != 2 || changelist["lamp"] != result["root"] {
		t.Errorf("changelist = %v, root = %v", changelist, result["root"])
	}
}

func TestPasteCmd_InvalidClipboard(t *testing.T) {
	m := newMockDocumentIO(map[string]string{testDocPath: testDoc, "clip.json": `{"rootEntity": "gone", "data": {}}`})

	out, _, err := execute(NewPasteCmd(m), "--parent", "root", "--from", "clip.json", "--json", testDocPath)
	if err == nil {
		t.Fatal("expected error for invalid clipboard")
	}
	if len(m.writes) != 0 {
		t.Errorf("writes = %v, want none", m.writes)
	}
	res := decodeResult(t, out)
	if !hasCode(res.Diagnostics, entity.CodeInvalidClipboard) {
		t.Errorf("diagnostics = %+v, want %s", res.Diagnostics, entity.CodeInvalidClipboard)
	}
}

func TestPasteCmd_UnknownParent(t *testing.T) {
	m := newMockDocumentIO(map[string]string{testDocPath: testDoc, "clip.json": testClipboard})

	out, _, err := execute(NewPasteCmd(m), "--parent", "nope", "--from", "clip.json", "--json", testDocPath)
	if err == nil {
		t.Fatal("expected error for unknown parent")
	}
	res := decodeResult(t, out)
	if !hasCode(res.Diagnostics, entity.CodeNoSuchNode) {
		t.Errorf("diagnostics = %+v, want %s", res.Diagnostics, entity.CodeNoSuchNode)
	}
}

func TestPasteCmd_RequiresParent(t *testing.T) {
	m := newMockDocumentIO(map[string]string{testDocPath: testDoc})

	if _, _, err := execute(NewPasteCmd(m), testDocPath); err == nil {
		t.Error("expected error without --parent")
	}
}
