package tools

import "testing"

func TestNewRegistryRegistersDocumentTools(t *testing.T) {
	r := NewRegistry("test-key")

	names := r.ToolNames()
	want := []string{"search", "fetch", "read_document", "read_docx", "read_pdf", "read_xlsx", "analyze_csv"}
	for _, w := range want {
		found := false
		for _, n := range names {
			if n == w {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected registry to contain tool %q, got %v", w, names)
		}
	}
}

func TestRegistryExecuteUnknownTool(t *testing.T) {
	r := NewRegistry("test-key")
	if _, err := r.Execute(nil, "not-a-real-tool", nil); err == nil {
		t.Fatal("expected error for unknown tool")
	}
}
