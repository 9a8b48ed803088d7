package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetchToolExecuteRequiresURL(t *testing.T) {
	tool := NewFetchTool()
	if _, err := tool.Execute(context.Background(), map[string]interface{}{}); err == nil {
		t.Fatal("expected error when url is missing")
	}
}

func TestFetchStructuredExtractsReadableContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>A Story</title></head><body>
			<article><h1>A Story</h1><p>Once upon a time there was a very long article about golang testing practices that go-readability should recognize as the main content of this page because it has enough text to pass its heuristics for real article content rather than boilerplate navigation links.</p></article>
		</body></html>`))
	}))
	defer srv.Close()

	tool := NewFetchTool()
	result, err := tool.FetchStructured(context.Background(), srv.URL, 10000)
	if err != nil {
		t.Fatalf("FetchStructured: %v", err)
	}
	if !strings.Contains(result.Content, "Once upon a time") {
		t.Errorf("expected extracted content to include article text, got %q", result.Content)
	}
}

func TestFetchStructuredTruncatesAtMaxLen(t *testing.T) {
	long := strings.Repeat("word ", 2000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>" + long + "</p></body></html>"))
	}))
	defer srv.Close()

	tool := NewFetchTool()
	result, err := tool.FetchStructured(context.Background(), srv.URL, 50)
	if err != nil {
		t.Fatalf("FetchStructured: %v", err)
	}
	if !strings.HasSuffix(result.Content, "...[truncated]") {
		t.Errorf("expected truncation suffix, got %q", result.Content)
	}
	if len(result.Content) > 50+len("\n...[truncated]") {
		t.Errorf("content longer than maxLen+suffix: %d chars", len(result.Content))
	}
}

func TestFetchStructuredPropagatesHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	tool := NewFetchTool()
	if _, err := tool.FetchStructured(context.Background(), srv.URL, 1000); err == nil {
		t.Fatal("expected error for a 404 response")
	}
}

func TestExtractTextStripsScriptAndStyle(t *testing.T) {
	html := `<html><body><script>alert('x')</script><style>.a{}</style><p>visible text</p></body></html>`
	got := extractText(html)
	if strings.Contains(got, "alert") || strings.Contains(got, ".a{}") {
		t.Errorf("expected script/style content stripped, got %q", got)
	}
	if !strings.Contains(got, "visible text") {
		t.Errorf("expected visible text to survive, got %q", got)
	}
}

func TestCleanWhitespaceCollapsesAndTrims(t *testing.T) {
	got := cleanWhitespace("  a   b\n\nc\t d  ")
	if got != "a b c d" {
		t.Errorf("cleanWhitespace = %q, want %q", got, "a b c d")
	}
}

func TestExtractReadableFallsBackOnUnparsableArticle(t *testing.T) {
	title, text := extractReadable([]byte(`<html><body><p>short</p></body></html>`), "https://example.com")
	if text == "" {
		t.Fatal("expected fallback extraction to return some text")
	}
	_ = title
}
