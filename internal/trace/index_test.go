package trace

import "testing"

func TestIndexCounts(t *testing.T) {
	lines := []string{
		"CreateCoreWebView2Controller, 1000000, contoso.exe(812)",
		"NavigationStarting, 1200000, msedgewebview2.exe(1024), NavigationId=7",
		"NavigationStarting, 1400000, msedgewebview2.exe(1024), NavigationId=8",
	}
	ix := NewIndex(lines, []string{"NavigationStarting", "NavigationCompleted", "CreateCoreWebView2Controller"})

	if got := ix.Count("NavigationStarting"); got != 2 {
		t.Fatalf("count = %d, want 2", got)
	}
	if ix.Has("NavigationCompleted") {
		t.Fatalf("NavigationCompleted should be absent")
	}

	line, ok := ix.FirstLine("NavigationStarting")
	if !ok || line != 1 {
		t.Fatalf("first line = %d/%v, want 1/true", line, ok)
	}

	ts, ok := ix.FirstTimestamp("NavigationStarting")
	if !ok || ts != 1200000 {
		t.Fatalf("first timestamp = %d/%v, want 1200000/true", ts, ok)
	}
}

func TestIndexUnknownPattern(t *testing.T) {
	ix := NewIndex([]string{"NavigationStarting, 1200000"}, []string{"NavigationStarting"})

	// Patterns outside the catalog the index was built from report zero.
	if ix.Count("NavigationStarting, 1200000") == 0 && ix.Count("NeverRegistered") != 0 {
		t.Fatalf("unregistered pattern must report zero")
	}
	if _, ok := ix.FirstLine("NeverRegistered"); ok {
		t.Fatalf("unregistered pattern must have no first line")
	}
}

func TestIndexFirstTimestampMissing(t *testing.T) {
	ix := NewIndex([]string{"RendererUnresponsive no timestamp on this line"}, []string{"RendererUnresponsive"})
	if !ix.Has("RendererUnresponsive") {
		t.Fatalf("pattern should be present")
	}
	if _, ok := ix.FirstTimestamp("RendererUnresponsive"); ok {
		t.Fatalf("line without timestamp must not report one")
	}
}

func TestIndexEmptyInput(t *testing.T) {
	ix := NewIndex(nil, []string{"NavigationStarting"})
	if ix.Has("NavigationStarting") || ix.LineCount() != 0 {
		t.Fatalf("empty input should index nothing")
	}
}
