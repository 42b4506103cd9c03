package mural

import (
	"strings"
	"testing"
)

// upstreamFixture wires focus -> config, with a text node and an image node
// feeding the config.
func upstreamFixture() ([]*GraphNode, []*GraphEdge) {
	nodes := []*GraphNode{
		{ID: "focus", Type: NodeText, Data: map[string]any{"content": "the focus prompt"}},
		{ID: "cfg", Type: NodeImageConfig},
		{ID: "txt", Type: NodeText, Data: map[string]any{"label": "Style notes", "content": "moody lighting"}},
		{ID: "img", Type: NodeImage, Data: map[string]any{"url": "https://example.com/ref.png"}},
	}
	edges := []*GraphEdge{
		{ID: "e1", Source: "focus", Target: "cfg"},
		{ID: "e2", Source: "txt", Target: "cfg"},
		{ID: "e3", Source: "img", Target: "cfg"},
	}
	return nodes, edges
}

func TestCollectUpstreamInputs(t *testing.T) {
	nodes, edges := upstreamFixture()
	got := CollectUpstreamInputs("focus", nodes, edges)

	if len(got.Text) != 1 {
		t.Fatalf("%d text inputs, want 1", len(got.Text))
	}
	txt := got.Text[0]
	if txt.ID != "txt" || txt.Label != "Style notes" || txt.Text != "moody lighting" || txt.Target != "cfg" {
		t.Errorf("text input = %+v", txt)
	}

	if len(got.Images) != 1 {
		t.Fatalf("%d image inputs, want 1", len(got.Images))
	}
	img := got.Images[0]
	if img.ID != "img" || img.URL != "https://example.com/ref.png" || img.Target != "cfg" {
		t.Errorf("image input = %+v", img)
	}
	if img.Role != "input_reference" {
		t.Errorf("default role = %q, want input_reference", img.Role)
	}
	if img.Label != "Reference image" {
		t.Errorf("default label = %q", img.Label)
	}
}

func TestCollectUpstreamInputs_FocusTextExcluded(t *testing.T) {
	nodes, edges := upstreamFixture()
	// The focus node also feeds the config directly; its own content must
	// not show up as an upstream text input.
	for _, txt := range CollectUpstreamInputs("focus", nodes, edges).Text {
		if txt.ID == "focus" {
			t.Error("focus node's own text collected as upstream input")
		}
	}
}

func TestCollectUpstreamInputs_BlankOrUnknownFocus(t *testing.T) {
	nodes, edges := upstreamFixture()
	for _, id := range []string{"", "   ", "nope"} {
		got := CollectUpstreamInputs(id, nodes, edges)
		if len(got.Text) != 0 || len(got.Images) != 0 {
			t.Errorf("focus %q: got %+v, want empty", id, got)
		}
	}
}

func TestCollectUpstreamInputs_NonConfigTargetsIgnored(t *testing.T) {
	nodes := []*GraphNode{
		{ID: "focus", Type: NodeText},
		{ID: "plain", Type: NodeText},
		{ID: "txt", Type: NodeText, Data: map[string]any{"content": "hello"}},
	}
	edges := []*GraphEdge{
		{ID: "e1", Source: "focus", Target: "plain"},
		{ID: "e2", Source: "txt", Target: "plain"},
	}
	got := CollectUpstreamInputs("focus", nodes, edges)
	if len(got.Text) != 0 {
		t.Errorf("text routed through a non-config node was collected: %+v", got.Text)
	}
}

func TestCollectUpstreamInputs_Truncation(t *testing.T) {
	long := strings.Repeat("字", 600)
	nodes := []*GraphNode{
		{ID: "focus", Type: NodeText},
		{ID: "cfg", Type: NodeVideoConfig},
		{ID: "txt", Type: NodeText, Data: map[string]any{"content": long}},
	}
	edges := []*GraphEdge{
		{ID: "e1", Source: "focus", Target: "cfg"},
		{ID: "e2", Source: "txt", Target: "cfg"},
	}
	got := CollectUpstreamInputs("focus", nodes, edges)
	if len(got.Text) != 1 {
		t.Fatalf("%d text inputs, want 1", len(got.Text))
	}
	runes := []rune(got.Text[0].Text)
	if len(runes) != 521 {
		t.Errorf("truncated length = %d runes, want 520 + ellipsis", len(runes))
	}
	if runes[len(runes)-1] != '…' {
		t.Error("truncated text missing ellipsis")
	}
}

func TestCollectUpstreamInputs_DataURLBlanked(t *testing.T) {
	nodes := []*GraphNode{
		{ID: "focus", Type: NodeText},
		{ID: "cfg", Type: NodeImageConfig},
		{ID: "img", Type: NodeImage, Data: map[string]any{"url": "data:image/png;base64,AAAA"}},
	}
	edges := []*GraphEdge{
		{ID: "e1", Source: "focus", Target: "cfg"},
		{ID: "e2", Source: "img", Target: "cfg"},
	}
	got := CollectUpstreamInputs("focus", nodes, edges)
	if len(got.Images) != 1 {
		t.Fatalf("%d images, want 1", len(got.Images))
	}
	if got.Images[0].URL != "" {
		t.Errorf("data: URL survived: %q", got.Images[0].URL)
	}
}

func TestCollectUpstreamInputs_RoleFromEdgeData(t *testing.T) {
	nodes := []*GraphNode{
		{ID: "focus", Type: NodeText},
		{ID: "cfg", Type: NodeImageConfig},
		{ID: "img", Type: NodeImage, Data: map[string]any{"url": "https://example.com/a.png"}},
	}
	edges := []*GraphEdge{
		{ID: "e1", Source: "focus", Target: "cfg"},
		{ID: "e2", Source: "img", Target: "cfg", Data: map[string]any{"imageRole": "style_reference"}},
	}
	got := CollectUpstreamInputs("focus", nodes, edges)
	if len(got.Images) != 1 || got.Images[0].Role != "style_reference" {
		t.Errorf("images = %+v, want role style_reference", got.Images)
	}
}

func TestCollectUpstreamInputs_Dedup(t *testing.T) {
	// The same text node feeds two config nodes downstream of the focus.
	nodes := []*GraphNode{
		{ID: "focus", Type: NodeText},
		{ID: "cfg1", Type: NodeImageConfig},
		{ID: "cfg2", Type: NodeVideoConfig},
		{ID: "txt", Type: NodeText, Data: map[string]any{"content": "shared"}},
	}
	edges := []*GraphEdge{
		{ID: "e1", Source: "focus", Target: "cfg1"},
		{ID: "e2", Source: "focus", Target: "cfg2"},
		{ID: "e3", Source: "txt", Target: "cfg1"},
		{ID: "e4", Source: "txt", Target: "cfg2"},
	}
	got := CollectUpstreamInputs("focus", nodes, edges)
	if len(got.Text) != 1 {
		t.Errorf("%d text inputs for one source node, want 1", len(got.Text))
	}
}

func TestCollectUpstreamInputs_EmptyContentSkipped(t *testing.T) {
	nodes := []*GraphNode{
		{ID: "focus", Type: NodeText},
		{ID: "cfg", Type: NodeImageConfig},
		{ID: "txt", Type: NodeText, Data: map[string]any{"content": "   \r\n  "}},
	}
	edges := []*GraphEdge{
		{ID: "e1", Source: "focus", Target: "cfg"},
		{ID: "e2", Source: "txt", Target: "cfg"},
	}
	got := CollectUpstreamInputs("focus", nodes, edges)
	if len(got.Text) != 0 {
		t.Errorf("whitespace-only content collected: %+v", got.Text)
	}
}

func TestSafeSlice(t *testing.T) {
	if got := safeSlice("  hello\r\nworld  ", 100); got != "hello\nworld" {
		t.Errorf("safeSlice normalization = %q", got)
	}
	if got := safeSlice("abcdef", 3); got != "abc…" {
		t.Errorf("safeSlice truncation = %q", got)
	}
	if got := safeSlice("", 10); got != "" {
		t.Errorf("safeSlice empty = %q", got)
	}
}

func TestDataString(t *testing.T) {
	if got := dataString(nil, "k"); got != "" {
		t.Errorf("nil map = %q", got)
	}
	if got := dataString(map[string]any{"k": 42}, "k"); got != "" {
		t.Errorf("non-string value = %q", got)
	}
	if got := dataString(map[string]any{"k": " v "}, "k"); got != "v" {
		t.Errorf("string value = %q", got)
	}
}
