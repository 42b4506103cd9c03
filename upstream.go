package mural

import "strings"

// Truncation limits for collected upstream content, in runes.
const (
	maxUpstreamTextChars = 520
	maxUpstreamURLChars  = 240
)

// Fallback labels for unlabeled upstream nodes.
const (
	defaultTextLabel  = "Text node"
	defaultImageLabel = "Reference image"
)

// UpstreamText is a text block feeding a generation config node.
type UpstreamText struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Text   string `json:"text"`
	Target string `json:"target"`
}

// UpstreamImage is a reference image feeding a generation config node.
type UpstreamImage struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Role   string `json:"role"`
	URL    string `json:"url"`
	Target string `json:"target"`
}

// UpstreamInputs bundles everything wired into the config nodes downstream
// of a focus node.
type UpstreamInputs struct {
	Text   []UpstreamText  `json:"text"`
	Images []UpstreamImage `json:"images"`
}

// CollectUpstreamInputs walks the graph from a focus node: outgoing edges to
// image/video config nodes, then each config node's incoming text and image
// sources. Text content is truncated to 520 runes, URLs to 240; data: URLs
// are blanked; duplicate sources and the focus node's own text are skipped.
// A blank or unknown focus id yields empty inputs.
func CollectUpstreamInputs(focusID string, nodes []*GraphNode, edges []*GraphEdge) UpstreamInputs {
	focusID = strings.TrimSpace(focusID)
	if focusID == "" {
		return UpstreamInputs{}
	}

	byID := make(map[string]*GraphNode, len(nodes))
	for _, n := range nodes {
		if strings.TrimSpace(n.ID) != "" {
			byID[n.ID] = n
		}
	}
	if _, ok := byID[focusID]; !ok {
		return UpstreamInputs{}
	}

	incoming := make(map[string][]*GraphEdge)
	outgoing := make(map[string][]*GraphEdge)
	for _, e := range edges {
		if strings.TrimSpace(e.Source) == "" || strings.TrimSpace(e.Target) == "" {
			continue
		}
		incoming[e.Target] = append(incoming[e.Target], e)
		outgoing[e.Source] = append(outgoing[e.Source], e)
	}

	var configTargets []string
	for _, e := range outgoing[focusID] {
		if t := byID[e.Target]; t != nil && (t.Type == NodeImageConfig || t.Type == NodeVideoConfig) {
			configTargets = append(configTargets, t.ID)
		}
	}

	var out UpstreamInputs
	seenText := make(map[string]struct{})
	seenImage := make(map[string]struct{})

	for _, cfgID := range configTargets {
		for _, e := range incoming[cfgID] {
			src := byID[e.Source]
			if src == nil {
				continue
			}
			switch src.Type {
			case NodeText:
				if src.ID == focusID {
					continue
				}
				if _, dup := seenText[src.ID]; dup {
					continue
				}
				content := dataString(src.Data, "content")
				if content == "" {
					continue
				}
				label := dataString(src.Data, "label")
				if label == "" {
					label = defaultTextLabel
				}
				out.Text = append(out.Text, UpstreamText{
					ID:     src.ID,
					Label:  label,
					Text:   safeSlice(content, maxUpstreamTextChars),
					Target: cfgID,
				})
				seenText[src.ID] = struct{}{}

			case NodeImage:
				if _, dup := seenImage[src.ID]; dup {
					continue
				}
				label := dataString(src.Data, "label")
				if label == "" {
					label = defaultImageLabel
				}
				url := dataString(src.Data, "url")
				if strings.HasPrefix(url, "data:") {
					url = ""
				} else {
					url = safeSlice(url, maxUpstreamURLChars)
				}
				role := dataString(e.Data, "imageRole")
				if role == "" {
					role = "input_reference"
				}
				out.Images = append(out.Images, UpstreamImage{
					ID:     src.ID,
					Label:  label,
					Role:   role,
					URL:    url,
					Target: cfgID,
				})
				seenImage[src.ID] = struct{}{}
			}
		}
	}

	return out
}

// normalizeText unifies line endings and trims surrounding whitespace.
func normalizeText(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
}

// safeSlice truncates normalized text to maxChars runes, appending an
// ellipsis when anything was cut.
func safeSlice(text string, maxChars int) string {
	t := normalizeText(text)
	if t == "" {
		return t
	}
	runes := []rune(t)
	if len(runes) <= maxChars {
		return t
	}
	return string(runes[:maxChars]) + "…"
}

// dataString reads a normalized string field out of an opaque node or edge
// payload. Missing keys and non-string values read as "".
func dataString(data map[string]any, key string) string {
	if data == nil {
		return ""
	}
	s, _ := data[key].(string)
	return normalizeText(s)
}
