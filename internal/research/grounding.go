package research

import (
	"fmt"
	"strings"

	"github.com/mohammad-safakhou/deepdive/internal/genai"
)

// Tool names whose call arguments contribute to grounding state.
const (
	webSearchTool  = "web_search"
	urlContextTool = "url_context"
)

// untitledSource marks a URL that entered the source map without a display
// title; the title resolver may replace it later.
const untitledSource = "(untitled)"

// GroundingSource is one cited source in the session citation payload.
type GroundingSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// GroundingPayload is the snapshot handed to the transport at session end.
type GroundingPayload struct {
	Sources []GroundingSource `json:"sources"`
	Queries []string          `json:"queries"`
}

// Grounding accumulates search queries and cited sources across a whole
// session. One instance belongs to one session; phase execution is
// sequential so no locking is needed.
type Grounding struct {
	titles   map[string]string
	order    []string
	queries  []string
	querySet map[string]struct{}
}

// NewGrounding returns an empty accumulator.
func NewGrounding() *Grounding {
	return &Grounding{
		titles:   make(map[string]string),
		querySet: make(map[string]struct{}),
	}
}

// AddMetadata folds the citation metadata of one stream chunk into state.
// Sources missing either a URI or a title are rejected.
func (g *Grounding) AddMetadata(md *genai.GroundingMetadata) {
	if md == nil {
		return
	}
	for _, q := range md.WebSearchQueries {
		g.addQuery(q)
	}
	for _, c := range md.GroundingChunks {
		if c.Web == nil {
			continue
		}
		g.addSource(c.Web.URI, c.Web.Title)
	}
}

// AddCall folds the arguments of a known tool call into state: a web-search
// call contributes its query, a URL-context call contributes its URL under a
// placeholder title. Unknown tools are ignored.
func (g *Grounding) AddCall(call genai.FunctionCall) {
	args := decodeArgs(call.Args)
	if args == nil {
		return
	}
	switch call.Name {
	case webSearchTool:
		if q, ok := args["query"].(string); ok {
			g.addQuery(q)
		}
	case urlContextTool:
		if u, ok := args["url"].(string); ok {
			g.addSource(u, untitledSource)
		}
	}
}

func (g *Grounding) addQuery(q string) {
	q = strings.TrimSpace(q)
	if q == "" {
		return
	}
	if _, seen := g.querySet[q]; seen {
		return
	}
	g.querySet[q] = struct{}{}
	g.queries = append(g.queries, q)
}

// addSource dedups by URI, last write wins on the title.
func (g *Grounding) addSource(uri, title string) {
	uri = strings.TrimSpace(uri)
	title = strings.TrimSpace(title)
	if uri == "" || title == "" {
		return
	}
	if _, seen := g.titles[uri]; !seen {
		g.order = append(g.order, uri)
	}
	g.titles[uri] = title
}

// Snapshot returns the accumulated citation payload, or nil when nothing
// was collected.
func (g *Grounding) Snapshot() *GroundingPayload {
	if len(g.order) == 0 && len(g.queries) == 0 {
		return nil
	}
	payload := &GroundingPayload{Queries: append([]string(nil), g.queries...)}
	for _, uri := range g.order {
		payload.Sources = append(payload.Sources, GroundingSource{URI: uri, Title: g.titles[uri]})
	}
	return payload
}

// Summary renders a capped, human-readable brief of the collected grounding
// for inclusion in later prompts. Empty when nothing was collected.
func (g *Grounding) Summary(maxSources, maxQueries int) string {
	if len(g.order) == 0 && len(g.queries) == 0 {
		return ""
	}
	var b strings.Builder
	if len(g.order) > 0 {
		b.WriteString("Sources consulted so far:\n")
		for i, uri := range g.order {
			if i >= maxSources {
				break
			}
			fmt.Fprintf(&b, "- %s (%s)\n", g.titles[uri], uri)
		}
	}
	if len(g.queries) > 0 {
		b.WriteString("Search queries issued so far:\n")
		for i, q := range g.queries {
			if i >= maxQueries {
				break
			}
			fmt.Fprintf(&b, "- %s\n", q)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
