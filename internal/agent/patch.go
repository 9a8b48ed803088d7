package agent

import "encoding/json"

// PatchSink receives UI patches as JSON strings, in emission order.
type PatchSink func(patch string)

// reportSource is one numbered entry in the emitted UI patch's source list.
type reportSource struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	Domain string `json:"domain"`
}

// reportSection is one `## `-delimited section of the synthesized report.
type reportSection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type reportProps struct {
	Title       string          `json:"title"`
	Summary     string          `json:"summary"`
	Sections    []reportSection `json:"sections"`
	Sources     []reportSource  `json:"sources"`
	SearchQuery string          `json:"searchQuery"`
	TotalResults int            `json:"totalResults"`
}

type patchValue struct {
	Key   string      `json:"key"`
	Type  string      `json:"type"`
	Props reportProps `json:"props"`
}

type patch struct {
	Op    string      `json:"op"`
	Path  string      `json:"path"`
	Value interface{} `json:"value"`
}

// emitReportPatches emits the add/set patch pair the Synthesizer is
// required to produce: an "add" at /elements/research_report carrying
// the full report payload, followed by a "set" at /root pointing to it.
// Returns the number of patches emitted (2), or 0 if sink is nil.
func emitReportPatches(sink PatchSink, query, title, summary string, sections []reportSection, sources []reportSource) int {
	if sink == nil {
		return 0
	}

	addPatch := patch{
		Op:   "add",
		Path: "/elements/research_report",
		Value: patchValue{
			Key:  "research_report",
			Type: "ResearchReport",
			Props: reportProps{
				Title:        title,
				Summary:      summary,
				Sections:     sections,
				Sources:      sources,
				SearchQuery:  query,
				TotalResults: len(sources),
			},
		},
	}
	setPatch := patch{Op: "set", Path: "/root", Value: "research_report"}

	for _, p := range []patch{addPatch, setPatch} {
		b, err := json.Marshal(p)
		if err != nil {
			continue
		}
		sink(string(b))
	}
	return 2
}
