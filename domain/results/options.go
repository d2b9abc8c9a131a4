package results

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"sessionresults/domain/feedback"
)

// ViewType selects how results are grouped on the page
type ViewType string

const (
	ViewQuestion ViewType = "QUESTION"
	ViewGRQ      ViewType = "GRQ" // giver > recipient > question
	ViewRGQ      ViewType = "RGQ" // recipient > giver > question
	ViewGQR      ViewType = "GQR" // giver > question > recipient
	ViewRQG      ViewType = "RQG" // recipient > question > giver
)

// GroupsByGiver reports whether the outermost grouping is the response giver
func (v ViewType) GroupsByGiver() bool {
	return strings.HasPrefix(string(v), "G")
}

// SectionType decides which responses count as belonging to a section
type SectionType string

const (
	SectionEither  SectionType = "EITHER"
	SectionGiver   SectionType = "GIVER"
	SectionEvaluee SectionType = "EVALUEE"
	SectionBoth    SectionType = "BOTH"
)

// Matches reports whether a response belongs to section under this section type
func (t SectionType) Matches(r feedback.Response, section string) bool {
	giver := r.GiverSection == section
	evaluee := r.RecipientSection == section
	switch t {
	case SectionGiver:
		return giver
	case SectionEvaluee:
		return evaluee
	case SectionBoth:
		return giver && evaluee
	default:
		return giver || evaluee
	}
}

// Query parameter names of the page view options
const (
	OptViewType        = "view"
	OptSection         = "section"
	OptSectionType     = "sectiontype"
	OptGroupByTeam     = "groupbyteam"
	OptShowStatistics  = "showstats"
	OptMissingResponse = "missing"
)

// ViewOptions are the display settings of a results page
type ViewOptions struct {
	ViewType                 ViewType
	Section                  string
	SectionType              SectionType
	GroupByTeam              bool
	ShowStatistics           bool
	IndicateMissingResponses bool
}

// DefaultViewOptions returns the settings a page opens with
func DefaultViewOptions() ViewOptions {
	return ViewOptions{
		ViewType:                 ViewQuestion,
		SectionType:              SectionEither,
		GroupByTeam:              true,
		ShowStatistics:           true,
		IndicateMissingResponses: true,
	}
}

// ParseViewOptions reads view options from query parameters, keeping defaults for absent keys
func ParseViewOptions(q url.Values) (ViewOptions, error) {
	opts := DefaultViewOptions()

	if raw := q.Get(OptViewType); raw != "" {
		vt := ViewType(strings.ToUpper(raw))
		switch vt {
		case ViewQuestion, ViewGRQ, ViewRGQ, ViewGQR, ViewRQG:
			opts.ViewType = vt
		default:
			return opts, fmt.Errorf("unknown view type %q", raw)
		}
	}

	if raw := q.Get(OptSectionType); raw != "" {
		st := SectionType(strings.ToUpper(raw))
		switch st {
		case SectionEither, SectionGiver, SectionEvaluee, SectionBoth:
			opts.SectionType = st
		default:
			return opts, fmt.Errorf("unknown section type %q", raw)
		}
	}

	opts.Section = q.Get(OptSection)

	var err error
	if opts.GroupByTeam, err = parseBool(q, OptGroupByTeam, opts.GroupByTeam); err != nil {
		return opts, err
	}
	if opts.ShowStatistics, err = parseBool(q, OptShowStatistics, opts.ShowStatistics); err != nil {
		return opts, err
	}
	if opts.IndicateMissingResponses, err = parseBool(q, OptMissingResponse, opts.IndicateMissingResponses); err != nil {
		return opts, err
	}
	return opts, nil
}

func parseBool(q url.Values, key string, def bool) (bool, error) {
	raw := q.Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def, fmt.Errorf("invalid %s value %q", key, raw)
	}
	return v, nil
}

// Encode writes the options back as query parameters
func (o ViewOptions) Encode() url.Values {
	q := url.Values{}
	q.Set(OptViewType, string(o.ViewType))
	q.Set(OptSectionType, string(o.SectionType))
	if o.Section != "" {
		q.Set(OptSection, o.Section)
	}
	q.Set(OptGroupByTeam, strconv.FormatBool(o.GroupByTeam))
	q.Set(OptShowStatistics, strconv.FormatBool(o.ShowStatistics))
	q.Set(OptMissingResponse, strconv.FormatBool(o.IndicateMissingResponses))
	return q
}

// VisibleSections returns the sections selected by the section filter
func (o ViewOptions) VisibleSections(sections []SectionEntry) []SectionEntry {
	if o.Section == "" {
		return sections
	}
	for _, s := range sections {
		if s.Name == o.Section {
			return []SectionEntry{s}
		}
	}
	return nil
}

// FilterResponses keeps the responses that belong to section under the section type
func (o ViewOptions) FilterResponses(responses []feedback.Response, section string) []feedback.Response {
	kept := make([]feedback.Response, 0, len(responses))
	for _, r := range responses {
		if o.SectionType.Matches(r, section) {
			kept = append(kept, r)
		}
	}
	return kept
}

// ResponseGroup is a run of responses sharing a giver or recipient key
type ResponseGroup struct {
	Key       string
	Responses []feedback.Response
}

// GroupResponses buckets responses by giver or recipient according to the view type.
// With GroupByTeam the team name is used instead of the individual.
func (o ViewOptions) GroupResponses(responses []feedback.Response) []ResponseGroup {
	index := make(map[string]int)
	var groups []ResponseGroup
	for _, r := range responses {
		key := o.groupKey(r)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, ResponseGroup{Key: key})
		}
		groups[i].Responses = append(groups[i].Responses, r)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups
}

func (o ViewOptions) groupKey(r feedback.Response) string {
	if o.ViewType.GroupsByGiver() {
		if o.GroupByTeam && r.GiverTeam != "" {
			return r.GiverTeam
		}
		return r.Giver
	}
	if o.GroupByTeam && r.RecipientTeam != "" {
		return r.RecipientTeam
	}
	return r.Recipient
}
