package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"mercator-hq/retain/pkg/config"
	"mercator-hq/retain/pkg/history"
	"mercator-hq/retain/pkg/retention"
	"mercator-hq/retain/pkg/sweep"
	"mercator-hq/retain/pkg/timestamp"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is plain text output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is JSON output.
	FormatJSON OutputFormat = "json"
	// FormatCSV is CSV output.
	FormatCSV OutputFormat = "csv"
	// FormatYAML is YAML output.
	FormatYAML OutputFormat = "yaml"
)

// ParseFormat parses an output format name. Empty means text.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatCSV, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json, csv or yaml)", s)
	}
}

// Formatter formats structured command output.
type Formatter interface {
	FormatTo(w io.Writer, data any) error
}

// JSONFormatter formats output as JSON.
type JSONFormatter struct {
	Indent bool
}

// FormatTo writes data to writer in JSON format.
func (f *JSONFormatter) FormatTo(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// YAMLFormatter formats output as YAML.
type YAMLFormatter struct{}

// FormatTo writes data to writer in YAML format.
func (f *YAMLFormatter) FormatTo(w io.Writer, data any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return err
	}
	return encoder.Close()
}

// NewFormatter creates a structured formatter. Text and CSV have no generic
// structured form and return nil.
func NewFormatter(format OutputFormat) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return nil
	}
}

// UnescapeSeparator interprets the escapes \n, \t, \r, \0 and \\ in s.
func UnescapeSeparator(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i == len(s)-1 {
			sb.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '0':
			sb.WriteByte(0)
		case '\\':
			sb.WriteByte('\\')
		default:
			sb.WriteByte('\\')
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// Item is one classified record.
type Item struct {
	ID        string    `json:"id"`
	Time      time.Time `json:"time"`
	Duplicate bool      `json:"duplicate,omitempty"`
}

// FilterResult is the output document of `retain filter`.
type FilterResult struct {
	Now       time.Time `json:"now"`
	Policy    string    `json:"policy"`
	Status    string    `json:"status"`
	Safe      bool      `json:"safe"`
	Keep      []Item    `json:"keep"`
	Discard   []Item    `json:"discard"`
	Unmatched []string  `json:"unmatched,omitempty"`
}

// NewFilterResult converts a sweep outcome. A blocked outcome has an empty
// discard list.
func NewFilterResult(o *sweep.Outcome) *FilterResult {
	r := &FilterResult{
		Now:       o.Report.Now,
		Policy:    o.Report.Policy,
		Status:    o.Report.Status,
		Safe:      o.Report.Safe,
		Keep:      items(o.Keep),
		Discard:   []Item{},
		Unmatched: o.Unmatched,
	}
	if !o.Blocked() {
		r.Discard = items(o.Discard)
	}
	return r
}

func items(entries []timestamp.Entry) []Item {
	out := make([]Item, len(entries))
	for i, e := range entries {
		out[i] = Item{ID: e.ID, Time: e.Time, Duplicate: e.Duplicate}
	}
	return out
}

// ResultWriter writes filter results.
type ResultWriter struct {
	Format OutputFormat

	// Separator terminates each identifier in text output.
	Separator string

	// PrintKept selects the keep-set for text output.
	PrintKept bool
}

// NewResultWriter creates a writer for format. An empty separator means a
// newline.
func NewResultWriter(format OutputFormat, separator string) *ResultWriter {
	if separator == "" {
		separator = "\n"
	}
	return &ResultWriter{Format: format, Separator: separator}
}

// Write writes r to w.
//
// Text output lists the selected set, one identifier per separator, and is
// empty for a blocked result whichever set is selected. JSON output is the
// full document. CSV output has one row per record with an action column.
func (rw *ResultWriter) Write(w io.Writer, r *FilterResult) error {
	switch rw.Format {
	case FormatJSON:
		return (&JSONFormatter{Indent: true}).FormatTo(w, r)
	case FormatYAML:
		return (&YAMLFormatter{}).FormatTo(w, r)
	case FormatCSV:
		return writeCSV(w, r)
	default:
		if r.Status == history.StatusBlocked {
			return nil
		}
		set := r.Discard
		if rw.PrintKept {
			set = r.Keep
		}
		for _, it := range set {
			if _, err := io.WriteString(w, it.ID+rw.Separator); err != nil {
				return err
			}
		}
		return nil
	}
}

func writeCSV(w io.Writer, r *FilterResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "time", "action", "duplicate"}); err != nil {
		return err
	}

	rows := make([][]string, 0, len(r.Keep)+len(r.Discard))
	add := func(set []Item, action string) {
		for _, it := range set {
			rows = append(rows, []string{
				it.ID,
				it.Time.Format(time.RFC3339Nano),
				action,
				fmt.Sprintf("%t", it.Duplicate),
			})
		}
	}
	add(r.Keep, "keep")
	add(r.Discard, "discard")

	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// WriteDecisions writes a human-readable keep/remove listing.
func WriteDecisions(w io.Writer, r *FilterResult) error {
	var sb strings.Builder
	sb.WriteString("=====================\n")
	sb.WriteString("Will keep:\n")
	for _, it := range r.Keep {
		fmt.Fprintf(&sb, "  - %s (%s)\n", it.ID, it.Time.Format(time.RFC3339))
	}
	sb.WriteString("Will remove:\n")
	for _, it := range r.Discard {
		fmt.Fprintf(&sb, "  - %s (%s)\n", it.ID, it.Time.Format(time.RFC3339))
	}
	for _, id := range r.Unmatched {
		fmt.Fprintf(&sb, "Skipped: %s (no timestamp)\n", id)
	}
	sb.WriteString("=====================\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// PolicyTier is the structured form of one tier.
type PolicyTier struct {
	MaxAge     string `json:"max_age" yaml:"max_age"`
	MinSpacing string `json:"min_spacing" yaml:"min_spacing"`
}

// PolicyView is the structured form of a policy.
type PolicyView struct {
	Tiers   []PolicyTier `json:"tiers" yaml:"tiers"`
	Horizon string       `json:"horizon" yaml:"horizon"`
}

// NewPolicyView converts p, formatting durations in w/d/h units.
func NewPolicyView(p *retention.Policy) *PolicyView {
	v := &PolicyView{Horizon: config.FormatDuration(p.Horizon())}
	for _, t := range p.Tiers() {
		v.Tiers = append(v.Tiers, PolicyTier{
			MaxAge:     config.FormatDuration(t.MaxAge),
			MinSpacing: config.FormatDuration(t.MinSpacing),
		})
	}
	return v
}

// WritePolicyTable writes the tiers of p as a table.
func WritePolicyTable(w io.Writer, p *retention.Policy) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIER\tAGE RANGE\tMIN SPACING")
	var lower time.Duration
	for i, t := range p.Tiers() {
		fmt.Fprintf(tw, "%d\t%s - %s\t%s\n",
			i, config.FormatDuration(lower), config.FormatDuration(t.MaxAge), config.FormatDuration(t.MinSpacing))
		lower = t.MaxAge
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nRecords aged %s or more are discarded.\n", config.FormatDuration(p.Horizon()))
	return err
}

// WriteReportTable writes sweep reports as a table.
func WriteReportTable(w io.Writer, reports []*history.Report) error {
	if len(reports) == 0 {
		_, err := fmt.Fprintln(w, "No sweep reports recorded.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tTRIGGER\tSTATUS\tKEPT\tDISCARDED\tUNMATCHED\tDURATION")
	for _, r := range reports {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			shortID(r.ID),
			r.StartedAt.Format(time.RFC3339),
			r.Trigger,
			r.Status,
			r.Kept,
			r.Discarded,
			r.Unmatched,
			r.Duration().Round(time.Millisecond),
		)
	}
	return tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
