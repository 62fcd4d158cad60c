package cli

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"mercator-hq/retain/pkg/history"
	"mercator-hq/retain/pkg/retention"
	"mercator-hq/retain/pkg/sweep"
	"mercator-hq/retain/pkg/timestamp"
)

var testTime = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

func testOutcome(status string) *sweep.Outcome {
	return &sweep.Outcome{
		Report: &history.Report{
			Now:    testTime,
			Policy: "336h0m0s:1h0m0s",
			Status: status,
			Safe:   status == history.StatusOK,
		},
		Keep: []timestamp.Entry{
			{ID: "backup-2024-06-14T22", Time: testTime.Add(-2 * time.Hour)},
		},
		Discard: []timestamp.Entry{
			{ID: "backup-2024-05-31", Time: testTime.Add(-15 * retention.Day)},
			{ID: "backup-2024-06-14T23", Time: testTime.Add(-time.Hour)},
		},
		Unmatched: []string{"README"},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{in: "", want: FormatText},
		{in: "text", want: FormatText},
		{in: "JSON", want: FormatJSON},
		{in: "csv", want: FormatCSV},
		{in: "yaml", want: FormatYAML},
		{in: "xml", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestUnescapeSeparator(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: `\n`, want: "\n"},
		{in: `\0`, want: "\x00"},
		{in: `\t`, want: "\t"},
		{in: `,\n`, want: ",\n"},
		{in: `\\`, want: `\`},
		{in: `\x`, want: `\x`},
		{in: `trailing\`, want: `trailing\`},
		{in: " ", want: " "},
	}
	for _, tt := range tests {
		if got := UnescapeSeparator(tt.in); got != tt.want {
			t.Errorf("UnescapeSeparator(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResultWriter_Text(t *testing.T) {
	result := NewFilterResult(testOutcome(history.StatusOK))

	tests := []struct {
		name      string
		separator string
		printKept bool
		want      string
	}{
		{name: "default newline", want: "backup-2024-05-31\nbackup-2024-06-14T23\n"},
		{name: "nul", separator: "\x00", want: "backup-2024-05-31\x00backup-2024-06-14T23\x00"},
		{name: "kept", printKept: true, want: "backup-2024-06-14T22\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewResultWriter(FormatText, tt.separator)
			w.PrintKept = tt.printKept
			if err := w.Write(&buf, result); err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("Write() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestResultWriter_Blocked(t *testing.T) {
	result := NewFilterResult(testOutcome(history.StatusBlocked))

	for _, printKept := range []bool{false, true} {
		var buf bytes.Buffer
		w := NewResultWriter(FormatText, "")
		w.PrintKept = printKept
		if err := w.Write(&buf, result); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if buf.Len() != 0 {
			t.Errorf("blocked result with PrintKept=%v printed %q, want nothing", printKept, buf.String())
		}
	}
	if len(result.Keep) != 1 {
		t.Errorf("Keep has %d items, want 1", len(result.Keep))
	}
}

func TestResultWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := NewResultWriter(FormatJSON, "").Write(&buf, NewFilterResult(testOutcome(history.StatusOK))); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var got FilterResult
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if got.Status != history.StatusOK || len(got.Keep) != 1 || len(got.Discard) != 2 {
		t.Errorf("decoded = %+v", got)
	}
	if len(got.Unmatched) != 1 || got.Unmatched[0] != "README" {
		t.Errorf("Unmatched = %v", got.Unmatched)
	}
}

func TestResultWriter_YAML(t *testing.T) {
	var buf bytes.Buffer
	if err := NewResultWriter(FormatYAML, "").Write(&buf, NewFilterResult(testOutcome(history.StatusOK))); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	var got map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if got["status"] != "ok" {
		t.Errorf("status = %v, want ok", got["status"])
	}
}

func TestResultWriter_CSV(t *testing.T) {
	var buf bytes.Buffer
	if err := NewResultWriter(FormatCSV, "").Write(&buf, NewFilterResult(testOutcome(history.StatusOK))); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not CSV: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4 (header + 3)", len(rows))
	}
	if strings.Join(rows[0], ",") != "id,time,action,duplicate" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "backup-2024-06-14T22" || rows[1][2] != "keep" {
		t.Errorf("row 1 = %v", rows[1])
	}
	if rows[3][2] != "discard" || rows[3][1] != "2024-06-14T23:00:00Z" {
		t.Errorf("row 3 = %v", rows[3])
	}
}

func TestWriteDecisions(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDecisions(&buf, NewFilterResult(testOutcome(history.StatusOK))); err != nil {
		t.Fatalf("WriteDecisions() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Will keep:\n  - backup-2024-06-14T22 (2024-06-14T22:00:00Z)\n",
		"Will remove:\n  - backup-2024-05-31",
		"Skipped: README",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWritePolicyTable(t *testing.T) {
	p := retention.MustPolicy(
		retention.Tier{MaxAge: 5 * retention.Day, MinSpacing: time.Hour},
		retention.Tier{MaxAge: 14 * retention.Day, MinSpacing: retention.Day},
		retention.Tier{MaxAge: 30 * retention.Day, MinSpacing: retention.Week},
	)

	var buf bytes.Buffer
	if err := WritePolicyTable(&buf, p); err != nil {
		t.Fatalf("WritePolicyTable() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"TIER", "0s - 5d", "5d - 2w", "2w - 4w2d", "1w", "Records aged 4w2d or more are discarded."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestNewPolicyView(t *testing.T) {
	p := retention.MustPolicy(retention.Tier{MaxAge: 14 * retention.Day, MinSpacing: time.Hour})
	v := NewPolicyView(p)
	if len(v.Tiers) != 1 || v.Tiers[0].MaxAge != "2w" || v.Tiers[0].MinSpacing != "1h" || v.Horizon != "2w" {
		t.Errorf("NewPolicyView() = %+v", v)
	}
}

func TestWriteReportTable(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReportTable(&buf, nil); err != nil {
		t.Fatalf("WriteReportTable() error = %v", err)
	}
	if !strings.Contains(buf.String(), "No sweep reports") {
		t.Errorf("empty table = %q", buf.String())
	}

	buf.Reset()
	r := &history.Report{
		ID:         "0f8fad5b-d9cb-469f-a165-70867728950e",
		StartedAt:  testTime,
		FinishedAt: testTime.Add(1250 * time.Millisecond),
		Trigger:    "schedule",
		Status:     history.StatusBlocked,
		Kept:       2,
		Discarded:  100,
	}
	if err := WriteReportTable(&buf, []*history.Report{r}); err != nil {
		t.Fatalf("WriteReportTable() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"0f8fad5b", "schedule", "blocked", "100", "1.25s"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "d9cb") {
		t.Error("report ID should be shortened")
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON).(*JSONFormatter); !ok {
		t.Error("NewFormatter(json) is not a JSONFormatter")
	}
	if _, ok := NewFormatter(FormatYAML).(*YAMLFormatter); !ok {
		t.Error("NewFormatter(yaml) is not a YAMLFormatter")
	}
	if NewFormatter(FormatText) != nil {
		t.Error("NewFormatter(text) should be nil")
	}
}
