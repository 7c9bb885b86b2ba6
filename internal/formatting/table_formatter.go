package formatting

import (
	"fmt"
	"strings"
	"time"

	"mcpool/internal/api"
	"mcpool/internal/session"
	pkgstrings "mcpool/pkg/strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// TableFormatter provides rich table output formatting
type TableFormatter struct {
	options Options
	now     func() time.Time
}

// FormatSessions renders context records with their last-used age.
func (f *TableFormatter) FormatSessions(records []session.ContextRecord) (string, error) {
	if len(records) == 0 {
		return f.formatEmptyMessage("No active sessions"), nil
	}

	t := f.createTable()
	t.AppendHeader(f.header("USER", "PROJECT", "POOL", "FINGERPRINT", "LAST USED"))
	for _, rec := range records {
		t.AppendRow(table.Row{
			rec.UserID,
			rec.ProjectID,
			shortID(rec.PoolID),
			session.ShortFingerprint(rec.Fingerprint),
			fmt.Sprintf("%s (%s ago)", rec.LastUsed.Local().Format(time.DateTime), HumanizeDuration(f.since(rec.LastUsed))),
		})
	}
	return f.render(t, len(records), "sessions"), nil
}

// FormatPools renders pool statistics.
func (f *TableFormatter) FormatPools(pools []session.PoolStats) (string, error) {
	if len(pools) == 0 {
		return f.formatEmptyMessage("No connection pools"), nil
	}

	t := f.createTable()
	t.AppendHeader(f.header("POOL", "FINGERPRINT", "SERVERS", "OPEN", "TOOLS", "STATE", "AGE"))
	for _, p := range pools {
		t.AppendRow(table.Row{
			shortID(p.ID),
			session.ShortFingerprint(p.Fingerprint),
			strings.Join(p.Servers, ", "),
			fmt.Sprintf("%d/%d", len(p.OpenSessions), len(p.Servers)),
			p.ToolCount,
			f.state(p.Closed),
			HumanizeDuration(f.since(p.CreatedAt)),
		})
	}
	return f.render(t, len(pools), "pools"), nil
}

// FormatProfiles renders configured profiles.
func (f *TableFormatter) FormatProfiles(profiles []api.ProfileInfo) (string, error) {
	if len(profiles) == 0 {
		return f.formatEmptyMessage("No profiles configured"), nil
	}

	t := f.createTable()
	t.AppendHeader(f.header("PROFILE", "FINGERPRINT", "SERVERS"))
	for _, p := range profiles {
		t.AppendRow(table.Row{p.Name, session.ShortFingerprint(p.Fingerprint), strings.Join(p.Servers, ", ")})
	}
	return f.render(t, len(profiles), "profiles"), nil
}

// FormatTools renders the tools of a profile grouped by server.
func (f *TableFormatter) FormatTools(tools []session.Capability) (string, error) {
	if len(tools) == 0 {
		return f.formatEmptyMessage("No tools available"), nil
	}

	t := f.createTable()
	t.AppendHeader(f.header("SERVER", "TOOL", "DESCRIPTION"))
	for _, c := range tools {
		t.AppendRow(table.Row{c.Server, f.colorize(text.Bold, c.Name()), pkgstrings.TruncateDescription(c.Tool.Description, pkgstrings.DefaultDescriptionMaxLen)})
	}
	return f.render(t, len(tools), "tools"), nil
}

// createTable creates a new table with standard styling
func (f *TableFormatter) createTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	if f.options.NoColor {
		t.Style().Color = table.ColorOptions{}
	}
	return t
}

func (f *TableFormatter) header(names ...string) table.Row {
	row := make(table.Row, len(names))
	for i, name := range names {
		row[i] = f.colorize(text.FgHiCyan, name)
	}
	return row
}

func (f *TableFormatter) state(closed bool) string {
	if closed {
		return f.colorize(text.FgRed, "closed")
	}
	return f.colorize(text.FgGreen, "open")
}

func (f *TableFormatter) render(t table.Writer, count int, noun string) string {
	return fmt.Sprintf("%s\n%s %s %s\n", t.Render(),
		f.colorize(text.FgHiBlue, "Total:"),
		f.colorize(text.FgHiWhite, fmt.Sprint(count)),
		f.colorize(text.FgHiBlue, noun))
}

// formatEmptyMessage formats empty result messages
func (f *TableFormatter) formatEmptyMessage(message string) string {
	return f.colorize(text.FgYellow, message) + "\n"
}

func (f *TableFormatter) colorize(c text.Color, s string) string {
	if f.options.NoColor {
		return s
	}
	return c.Sprint(s)
}

func (f *TableFormatter) since(t time.Time) time.Duration {
	now := time.Now
	if f.now != nil {
		now = f.now
	}
	return now().Sub(t)
}
