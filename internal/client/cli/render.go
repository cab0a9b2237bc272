package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/dmitrijs2005/nfcgate-console/internal/client/models"
	"github.com/dmitrijs2005/nfcgate-console/internal/common"
)

const noData = "(no data)"

// argsWidth bounds the args column of the tail table.
const argsWidth = 80

// renderStatus prints the status or error line of a panel result.
func renderStatus[T any](w io.Writer, res models.OperationResult[T]) {
	switch {
	case res.Error != "":
		fmt.Fprintln(w, "Error:", res.Error)
	case res.Status != "":
		fmt.Fprintln(w, res.Status)
	}
}

func renderStats(w io.Writer, st *models.APDUStats) {
	fmt.Fprintf(w, "Range: %s .. %s\n", st.From, st.To)

	if len(st.Highlight) > 0 {
		keys := make([]string, 0, len(st.Highlight))
		for k := range st.Highlight {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "Highlight %s: %d\n", k, st.Highlight[k])
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-12s %-10s\n", "CLA_INS", "COUNT")
	fmt.Fprintf(w, "%-12s %-10s\n", "-------", "-----")
	if len(st.CommandsReader) == 0 {
		fmt.Fprintln(w, noData)
	}
	for _, c := range st.CommandsReader {
		fmt.Fprintf(w, "%-12s %-10d\n", c.ClaIns, c.Count)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-12s %-10s\n", "HEADER4", "COUNT")
	fmt.Fprintf(w, "%-12s %-10s\n", "-------", "-----")
	if len(st.CommandsReaderHeader) == 0 {
		fmt.Fprintln(w, noData)
	}
	for _, c := range st.CommandsReaderHeader {
		fmt.Fprintf(w, "%-12s %-10d\n", c.Header4, c.Count)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-12s %-10s\n", "SW", "COUNT")
	fmt.Fprintf(w, "%-12s %-10s\n", "--", "-----")
	if len(st.ResponsesCardSW) == 0 {
		fmt.Fprintln(w, noData)
	}
	for _, c := range st.ResponsesCardSW {
		fmt.Fprintf(w, "%-12s %-10d\n", c.SW, c.Count)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Parsed APDUs: %d, parse errors: %d", st.ParsedAPDU, st.ParseErrors)
	if st.TotalLogRowsScanned != nil {
		fmt.Fprintf(w, ", rows scanned: %d", *st.TotalLogRowsScanned)
	}
	fmt.Fprintln(w)
}

func renderTail(w io.Writer, rows []models.TailRow) {
	fmt.Fprintf(w, "%-26s %-12s %-10s %-8s %s\n", "TS", "TAG", "ORIGIN", "SESSION", "ARGS")
	fmt.Fprintf(w, "%-26s %-12s %-10s %-8s %s\n", "--", "---", "------", "-------", "----")
	if len(rows) == 0 {
		fmt.Fprintln(w, noData)
	}
	for _, r := range rows {
		session := "-"
		if r.Session != nil {
			session = strconv.FormatInt(*r.Session, 10)
		}
		args := common.Truncate(common.CollapseSpace(string(r.Args)), argsWidth)
		fmt.Fprintf(w, "%-26s %-12s %-10s %-8s %s\n", r.TS, r.Tag, r.Origin, session, args)
	}
}

func renderHealth(w io.Writer, h *models.Health, loc *time.Location) {
	line := func(k string, v any) { fmt.Fprintf(w, "%-20s %v\n", k+":", v) }

	line("Status", h.Status)
	line("Server", h.Server)
	line("DB configured", yesNo(h.DBConfigured))
	line("Protobuf indexing", yesNo(h.ProtobufIndexing))
	if h.StartedUnix != nil {
		line("Started", formatUnix(*h.StartedUnix, loc))
	}
	if h.UptimeSeconds != nil {
		line("Uptime", (time.Duration(*h.UptimeSeconds) * time.Second).String())
	}
	if h.LogBytesMode != "" {
		line("Log bytes mode", h.LogBytesMode)
	}
	if h.DBFileBytes != nil && *h.DBFileBytes >= 0 {
		line("DB file size", humanize.IBytes(uint64(*h.DBFileBytes)))
	}
	if c := h.Counts; c != nil {
		line("Log rows", c.Logs)
		line("APDU events", c.APDUEvents)
		if c.Payloads != nil {
			line("Payloads", *c.Payloads)
		}
	}
	if l := h.Latest; l != nil {
		if l.LogTSUnix != nil {
			line("Latest log", formatUnix(*l.LogTSUnix, loc))
		}
		if l.APDUTSUnix != nil {
			line("Latest APDU", formatUnix(*l.APDUTSUnix, loc))
		}
	}
	if r := h.Retention; r != nil {
		line("Retention DB", days(r.DBDays))
		line("Retention JSONL", days(r.JSONLDays))
		line("Sweep interval", (time.Duration(r.SweepSeconds) * time.Second).String())
	}
}

func renderAdmins(w io.Writer, accounts []models.AdminAccount, current string, loc *time.Location) {
	fmt.Fprintf(w, "%-6s %-24s %-18s %-8s\n", "ID", "USERNAME", "CREATED", "DISABLED")
	fmt.Fprintf(w, "%-6s %-24s %-18s %-8s\n", "--", "--------", "-------", "--------")
	if len(accounts) == 0 {
		fmt.Fprintln(w, noData)
	}
	for _, a := range accounts {
		name := a.Username
		if name == current {
			name += " (you)"
		}
		created := "-"
		if a.CreatedAt != nil {
			created = a.CreatedAt.In(loc).Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%-6d %-24s %-18s %-8s\n", a.ID, name, created, yesNo(a.Disabled))
	}
}

func renderFilter(w io.Writer, f *models.FilterState) {
	opt := func(s string) string {
		if s == "" {
			return "(any)"
		}
		return s
	}
	fmt.Fprintf(w, "%-8s %s\n", "start:", f.Start)
	fmt.Fprintf(w, "%-8s %s\n", "end:", f.End)
	fmt.Fprintf(w, "%-8s %s\n", "tag:", opt(f.Tag))
	fmt.Fprintf(w, "%-8s %s\n", "origin:", opt(f.Origin))
	fmt.Fprintf(w, "%-8s %s\n", "session:", opt(f.Session))
	fmt.Fprintf(w, "%-8s %s\n", "format:", f.FormatOrDefault())
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func days(n int64) string {
	if n <= 0 {
		return "off"
	}
	return fmt.Sprintf("%d days", n)
}

func formatUnix(sec int64, loc *time.Location) string {
	return time.Unix(sec, 0).In(loc).Format("2006-01-02 15:04:05 MST")
}
