package doctor

import (
	"fmt"
	"io"
	"text/tabwriter"
)

type Counts struct {
	Missing int `json:"missing"`
	Empty   int `json:"empty"`
	OK      int `json:"ok"`
}

type Report struct {
	Root    string        `json:"root"`
	Entries []EntryStatus `json:"entries"`
	Counts  Counts        `json:"counts"`
}

func (r *Report) tally() {
	r.Counts = Counts{}
	for _, e := range r.Entries {
		switch e.Status {
		case Missing:
			r.Counts.Missing++
		case Empty:
			r.Counts.Empty++
		case OK:
			r.Counts.OK++
		}
	}
}

// Healthy reports whether every required entry is present and non-empty.
func (r *Report) Healthy() bool {
	for _, e := range r.Entries {
		if e.Entry.Required && e.Status != OK {
			return false
		}
	}
	return true
}

// Problems returns the entries that need repair, in manifest order.
func (r *Report) Problems() []EntryStatus {
	var out []EntryStatus
	for _, e := range r.Entries {
		if e.Status != OK {
			out = append(out, e)
		}
	}
	return out
}

func (r *Report) Summary() string {
	state := "healthy"
	if !r.Healthy() {
		state = "unhealthy"
	}
	return fmt.Sprintf("%s: %d ok, %d missing, %d empty", state, r.Counts.OK, r.Counts.Missing, r.Counts.Empty)
}

// Render writes a console table of the report followed by the summary line.
func (r *Report) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "STATUS\tKIND\tPATH\n")
	for _, e := range r.Entries {
		path := e.Entry.Path
		if !e.Entry.Required {
			path += " (optional)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", statusLabel(e.Status), e.Entry.Kind, path)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, r.Summary())
	return err
}

func statusLabel(s Status) string {
	switch s {
	case OK:
		return "OK"
	case Empty:
		return "EMPTY"
	default:
		return "MISSING"
	}
}
