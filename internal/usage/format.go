package usage

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
)

// WriteText prints each category followed by one indented line per usage row.
func WriteText(w io.Writer, results []CategoryUsage, colorize bool) error {
	header := color.New(color.FgCyan, color.Bold)
	if colorize {
		header.EnableColor()
	} else {
		header.DisableColor()
	}

	for _, r := range results {
		if _, err := header.Fprintln(w, r.Category.String()); err != nil {
			return err
		}
		for _, u := range r.Usages {
			if _, err := fmt.Fprintf(w, "\t%d machines:\t%d\n", u.Machines, u.Minutes); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteJSON writes results as indented JSON. Empty lists encode as [].
func WriteJSON(w io.Writer, results []CategoryUsage) error {
	normalized := make([]CategoryUsage, 0, len(results))
	for _, r := range results {
		if r.Usages == nil {
			r.Usages = []Usage{}
		}
		normalized = append(normalized, r)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(normalized)
}
