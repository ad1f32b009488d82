package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/joseph-ayodele/survey-features/internal/frame"
)

// WriteCSV writes a header row and one record per respondent.
func WriteCSV(w io.Writer, c *frame.Combined) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(c.Header()); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}
	for r := 0; r < c.NumRows(); r++ {
		if err := cw.Write(c.Record(r)); err != nil {
			return fmt.Errorf("csv row %d: %w", r+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Preview prints the first n rows of c as an aligned table. Header names are
// shortened to keep wide matrices readable.
func Preview(w io.Writer, c *frame.Combined, n int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	header := c.Header()
	for i, h := range header {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, columnLabel(h, 24))
	}
	fmt.Fprintln(tw)

	if n > c.NumRows() {
		n = c.NumRows()
	}
	for r := 0; r < n; r++ {
		for i, v := range c.Record(r) {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, v)
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "[%d rows x %d columns]\n", c.NumRows(), len(header))
	return err
}

// columnLabel shortens long header names for the preview table. n counts
// runes, including the trailing ellipsis.
func columnLabel(name string, n int) string {
	runes := []rune(name)
	if n <= 0 || len(runes) <= n {
		return name
	}
	if n == 1 {
		return string(runes[:1])
	}
	return strings.TrimSpace(string(runes[:n-1])) + "…"
}
