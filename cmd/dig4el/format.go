package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/alterfero/dig4el-sub001/pkg/order"
	"github.com/alterfero/dig4el-sub001/pkg/store"
)

const (
	formatJSON  = "json"
	formatHuman = "human"
)

// write renders v in the requested format. Types without a human form are
// written as JSON.
func write(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		return writeJSON(w, v)
	case formatHuman:
		return writeHuman(w, v)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeHuman(w io.Writer, v any) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	switch r := v.(type) {
	case *order.Result:
		fmt.Fprintf(tw, "%s\t%s\tcanonical=%t\n", r.Language, r.Observer, r.Canonical)
		fmt.Fprintln(tw, "LABEL\tELEMENT\tCOUNT\tENTRIES")
		for _, o := range r.Observations {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%v\n", o.Label, o.DomainElement, o.Count, o.Indices())
		}
		fmt.Fprintf(tw, "total\t\t%d\t\n", r.Total())
	case []store.SnapshotInfo:
		fmt.Fprintln(tw, "LANGUAGE\tENTRIES\tWORDS\tBUILT")
		for _, info := range r {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", info.Language, info.Entries, info.TotalWords, info.BuiltAt.Format("2006-01-02 15:04"))
		}
	case map[string]float64:
		words := make([]string, 0, len(r))
		for w := range r {
			words = append(words, w)
		}
		sort.Slice(words, func(i, j int) bool {
			if r[words[i]] != r[words[j]] {
				return r[words[i]] > r[words[j]]
			}
			return words[i] < words[j]
		})
		fmt.Fprintln(tw, "WORD\tPER MILLE")
		for _, word := range words {
			fmt.Fprintf(tw, "%s\t%.1f\n", word, r[word])
		}
	default:
		return writeJSON(w, v)
	}
	return tw.Flush()
}
