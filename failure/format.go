package failure

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	headerLabel = color.New(color.FgRed, color.Bold).SprintFunc()
	causeText   = color.New(color.FgRed).SprintFunc()
	noteText    = color.New(color.FgYellow).SprintFunc()
	categoryFmt = color.New(color.FgCyan).SprintFunc()
	indexFmt    = color.New(color.Bold).SprintFunc()
)

// Format renders err for a terminal. Aggregates are listed one member per
// entry; breadcrumb and verifier notes (lines beginning with "* ") are
// highlighted when useColors is set.
func Format(err error, useColors bool) string {
	if err == nil {
		return ""
	}
	leaves := Leaves(err)

	var sb strings.Builder
	header := fmt.Sprintf("%d verification failure", len(leaves))
	if len(leaves) != 1 {
		header += "s"
	}
	if useColors {
		sb.WriteString(headerLabel(header))
	} else {
		sb.WriteString(header)
	}
	sb.WriteString("\n")

	for i, leaf := range leaves {
		index := fmt.Sprintf("%d)", i+1)
		category := "[" + CategoryOf(leaf).String() + "]"
		sb.WriteString("\n")
		if useColors {
			sb.WriteString(indexFmt(index) + " " + categoryFmt(category))
		} else {
			sb.WriteString(index + " " + category)
		}
		sb.WriteString("\n")
		for _, line := range strings.Split(leaf.Error(), "\n") {
			sb.WriteString("   ")
			switch {
			case !useColors:
				sb.WriteString(line)
			case strings.HasPrefix(line, "* "):
				sb.WriteString(noteText(line))
			default:
				sb.WriteString(causeText(line))
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Fprint writes the formatted failure to w.
func Fprint(w io.Writer, err error, useColors bool) {
	if err == nil {
		return
	}
	fmt.Fprint(w, Format(err, useColors))
}
