package errors

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	errorLabel  = color.New(color.FgRed, color.Bold).SprintFunc()
	errorMsg    = color.New(color.FgRed).SprintFunc()
	fixLabel    = color.New(color.FgGreen, color.Bold).SprintFunc()
	usageLabel  = color.New(color.FgCyan, color.Bold).SprintFunc()
	bullet      = color.New(color.FgGreen).SprintFunc()
	categoryFmt = color.New(color.FgYellow).SprintFunc()
)

// plain returns its arguments unstyled.
func plain(a ...interface{}) string {
	return fmt.Sprint(a...)
}

// FormatError formats a CLIError for display in the terminal.
// Colors are applied only when useColors is set.
func FormatError(err *CLIError, useColors bool) string {
	if err == nil {
		return ""
	}

	label, msg, fix, usage, dot, category := plain, plain, plain, plain, plain, plain
	if useColors {
		label, msg, fix, usage, dot, category = errorLabel, errorMsg, fixLabel, usageLabel, bullet, categoryFmt
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s]: %s\n", label("Error"), category(err.Category.String()), msg(err.Message))

	if err.Usage != "" {
		fmt.Fprintf(&sb, "\n%s%s\n", usage("Usage: "), err.Usage)
	}

	if len(err.Remediation) > 0 {
		fmt.Fprintf(&sb, "\n%s\n", fix("To fix this:"))
		for _, step := range err.Remediation {
			fmt.Fprintf(&sb, "  %s %s\n", dot("•"), step)
		}
	}

	return sb.String()
}

// FprintError prints any error to w, formatting CLIErrors with their
// category and remediation and other errors as runtime errors.
func FprintError(w io.Writer, err error, useColors bool) {
	if err == nil {
		return
	}
	cliErr := AsCLIError(err)
	if cliErr == nil {
		cliErr = &CLIError{Category: Runtime, Message: err.Error(), Err: err}
	}
	fmt.Fprint(w, FormatError(cliErr, useColors))
}
