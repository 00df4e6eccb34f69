package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/law-makers/cheapreg/internal/ui"
)

const minFlagWidth = 28

func customHelpFunc(cmd *cobra.Command, args []string) {
	renderHelp(cmd.OutOrStdout(), cmd, true)
}

func customUsageFunc(cmd *cobra.Command) error {
	renderHelp(cmd.ErrOrStderr(), cmd, false)
	return nil
}

// renderHelp prints colored help. The short form used for usage errors skips
// the descriptions, examples and global flags.
func renderHelp(w io.Writer, cmd *cobra.Command, full bool) {
	if full {
		fmt.Fprintf(w, "\n%s%s%s\n", ui.ColorBold+ui.ColorCyan, strings.ToUpper(cmd.Name()), ui.ColorReset)
		if cmd.Short != "" {
			fmt.Fprintln(w, cmd.Short)
		}
		if cmd.Long != "" && cmd.Long != cmd.Short {
			fmt.Fprintf(w, "\n%s\n", wrapText(cmd.Long, 80))
		}
	}

	section(w, "Usage")
	if cmd.Runnable() {
		fmt.Fprintf(w, "  %s%s%s\n", ui.ColorCyan, cmd.UseLine(), ui.ColorReset)
	}
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(w, "  %s%s%s %s<command>%s %s[flags]%s\n",
			ui.ColorCyan, cmd.CommandPath(), ui.ColorReset,
			ui.ColorYellow, ui.ColorReset,
			ui.ColorDim, ui.ColorReset)
	}

	if full && cmd.HasExample() {
		section(w, "Examples")
		printExamples(w, cmd.Example)
	}

	if cmd.HasAvailableSubCommands() {
		section(w, "Commands")
		printCommands(w, cmd)
	}

	if cmd.HasAvailableLocalFlags() {
		section(w, "Flags")
		printFlags(w, cmd.LocalFlags().FlagUsages())
	}
	if full && cmd.HasAvailableInheritedFlags() {
		section(w, "Global Flags")
		printFlags(w, cmd.InheritedFlags().FlagUsages())
	}

	fmt.Fprintf(w, "\n%sUse \"%s%s%s %s--help%s\" for more information.%s\n\n",
		ui.ColorDim,
		ui.ColorCyan, cmd.CommandPath(), ui.ColorReset+ui.ColorDim,
		ui.ColorGreen, ui.ColorReset+ui.ColorDim,
		ui.ColorReset)
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s%s%s\n", ui.ColorBold+ui.ColorWhite, title, ui.ColorReset)
}

// printExamples dims comment lines and prefixes commands with a prompt
func printExamples(w io.Writer, example string) {
	lastWasCommand := false
	for _, line := range strings.Split(example, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			continue
		case strings.HasPrefix(trimmed, "#"):
			if lastWasCommand {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "  %s%s%s\n", ui.ColorDim, trimmed, ui.ColorReset)
			lastWasCommand = false
		default:
			fmt.Fprintf(w, "  %s$ %s%s\n", ui.ColorGreen, trimmed, ui.ColorReset)
			lastWasCommand = true
		}
	}
}

func printCommands(w io.Writer, cmd *cobra.Command) {
	var available []*cobra.Command
	width := 0
	for _, c := range cmd.Commands() {
		if c.IsAvailableCommand() && c.Name() != "help" {
			available = append(available, c)
			if len(c.Name()) > width {
				width = len(c.Name())
			}
		}
	}
	for _, c := range available {
		fmt.Fprintf(w, "  %s%-*s%s  %s%s%s\n",
			ui.ColorCyan, width, c.Name(), ui.ColorReset,
			ui.ColorDim, c.Short, ui.ColorReset)
	}
}

// printFlags realigns pflag usage lines and colors flag names
func printFlags(w io.Writer, usages string) {
	lines := strings.Split(usages, "\n")

	width := minFlagWidth
	for _, line := range lines {
		if name, _, ok := splitFlagLine(line); ok && len(name) > width {
			width = len(name)
		}
	}

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		name, desc, ok := splitFlagLine(line)
		if !ok {
			// continuation of the previous description
			fmt.Fprintf(w, "%s%s%s%s\n", strings.Repeat(" ", width+4), ui.ColorDim, strings.TrimSpace(line), ui.ColorReset)
			continue
		}
		fmt.Fprintf(w, "  %s%-*s%s  %s%s%s\n",
			ui.ColorGreen, width, name, ui.ColorReset,
			ui.ColorDim, desc, ui.ColorReset)
	}
}

func splitFlagLine(line string) (name, desc string, ok bool) {
	trimmed := strings.TrimLeft(line, " ")
	if !strings.HasPrefix(trimmed, "-") {
		return "", "", false
	}
	name, desc, _ = strings.Cut(trimmed, "  ")
	return strings.TrimSpace(name), strings.TrimSpace(desc), true
}

// wrapText wraps text at width, keeping paragraphs and list items
func wrapText(text string, width int) string {
	var paragraphs []string
	for _, para := range strings.Split(text, "\n\n") {
		var lines []string
		for _, line := range strings.Split(para, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") {
				lines = append(lines, line)
				continue
			}

			var current strings.Builder
			for _, word := range strings.Fields(line) {
				if current.Len() > 0 && current.Len()+1+len(word) > width {
					lines = append(lines, current.String())
					current.Reset()
				}
				if current.Len() > 0 {
					current.WriteByte(' ')
				}
				current.WriteString(word)
			}
			if current.Len() > 0 {
				lines = append(lines, current.String())
			}
		}
		if len(lines) > 0 {
			paragraphs = append(paragraphs, strings.Join(lines, "\n"))
		}
	}
	return strings.Join(paragraphs, "\n\n")
}
