package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yaklabco/markrecall/internal/configloader"
	"github.com/yaklabco/markrecall/internal/ui/pretty"
)

// HelpStyles contains Lipgloss styles for command help formatting.
type HelpStyles struct {
	Command    lipgloss.Style
	Heading    lipgloss.Style
	Subcommand lipgloss.Style
	Flag       lipgloss.Style
	Example    lipgloss.Style
	Dim        lipgloss.Style
}

// NewHelpStyles creates help styles based on color mode.
func NewHelpStyles(colorEnabled bool) *HelpStyles {
	if !colorEnabled {
		plain := lipgloss.NewStyle()
		return &HelpStyles{plain, plain, plain, plain, plain, plain}
	}
	return &HelpStyles{
		Command:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		Heading:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		Subcommand: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Flag:       lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Example:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Dim:        lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// HelpFormatter renders styled help and usage for Cobra commands.
type HelpFormatter struct {
	styles *HelpStyles
	usage  *template.Template
	help   *template.Template
}

const usageTemplate = `{{ heading "Usage:" }}
{{- if .Runnable }}
  {{ command .UseLine }}{{ end }}
{{- if .HasAvailableSubCommands }}
  {{ command .CommandPath }} [command]{{ end }}
{{- if .Aliases }}

{{ heading "Aliases:" }}
  {{ dim (join .Aliases ", ") }}{{ end }}
{{- if .HasExample }}

{{ heading "Examples:" }}
{{ example .Example }}{{ end }}
{{- if .HasAvailableSubCommands }}

{{ heading "Commands:" }}
{{ commands . }}{{ end }}
{{- if .HasAvailableLocalFlags }}

{{ heading "Flags:" }}
{{ flags .LocalFlags }}{{ end }}
{{- if .HasAvailableInheritedFlags }}

{{ heading "Global Flags:" }}
{{ flags .InheritedFlags }}{{ end }}
{{- if not .HasParent }}

{{ heading "Environment:" }}
{{ environment }}{{ end }}
{{- if .HasAvailableSubCommands }}

Use "{{ command (print .CommandPath " [command] --help") }}" for more information about a command.{{ end }}
`

const helpTemplate = `{{ with (or .Long .Short) }}{{ trimRight . }}

{{ end }}`

// NewHelpFormatter creates a help formatter. Color follows the --color
// setting and whether writer is a terminal.
func NewHelpFormatter(colorMode string, writer io.Writer) *HelpFormatter {
	h := &HelpFormatter{styles: NewHelpStyles(pretty.IsColorEnabled(colorMode, writer))}

	funcs := template.FuncMap{
		"heading":     h.styles.Heading.Render,
		"command":     h.styles.Command.Render,
		"dim":         h.styles.Dim.Render,
		"example":     h.styles.Example.Render,
		"join":        strings.Join,
		"trimRight":   trimTrailingWhitespaces,
		"commands":    h.commands,
		"flags":       h.flags,
		"environment": h.environment,
	}
	h.usage = template.Must(template.New("usage").Funcs(funcs).Parse(usageTemplate))
	h.help = template.Must(template.New("help").Funcs(funcs).Parse(helpTemplate + usageTemplate))
	return h
}

// ApplyToCommand installs the styled help and usage on cmd. Subcommands
// inherit them.
func (h *HelpFormatter) ApplyToCommand(cmd *cobra.Command) {
	cmd.SetUsageFunc(func(c *cobra.Command) error {
		if err := h.usage.Execute(c.OutOrStderr(), c); err != nil {
			return fmt.Errorf("render usage: %w", err)
		}
		return nil
	})
	cmd.SetHelpFunc(func(c *cobra.Command, _ []string) {
		if err := h.help.Execute(c.OutOrStdout(), c); err != nil {
			c.PrintErrln(err)
		}
	})
}

// commands lists the available subcommands of cmd with their short help.
func (h *HelpFormatter) commands(cmd *cobra.Command) string {
	var rows [][2]string
	for _, sub := range cmd.Commands() {
		if sub.IsAvailableCommand() || sub.Name() == "help" {
			rows = append(rows, [2]string{sub.Name(), sub.Short})
		}
	}
	return h.table(rows, h.styles.Subcommand)
}

// flags lists fs as "-s, --name type   usage (default x)" rows.
func (h *HelpFormatter) flags(fs *pflag.FlagSet) string {
	var rows [][2]string
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		varName, usage := pflag.UnquoteUsage(f)

		left := "    --" + f.Name
		if f.Shorthand != "" && f.ShorthandDeprecated == "" {
			left = "-" + f.Shorthand + ", --" + f.Name
		}
		if varName != "" {
			left += " " + varName
		}
		if def := flagDefault(f); def != "" {
			usage += " " + h.styles.Dim.Render("(default "+def+")")
		}
		rows = append(rows, [2]string{left, usage})
	})
	return h.table(rows, h.styles.Flag)
}

// environment lists the MARKRECALL_* variables the config loader reads.
func (h *HelpFormatter) environment() string {
	vars := configloader.ListEnvVars()
	rows := make([][2]string, 0, len(vars))
	for name, help := range vars {
		rows = append(rows, [2]string{name, help})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })
	return h.table(rows, h.styles.Flag)
}

// table aligns two-column rows, styling the first column. Padding is
// computed on the plain text so escape codes do not skew it.
func (h *HelpFormatter) table(rows [][2]string, style lipgloss.Style) string {
	width := 0
	for _, r := range rows {
		width = max(width, len(r[0]))
	}

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		pad := strings.Repeat(" ", width-len(r[0])+3)
		lines = append(lines, "  "+style.Render(r[0])+pad+r[1])
	}
	return strings.Join(lines, "\n")
}

func flagDefault(f *pflag.Flag) string {
	switch f.DefValue {
	case "", "false", "0", "[]":
		return ""
	}
	if f.Value.Type() == "string" {
		return fmt.Sprintf("%q", f.DefValue)
	}
	return f.DefValue
}

// trimTrailingWhitespaces removes trailing whitespace from lines.
func trimTrailingWhitespaces(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
