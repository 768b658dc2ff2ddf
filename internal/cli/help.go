package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/linuxmatters/vsbench/internal/config"
)

// Custom help styles
var (
	helpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(RustOrange).
			MarginBottom(1)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(SlateGray).
			Italic(true).
			MarginBottom(1)

	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(SteelBlue).
				MarginTop(1)

	helpFlagStyle = lipgloss.NewStyle().
			Foreground(AmberGold).
			Bold(true)

	helpArgStyle = lipgloss.NewStyle().
			Foreground(RustOrange).
			Bold(true)

	helpDefaultStyle = lipgloss.NewStyle().
				Foreground(SlateGray).
				Italic(true)
)

// StyledHelpPrinter creates a custom help printer with Lipgloss styling.
// filters are listed after the flags so users can pick one without --list.
func StyledHelpPrinter(options kong.HelpOptions, filters []string) kong.HelpPrinter {
	return kong.HelpPrinter(func(options kong.HelpOptions, ctx *kong.Context) error {
		var sb strings.Builder

		// Title and description
		sb.WriteString(helpTitleStyle.Render("vsbench ⏱"))
		sb.WriteString("\n")
		sb.WriteString(helpDescStyle.Render("Benchmark zoomv (Rust) against mv (C) using hyperfine."))
		sb.WriteString("\n")

		// Usage
		sb.WriteString(helpSectionStyle.Render("Usage:"))
		sb.WriteString("\n  ")
		sb.WriteString(fmt.Sprintf("%s <filter> [--test=NAME] [--bits=%s] [flags]",
			ctx.Model.Name, strings.Join(config.BitDepthChoices(), "|")))
		sb.WriteString("\n")

		// Arguments section
		args := helpArguments(ctx)
		if len(args) > 0 {
			sb.WriteString("\n")
			sb.WriteString(helpSectionStyle.Render("Arguments:"))
			sb.WriteString("\n")
			for _, arg := range args {
				sb.WriteString("  ")
				sb.WriteString(helpArgStyle.Render(arg.name))
				if arg.help != "" {
					sb.WriteString("  ")
					sb.WriteString(arg.help)
				}
				sb.WriteString("\n")
			}
		}

		// Flags section
		flags := helpFlags(ctx)
		if len(flags) > 0 {
			sb.WriteString("\n")
			sb.WriteString(helpSectionStyle.Render("Flags:"))
			sb.WriteString("\n")
			for _, flag := range flags {
				sb.WriteString("  ")
				sb.WriteString(helpFlagStyle.Render(flag.flags))
				if flag.help != "" {
					sb.WriteString("  ")
					sb.WriteString(flag.help)
				}
				if flag.defaultVal != "" {
					sb.WriteString(" ")
					sb.WriteString(helpDefaultStyle.Render("(default: " + flag.defaultVal + ")"))
				}
				sb.WriteString("\n")
			}
		}

		if len(filters) > 0 {
			sb.WriteString("\n")
			sb.WriteString(helpSectionStyle.Render("Filters:"))
			sb.WriteString("\n  ")
			for i, f := range filters {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(helpArgStyle.Render(f))
			}
			sb.WriteString("\n")
		}

		sb.WriteString("\n")
		fmt.Fprint(ctx.Stdout, sb.String())
		return nil
	})
}

type argument struct {
	name string
	help string
}

type flag struct {
	flags      string
	help       string
	defaultVal string
}

// flagChoices maps flag names to the exact values their parser accepts, so
// help shows "--bits=8|10|all" rather than a bare placeholder.
func flagChoices() map[string][]string {
	return map[string][]string{
		"bits": config.BitDepthChoices(),
	}
}

func helpArguments(ctx *kong.Context) []argument {
	args := make([]argument, 0, len(ctx.Model.Node.Positional))
	for _, arg := range ctx.Model.Node.Positional {
		args = append(args, argument{name: arg.Summary(), help: arg.Help})
	}
	return args
}

func helpFlags(ctx *kong.Context) []flag {
	choices := flagChoices()
	flags := []flag{{flags: "-h, --help", help: "Show context-sensitive help."}}

	for _, f := range ctx.Model.Node.Flags {
		if f.Name == "help" {
			continue
		}

		fl := flag{flags: "--" + f.Name, help: f.Help}
		if f.Short != 0 {
			fl.flags = fmt.Sprintf("-%c, %s", f.Short, fl.flags)
		}

		switch {
		case len(choices[f.Name]) > 0:
			fl.flags += "=" + strings.Join(choices[f.Name], "|")
		case !f.IsBool() && f.PlaceHolder != "":
			fl.flags += "=" + strings.ToUpper(f.PlaceHolder)
		}

		// Bool defaults are always false and add nothing
		if f.HasDefault && !f.IsBool() && f.Default != "" {
			fl.defaultVal = f.Default
		}
		flags = append(flags, fl)
	}
	return flags
}
