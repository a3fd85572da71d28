package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tjfontaine/polyglot-translate/internal/core/domain"
)

func newProfilesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Inspect provider profiles",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List provider profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, color.New(color.Bold).Sprint("ID\tALIASES\tTEXT ONLY\tMAX TEMP\tDEFAULT MAX TOKENS"))
			for _, p := range a.translator.Registry().Profiles() {
				v := p.View("")
				fmt.Fprintf(w, "%s\t%s\t%t\t%s\t%s\n",
					v.ID, orDash(strings.Join(v.Aliases, ",")), v.TextOnly,
					optional(v.MaxTemperature), optional(v.DefaultMaxTokens))
			}
			return w.Flush()
		},
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one provider profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, _ := cmd.Flags().GetString("model")
			view, ok := a.translator.DescribeProvider(args[0], model)
			if !ok {
				return fmt.Errorf("unknown provider %q", args[0])
			}
			output, _ := cmd.Flags().GetString("output")
			return render(cmd.OutOrStdout(), output, view)
		},
	}
	show.Flags().StringP("output", "o", "yaml", "output format (yaml, json)")
	show.Flags().String("model", "", "resolve model-dependent settings for this model")

	cmd.AddCommand(list, show)
	return cmd
}

func render(w io.Writer, format string, v any) error {
	switch format {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q (want yaml or json)", format)
	}
}

func optional[T any](v *T) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(*v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func newCapabilitiesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities <provider>",
		Short: "Show which capabilities a provider can be routed for",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := a.translator.Registry().Get(args[0])
			if p == nil {
				return fmt.Errorf("unknown provider %q", args[0])
			}
			resolver := a.translator.Resolver()

			caps := append([]domain.Capability{domain.CapabilityTextGenerate}, domain.AdapterBackedCapabilities()...)
			sort.Slice(caps, func(i, j int) bool { return caps[i] < caps[j] })

			yes := color.New(color.FgGreen).SprintFunc()
			no := color.New(color.FgRed).SprintFunc()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, color.New(color.Bold).Sprintf("Capabilities for %s:", p.ID))
			for _, c := range caps {
				mark := no("no")
				if resolver.Supports(p.ID, c) {
					mark = yes("yes")
				}
				fmt.Fprintf(out, "  %-22s %s\n", c, mark)
			}
			return nil
		},
	}
}
