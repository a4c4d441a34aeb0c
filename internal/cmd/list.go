package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"digital.vasic.specs/pkg/corpus"
	"digital.vasic.specs/pkg/registry"
	"digital.vasic.specs/pkg/spec"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// NewListCommand creates the list subcommand
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the built-in suites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listSuites(corpus.Registry(), cmd.OutOrStdout())
		},
	}
}

// listSuites prints each suite with its example count in
// dependency order.
func listSuites(reg registry.Registry, output io.Writer) error {
	suites, err := reg.GetDependencyOrder()
	if err != nil {
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("SUITE", "CATEGORY", "EXAMPLES", "DESCRIPTION").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, s := range suites {
		root := spec.NewRoot()
		s.Declare(root)
		n := 0
		spec.Walk(root, func(int, *spec.Example) { n++ })
		t.Row(s.Name, s.Category, strconv.Itoa(n), s.Description)
	}

	_, err = fmt.Fprintln(output, t.String())
	return err
}
