package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/awmpietro/quantum-dilemma/internal/narrative"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Inspect narrative graphs",
}

var graphValidateCmd = &cobra.Command{
	Use:   "validate <file.dot>",
	Short: "Compile a DOT narrative and report its shape",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraph(args[0])
		if err != nil {
			return err
		}
		endpoints := 0
		for _, d := range g.Dilemmas {
			if d.Endpoint() {
				endpoints++
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %d dilemmas, %d choices, %d endpoints, root %q\n",
			len(g.Dilemmas), len(g.Choices), endpoints, g.Root.ID)
		return nil
	},
}

var graphPrintCmd = &cobra.Command{
	Use:   "print [file.dot]",
	Short: "Print the dilemma tree",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		g, err := loadGraph(path)
		if err != nil {
			return err
		}
		printTree(cmd.OutOrStdout(), g)
		return nil
	},
}

func init() {
	graphCmd.AddCommand(graphValidateCmd, graphPrintCmd)
	rootCmd.AddCommand(graphCmd)
}

func printTree(w io.Writer, g *narrative.Graph) {
	for _, d := range g.Walkthrough() {
		depth, _ := g.Depth(d.ID)
		indent := strings.Repeat("    ", depth)
		fmt.Fprintf(w, "%s%s [%s]\n", indent, d.Question, d.ID)
		for i, c := range d.Choices {
			next := "end"
			if !c.Terminal() {
				next = c.Next.ID
			}
			fmt.Fprintf(w, "%s  %d) %s -> %s\n", indent, i+1, c.Text, next)
		}
	}
}
