// Command spatio-cli is a small interactive terminal client for a
// running spatio server: an operator types commands, they go out over
// the wire protocol, and replies render in a scrolling history pane.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func main() {
	var addr string
	root := &cobra.Command{
		Use:   "spatio-cli",
		Short: "Interactive terminal client for a spatio server",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := tea.NewProgram(initialModel(addr))
			_, err := p.Run()
			return err
		},
	}
	root.Flags().StringVarP(&addr, "addr", "a", "127.0.0.1:9851", "server address")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
