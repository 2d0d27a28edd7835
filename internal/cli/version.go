package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/timebar/internal/timew"
)

func newVersionCmd() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			if short {
				fmt.Fprintln(w, Version)
				return
			}
			fmt.Fprintf(w, "timebar version %s\n", Version)
			fmt.Fprintf(w, "  commit:    %s\n", Commit)
			fmt.Fprintf(w, "  built:     %s\n", Date)
			fmt.Fprintf(w, "  builder:   %s\n", BuiltBy)
			fmt.Fprintf(w, "  go:        %s\n", runtime.Version())
			fmt.Fprintf(w, "  platform:  %s/%s\n", runtime.GOOS, runtime.GOARCH)
			if path, ok := timew.NewClient(cfg.Timew.Binary, 0).Detect(); ok {
				fmt.Fprintf(w, "  timew:     %s\n", path)
			} else {
				fmt.Fprintf(w, "  timew:     %s not found\n", cfg.Timew.Binary)
			}
		},
	}
	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")
	return cmd
}
