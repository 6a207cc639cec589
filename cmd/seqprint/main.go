package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/YiuTerran/go-common/debugprint/log"
	"github.com/YiuTerran/go-common/debugprint/util/debugutil"
)

type options struct {
	vertical bool
	count    int
	logLevel string
	logOut   string
	logPath  string
}

func newRootCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:          "seqprint [args...]",
		Short:        "Print arguments as a horizontal or vertical listing",
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			log.Builder.
				Name("seqprint").
				Path(opts.logPath).
				Level(level).
				OutType(log.OutTypeAlias(opts.logOut)).
				Build()
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts, args)
		},
	}

	cmd.Flags().BoolVarP(&opts.vertical, "vertical", "V", false, "one argument per line")
	cmd.Flags().IntVarP(&opts.count, "count", "n", -1, "print only the first n arguments")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", string(log.LevelInfo), "debug|info|warn|error")
	cmd.Flags().StringVar(&opts.logOut, "log-out", "console", "console|file|track, joined with |")
	cmd.Flags().StringVar(&opts.logPath, "log-path", "", "log directory for file outputs")
	return cmd
}

func run(opts options, args []string) error {
	fields := log.Fields{"args": len(args)}.WithPrefix("seqprint")
	if opts.vertical && opts.count >= 0 {
		return fmt.Errorf("--count only applies to the horizontal listing")
	}
	if opts.count < -1 {
		return fmt.Errorf("count must not be negative:%d", opts.count)
	}
	if opts.count > len(args) {
		return fmt.Errorf("count %d exceeds %d arguments", opts.count, len(args))
	}
	fields.Debug("vertical:%v count:%d", opts.vertical, opts.count)
	debugutil.LogHorizontal("args:", args)
	debugutil.TrackHorizontal("seqprint", args)

	switch {
	case opts.vertical:
		debugutil.PrintVectorVertical(args)
		return nil
	case opts.count >= 0:
		debugutil.PrintArrayHorizontal(args, uint(opts.count))
	default:
		debugutil.PrintVectorHorizontal(args)
	}
	_, err := fmt.Println()
	return err
}

func main() {
	root := newRootCommand()
	err := root.Execute()
	log.Flush()
	if err != nil {
		os.Exit(1)
	}
}
