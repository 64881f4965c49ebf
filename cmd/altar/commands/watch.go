package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/dyluth/altar/internal/printer"
	"github.com/dyluth/altar/internal/watch"
	"github.com/spf13/cobra"
)

var (
	watchNamespace    string
	watchOutputFormat string
	watchCount        int
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream publish events of a namespace",
	Long: `Print a line every time an assignment is published to the namespace,
by 'altar generate --publish' or 'altar repair --publish'.

Output Formats:
  default - Human-readable output with timestamps
  json    - Line-delimited JSON for programmatic processing

Examples:
  altar watch --namespace pokemon
  altar watch -o json --count 1 > event.json`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchNamespace, "namespace", "n", "", "Redis namespace (default: registry.namespace, else \"default\")")
	watchCmd.Flags().StringVarP(&watchOutputFormat, "output", "o", "default", "Output format (default or json)")
	watchCmd.Flags().IntVar(&watchCount, "count", 0, "Exit after this many events (0 = run until interrupted)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	var outputFormat watch.OutputFormat
	switch watchOutputFormat {
	case "default":
		outputFormat = watch.OutputFormatDefault
	case "json":
		outputFormat = watch.OutputFormatJSON
	default:
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", watchOutputFormat),
			[]string{"Valid formats: default, json"},
		)
	}
	if watchCount < 0 {
		return printer.Error("invalid count", fmt.Sprintf("--count must be >= 0, got %d", watchCount), nil)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	namespace, err := resolveNamespace(cfg, watchNamespace)
	if err != nil {
		return err
	}

	s, err := openStore(ctx, cfg, namespace)
	if err != nil {
		return err
	}
	defer s.Close()

	sub, err := s.SubscribeSaveEvents(ctx)
	if err != nil {
		return printer.Error("subscribe failed", err.Error(), nil)
	}
	defer sub.Close()

	if outputFormat == watch.OutputFormatDefault {
		fmt.Fprintf(printer.Err, "Watching namespace '%s' (Ctrl-C to stop)\n", namespace)
	}
	return watch.Stream(ctx, sub, outputFormat, printer.Out, watchCount)
}
