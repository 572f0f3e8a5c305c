package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BaSui01/senate/persona"
)

// debateOptions 是 debate 子命令的命令行参数
type debateOptions struct {
	personasPath   string
	configPath     string
	scenarios      int
	transcriptPath string
	seed           int64
	metricsAddr    string
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "senate",
		Short: "Multi-agent senate debate simulator",
		Long: `Senate runs a debate between LLM-backed senator personas.
Each senator answers in turn, remembers what it said about the current
problem, and can be asked follow-up questions directly.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newDebateCmd(), newPersonasCmd(), newVersionCmd())
	return root
}

func newDebateCmd() *cobra.Command {
	opts := &debateOptions{}
	cmd := &cobra.Command{
		Use:   "debate",
		Short: "Start an interactive debate",
		Long: `Present a problem to the senate and let every senator respond.
After the opening round, enter C to add your own response or Q to
question a single senator.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDebate(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.personasPath, "personas", "p", "", "persona file (JSON or YAML)")
	f.StringVarP(&opts.configPath, "config", "c", "", "config file (YAML)")
	f.IntVar(&opts.scenarios, "scenarios", 0, "number of scenarios (overrides config)")
	f.StringVar(&opts.transcriptPath, "transcript", "", "append the transcript to this file")
	f.Int64Var(&opts.seed, "seed", 0, "problem selection seed (0 picks one from the clock)")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	return cmd
}

func newPersonasCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "personas",
		Short: "Validate and list personas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				return fmt.Errorf("--personas is required")
			}
			ps, err := persona.Load(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, p := range ps {
				fmt.Fprintf(out, "%-12s %-28s %-16s %s\n", p.ID, p.Label(), p.State, p.Backend)
			}
			fmt.Fprintf(out, "%d senators loaded\n", len(ps))
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "personas", "p", "", "persona file (JSON or YAML)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Senate %s\n", Version)
			fmt.Fprintf(out, "  Build Time: %s\n", BuildTime)
			fmt.Fprintf(out, "  Git Commit: %s\n", GitCommit)
		},
	}
}
