package cmd

import (
	"fmt"
	"os"

	"github.com/josephlewis42/minish/core/alloc"
	"github.com/josephlewis42/minish/core/config"
	"github.com/josephlewis42/minish/core/kernel"
	"github.com/josephlewis42/minish/core/kernel/hostkernel"
	"github.com/josephlewis42/minish/core/shell"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "minish",
	Short: "A minimal interactive shell",
	Long: `minish reads command lines from standard input and runs them.

Leading NAME=VALUE words are added to the command's environment. Commands
without a slash are looked up in PATH. Set MINISH_CONFIG to the path of a
YAML file to change the prompt, colors and debug logging.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		status, err := run(os.Stdin, os.Stdout, os.Stderr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", cmd.Name(), err)
			os.Exit(1)
		}
		os.Exit(status)
	},
}

// run starts a shell on the given streams and returns the status the process
// should exit with.
func run(stdin, stdout, stderr *os.File) (int, error) {
	cfg, err := config.LoadFromEnv(afero.NewOsFs())
	if err != nil {
		return 1, err
	}

	logger := cfg.Logger(stderr)
	host := hostkernel.New(stdin, stdout, stderr)
	heap := alloc.NewHeap(host, cfg.Allocator.GrowthPages, logger)

	console, err := shell.NewConsole(stdin, stdout, heap)
	if err != nil {
		return 1, err
	}
	defer console.Close()

	ctx := &shell.Context{
		Kernel: host,
		Env:    kernel.Environ(os.Environ()),
		Heap:   heap,
		Stdout: stdout,
		Stderr: stderr,
		Log:    logger,
	}
	defer ctx.Close()

	repl := &shell.REPL{
		Context:        ctx,
		Console:        console,
		Prompt:         cfg.Prompt,
		EchoParsedLine: cfg.EchoParsedLine,
		Color:          cfg.ShouldColor(term.IsTerminal(int(stdout.Fd()))),
	}

	logger.Printf("starting, heap grows by %d pages", cfg.Allocator.GrowthPages)
	return repl.Run()
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
