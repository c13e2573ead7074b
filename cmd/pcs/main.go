// Command pcs is the command line front-end of the police case portal.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/pflag"
)

type command struct {
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"login":       {"sign in with a username, email, phone or national id", runLogin},
	"register":    {"create a citizen account", runRegister},
	"logout":      {"forget the stored credentials", runLogout},
	"status":      {"show the current session", runStatus},
	"me":          {"show the signed-in user's profile", runMe},
	"role":        {"show or switch the active role", runRole},
	"modules":     {"list the modules the active role may use", runModules},
	"open":        {"check whether a portal location may be entered", runOpen},
	"complaints":  {"file and review complaints", runComplaints},
	"cases":       {"browse cases, track a case, show statistics", runCases},
	"evidence":    {"list, register and review evidence", runEvidence},
	"most-wanted": {"show the most wanted list", runMostWanted},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command line and returns the process exit code.
func run(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	global := pflag.NewFlagSet("pcs", pflag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", os.Getenv("PCS_CONFIG"), "path to a YAML config file")
	showMetrics := global.Bool("metrics", false, "print client request metrics after the command")
	banner := global.Bool("banner", false, "print the application banner")
	global.SetInterspersed(false)
	global.Usage = func() { usage(stderr, global) }
	if err := global.Parse(argv); err != nil {
		return 2
	}

	args := global.Args()
	if len(args) == 0 {
		usage(stderr, global)
		return 2
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr, global)
		return 2
	}

	a, err := newApp(ctx, *configPath, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "pcs: %v\n", err)
		return 1
	}
	defer a.Close()

	if *banner {
		displayAppname(stdout, a.cfg.GetAppName())
	}

	err = cmd.run(ctx, a, args[1:])
	if *showMetrics {
		a.printMetrics(stderr)
	}
	if err != nil {
		a.logger.Debug().Err(err).Str("command", args[0]).Msg("command failed")
		fmt.Fprintf(stderr, "pcs %s: %s\n", args[0], describe(err))
		return 1
	}
	return 0
}

func usage(w io.Writer, global *pflag.FlagSet) {
	fmt.Fprintf(w, "usage: pcs [global flags] <command> [flags]\n\ncommands:\n")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-12s %s\n", name, commands[name].summary)
	}
	fmt.Fprintf(w, "\nglobal flags:\n%s", global.FlagUsages())
}

func displayAppname(w io.Writer, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(w, myFigure.String())
}
