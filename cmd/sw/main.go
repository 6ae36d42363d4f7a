package main

import (
	"context"
	"fmt"
	"os"

	"github.com/5l1v3r1/sw/internal/cli"
	"github.com/5l1v3r1/sw/internal/swctx"
	"github.com/5l1v3r1/sw/internal/swerr"
)

func main() {
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps a build/resolve failure's swerr.Kind to the process exit
// code it should produce. Errors carrying no recognized Kind are fatal
// (exit 1).
func exitCode(err error) int {
	switch {
	case swerr.Of(err, swerr.Interrupted):
		return 2
	case swerr.Of(err, swerr.UnresolvableDependency), swerr.Of(err, swerr.ConflictingPins):
		return 3
	default:
		return 1
	}
}

func run(outW *os.File, args []string) error {
	runCfg, shouldExit, err := cli.Parse(args, swctx.LoadConfig(), outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(outW, "sw: a critical startup error occurred: %v\n", r)
			os.Exit(1)
		}
	}()

	sw, err := swctx.New(runCfg.Config, outW)
	if err != nil {
		return err
	}
	defer sw.Close()

	summary, err := sw.Build(context.Background(), runCfg.Roots, swctx.BuildOptions{QueryLocalDB: true})
	if err != nil {
		return err
	}

	for status, count := range summary.Counts() {
		sw.Logger.Info("sw: build complete", "status", status, "count", count)
	}
	if summary.Failed() {
		os.Exit(1)
	}
	return nil
}
