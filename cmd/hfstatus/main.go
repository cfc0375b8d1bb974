package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mtzanidakis/gse/internal/envfile"
	"github.com/mtzanidakis/gse/internal/hfspace"
)

var requiredKeys = []string{"HF_USERNAME", "HF_SPACE_NAME", "HF_TOKEN"}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("hfstatus", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "config.env", "path to the KEY=VALUE config file")
	endpoint := fs.String("endpoint", "", "Hugging Face Hub endpoint (default $HF_ENDPOINT or "+hfspace.DefaultEndpoint+")")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	env, err := envfile.Load(*configPath)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(stderr, "error: %s missing\n", *configPath)
		} else {
			fmt.Fprintf(stderr, "error: reading %s: %v\n", *configPath, err)
		}
		return 1
	}

	if missing := envfile.Missing(env, requiredKeys...); len(missing) > 0 {
		fmt.Fprintf(stderr, "error: HF variables missing in %s: %s\n", *configPath, strings.Join(missing, ", "))
		return 1
	}

	if *endpoint == "" {
		*endpoint = os.Getenv("HF_ENDPOINT")
	}

	repoID := hfspace.RepoID(env["HF_USERNAME"], env["HF_SPACE_NAME"])
	client := hfspace.NewClient(*endpoint, env["HF_TOKEN"])

	fmt.Fprintf(stdout, "[HF] Checking runtime for %s…\n", repoID)
	rt, err := client.Runtime(context.Background(), repoID)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	fmt.Fprintln(stdout, "stage     :", orNone(&rt.Stage))
	fmt.Fprintln(stdout, "hardware  :", orNone(rt.Hardware.Current))
	fmt.Fprintln(stdout, "requested :", orNone(rt.Hardware.Requested))
	return 0
}

func orNone(v *string) string {
	if v == nil || *v == "" {
		return "None"
	}
	return *v
}
