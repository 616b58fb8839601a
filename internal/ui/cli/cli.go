package cli

import (
	"flag"
	"strings"
)

const versionString = "1.0.0"
const defaultConfigPath = "./codeflow.toml"

type cliOptions struct {
	configPath string
	mode       string
	user       string
	seed       uint64
	limit      int
	format     string
	by         string
	note       string
	exclude    string
	languages  string
	jsonOut    bool
	verbose    bool
	version    bool
	command    string
	args       []string
}

func parseOptions(args []string) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("codeflow", flag.ContinueOnError)

	fs.StringVar(&opts.configPath, "config", defaultConfigPath, "Path to config file")
	fs.StringVar(&opts.mode, "mode", "", "Override suite mode (personalized or random)")
	fs.StringVar(&opts.user, "user", "", "Override user id")
	fs.Uint64Var(&opts.seed, "seed", 0, "Seed for random-mode components (0 picks one)")
	fs.IntVar(&opts.limit, "limit", 20, "Maximum rows to print")
	fs.StringVar(&opts.format, "format", "dot", "Export format: dot, tsv or tsv-edges")
	fs.StringVar(&opts.by, "by", "usage", "Bookmark sort: usage, date, name or importance")
	fs.StringVar(&opts.note, "note", "", "Note stored with a new bookmark")
	fs.StringVar(&opts.exclude, "exclude", "", "Comma-separated paths left out of suggestions")
	fs.StringVar(&opts.languages, "languages", "", "Comma-separated languages for filter (default: suite defaults)")
	fs.BoolVar(&opts.jsonOut, "json", false, "Print JSON instead of tables")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	rest := fs.Args()
	if len(rest) > 0 {
		opts.command = strings.ToLower(rest[0])
		opts.args = rest[1:]
	}
	return opts, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
