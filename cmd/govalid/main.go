package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	govalid "github.com/reoring/govalid"
	"github.com/reoring/govalid/mapping"
	"github.com/reoring/govalid/rules"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	switch sub {
	case "lint":
		lintCmd(os.Args[2:])
	case "chain":
		chainCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "govalid CLI\n\nUsage:\n  govalid lint -f mapping.yaml [-json] [-v]\n  govalid chain -groups g1[,g2,...] [-f mapping.yaml] [-json] [-v]\n\nNotes:\n  - lint checks a constraint-mapping document and resolves its sequences.\n  - chain prints the group execution plan for the requested groups.")
}

// lintCmd checks a mapping document structurally, then resolves every
// declared sequence through the chain generator to catch cycles and
// unresolvable members.
func lintCmd(args []string) {
	fs := flag.NewFlagSet("lint", flag.ExitOnError)
	var file string
	var asJSON bool
	var verbose bool
	fs.StringVar(&file, "f", "", "mapping document (.yaml or .json)")
	fs.BoolVar(&asJSON, "json", false, "emit findings as JSON")
	fs.BoolVar(&verbose, "v", false, "enable verbose logs")
	_ = fs.Parse(args)
	if file == "" {
		fs.Usage()
		os.Exit(2)
	}
	log := newLogger(verbose)

	f, err := loadMapping(file)
	if err != nil {
		fatalf("load mapping: %v", err)
	}
	log.Debug("mapping loaded", "file", file, "types", len(f.Types), "sequences", len(f.Sequences))

	problems := f.Check()

	v, err := govalid.New(rules.New(), govalid.WithSequences(f.GroupSequences()))
	if err != nil {
		fatalf("build validator: %v", err)
	}
	names := make([]string, 0, len(f.Sequences))
	for name := range f.Sequences {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if name == "" {
			continue // already reported by Check
		}
		if _, err := v.GroupPlan(govalid.Group(name)); err != nil {
			problems = append(problems, mapping.Problem{Where: "sequences." + name, Reason: err.Error()})
			continue
		}
		log.Debug("sequence resolves", "sequence", name)
	}

	if asJSON {
		out, err := json.MarshalIndent(map[string]any{"problems": problems}, "", "  ")
		if err != nil {
			fatalf("encode findings: %v", err)
		}
		fmt.Println(string(out))
	} else {
		for _, p := range problems {
			fmt.Println(p.String())
		}
		if len(problems) == 0 {
			fmt.Println("ok")
		}
	}
	if len(problems) > 0 {
		os.Exit(1)
	}
}

// chainCmd prints the execution plan for the requested groups, using the
// sequences of a mapping document when one is given.
func chainCmd(args []string) {
	fs := flag.NewFlagSet("chain", flag.ExitOnError)
	var file string
	var groupsCSV string
	var asJSON bool
	var verbose bool
	fs.StringVar(&file, "f", "", "mapping document providing sequence definitions")
	fs.StringVar(&groupsCSV, "groups", "", "comma-separated group identifiers to resolve")
	fs.BoolVar(&asJSON, "json", false, "emit the plan as JSON")
	fs.BoolVar(&verbose, "v", false, "enable verbose logs")
	_ = fs.Parse(args)
	if groupsCSV == "" {
		fs.Usage()
		os.Exit(2)
	}
	log := newLogger(verbose)

	seqs := map[govalid.Group][]govalid.Group{}
	if file != "" {
		f, err := loadMapping(file)
		if err != nil {
			fatalf("load mapping: %v", err)
		}
		seqs = f.GroupSequences()
		log.Debug("mapping loaded", "file", file, "sequences", len(seqs))
	}
	v, err := govalid.New(rules.New(), govalid.WithSequences(seqs))
	if err != nil {
		fatalf("build validator: %v", err)
	}

	var groups []govalid.Group
	for _, g := range splitCSV(groupsCSV) {
		groups = append(groups, govalid.Group(g))
	}
	plan, err := v.GroupPlan(groups...)
	if err != nil {
		fatalf("resolve groups: %v", err)
	}

	if asJSON {
		out, err := json.MarshalIndent(plan, "", "  ")
		if err != nil {
			fatalf("encode plan: %v", err)
		}
		fmt.Println(string(out))
		return
	}
	for i, p := range plan {
		if p.InSequence() {
			fmt.Printf("%d. %s (sequence %s)\n", i+1, p.Group, p.Sequence)
			continue
		}
		fmt.Printf("%d. %s\n", i+1, p.Group)
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadMapping(path string) (*mapping.File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return mapping.DecodeJSON(fh)
	}
	return mapping.Decode(fh)
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
