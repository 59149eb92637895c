// Package commands runs "cmd ..." lines typed into the terminal or fed to
// lodsim on stdin. Each command owns a flag set; RegisterLOD wires the LOD
// system and the performance monitor to a registry.
package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
)

const prefix = "cmd "

var (
	ErrNoCommand      = errors.New("missing subcommand")
	ErrUnknownCommand = errors.New("unknown command")
)

// Command binds a name to a flag set and the action run once flags are parsed.
// Positional arguments such as an object id are read from FlagSet.Args.
type Command struct {
	Name    string
	FlagSet *flag.FlagSet
	Run     func() error
}

// Registry maps command names to commands. It is not safe for concurrent use;
// the viewer and lodsim both execute between frames on the main goroutine.
type Registry struct {
	cmds map[string]*Command
}

func NewRegistry() *Registry {
	return &Registry{cmds: make(map[string]*Command)}
}

// Register adds or replaces the command called name. The flag set is reused
// for every execution, so run must clear any flag it reads.
func (r *Registry) Register(name string, fs *flag.FlagSet, run func() error) {
	r.cmds[name] = &Command{Name: name, FlagSet: fs, Run: run}
}

// Names returns the registered command names in order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.cmds))
	for n := range r.cmds {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Usage writes one line per command followed by its flags.
func (r *Registry) Usage(w io.Writer) {
	for _, n := range r.Names() {
		fmt.Fprintf(w, "cmd %s\n", n)
		r.cmds[n].FlagSet.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(w, "  --%s  %s\n", f.Name, f.Usage)
		})
	}
}

// Parse splits a terminal line. Only lines starting with "cmd " (case-sensitive)
// are commands; "cmd" alone yields ok with no args.
func Parse(line string) (args []string, ok bool) {
	rest, found := strings.CutPrefix(line, prefix)
	if !found {
		return nil, false
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return nil, true
	}
	return fields, true
}

// Execute parses args[1:] with the flags of command args[0] and runs it.
func (r *Registry) Execute(args []string) error {
	if len(args) == 0 {
		return ErrNoCommand
	}
	cmd, ok := r.cmds[args[0]]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
	if err := cmd.FlagSet.Parse(args[1:]); err != nil {
		return fmt.Errorf("%s: %w", cmd.Name, err)
	}
	return cmd.Run()
}

// newFlagSet returns a flag set that reports errors instead of exiting and
// prints nothing itself.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}
