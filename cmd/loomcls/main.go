// Command loomcls inspects class hierarchies declared in a manifest: it
// builds the declared classes in a fresh runtime context and reports
// linearized orders, member tables, and slot layouts.
package main

import (
	"fmt"
	"os"
	"strings"

	"loom/runtime-go/pkg/manifest"
	"loom/runtime-go/pkg/object"
)

const cliToolVersion = "loomcls 0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 1
	}

	manifestPath, remaining, err := parseManifestFlag(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(remaining) == 0 {
		printUsage()
		return 1
	}

	switch remaining[0] {
	case "--help", "-h":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "classes":
		return withContext(manifestPath, runClasses)
	case "mro":
		return withClass(manifestPath, remaining[1:], runMro)
	case "members":
		return withClass(manifestPath, remaining[1:], runMembers)
	default:
		fmt.Fprintf(os.Stderr, "loomcls: unknown command %q\n", remaining[0])
		printUsage()
		return 1
	}
}

func parseManifestFlag(args []string) (string, []string, error) {
	path := "classes.yml"
	remaining := make([]string, 0, len(args))
	for _, arg := range args {
		if strings.HasPrefix(arg, "--manifest=") {
			path = strings.TrimPrefix(arg, "--manifest=")
			if path == "" {
				return "", nil, fmt.Errorf("loomcls: --manifest needs a path")
			}
			continue
		}
		remaining = append(remaining, arg)
	}
	return path, remaining, nil
}

// withContext loads the manifest, builds it into a fresh context, and hands
// the context to the command body.
func withContext(path string, body func(ctx *object.Context) int) int {
	m, err := manifest.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loomcls: %v\n", err)
		return 1
	}
	ctx := object.NewContext()
	if _, err := manifest.Build(ctx, m); err != nil {
		fmt.Fprintf(os.Stderr, "loomcls: %v\n", err)
		return 1
	}
	return body(ctx)
}

func withClass(path string, args []string, body func(ctx *object.Context, cls *object.Class) int) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "loomcls: expected exactly one class name")
		return 1
	}
	name := args[0]
	return withContext(path, func(ctx *object.Context) int {
		cls, ok := ctx.LookupClass(name)
		if !ok {
			fmt.Fprintf(os.Stderr, "loomcls: unknown class %s\n", name)
			return 1
		}
		return body(ctx, cls)
	})
}

func runClasses(ctx *object.Context) int {
	for _, name := range ctx.ClassNames() {
		fmt.Fprintln(os.Stdout, name)
	}
	return 0
}

func runMro(ctx *object.Context, cls *object.Class) int {
	names := make([]string, 0, 4)
	for _, step := range ctx.Mro(cls) {
		names = append(names, step.Name)
	}
	fmt.Fprintln(os.Stdout, strings.Join(names, " -> "))
	return 0
}

func runMembers(ctx *object.Context, cls *object.Class) int {
	if cls.Slotted() {
		fmt.Fprintf(os.Stdout, "slots: %s\n", strings.Join(cls.SlotNames(), ", "))
	}
	for _, step := range ctx.Mro(cls) {
		for _, name := range step.MemberNames() {
			value, ok := step.OwnMember(name)
			if !ok {
				continue
			}
			rendered, err := ctx.Repr(value)
			if err != nil {
				rendered = fmt.Sprintf("<%s>", value.Kind())
			}
			fmt.Fprintf(os.Stdout, "%s.%s = %s\n", step.Name, name, rendered)
		}
	}
	return 0
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  loomcls [--manifest=classes.yml] classes")
	fmt.Fprintln(os.Stderr, "  loomcls [--manifest=classes.yml] mro <class>")
	fmt.Fprintln(os.Stderr, "  loomcls [--manifest=classes.yml] members <class>")
	fmt.Fprintln(os.Stderr, "  loomcls version")
}
