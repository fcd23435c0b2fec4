package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ComedicChimera/olive"
	"github.com/fsnotify/fsnotify"
	"github.com/peterh/liner"

	"github.com/zephyrtronium/latexpr"
)

func main() {
	os.Exit(run())
}

func run() int {
	cli := olive.NewCLI("latexpr", "latexpr compiles LaTeX math into symbolic expressions", true)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "how much to print", false, []string{"silent", "error", "verbose"})
	logLvlArg.SetDefaultValue("error")

	compileCmd := cli.AddSubcommand("compile", "compile an expression", true)
	compileCmd.AddPrimaryArg("source", "LaTeX source text (default: read the input file or stdin)", false)
	compileCmd.AddStringArg("env", "e", "environment file (.json or .toml)", false)
	compileCmd.AddStringArg("given", "g", `variable definitions "name=value", separated by semicolons`, false)
	compileCmd.AddFlag("strict", "s", "fail on undeclared names")
	compileCmd.AddStringArg("in", "i", "input file, - for stdin", false)
	compileCmd.AddFlag("lines", "n", "compile separate input lines as separate expressions")
	compileCmd.AddFlag("raw", "r", "skip unit normalization")

	symbolsCmd := cli.AddSubcommand("symbols", "list the symbol names in an expression", true)
	symbolsCmd.AddPrimaryArg("source", "LaTeX source text", true)

	treeCmd := cli.AddSubcommand("tree", "print the parse tree of an expression", true)
	treeCmd.AddPrimaryArg("source", "LaTeX source text", true)

	convertCmd := cli.AddSubcommand("convert", "convert the units of an expression", true)
	convertCmd.AddPrimaryArg("source", "LaTeX source text", true)
	convertCmd.AddStringArg("to", "t", "comma-separated target units", true)
	convertCmd.AddStringArg("env", "e", "environment file (.json or .toml)", false)
	convertCmd.AddStringArg("given", "g", `variable definitions "name=value", separated by semicolons`, false)
	convertCmd.AddFlag("strict", "s", "fail on undeclared names")

	replCmd := cli.AddSubcommand("repl", "compile expressions interactively", true)
	replCmd.AddStringArg("env", "e", "environment file (.json or .toml)", false)
	replCmd.AddStringArg("given", "g", `variable definitions "name=value", separated by semicolons`, false)
	replCmd.AddFlag("strict", "s", "fail on undeclared names")

	watchCmd := cli.AddSubcommand("watch", "recompile an input file whenever it or the environment changes", true)
	watchCmd.AddPrimaryArg("input", "the input file", true)
	watchCmd.AddStringArg("env", "e", "environment file (.json or .toml)", false)
	watchCmd.AddStringArg("given", "g", `variable definitions "name=value", separated by semicolons`, false)
	watchCmd.AddFlag("strict", "s", "fail on undeclared names")

	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		display{level: "error"}.printError("Usage Error", err, "")
		return 2
	}
	d := display{level: result.Arguments["loglevel"].(string)}

	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "compile":
		return execCompile(d, subResult)
	case "symbols":
		return execSymbols(d, subResult)
	case "tree":
		return execTree(d, subResult)
	case "convert":
		return execConvert(d, subResult)
	case "repl":
		return execRepl(d, subResult)
	case "watch":
		return execWatch(d, subResult)
	}
	return 0
}

// stringArg returns the value of an optional string argument.
func stringArg(result *olive.ArgParseResult, name string) string {
	v, ok := result.Arguments[name]
	if !ok {
		return ""
	}
	return v.(string)
}

// settings loads the environment and compile options shared by the
// subcommands.
func settings(result *olive.ArgParseResult) (*latexpr.Environment, []latexpr.Option, error) {
	var env *latexpr.Environment
	if path := stringArg(result, "env"); path != "" {
		e, err := latexpr.LoadEnvironment(path)
		if err != nil {
			return nil, nil, err
		}
		env = e
	}
	var opts []latexpr.Option
	if given := stringArg(result, "given"); given != "" {
		for _, s := range strings.Split(given, ";") {
			d := strings.SplitN(s, "=", 2)
			if len(d) != 2 {
				return nil, nil, fmt.Errorf(`variable definitions must be "name=value", not %q`, s)
			}
			opts = append(opts, latexpr.Define(strings.TrimSpace(d[0]), strings.TrimSpace(d[1])))
		}
	}
	if result.HasFlag("strict") {
		opts = append(opts, latexpr.Strict())
	}
	return env, opts, nil
}

func execCompile(d display, result *olive.ArgParseResult) int {
	env, opts, err := settings(result)
	if err != nil {
		d.printError("Config Error", err, "")
		return 1
	}
	if result.HasFlag("raw") {
		opts = append(opts, latexpr.Raw())
	}
	var srcs []string
	if src, ok := result.PrimaryArg(); ok {
		srcs = append(srcs, src)
	} else {
		text, err := readInput(stringArg(result, "in"))
		if err != nil {
			d.printError("Input Error", err, "")
			return 1
		}
		srcs = append(srcs, text)
	}
	if result.HasFlag("lines") {
		var lines []string
		for _, src := range srcs {
			for _, line := range strings.Split(src, "\n") {
				if strings.TrimSpace(line) != "" {
					lines = append(lines, line)
				}
			}
		}
		srcs = lines
	}
	status := 0
	for _, src := range srcs {
		r, err := latexpr.Compile(src, env, opts...)
		if err != nil {
			d.printError(errorTag(err), err, src)
			status = 1
			continue
		}
		d.printResult(r)
	}
	return status
}

// readInput reads a whole input file, or stdin if name is empty or -.
func readInput(name string) (string, error) {
	var f io.Reader = os.Stdin
	if name != "" && name != "-" {
		in, err := os.Open(name)
		if err != nil {
			return "", err
		}
		defer in.Close()
		f = in
	}
	b, err := io.ReadAll(bufio.NewReader(f))
	return string(b), err
}

func execSymbols(d display, result *olive.ArgParseResult) int {
	src, _ := result.PrimaryArg()
	names, err := latexpr.ExtractSymbolNames(src)
	if err != nil {
		d.printError(errorTag(err), err, src)
		return 1
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return 0
}

func execTree(d display, result *olive.ArgParseResult) int {
	src, _ := result.PrimaryArg()
	tree, err := latexpr.Parse(src)
	if err != nil {
		d.printError(errorTag(err), err, src)
		return 1
	}
	fmt.Println(latexpr.TreeString(tree))
	return 0
}

func execConvert(d display, result *olive.ArgParseResult) int {
	env, opts, err := settings(result)
	if err != nil {
		d.printError("Config Error", err, "")
		return 1
	}
	src, _ := result.PrimaryArg()
	var targets []string
	for _, u := range strings.Split(stringArg(result, "to"), ",") {
		if u = strings.TrimSpace(u); u != "" {
			targets = append(targets, u)
		}
	}
	r, err := latexpr.Convert(src, env, targets, opts...)
	if err != nil {
		d.printError(errorTag(err), err, src)
		return 1
	}
	d.printResult(r)
	return 0
}

const historyFile = ".latexpr_history"

func execRepl(d display, result *olive.ArgParseResult) int {
	env, opts, err := settings(result)
	if err != nil {
		d.printError("Config Error", err, "")
		return 1
	}
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	if f, err := os.Open(histPath); err == nil {
		ln.ReadHistory(f)
		f.Close()
	}

	for {
		line, err := ln.Prompt("» ")
		if err != nil {
			// EOF or Ctrl-C.
			fmt.Println()
			break
		}
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case line == ":q" || line == ":quit":
			return saveHistory(ln, histPath)
		case strings.HasPrefix(line, ":tree "):
			src := strings.TrimPrefix(line, ":tree ")
			tree, err := latexpr.Parse(src)
			if err != nil {
				d.printError(errorTag(err), err, src)
			} else {
				fmt.Println(latexpr.TreeString(tree))
			}
		case strings.HasPrefix(line, ":symbols "):
			src := strings.TrimPrefix(line, ":symbols ")
			names, err := latexpr.ExtractSymbolNames(src)
			if err != nil {
				d.printError(errorTag(err), err, src)
			} else {
				fmt.Println(strings.Join(names, " "))
			}
		default:
			r, err := latexpr.Compile(line, env, opts...)
			if err != nil {
				d.printError(errorTag(err), err, line)
			} else {
				d.printResult(r)
			}
		}
		ln.AppendHistory(line)
	}
	return saveHistory(ln, histPath)
}

func saveHistory(ln *liner.State, path string) int {
	if f, err := os.Create(path); err == nil {
		ln.WriteHistory(f)
		f.Close()
	}
	return 0
}

func execWatch(d display, result *olive.ArgParseResult) int {
	input, _ := result.PrimaryArg()
	envPath := stringArg(result, "env")
	w, err := fsnotify.NewWatcher()
	if err != nil {
		d.printError("Watch Error", err, "")
		return 1
	}
	defer w.Close()
	// Watch directories so that editors which replace files on save still
	// produce events.
	dirs := map[string]bool{filepath.Dir(input): true}
	if envPath != "" {
		dirs[filepath.Dir(envPath)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			d.printError("Watch Error", err, "")
			return 1
		}
	}
	recompile := func() {
		env, opts, err := settings(result)
		if err != nil {
			d.printError("Config Error", err, "")
			return
		}
		src, err := readInput(input)
		if err != nil {
			d.printError("Input Error", err, "")
			return
		}
		r, err := latexpr.Compile(src, env, opts...)
		if err != nil {
			d.printError(errorTag(err), err, src)
			return
		}
		d.printInfo("Compiled", input)
		d.printResult(r)
	}
	recompile()
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return 0
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !sameFile(ev.Name, input) && (envPath == "" || !sameFile(ev.Name, envPath)) {
				continue
			}
			recompile()
		case err, ok := <-w.Errors:
			if !ok {
				return 0
			}
			d.printError("Watch Error", err, "")
		}
	}
}

func sameFile(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}
