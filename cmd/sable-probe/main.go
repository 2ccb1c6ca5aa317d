// Command sable-probe is an interactive inspector for the Sable runtime.
// It creates objects, pokes at their attributes and items, compares and
// hashes them, and shows reference counts — a workbench for the binding
// layer rather than a language shell.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/sable-lang/sable"
	"github.com/sable-lang/sable/ffi"
)

const banner = "sable-probe: type 'help' for commands, Ctrl+D to exit."

func red(s string) string  { return "\x1b[31m" + s + "\x1b[0m" }
func blue(s string) string { return "\x1b[94m" + s + "\x1b[0m" }

func main() {
	configPath := flag.String("config", "", "path to config file (default ~/.sable-probe.toml)")
	traceFlag := flag.Bool("trace", false, "log refcount and error-indicator activity")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Str("app", "sable-probe").Logger()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	guard := sable.AcquireRuntime()
	defer guard.Release()
	tok := guard.Token()

	if cfg.Trace || *traceFlag {
		ffi.SetTraceLogger(logger.Level(zerolog.TraceLevel))
	}

	s := newSession(tok)
	defer s.close()

	if flag.NArg() > 0 {
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			logger.Fatal().Err(err).Msg("open script")
		}
		defer f.Close()
		runScript(s, f)
		return
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		runScript(s, os.Stdin)
		return
	}

	runInteractive(s, cfg)
}

func runScript(s *session, r io.Reader) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out, err := s.eval(line)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		if out != "" {
			fmt.Println(out)
		}
	}
}

func runInteractive(s *session, cfg probeConfig) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if f, err := os.Open(cfg.HistoryFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(cfg.HistoryFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Println(banner)
	for {
		input, err := line.Prompt(cfg.Prompt)
		if err == liner.ErrPromptAborted {
			continue
		}
		if err != nil { // io.EOF on Ctrl+D
			fmt.Println()
			return
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		if input == "quit" || input == "exit" {
			return
		}
		out, err := s.eval(input)
		if err != nil {
			fmt.Println(red("error: " + err.Error()))
			continue
		}
		if out != "" {
			fmt.Println(blue(out))
		}
	}
}

// session holds named object wrappers for the probe commands. The token
// is valid for the whole session because the probe keeps its runtime
// guard for the life of the process.
type session struct {
	tok  sable.Token
	vars map[string]*sable.Object
}

func newSession(tok sable.Token) *session {
	s := &session{tok: tok, vars: make(map[string]*sable.Object)}
	s.defineBuiltins()
	return s
}

func (s *session) close() {
	for name, o := range s.vars {
		o.Release(s.tok)
		delete(s.vars, name)
	}
}

// defineBuiltins installs a couple of host callables so call and
// callmethod paths can be exercised from the prompt.
func (s *session) defineBuiltins() {
	upper := ffi.NewFunc("upper", func(args, kwargs ffi.Handle) ffi.Handle {
		items := ffi.TupleItems(args)
		if len(items) != 1 {
			ffi.ErrSetf(ffi.TypeError, "upper() takes 1 argument, got %d", len(items))
			return 0
		}
		text, ok := ffi.StringContents(items[0])
		if !ok {
			ffi.ErrSet(ffi.TypeError, "upper() argument must be str")
			return 0
		}
		return ffi.NewString(strings.ToUpper(text))
	})
	sum := ffi.NewFunc("sum", func(args, kwargs ffi.Handle) ffi.Handle {
		var total int64
		for _, it := range ffi.TupleItems(args) {
			v, ok := ffi.IntContents(it)
			if !ok {
				ffi.ErrSet(ffi.TypeError, "sum() arguments must be int")
				return 0
			}
			total += v
		}
		return ffi.NewInt(total)
	})
	s.vars["upper"], _ = sable.FromOwned(s.tok, upper)
	s.vars["sum"], _ = sable.FromOwned(s.tok, sum)
}

func (s *session) lookup(name string) (*sable.Object, error) {
	o, ok := s.vars[name]
	if !ok {
		return nil, fmt.Errorf("no variable %q", name)
	}
	return o, nil
}

func (s *session) store(name string, o *sable.Object) {
	if old, ok := s.vars[name]; ok {
		old.Release(s.tok)
	}
	s.vars[name] = o
}

func (s *session) reprOf(o *sable.Object) (string, error) {
	r, err := o.Repr(s.tok)
	if err != nil {
		return "", err
	}
	defer r.Release(s.tok)
	return sable.Extract[string](s.tok, r)
}

func (s *session) eval(input string) (string, error) {
	tok := s.tok
	fields := strings.Fields(input)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help":
		return helpText, nil

	case "vars":
		var b strings.Builder
		for name, o := range s.vars {
			r, err := s.reprOf(o)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "%s = %s (refs %d)\n", name, r, o.RefCount(tok))
		}
		return strings.TrimRight(b.String(), "\n"), nil

	case "let":
		if len(args) < 2 {
			return "", fmt.Errorf("usage: let <name> <int|float|str|bool|tuple|dict|ns|none> [value...]")
		}
		o, err := s.construct(args[1], args[2:])
		if err != nil {
			return "", err
		}
		s.store(args[0], o)
		return "", nil

	case "drop":
		if len(args) != 1 {
			return "", fmt.Errorf("usage: drop <name>")
		}
		o, err := s.lookup(args[0])
		if err != nil {
			return "", err
		}
		o.Release(tok)
		delete(s.vars, args[0])
		return "", nil

	case "repr", "str":
		o, err := s.one(args)
		if err != nil {
			return "", err
		}
		var r *sable.Object
		if cmd == "repr" {
			r, err = o.Repr(tok)
		} else {
			r, err = o.Str(tok)
		}
		if err != nil {
			return "", err
		}
		defer r.Release(tok)
		return sable.Extract[string](tok, r)

	case "hash":
		o, err := s.one(args)
		if err != nil {
			return "", err
		}
		h, err := o.Hash(tok)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(h, 10), nil

	case "len":
		o, err := s.one(args)
		if err != nil {
			return "", err
		}
		n, err := o.Len(tok)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(n, 10), nil

	case "truth":
		o, err := s.one(args)
		if err != nil {
			return "", err
		}
		b, err := o.IsTrue(tok)
		if err != nil {
			return "", err
		}
		return strconv.FormatBool(b), nil

	case "type":
		o, err := s.one(args)
		if err != nil {
			return "", err
		}
		return o.Type(tok).Name(tok), nil

	case "refs":
		o, err := s.one(args)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(o.RefCount(tok), 10), nil

	case "callable":
		o, err := s.one(args)
		if err != nil {
			return "", err
		}
		return strconv.FormatBool(o.IsCallable(tok)), nil

	case "none":
		o, err := s.one(args)
		if err != nil {
			return "", err
		}
		return strconv.FormatBool(o.IsNone(tok)), nil

	case "cmp":
		if len(args) != 2 {
			return "", fmt.Errorf("usage: cmp <a> <b>")
		}
		a, err := s.lookup(args[0])
		if err != nil {
			return "", err
		}
		b, err := s.lookup(args[1])
		if err != nil {
			return "", err
		}
		ord, err := a.Compare(tok, b)
		if err != nil {
			return "", err
		}
		return ord.String(), nil

	case "attr":
		return s.attrCmd(args)

	case "item":
		return s.itemCmd(args)

	case "iter":
		o, err := s.one(args)
		if err != nil {
			return "", err
		}
		it, err := o.Iter(tok)
		if err != nil {
			return "", err
		}
		defer it.Release(tok)
		var b strings.Builder
		for {
			el, ok, err := it.Next(tok)
			if err != nil {
				return "", err
			}
			if !ok {
				break
			}
			r, err := s.reprOf(el)
			el.Release(tok)
			if err != nil {
				return "", err
			}
			b.WriteString(r)
			b.WriteByte('\n')
		}
		return strings.TrimRight(b.String(), "\n"), nil

	case "call":
		if len(args) < 1 {
			return "", fmt.Errorf("usage: call <fn> [args...]")
		}
		fn, err := s.lookup(args[0])
		if err != nil {
			return "", err
		}
		callArgs := make([]any, 0, len(args)-1)
		for _, name := range args[1:] {
			a, err := s.lookup(name)
			if err != nil {
				return "", err
			}
			callArgs = append(callArgs, a)
		}
		r, err := fn.Call(tok, callArgs, nil)
		if err != nil {
			return "", err
		}
		s.store("_", r)
		return s.reprOf(r)
	}

	return "", fmt.Errorf("unknown command %q (try 'help')", cmd)
}

func (s *session) one(args []string) (*sable.Object, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("expected one variable name")
	}
	return s.lookup(args[0])
}

func (s *session) construct(kind string, rest []string) (*sable.Object, error) {
	tok := s.tok
	switch kind {
	case "int":
		if len(rest) != 1 {
			return nil, fmt.Errorf("usage: let <name> int <value>")
		}
		v, err := strconv.ParseInt(rest[0], 10, 64)
		if err != nil {
			return nil, err
		}
		return sable.ToObject(tok, v)
	case "float":
		if len(rest) != 1 {
			return nil, fmt.Errorf("usage: let <name> float <value>")
		}
		v, err := strconv.ParseFloat(rest[0], 64)
		if err != nil {
			return nil, err
		}
		return sable.ToObject(tok, v)
	case "str":
		return sable.ToObject(tok, strings.Join(rest, " "))
	case "bool":
		if len(rest) != 1 {
			return nil, fmt.Errorf("usage: let <name> bool <true|false>")
		}
		v, err := strconv.ParseBool(rest[0])
		if err != nil {
			return nil, err
		}
		return sable.ToObject(tok, v)
	case "tuple":
		items := make([]any, 0, len(rest))
		for _, name := range rest {
			o, err := s.lookup(name)
			if err != nil {
				return nil, err
			}
			items = append(items, o)
		}
		return sable.ToObject(tok, items)
	case "dict":
		return sable.FromOwned(tok, ffi.NewDict())
	case "ns":
		return sable.FromOwned(tok, ffi.NewNamespace())
	case "none":
		return sable.ToObject(tok, nil)
	}
	return nil, fmt.Errorf("unknown kind %q", kind)
}

func (s *session) attrCmd(args []string) (string, error) {
	tok := s.tok
	if len(args) < 3 {
		return "", fmt.Errorf("usage: attr <get|set|del|has> <obj> <name> [value]")
	}
	o, err := s.lookup(args[1])
	if err != nil {
		return "", err
	}
	name := args[2]
	switch args[0] {
	case "get":
		v, err := o.Attr(tok, name)
		if err != nil {
			return "", err
		}
		defer v.Release(tok)
		return s.reprOf(v)
	case "has":
		ok, err := o.HasAttr(tok, name)
		if err != nil {
			return "", err
		}
		return strconv.FormatBool(ok), nil
	case "set":
		if len(args) != 4 {
			return "", fmt.Errorf("usage: attr set <obj> <name> <value var>")
		}
		v, err := s.lookup(args[3])
		if err != nil {
			return "", err
		}
		return "", o.SetAttr(tok, name, v)
	case "del":
		return "", o.DelAttr(tok, name)
	}
	return "", fmt.Errorf("unknown attr subcommand %q", args[0])
}

func (s *session) itemCmd(args []string) (string, error) {
	tok := s.tok
	if len(args) < 3 {
		return "", fmt.Errorf("usage: item <get|set|del> <obj> <key var> [value var]")
	}
	o, err := s.lookup(args[1])
	if err != nil {
		return "", err
	}
	key, err := s.lookup(args[2])
	if err != nil {
		return "", err
	}
	switch args[0] {
	case "get":
		v, err := o.Item(tok, key)
		if err != nil {
			return "", err
		}
		defer v.Release(tok)
		return s.reprOf(v)
	case "set":
		if len(args) != 4 {
			return "", fmt.Errorf("usage: item set <obj> <key var> <value var>")
		}
		v, err := s.lookup(args[3])
		if err != nil {
			return "", err
		}
		return "", o.SetItem(tok, key, v)
	case "del":
		return "", o.DelItem(tok, key)
	}
	return "", fmt.Errorf("unknown item subcommand %q", args[0])
}

const helpText = `commands:
  let <name> <int|float|str|bool|tuple|dict|ns|none> [value...]
  repr|str|hash|len|truth|type|refs|callable|none <name>
  cmp <a> <b>
  attr <get|set|del|has> <obj> <name> [value var]
  item <get|set|del> <obj> <key var> [value var]
  iter <name>
  call <fn> [arg vars...]      builtins: upper, sum
  vars | drop <name> | quit`
