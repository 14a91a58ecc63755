package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/docker/go-units"

	"github.com/tetratelabs/a64emit/arm64"
	"github.com/tetratelabs/a64emit/internal/features"
	"github.com/tetratelabs/a64emit/internal/version"
)

func main() {
	doMain(os.Stdout, os.Stderr, os.Exit)
}

// doMain is separated out for the purpose of unit testing.
func doMain(stdOut, stdErr io.Writer, exit func(code int)) {
	flag.CommandLine.SetOutput(stdErr)

	var help bool
	flag.BoolVar(&help, "h", false, "print usage")

	flag.Parse()

	if help || flag.NArg() == 0 {
		printUsage(stdErr)
		exit(0)
	}

	subCmd := flag.Arg(0)
	switch subCmd {
	case "addr":
		doAddr(flag.Args()[1:], stdOut, stdErr, exit)
	case "imm":
		doImm(flag.Args()[1:], stdOut, stdErr, exit)
	case "demo":
		doDemo(flag.Args()[1:], stdOut, stdErr, exit)
	case "version":
		fmt.Fprintln(stdOut, version.GetVersion())
		exit(0)
	default:
		fmt.Fprintln(stdErr, "invalid command")
		printUsage(stdErr)
		exit(1)
	}
}

func doAddr(args []string, stdOut, stdErr io.Writer, exit func(code int)) {
	flags := flag.NewFlagSet("addr", flag.ContinueOnError)
	flags.SetOutput(stdErr)

	var help bool
	flags.BoolVar(&help, "h", false, "print usage")

	var long bool
	flags.BoolVar(&long, "long", false, "use the two slot ADR/ADRP/ADRP+ADD selection instead of a single ADR")

	var page bool
	flags.BoolVar(&page, "page", false, "use a single ADRP to a page-aligned target")

	var rd uint
	flags.UintVar(&rd, "rd", 30, "destination register number, 0 to 30")

	var site string
	flags.StringVar(&site, "site", "0", "offset of the first slot from the start of the buffer")

	if err := flags.Parse(args); err != nil {
		exit(1)
	}

	if help {
		printSubcommandUsage(stdErr, "addr [options] <target offset>", flags)
		exit(0)
	}

	if flags.NArg() < 1 {
		fmt.Fprintln(stdErr, "missing target offset")
		printSubcommandUsage(stdErr, "addr [options] <target offset>", flags)
		exit(1)
	}

	siteOffset, err := strconv.ParseInt(site, 0, 64)
	if err != nil {
		fmt.Fprintf(stdErr, "invalid site: %v\n", err)
		exit(1)
	}
	target, err := strconv.ParseInt(flags.Arg(0), 0, 64)
	if err != nil {
		fmt.Fprintf(stdErr, "invalid target: %v\n", err)
		exit(1)
	}
	if rd > 31 {
		fmt.Fprintf(stdErr, "invalid register %d\n", rd)
		exit(1)
	}

	kind := arm64.AddressGenShort
	switch {
	case long && page:
		fmt.Fprintln(stdErr, "-long and -page are mutually exclusive")
		exit(1)
	case long:
		kind = arm64.AddressGenLong
	case page:
		kind = arm64.AddressGenPage
	}
	seq, err := arm64.ResolveAddress(kind, arm64.Register(rd), siteOffset, target)
	if err != nil {
		fmt.Fprintf(stdErr, "error resolving address: %v\n", err)
		exit(1)
	}

	fmt.Fprintln(stdOut, seq.Form)
	for i, w := range seq.Words {
		fmt.Fprintf(stdOut, "%08x: %08x\n", siteOffset+int64(4*i), w)
	}
	exit(0)
}

func doImm(args []string, stdOut, stdErr io.Writer, exit func(code int)) {
	flags := flag.NewFlagSet("imm", flag.ContinueOnError)
	flags.SetOutput(stdErr)

	var help bool
	flags.BoolVar(&help, "h", false, "print usage")

	var w bool
	flags.BoolVar(&w, "w", false, "treat the value as 32-bit")

	if err := flags.Parse(args); err != nil {
		exit(1)
	}

	if help {
		printSubcommandUsage(stdErr, "imm [options] <value>", flags)
		exit(0)
	}

	if flags.NArg() < 1 {
		fmt.Fprintln(stdErr, "missing value")
		printSubcommandUsage(stdErr, "imm [options] <value>", flags)
		exit(1)
	}

	v, err := strconv.ParseUint(flags.Arg(0), 0, 64)
	if err != nil {
		fmt.Fprintf(stdErr, "invalid value: %v\n", err)
		exit(1)
	}
	size := arm64.Size64
	if w {
		size = arm64.Size32
	}

	var seq []arm64.MoveWide
	if err = arm64.Guard(func() { seq = arm64.SplitMoveWide(v, size) }); err != nil {
		fmt.Fprintf(stdErr, "invalid value: %v\n", err)
		exit(1)
	}

	if imm, ok := arm64.EncodeLogicalImmediate(v, size); ok {
		fmt.Fprintf(stdOut, "logical: N=%d immr=%d imms=%d\n", imm.N, imm.Immr, imm.Imms)
	} else {
		fmt.Fprintln(stdOut, "logical: not encodable")
	}
	for _, mw := range seq {
		fmt.Fprintf(stdOut, "%s #%#x, lsl #%d\n", mw.Op, mw.Imm16, mw.Shift)
	}
	exit(0)
}

func doDemo(args []string, stdOut, stdErr io.Writer, exit func(code int)) {
	flags := flag.NewFlagSet("demo", flag.ContinueOnError)
	flags.SetOutput(stdErr)

	var help bool
	flags.BoolVar(&help, "h", false, "print usage")

	var capacity string
	flags.StringVar(&capacity, "capacity", "2MiB", "code buffer size of each example, such as 64KiB")

	if err := flags.Parse(args); err != nil {
		exit(1)
	}

	if help {
		printSubcommandUsage(stdErr, "demo [options]", flags)
		exit(0)
	}

	size, err := features.ParseSize(capacity)
	if err != nil {
		fmt.Fprintf(stdErr, "invalid capacity: %v\n", err)
		exit(1)
	}

	trace := &nopFilter{w: stdOut}
	for _, d := range demos {
		fmt.Fprintf(stdOut, "# %s\n", d.name)
		if err = runDemo(d.emit, size, trace); err != nil {
			fmt.Fprintf(stdErr, "error emitting %s into %s: %v\n", d.name, units.BytesSize(float64(size)), err)
			exit(1)
		}
	}
	exit(0)
}

func runDemo(emit func(e *arm64.Emitter), capacity int, trace io.Writer) error {
	config := arm64.NewEmitterConfig().
		WithCapacity(capacity).
		WithExecutableMemory(false).
		WithTrace(trace)
	e, err := arm64.NewEmitter(config)
	if err != nil {
		return err
	}
	defer e.Close()

	if err = arm64.Guard(func() { emit(e) }); err != nil {
		return err
	}
	_, err = e.Finalize()
	return err
}

// padTo emits NOPs until the cursor reaches offset.
func padTo(e *arm64.Emitter, offset int) {
	for e.Len() < offset {
		e.Nop()
	}
}

var demos = []struct {
	name string
	emit func(e *arm64.Emitter)
}{
	{name: "adr to a bound label", emit: func(e *arm64.Emitter) {
		l := arm64.NewBackwardLabel()
		e.Bind(l)
		e.Dc32(0)
		e.Adr(arm64.REG_R30, l)
	}},
	{name: "adr to a later label", emit: func(e *arm64.Emitter) {
		l := arm64.NewForwardLabel()
		e.Adr(arm64.REG_R30, l)
		e.Bind(l)
	}},
	{name: "long address in adr range", emit: func(e *arm64.Emitter) {
		l := arm64.NewForwardLabel()
		padTo(e, 4092)
		e.LongAddressGen(arm64.REG_R30, l)
		e.Bind(l)
	}},
	{name: "long address to a page", emit: func(e *arm64.Emitter) {
		l := arm64.NewForwardLabel()
		e.LongAddressGen(arm64.REG_R30, l)
		padTo(e, 0x101000)
		e.Bind(l)
	}},
	{name: "long address within a page", emit: func(e *arm64.Emitter) {
		l := arm64.NewForwardLabel()
		e.LongAddressGen(arm64.REG_R30, l)
		padTo(e, 0x101004)
		e.Bind(l)
	}},
	{name: "conditional branches", emit: func(e *arm64.Emitter) {
		back := arm64.NewBackwardLabel()
		e.Bind(back)
		e.Nop()
		e.BCond(arm64.COND_PL, back)

		fwd := arm64.NewForwardLabel()
		e.BCond(arm64.COND_PL, fwd)
		e.Bind(fwd)
	}},
}

// nopFilter drops the trace lines of padding NOPs.
type nopFilter struct {
	w io.Writer
}

var nopSuffix = []byte("  nop\n")

// Write implements io.Writer. The emitter writes one trace line per call.
func (f *nopFilter) Write(p []byte) (int, error) {
	if bytes.HasSuffix(p, nopSuffix) {
		return len(p), nil
	}
	return f.w.Write(p)
}

func printUsage(stdErr io.Writer) {
	fmt.Fprintln(stdErr, "a64emit CLI")
	fmt.Fprintln(stdErr)
	fmt.Fprintln(stdErr, "Usage:\n  a64emit <command>")
	fmt.Fprintln(stdErr)
	fmt.Fprintln(stdErr, "Commands:")
	fmt.Fprintln(stdErr, "  addr\t\tPrints the instructions materializing an address")
	fmt.Fprintln(stdErr, "  imm\t\tPrints the encodings of a constant")
	fmt.Fprintln(stdErr, "  demo\t\tEmits example label references and prints the trace")
	fmt.Fprintln(stdErr, "  version\tDisplays the version of a64emit CLI")
}

func printSubcommandUsage(stdErr io.Writer, usage string, flags *flag.FlagSet) {
	fmt.Fprintln(stdErr, "a64emit CLI")
	fmt.Fprintln(stdErr)
	fmt.Fprintf(stdErr, "Usage:\n  a64emit %s\n", usage)
	fmt.Fprintln(stdErr)
	fmt.Fprintln(stdErr, "Options:")
	flags.PrintDefaults()
}
