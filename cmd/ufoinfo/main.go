package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/npillmayer/ufo"
	"github.com/pterm/pterm"
)

// tracer traces with key 'ufo.io'
func tracer() tracing.Trace {
	return tracing.Select("ufo.io")
}

func main() {
	initDisplay()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter": "go",
		"trace.ufo.io":    "Info",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	glyphname := flag.String("glyph", "", "Glyph to report the control box for")
	workers := flag.Int("workers", 0, "Worker count for glyph IO (0 = one per CPU)")
	flag.Parse()
	tracer().SetTraceLevel(traceLevel(*tlevel))
	if flag.NArg() != 1 {
		pterm.Error.Println("usage: ufoinfo [flags] <path-to-ufo>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	opts := ufo.Options{Workers: *workers}
	font, err := ufo.LoadWith(path, opts)
	if err != nil {
		if report, ok := err.(ufo.Report); ok {
			pterm.Error.Printfln("font source is structurally invalid:")
			for _, finding := range report {
				pterm.Println("  " + finding.String())
			}
			os.Exit(4)
		}
		pterm.Error.Println(err.Error())
		os.Exit(3)
	}
	printInfo(font, path)
	if *glyphname != "" {
		printControlBox(font, *glyphname)
	}
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func printInfo(font *ufo.Font, path string) {
	pterm.Info.Printfln("%s is a valid %s package", path, font.Meta.Version)
	if font.Meta.Creator != "" {
		pterm.Printfln("created by %s", font.Meta.Creator)
	}
	if font.Info != nil {
		family, style := font.Info.FamilyName(), font.Info.StyleName()
		if family != "" || style != "" {
			pterm.Printfln("font: %s %s", family, style)
		}
		if upem, ok := font.Info.UnitsPerEm(); ok {
			pterm.Printfln("units per em: %s", ufoNum(upem))
		}
	}
	rows := pterm.TableData{{"Layer", "Glyphs", "Default"}}
	for _, layer := range font.Layers() {
		def := ""
		if layer.Default {
			def = "*"
		}
		rows = append(rows, []string{layer.Name(), fmt.Sprintf("%d", layer.Len()), def})
	}
	pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	if font.Groups != nil && font.Groups.Len() > 0 {
		pterm.Printfln("%d glyph group(s)", font.Groups.Len())
	}
	if font.Kerning != nil && font.Kerning.Len() > 0 {
		pterm.Printfln("%d kerning pair(s)", font.Kerning.Len())
	}
	if font.Features != "" {
		pterm.Printfln("%d bytes of feature code", len(font.Features))
	}
}

func printControlBox(font *ufo.Font, glyphname string) {
	layer := font.DefaultLayer()
	if _, ok := layer.Glyph(glyphname); !ok {
		pterm.Error.Printfln("no glyph '%s' on the default layer", glyphname)
		os.Exit(4)
	}
	box, ok := layer.ControlBox(glyphname)
	if !ok {
		pterm.Printfln("glyph '%s' has no outline points", glyphname)
		return
	}
	pterm.Printfln("control box of '%s': (%s, %s) … (%s, %s)", glyphname,
		ufoNum(box.MinX), ufoNum(box.MinY), ufoNum(box.MaxX), ufoNum(box.MaxY))
}

func traceLevel(name string) tracing.TraceLevel {
	switch name {
	case "Debug":
		return tracing.LevelDebug
	case "Error":
		return tracing.LevelError
	}
	return tracing.LevelInfo
}

func ufoNum(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
