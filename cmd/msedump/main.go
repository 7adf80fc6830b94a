// Command msedump inspects a set/card data file: it walks the whole
// document, prints its structure as JSON, and surfaces the reader's
// aggregated warnings.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/fatih/color"

	mse "github.com/dstathis/MagicSetEditor2"
)

func main() {
	log.SetFlags(0)

	var (
		lenient    bool
		quiet      bool
		textBlocks bool
		appVersion string
	)
	flag.BoolVar(&lenient, "lenient", false, "best-effort reading: suppress formatting warnings and skip unrecognized content")
	flag.BoolVar(&quiet, "quiet", false, "do not print warnings")
	flag.BoolVar(&textBlocks, "text-blocks", false, "read keys with empty inline values as multi-line text instead of nested blocks")
	flag.StringVar(&appVersion, "app-version", "2.0.0", "format version to read the file as")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: msedump [flags] <file>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	path := flag.Arg(0)

	ver, err := mse.ParseVersion(appVersion)
	if err != nil {
		log.Fatalf("bad -app-version: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	r, err := mse.NewReader(f,
		mse.WithFilename(path),
		mse.WithAppVersion(ver),
		mse.WithIgnoreInvalid(lenient),
	)
	if err != nil {
		fatal(err)
	}

	doc, err := walk(r, textBlocks)
	if err != nil {
		fatal(err)
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(out))

	if !quiet {
		if msg := r.ShowWarnings(); msg != "" {
			color.New(color.FgYellow).Fprintln(os.Stderr, msg)
		}
	}
	fmt.Fprintf(os.Stderr, "file version: %s\n", r.FileVersion())
}

func fatal(err error) {
	color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, err)
	os.Exit(1)
}

// walk reads every key at the current nesting level. A key with an inline
// value is a scalar; a key without one is either a nested block or a
// multi-line text value, chosen by the textBlocks flag since the format
// does not distinguish the two without a schema. Repeated keys collect
// into a list.
func walk(r *mse.Reader, textBlocks bool) (map[string]any, error) {
	out := map[string]any{}
	for r.EnterAnyBlock() {
		key := r.Key()
		var node any
		if r.Value() != "" || textBlocks {
			v, err := r.GetValue()
			if err != nil {
				return nil, err
			}
			node = v
		} else {
			child, err := walk(r, textBlocks)
			if err != nil {
				return nil, err
			}
			if len(child) > 0 {
				node = child
			} else {
				node = ""
			}
		}
		if err := r.ExitBlock(); err != nil {
			return nil, err
		}
		switch prev := out[key].(type) {
		case nil:
			out[key] = node
		case []any:
			out[key] = append(prev, node)
		default:
			out[key] = []any{prev, node}
		}
	}
	return out, r.Err()
}
