// Command ply converts binary property lists to other representations.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/kr/pretty"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v2"

	"github.com/zdypro888/plist"
)

type options struct {
	Convert string `short:"c" long:"convert" description:"output representation" default:"xml" choice:"xml" choice:"binary" choice:"json" choice:"yaml" choice:"msgpack" choice:"pretty"`
	Output  string `short:"o" long:"out" description:"output file, stdout when empty"`
	Indent  string `short:"I" long:"indent" description:"indent for xml and json output, compact when empty"`
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("ply: ")

	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[OPTIONS] [FILE]"
	args, err := parser.Parse()
	if err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	var in io.Reader = os.Stdin
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		log.Fatal(err)
	}

	pval, err := plist.DecodeBinary(data)
	if err != nil {
		log.Fatalf("decoding: %v", err)
	}
	out, err := convert(pval, opts.Convert, opts.Indent)
	if err != nil {
		log.Fatalf("converting to %s: %v", opts.Convert, err)
	}

	if opts.Output == "" {
		_, err = os.Stdout.Write(out)
	} else {
		err = os.WriteFile(opts.Output, out, 0o644)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// convert renders pval in the named representation.
func convert(pval plist.Value, format, indent string) ([]byte, error) {
	switch format {
	case "xml":
		return plist.MarshalIndent(pval, plist.XMLFormat, indent)
	case "binary":
		return plist.EncodeBinary(pval)
	case "json":
		if indent == "" {
			return json.Marshal(plist.Interface(pval))
		}
		return json.MarshalIndent(plist.Interface(pval), "", indent)
	case "yaml":
		return yaml.Marshal(plist.Interface(pval))
	case "msgpack":
		return msgpack.Marshal(plist.Interface(pval))
	case "pretty":
		return []byte(pretty.Sprint(pval) + "\n"), nil
	}
	return nil, fmt.Errorf("unknown representation %q", format)
}
