/*
A CLI tool that reads JSON ABI definitions, as produced by a Solidity compiler,
and outputs them as *.go code.

Example usage:

	go run ./gen_abi -help
	go run ./gen_abi -pkg gateway -out gateway/abi_gen.go Erc20=abi/erc20.json

To use with "go generate", include a "go:generate" comment in your source code:

	//go:generate go run ../gen_abi -pkg gateway -out abi_gen.go Erc20=../abi/erc20.json

For each "Name=path" spec, the generated file contains the JSON definition as a
string constant "NameAbiJson", and a variable "NameAbi" parsed from it on
startup. Definitions are validated at generation time, so parsing them at
startup can't fail.
*/
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"go/format"
	"os"
	"regexp"
	"sort"
	"strings"
	"text/template"

	"github.com/pkg/errors"
	"github.com/purelabio/ethgate/eth"
)

var (
	flagOut = flag.String("out", "", "output path for the generated Go file (required)")
	flagPkg = flag.String("pkg", "main", "package name for the generated code")
)

var codeTemplate = template.Must(template.New("").Parse(`
{{range .}}

const {{.Name}}AbiJson = ` + "`" + `{{.Json}}` + "`" + `

var {{.Name}}Abi = eth.MustParseAbiJson({{.Name}}AbiJson)

{{end}}
`))

var nameReg = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)

type abiDef struct {
	Name string
	Path string
	Json string
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(flag.CommandLine.Output(), "%v\n", err)
		os.Exit(1)
	}
}

func run() error {
	execName := os.Args[0]

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), `Usage of %v:

	%v <flags> <specs ...>

Specs must have the form "Name=filePath". Examples:

	%v -out=abi_gen.go Erc20=abi/erc20.json
	%v -out=abi_gen.go -pkg=gateway A=abi/a.json B=abi/b.json

`, execName, execName, execName, execName)
		flag.PrintDefaults()
		flag.CommandLine.Output().Write([]byte("\n"))
	}

	flag.Parse()

	if *flagOut == "" {
		return errors.New(`must specify "-out": output path for the generated Go file`)
	}

	specs := flag.Args()
	if len(specs) == 0 {
		return errors.New(`must specify at least one ABI, in the form "<Name>=<filePath>"`)
	}

	defs, err := readDefs(specs)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString("// Code generated by gen_abi. DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "package %v\n", *flagPkg)
	buf.WriteString(`import "github.com/purelabio/ethgate/eth"` + "\n")

	err = codeTemplate.Execute(&buf, defs)
	if err != nil {
		return errors.WithStack(err)
	}

	source, err := format.Source(buf.Bytes())
	if err != nil {
		return errors.Wrap(err, "failed to format the generated code")
	}

	const readWriteMode = os.FileMode(0644)
	err = os.WriteFile(*flagOut, source, readWriteMode)
	if err != nil {
		return errors.Wrapf(err, "failed to write %q", *flagOut)
	}
	return nil
}

func readDefs(specs []string) ([]abiDef, error) {
	var defs []abiDef
	seen := map[string]bool{}

	for _, spec := range specs {
		name, path, ok := strings.Cut(spec, "=")
		if !ok || path == "" {
			return nil, errors.Errorf(`ABI specs must have the form "<Name>=<filePath>", got %q`, spec)
		}
		if !nameReg.MatchString(name) {
			return nil, errors.Errorf(`ABI name must be an exported Go identifier, got %q`, name)
		}
		if seen[name] {
			return nil, errors.Errorf(`duplicate ABI name %q`, name)
		}
		seen[name] = true

		input, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %q", path)
		}

		var abi eth.Abi
		err = abi.UnmarshalJSON(input)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to decode ABI definition %q", path)
		}
		if len(abi) == 0 {
			return nil, errors.Errorf("ABI definition %q has no functions", path)
		}

		pretty, err := prettyJson(input)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to decode ABI definition %q", path)
		}
		if strings.Contains(pretty, "`") {
			return nil, errors.Errorf("ABI definition %q contains a backtick", path)
		}

		defs = append(defs, abiDef{Name: name, Path: path, Json: pretty})
	}

	sort.Slice(defs, func(a, b int) bool {
		return defs[a].Name < defs[b].Name
	})
	return defs, nil
}

func prettyJson(input []byte) (string, error) {
	var val interface{}
	err := json.Unmarshal(input, &val)
	if err != nil {
		return "", errors.WithStack(err)
	}
	pretty, err := json.MarshalIndent(val, "", "\t")
	return string(pretty), errors.WithStack(err)
}
