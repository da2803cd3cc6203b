package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/yapp/lang"
)

// Output formats.
const (
	OutputNative = "native"
	OutputJSON   = "json"
	OutputYAML   = "yaml"
)

// Output selects how command results are written.
type Output struct {
	Output string `default:"native" enum:"native,json,yaml" help:"Output format (${enum})." short:"o"`
	Indent int    `default:"2"                              help:"Indent width of JSON and YAML output; 0 writes one line." short:"i"`
}

// writeValue writes v to w in the selected format.
func (o *Output) writeValue(w io.Writer, v lang.Value) error {
	switch o.Output {
	case OutputJSON:
		return o.writeJSON(w, v)

	case OutputYAML:
		return o.writeYAML(w, v)

	default:
		_, err := fmt.Fprintln(w, lang.FormatValue(v))

		return err
	}
}

// writeNames writes names to w in the selected format. The native format
// writes one name per line.
func (o *Output) writeNames(w io.Writer, names []string) error {
	if names == nil {
		names = []string{}
	}

	switch o.Output {
	case OutputJSON:
		return o.writeJSON(w, names)

	case OutputYAML:
		return o.writeYAML(w, names)

	default:
		if len(names) == 0 {
			return nil
		}

		_, err := fmt.Fprintln(w, strings.Join(names, "\n"))

		return err
	}
}

// writeProgram writes the postfix buffer of prog to w in the selected format.
func (o *Output) writeProgram(
	ctx context.Context,
	w io.Writer,
	prog *lang.Program,
) error {
	switch o.Output {
	case OutputJSON:
		return prog.FormatJSON(ctx, w, o.Indent)

	case OutputYAML:
		return prog.FormatYAML(ctx, w, o.Indent)

	default:
		return prog.Format(ctx, w)
	}
}

func (o *Output) writeJSON(w io.Writer, v any) error {
	var (
		data []byte
		err  error
	)

	if o.Indent > 0 {
		data, err = json.MarshalIndent(v, "", strings.Repeat(" ", o.Indent))
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return ErrJSONMarshal.Wrap(err)
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

func (o *Output) writeYAML(w io.Writer, v any) error {
	opts := []yaml.EncodeOption{yaml.Flow(true)}
	if o.Indent > 0 {
		opts = []yaml.EncodeOption{yaml.Indent(o.Indent)}
	}

	data, err := yaml.MarshalWithOptions(v, opts...)
	if err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	_, err = w.Write(data)

	return err
}
