package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/reoring/skematree"
	"github.com/reoring/skematree/declyaml"
	"github.com/reoring/skematree/source/gojson"
	stdjson "github.com/reoring/skematree/source/json"
)

// errIssuesFound makes the process exit 1 without an extra error line.
var errIssuesFound = errors.New("issues found")

type options struct {
	schema   string
	driver   string
	dupKeys  string
	maxDepth int
	verbose  bool

	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:   "skematree",
		Short: "Validate and normalise JSON documents against schema declarations",
		Long: `skematree builds a typed node tree from a JSON (or YAML) document using a
schema declared in YAML, then reports problems or re-serializes it.

Examples:
  skematree check -s user.yaml user.json
  skematree fmt -s user.yaml --pretty user.json
  skematree jsonschema -s user.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := zerolog.WarnLevel
			if o.verbose {
				level = zerolog.DebugLevel
			}
			o.log = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: true}).
				Level(level).With().Timestamp().Logger()
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&o.schema, "schema", "s", "", "schema declaration file (YAML)")
	pf.StringVar(&o.driver, "driver", "gojson", "JSON tokenizer: gojson or json")
	pf.StringVar(&o.dupKeys, "duplicate-keys", "warn", "duplicate object keys: ignore, warn or error")
	pf.IntVar(&o.maxDepth, "max-depth", 0, "maximum nesting depth (0 = unlimited)")
	pf.BoolVarP(&o.verbose, "verbose", "v", false, "log debug diagnostics")
	_ = root.MarkPersistentFlagRequired("schema")

	root.AddCommand(newCheckCmd(o), newFmtCmd(o), newJSONSchemaCmd(o))
	return root
}

func (o *options) template() (*skematree.Template, error) {
	data, err := os.ReadFile(o.schema)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(o.schema), filepath.Ext(o.schema))
	tpl, err := declyaml.Compile(data, declyaml.Funcs{}, skematree.WithLogger(o.log), skematree.WithName(name))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", o.schema, err)
	}
	o.log.Debug().Str("schema", o.schema).Str("kind", tpl.Kind().String()).Msg("schema compiled")
	return tpl, nil
}

func (o *options) decodeOpt() (skematree.DecodeOpt, error) {
	opt := skematree.DecodeOpt{MaxDepth: o.maxDepth}
	switch o.driver {
	case "gojson":
		opt.Driver = gojson.Driver{}
	case "json":
		opt.Driver = stdjson.Driver{}
	default:
		return opt, fmt.Errorf("unknown driver %q", o.driver)
	}
	switch o.dupKeys {
	case "ignore":
		opt.OnDuplicateKey = skematree.Ignore
	case "warn":
		opt.OnDuplicateKey = skematree.Warn
	case "error":
		opt.OnDuplicateKey = skematree.Error
	default:
		return opt, fmt.Errorf("unknown duplicate-keys policy %q", o.dupKeys)
	}
	return opt, nil
}

// parse reads the document named by path ("-" for stdin) and builds its
// tree. Files ending in .yaml or .yml are read as YAML.
func (o *options) parse(cmd *cobra.Command, path string) (skematree.Node, skematree.Issues, error) {
	tpl, err := o.template()
	if err != nil {
		return nil, nil, err
	}
	opt, err := o.decodeOpt()
	if err != nil {
		return nil, nil, err
	}

	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, err
		}
		defer f.Close()
		r = f
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, nil, err
		}
		v, err := skematree.DecodeYAML(data)
		if err != nil {
			return nil, nil, err
		}
		return tpl.Create(v), nil, nil
	}
	v, warnings, err := skematree.DecodeReader(r, opt)
	if err != nil {
		return nil, warnings, err
	}
	return tpl.Create(v), warnings, nil
}

func docArg(args []string) string {
	if len(args) == 0 {
		return "-"
	}
	return args[0]
}
