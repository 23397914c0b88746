package main

import (
	"fmt"

	"github.com/itsatony/go-promptpick"
	"github.com/spf13/cobra"
)

// validateConfig holds parsed validate command configuration
type validateConfig struct {
	docPath string
	keys    keyFlags
	format  string
	strict  bool
}

// validationOutput represents JSON output for validation
type validationOutput struct {
	Valid       bool                    `json:"valid"`
	Error       string                  `json:"error,omitempty"`
	Diagnostics []promptpick.Diagnostic `json:"diagnostics"`
}

func newValidateCommand(cio *cliIO) *cobra.Command {
	cfg := &validateConfig{}
	cmd := &cobra.Command{
		Use:   CmdNameValidate,
		Short: "Check a document, and optionally key lines, for problems",
		Long: `Validate parses the document and reports values that will never be used and
placeholders with no variable table. With --keys or --line the lines are also
composed and any unresolved paths are reported. With --strict any diagnostic
fails validation.`,
		Example: `  promptpick validate -d prompts.toml
  promptpick validate -d prompts.toml -k keys.txt --strict -F json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd, cio, cfg)
		},
	}
	cmd.Flags().StringVarP(&cfg.docPath, FlagDocument, FlagDocumentShort, "", `document file (use "-" for stdin)`)
	cfg.keys.register(cmd)
	cmd.Flags().Uint64P(FlagSeed, FlagSeedShort, 0, "random seed for composing key lines")
	cmd.Flags().StringVarP(&cfg.format, FlagFormat, FlagFormatShort, FlagDefaultFormat, "output format: text, json")
	cmd.Flags().BoolVar(&cfg.strict, FlagStrictMode, false, "treat diagnostics as errors")
	return cmd
}

func runValidate(cmd *cobra.Command, cio *cliIO, cfg *validateConfig) error {
	if err := checkOutputFormat(cfg.format); err != nil {
		return err
	}
	if err := checkInputs(cfg.docPath, &cfg.keys, false); err != nil {
		return err
	}

	s, err := newSession(cmd, cio)
	if err != nil {
		return err
	}
	defer s.close()

	diags, err := s.validate(cmd, cfg)
	if err != nil {
		if cfg.format == OutputFormatJSON {
			if ce, ok := err.(*cliError); ok && ce.code == ExitCodeValidationError {
				_ = writeJSON(FlagDefaultOutput, validationOutput{Error: ce.Error(), Diagnostics: []promptpick.Diagnostic{}}, cio.stdout)
				return silentExit(ce.code)
			}
		}
		return err
	}

	valid := !cfg.strict || len(diags) == 0
	if cfg.format == OutputFormatJSON {
		if err := writeJSON(FlagDefaultOutput, validationOutput{Valid: valid, Diagnostics: diags}, cio.stdout); err != nil {
			return commandError(ErrMsgWriteOutputFailed, err)
		}
	} else {
		outputValidationText(diags, cio)
	}

	if !valid {
		if cfg.format == OutputFormatJSON {
			return silentExit(ExitCodeValidationError)
		}
		return validationError(ErrMsgValidationFailed, nil)
	}
	return nil
}

// validate collects document diagnostics, then those from composing the key lines
func (s *session) validate(cmd *cobra.Command, cfg *validateConfig) ([]promptpick.Diagnostic, error) {
	doc, err := s.loadDocument(cfg.docPath)
	if err != nil {
		return nil, err
	}
	diags := doc.Lint()
	if diags == nil {
		diags = []promptpick.Diagnostic{}
	}
	if cfg.keys.empty() {
		return diags, nil
	}

	lines, err := cfg.keys.read(s.io.stdin)
	if err != nil {
		return nil, inputError(ErrMsgReadFileFailed, err)
	}
	comp, err := s.compose(cmd.Context(), doc, lines)
	if err != nil {
		return nil, err
	}
	return append(diags, comp.Diagnostics...), nil
}

func outputValidationText(diags []promptpick.Diagnostic, cio *cliIO) {
	if len(diags) == 0 {
		fmt.Fprintln(cio.stdout, ValidationTextSuccess)
		return
	}

	fmt.Fprintln(cio.stdout, ValidationTextIssueHeader)
	for _, d := range diags {
		fmt.Fprintf(cio.stdout, ValidationTextIssueFormat+FmtNewline, d.String())
	}
	fmt.Fprintf(cio.stdout, ValidationTextSummary+FmtNewline, len(diags))
}
