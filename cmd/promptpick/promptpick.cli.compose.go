package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/itsatony/go-promptpick"
	"github.com/spf13/cobra"
)

// composeConfig holds parsed compose command configuration
type composeConfig struct {
	docPath    string
	keys       keyFlags
	outputPath string
	format     string
}

func newComposeCommand(cio *cliIO) *cobra.Command {
	cfg := &composeConfig{}
	cmd := &cobra.Command{
		Use:   CmdNameCompose,
		Short: "Compose a prompt from a document and key lines",
		Example: `  promptpick compose -d prompts.toml --line "subject.?" --line "style.??" -s 42
  promptpick compose -d prompts.yaml -k keys.txt -F json
  cat prompts.toml | promptpick compose -d - -k keys.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCompose(cmd, cio, cfg)
		},
	}
	cmd.Flags().StringVarP(&cfg.docPath, FlagDocument, FlagDocumentShort, "", `document file (use "-" for stdin)`)
	cfg.keys.register(cmd)
	cmd.Flags().Uint64P(FlagSeed, FlagSeedShort, 0, "random seed")
	cmd.Flags().StringVarP(&cfg.outputPath, FlagOutput, FlagOutputShort, FlagDefaultOutput, "output file")
	cmd.Flags().StringVarP(&cfg.format, FlagFormat, FlagFormatShort, FlagDefaultFormat, "output format: text, json")
	return cmd
}

func runCompose(cmd *cobra.Command, cio *cliIO, cfg *composeConfig) error {
	if err := checkOutputFormat(cfg.format); err != nil {
		return err
	}
	if err := checkInputs(cfg.docPath, &cfg.keys, true); err != nil {
		return err
	}

	s, err := newSession(cmd, cio)
	if err != nil {
		return err
	}
	defer s.close()

	doc, err := s.loadDocument(cfg.docPath)
	if err != nil {
		return err
	}
	lines, err := cfg.keys.read(cio.stdin)
	if err != nil {
		return inputError(ErrMsgReadFileFailed, err)
	}

	comp, err := s.compose(cmd.Context(), doc, lines)
	if err != nil {
		return err
	}
	return s.writeComposition(cfg.outputPath, cfg.format, comp)
}

func (s *session) compose(ctx context.Context, doc *promptpick.Document, lines []string) (*promptpick.Composition, error) {
	comp, err := s.engine.ComposeDocument(ctx, doc, lines, s.settings.seed)
	if err != nil {
		if ctx.Err() != nil {
			return nil, commandError(ErrMsgComposeFailed, err)
		}
		return nil, validationError(ErrMsgComposeFailed, err)
	}
	return comp, nil
}

func (s *session) writeComposition(path, format string, comp *promptpick.Composition) error {
	var err error
	if format == OutputFormatJSON {
		err = writeJSON(path, comp, s.io.stdout)
	} else {
		err = writeOutput(path, []byte(comp.Text+FmtNewline), s.io.stdout)
	}
	if err != nil {
		return commandError(ErrMsgWriteOutputFailed, err)
	}
	return nil
}

// pathsConfig holds parsed paths command configuration
type pathsConfig struct {
	docPath string
	format  string
}

// pathsOutput represents JSON output for paths
type pathsOutput struct {
	Paths []string `json:"paths"`
}

func newPathsCommand(cio *cliIO) *cobra.Command {
	cfg := &pathsConfig{}
	cmd := &cobra.Command{
		Use:   CmdNamePaths,
		Short: "List the addressable key paths of a document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutputFormat(cfg.format); err != nil {
				return err
			}
			if cfg.docPath == "" {
				return usageError(ErrMsgMissingDocument, nil)
			}

			s, err := newSession(cmd, cio)
			if err != nil {
				return err
			}
			defer s.close()

			doc, err := s.loadDocument(cfg.docPath)
			if err != nil {
				return err
			}

			paths := doc.Paths()
			if paths == nil {
				paths = []string{}
			}
			if cfg.format == OutputFormatJSON {
				err = writeJSON(FlagDefaultOutput, pathsOutput{Paths: paths}, cio.stdout)
			} else if len(paths) > 0 {
				_, err = fmt.Fprintln(cio.stdout, strings.Join(paths, FmtNewline))
			}
			if err != nil {
				return commandError(ErrMsgWriteOutputFailed, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfg.docPath, FlagDocument, FlagDocumentShort, "", `document file (use "-" for stdin)`)
	cmd.Flags().StringVarP(&cfg.format, FlagFormat, FlagFormatShort, FlagDefaultFormat, "output format: text, json")
	return cmd
}
