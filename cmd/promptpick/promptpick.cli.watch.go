package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/itsatony/go-promptpick"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// watchConfig holds parsed watch command configuration
type watchConfig struct {
	docPath  string
	keys     keyFlags
	format   string
	debounce time.Duration
}

func newWatchCommand(cio *cliIO) *cobra.Command {
	cfg := &watchConfig{}
	cmd := &cobra.Command{
		Use:   CmdNameWatch,
		Short: "Recompose whenever the document or keys file changes",
		Long: `Watch composes once, then again after every change to the document or the
keys file, writing each composition to stdout. Failures are reported and
watching continues. Stops on interrupt.`,
		Example: `  promptpick watch -d prompts.toml -k keys.txt -s 7`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, cio, cfg)
		},
	}
	cmd.Flags().StringVarP(&cfg.docPath, FlagDocument, FlagDocumentShort, "", "document file")
	cfg.keys.register(cmd)
	cmd.Flags().Uint64P(FlagSeed, FlagSeedShort, 0, "random seed")
	cmd.Flags().StringVarP(&cfg.format, FlagFormat, FlagFormatShort, FlagDefaultFormat, "output format: text, json")
	cmd.Flags().DurationVar(&cfg.debounce, FlagDebounce, promptpick.DefaultWatchDebounce, "quiet period before recomposing")
	return cmd
}

func runWatch(cmd *cobra.Command, cio *cliIO, cfg *watchConfig) error {
	if err := checkOutputFormat(cfg.format); err != nil {
		return err
	}
	if err := checkInputs(cfg.docPath, &cfg.keys, true); err != nil {
		return err
	}
	if cfg.docPath == InputSourceStdin || cfg.keys.keysPath == InputSourceStdin {
		return usageError(ErrMsgWatchStdin, nil)
	}

	s, err := newSession(cmd, cio)
	if err != nil {
		return err
	}
	defer s.close()

	w, err := promptpick.NewFileWatcher(cfg.debounce, s.logger)
	if err != nil {
		return commandError(ErrMsgWatchFailed, err)
	}
	defer w.Close()

	if err := w.Add(cfg.docPath); err != nil {
		return inputError(ErrMsgReadFileFailed, err)
	}
	if cfg.keys.keysPath != "" {
		if err := w.Add(cfg.keys.keysPath); err != nil {
			return inputError(ErrMsgReadFileFailed, err)
		}
	}

	ctx := cmd.Context()
	var mu sync.Mutex
	recompose := func() {
		mu.Lock()
		defer mu.Unlock()
		if err := s.recompose(ctx, cfg); err != nil {
			fmt.Fprintln(cio.stderr, err)
		}
	}

	recompose()
	err = w.Run(ctx, func(path string) error {
		s.logger.Debug(LogMsgWatchChange, zap.String(promptpick.LogFieldFile, path))
		recompose()
		return nil
	})
	if err != nil && !isCancelled(err) {
		return commandError(ErrMsgWatchFailed, err)
	}
	return nil
}

func (s *session) recompose(ctx context.Context, cfg *watchConfig) error {
	doc, err := s.loadDocument(cfg.docPath)
	if err != nil {
		return err
	}
	lines, err := cfg.keys.read(s.io.stdin)
	if err != nil {
		return inputError(ErrMsgReadFileFailed, err)
	}
	comp, err := s.compose(ctx, doc, lines)
	if err != nil {
		return err
	}
	return s.writeComposition(FlagDefaultOutput, cfg.format, comp)
}

// isCancelled reports whether err ended a long-running command on purpose
func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
