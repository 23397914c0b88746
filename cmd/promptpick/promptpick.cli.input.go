package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/itsatony/go-promptpick"
	"github.com/spf13/cobra"
)

// readInput reads content from a file or stdin
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == InputSourceStdin {
		return io.ReadAll(stdin)
	}

	return os.ReadFile(path)
}

// writeOutput writes content to a file or stdout
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == FlagDefaultOutput || path == "" {
		_, err := stdout.Write(data)
		return err
	}

	return os.WriteFile(path, data, FilePermissions)
}

// writeJSON writes v as indented JSON followed by a newline
func writeJSON(path string, v any, stdout io.Writer) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeOutput(path, append(data, '\n'), stdout)
}

// keyFlags are the flags naming the key lines to compose
type keyFlags struct {
	keysPath string
	lines    []string
}

func (k *keyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&k.keysPath, FlagKeys, FlagKeysShort, "", `key lines file (use "-" for stdin)`)
	cmd.Flags().StringArrayVar(&k.lines, FlagLine, nil, "key line (repeatable)")
}

func (k *keyFlags) empty() bool {
	return k.keysPath == "" && len(k.lines) == 0
}

// read returns the lines of the keys file followed by every --line value
func (k *keyFlags) read(stdin io.Reader) ([]string, error) {
	var lines []string
	if k.keysPath != "" {
		data, err := readInput(k.keysPath, stdin)
		if err != nil {
			return nil, err
		}
		lines = promptpick.SplitLines(string(data))
	}
	return append(lines, k.lines...), nil
}

// checkInputs rejects flag combinations before any input is read
func checkInputs(docPath string, keys *keyFlags, needKeys bool) error {
	if docPath == "" {
		return usageError(ErrMsgMissingDocument, nil)
	}
	if needKeys && keys.empty() {
		return usageError(ErrMsgMissingKeys, nil)
	}
	if docPath == InputSourceStdin && keys.keysPath == InputSourceStdin {
		return usageError(ErrMsgDoubleStdin, nil)
	}
	return nil
}

// loadDocument reads and parses the document at path
func (s *session) loadDocument(path string) (*promptpick.Document, error) {
	format, err := s.settings.documentFormat(path)
	if err != nil {
		return nil, usageError(ErrMsgInvalidDocFormat, err)
	}
	source, err := readInput(path, s.io.stdin)
	if err != nil {
		return nil, inputError(ErrMsgReadFileFailed, err)
	}
	doc, err := s.engine.ParseAs(string(source), format)
	if err != nil {
		return nil, validationError(ErrMsgParseDocumentFailed, err)
	}
	return doc, nil
}
