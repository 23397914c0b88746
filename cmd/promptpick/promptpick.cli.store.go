package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/itsatony/go-promptpick"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// storeFlags are shared by the store subcommands
type storeFlags struct {
	name    string
	version int
	docPath string
	tags    []string
	prefix  string
	keys    keyFlags
	format  string
	output  string
}

func newStoreCommand(cio *cliIO) *cobra.Command {
	cmd := &cobra.Command{
		Use:   CmdNameStore,
		Short: "Manage versioned documents in a storage backend",
		Long: `Store saves, lists, composes and deletes documents held by a storage driver.
The driver and its connection string come from --storage-driver and
--storage-dsn (or storage_driver / storage_dsn in the config file).`,
		Example: `  promptpick store save -n portraits -d portraits.toml --tag art
  promptpick store compose -n portraits --line "subject.?" -s 3
  promptpick --storage-driver postgres --storage-dsn "$DSN" store list`,
	}
	cmd.AddCommand(
		newStoreSaveCommand(cio),
		newStoreListCommand(cio),
		newStoreVersionsCommand(cio),
		newStoreComposeCommand(cio),
		newStoreDeleteCommand(cio),
	)
	return cmd
}

// withStore opens the configured storage for the duration of fn
func withStore(cmd *cobra.Command, cio *cliIO, fn func(s *session, se *promptpick.StorageEngine) error) error {
	s, err := newSession(cmd, cio)
	if err != nil {
		return err
	}
	defer s.close()

	storage, err := promptpick.OpenStorage(s.settings.storageDriver, s.settings.storageDSN)
	if err != nil {
		return commandError(ErrMsgStorageFailed, err)
	}
	defer storage.Close()
	s.logger.Debug(LogMsgStoreOpened, zap.String(promptpick.LogFieldDriver, s.settings.storageDriver))

	se, err := promptpick.NewStorageEngine(promptpick.StorageEngineConfig{Storage: storage, Engine: s.engine})
	if err != nil {
		return commandError(ErrMsgStorageFailed, err)
	}
	return fn(s, se)
}

func isStorageError(err error) bool {
	var se *promptpick.StorageError
	return errors.As(err, &se)
}

// storageError maps a storage failure to its exit code
func storageError(err error) error {
	if promptpick.IsNotFound(err) {
		return inputError(ErrMsgStorageFailed, err)
	}
	return commandError(ErrMsgStorageFailed, err)
}

func requireName(f *storeFlags) error {
	if f.name == "" {
		return usageError(ErrMsgMissingName, nil)
	}
	return nil
}

func newStoreSaveCommand(cio *cliIO) *cobra.Command {
	f := &storeFlags{}
	cmd := &cobra.Command{
		Use:   CmdNameStoreSave,
		Short: "Save a document file as the next version of a name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutputFormat(f.format); err != nil {
				return err
			}
			if err := requireName(f); err != nil {
				return err
			}
			if f.docPath == "" {
				return usageError(ErrMsgMissingDocument, nil)
			}
			return withStore(cmd, cio, func(s *session, se *promptpick.StorageEngine) error {
				format, err := s.settings.documentFormat(f.docPath)
				if err != nil {
					return usageError(ErrMsgInvalidDocFormat, err)
				}
				source, err := readInput(f.docPath, cio.stdin)
				if err != nil {
					return inputError(ErrMsgReadFileFailed, err)
				}
				stored, err := se.Save(cmd.Context(), f.name, string(source), format, f.tags...)
				if err != nil {
					if isStorageError(err) {
						return storageError(err)
					}
					return validationError(ErrMsgParseDocumentFailed, err)
				}
				if f.format == OutputFormatJSON {
					return writeStoreJSON(stored, cio)
				}
				fmt.Fprintf(cio.stdout, StoreTextSaved+FmtNewline, stored.Name, stored.Version, shortHash(stored.Hash))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&f.name, FlagName, FlagNameShort, "", "document name")
	cmd.Flags().StringVarP(&f.docPath, FlagDocument, FlagDocumentShort, "", `document file (use "-" for stdin)`)
	cmd.Flags().StringArrayVar(&f.tags, FlagTag, nil, "tag (repeatable)")
	cmd.Flags().StringVarP(&f.format, FlagFormat, FlagFormatShort, FlagDefaultFormat, "output format: text, json")
	return cmd
}

func newStoreListCommand(cio *cliIO) *cobra.Command {
	f := &storeFlags{}
	cmd := &cobra.Command{
		Use:   CmdNameStoreList,
		Short: "List stored documents, latest version of each",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutputFormat(f.format); err != nil {
				return err
			}
			return withStore(cmd, cio, func(s *session, se *promptpick.StorageEngine) error {
				docs, err := se.Storage().List(cmd.Context(), &promptpick.DocumentQuery{NamePrefix: f.prefix, Tags: f.tags})
				if err != nil {
					return storageError(err)
				}
				if f.format == OutputFormatJSON {
					return writeStoreJSON(docs, cio)
				}
				for _, d := range docs {
					fmt.Fprintf(cio.stdout, StoreTextEntry+FmtNewline, d.Name, d.Version, d.Format, strings.Join(d.Tags, ","))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&f.prefix, FlagPrefix, "", "only names with this prefix")
	cmd.Flags().StringArrayVar(&f.tags, FlagTag, nil, "only documents with this tag (repeatable)")
	cmd.Flags().StringVarP(&f.format, FlagFormat, FlagFormatShort, FlagDefaultFormat, "output format: text, json")
	return cmd
}

func newStoreVersionsCommand(cio *cliIO) *cobra.Command {
	f := &storeFlags{}
	cmd := &cobra.Command{
		Use:   CmdNameStoreVersions,
		Short: "List the versions of a stored document, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutputFormat(f.format); err != nil {
				return err
			}
			if err := requireName(f); err != nil {
				return err
			}
			return withStore(cmd, cio, func(s *session, se *promptpick.StorageEngine) error {
				versions, err := se.Storage().ListVersions(cmd.Context(), f.name)
				if err != nil {
					return storageError(err)
				}
				if len(versions) == 0 {
					return storageError(promptpick.NewStorageDocumentNotFoundError(f.name))
				}
				if f.format == OutputFormatJSON {
					return writeStoreJSON(versions, cio)
				}
				for _, v := range versions {
					fmt.Fprintln(cio.stdout, v)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&f.name, FlagName, FlagNameShort, "", "document name")
	cmd.Flags().StringVarP(&f.format, FlagFormat, FlagFormatShort, FlagDefaultFormat, "output format: text, json")
	return cmd
}

func newStoreComposeCommand(cio *cliIO) *cobra.Command {
	f := &storeFlags{}
	cmd := &cobra.Command{
		Use:   CmdNameStoreCompose,
		Short: "Compose key lines against a stored document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutputFormat(f.format); err != nil {
				return err
			}
			if err := requireName(f); err != nil {
				return err
			}
			if f.keys.empty() {
				return usageError(ErrMsgMissingKeys, nil)
			}
			return withStore(cmd, cio, func(s *session, se *promptpick.StorageEngine) error {
				lines, err := f.keys.read(cio.stdin)
				if err != nil {
					return inputError(ErrMsgReadFileFailed, err)
				}

				var doc *promptpick.Document
				if f.version > 0 {
					doc, err = se.LoadVersion(cmd.Context(), f.name, f.version)
				} else {
					doc, err = se.Load(cmd.Context(), f.name)
				}
				if err != nil {
					if isStorageError(err) {
						return storageError(err)
					}
					return validationError(ErrMsgParseDocumentFailed, err)
				}

				comp, err := s.compose(cmd.Context(), doc, lines)
				if err != nil {
					return err
				}
				return s.writeComposition(f.output, f.format, comp)
			})
		},
	}
	cmd.Flags().StringVarP(&f.name, FlagName, FlagNameShort, "", "document name")
	cmd.Flags().IntVar(&f.version, FlagVersion, 0, "document version (default: latest)")
	f.keys.register(cmd)
	cmd.Flags().Uint64P(FlagSeed, FlagSeedShort, 0, "random seed")
	cmd.Flags().StringVarP(&f.output, FlagOutput, FlagOutputShort, FlagDefaultOutput, "output file")
	cmd.Flags().StringVarP(&f.format, FlagFormat, FlagFormatShort, FlagDefaultFormat, "output format: text, json")
	return cmd
}

func newStoreDeleteCommand(cio *cliIO) *cobra.Command {
	f := &storeFlags{}
	cmd := &cobra.Command{
		Use:   CmdNameStoreDelete,
		Short: "Delete a stored document or one of its versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireName(f); err != nil {
				return err
			}
			return withStore(cmd, cio, func(s *session, se *promptpick.StorageEngine) error {
				target := f.name
				var err error
				if f.version > 0 {
					err = se.Storage().DeleteVersion(cmd.Context(), f.name, f.version)
					target = fmt.Sprintf("%s v%d", f.name, f.version)
				} else {
					err = se.Storage().Delete(cmd.Context(), f.name)
				}
				if err != nil {
					return storageError(err)
				}
				fmt.Fprintf(cio.stdout, StoreTextDeleted+FmtNewline, target)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&f.name, FlagName, FlagNameShort, "", "document name")
	cmd.Flags().IntVar(&f.version, FlagVersion, 0, "delete only this version")
	return cmd
}

func writeStoreJSON(v any, cio *cliIO) error {
	if err := writeJSON(FlagDefaultOutput, v, cio.stdout); err != nil {
		return commandError(ErrMsgWriteOutputFailed, err)
	}
	return nil
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
