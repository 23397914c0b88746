package main

import (
	"errors"
	"io"
	"strings"

	"github.com/itsatony/go-promptpick"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// cliIO holds the streams commands read from and write to
type cliIO struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func newRootCommand(cio *cliIO) *cobra.Command {
	root := &cobra.Command{
		Use:           CLIName,
		Short:         CLIDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(cio.stdin)
	root.SetOut(cio.stdout)
	root.SetErr(cio.stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err.Error(), nil)
	})

	pf := root.PersistentFlags()
	pf.String(FlagConfig, "", "config file (default: ./promptpick.yaml)")
	pf.String(FlagDocFormat, "", "document format: toml, yaml (default: from file extension)")
	pf.String(FlagLineSeparator, promptpick.DefaultLineSeparator, "separator between composed lines")
	pf.Int(FlagMaxDepth, promptpick.DefaultMaxDepth, "maximum ?? descent depth, 0 for unlimited")
	pf.StringSlice(FlagDirectiveKinds, nil, "directive kinds to extract (default: all)")
	pf.String(FlagLogLevel, DefaultLogLevel, "log level: debug, info, warn, error")
	pf.String(FlagStorageDriver, DefaultStorageDriver, "storage driver: "+strings.Join(promptpick.ListStorageDrivers(), ", "))
	pf.String(FlagStorageDSN, DefaultStorageDSN, "storage connection string or directory")

	root.AddCommand(
		newComposeCommand(cio),
		newPathsCommand(cio),
		newValidateCommand(cio),
		newWatchCommand(cio),
		newStoreCommand(cio),
		newVersionCommand(cio),
	)
	return root
}

// settings is the merged configuration: flags over PROMPTPICK_* env vars over
// the config file over defaults
type settings struct {
	docFormat      string
	seed           uint64
	lineSeparator  string
	maxDepth       int
	directiveKinds []string
	logLevel       string
	storageDriver  string
	storageDSN     string
}

var configFlagBindings = map[string]string{
	ConfigKeyFormat:         FlagDocFormat,
	ConfigKeySeed:           FlagSeed,
	ConfigKeyLineSeparator:  FlagLineSeparator,
	ConfigKeyMaxDepth:       FlagMaxDepth,
	ConfigKeyDirectiveKinds: FlagDirectiveKinds,
	ConfigKeyLogLevel:       FlagLogLevel,
	ConfigKeyStorageDriver:  FlagStorageDriver,
	ConfigKeyStorageDSN:     FlagStorageDSN,
}

func loadSettings(cmd *cobra.Command) (*settings, error) {
	v := viper.New()
	v.SetDefault(ConfigKeyFormat, "")
	v.SetDefault(ConfigKeySeed, 0)
	v.SetDefault(ConfigKeyLineSeparator, promptpick.DefaultLineSeparator)
	v.SetDefault(ConfigKeyMaxDepth, promptpick.DefaultMaxDepth)
	v.SetDefault(ConfigKeyDirectiveKinds, []string{})
	v.SetDefault(ConfigKeyLogLevel, DefaultLogLevel)
	v.SetDefault(ConfigKeyStorageDriver, DefaultStorageDriver)
	v.SetDefault(ConfigKeyStorageDSN, DefaultStorageDSN)

	v.SetEnvPrefix(ConfigEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	configPath, _ := cmd.Flags().GetString(FlagConfig)
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		v.SetConfigName(ConfigFileName)
		v.SetConfigType(ConfigFileType)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}

	for key, flag := range configFlagBindings {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}

	return &settings{
		docFormat:      v.GetString(ConfigKeyFormat),
		seed:           v.GetUint64(ConfigKeySeed),
		lineSeparator:  v.GetString(ConfigKeyLineSeparator),
		maxDepth:       v.GetInt(ConfigKeyMaxDepth),
		directiveKinds: v.GetStringSlice(ConfigKeyDirectiveKinds),
		logLevel:       v.GetString(ConfigKeyLogLevel),
		storageDriver:  v.GetString(ConfigKeyStorageDriver),
		storageDSN:     v.GetString(ConfigKeyStorageDSN),
	}, nil
}

// documentFormat picks the configured format, else the one the file name implies
func (s *settings) documentFormat(path string) (promptpick.Format, error) {
	if s.docFormat != "" {
		return promptpick.ParseFormat(s.docFormat)
	}
	if path == InputSourceStdin {
		return promptpick.DefaultFormat, nil
	}
	return promptpick.FormatFromFilename(path), nil
}

// newLogger writes human-readable logs at level to w
func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(w), lvl)
	return zap.New(core), nil
}

// session is everything a command needs after configuration is resolved
type session struct {
	io       *cliIO
	settings *settings
	logger   *zap.Logger
	engine   *promptpick.Engine
}

func newSession(cmd *cobra.Command, cio *cliIO) (*session, error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return nil, usageError(ErrMsgInvalidConfig, err)
	}
	logger, err := newLogger(s.logLevel, cio.stderr)
	if err != nil {
		return nil, usageError(ErrMsgInvalidLogLevel, err)
	}

	opts := []promptpick.Option{
		promptpick.WithMaxDepth(s.maxDepth),
		promptpick.WithLineSeparator(s.lineSeparator),
		promptpick.WithLogger(logger),
	}
	if len(s.directiveKinds) > 0 {
		opts = append(opts, promptpick.WithDirectiveKinds(s.directiveKinds...))
	}
	engine, err := promptpick.New(opts...)
	if err != nil {
		return nil, usageError(ErrMsgEngineFailed, err)
	}
	return &session{io: cio, settings: s, logger: logger, engine: engine}, nil
}

func (s *session) close() {
	_ = s.logger.Sync()
}

func checkOutputFormat(format string) error {
	if format != OutputFormatText && format != OutputFormatJSON {
		return usageError(ErrMsgInvalidFormat, errors.New(format))
	}
	return nil
}
