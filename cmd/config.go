package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	m "amalgam.dev/pkg/amalgam/internal/model"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "amalgam"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	configFlagName   = "config"
	verboseFlagName  = "verbose"
	logFileFlagName  = "log-file"
	parallelFlagName = "parallel"
	manifestFlagName = "manifest"
	diffFlagName     = "diff"

	bannerTextKey            = "banner.text"
	bannerFileKey            = "banner.file"
	bannerPrefixKey          = "banner.prefix"
	localIncludeKey          = "directives.local_include"
	guardKey                 = "directives.guard"
	interfaceOutputKey       = "interface.output"
	interfaceFilesKey        = "interface.files"
	implementationOutputKey  = "implementation.output"
	implementationFilesKey   = "implementation.files"
	implementationIncludeKey = "implementation.include"
	buildParallelKey         = "build.parallel"
	buildManifestKey         = "build.manifest"

	defaultBuildParallel = 2

	envPrefix = "AMALGAM"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".amalgam.log"
	defaultLogLevel      = "info"
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var errMissingOutput = errors.New("output path is required")

var globalLogger *slog.Logger

func init() {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	defaults := m.DefaultMarkers()

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(bannerTextKey, "")
	viper.SetDefault(bannerFileKey, "")
	viper.SetDefault(bannerPrefixKey, defaults.BannerPrefix)
	viper.SetDefault(localIncludeKey, defaults.LocalInclude)
	viper.SetDefault(guardKey, defaults.Guard)
	viper.SetDefault(interfaceOutputKey, "")
	viper.SetDefault(interfaceFilesKey, []string{})
	viper.SetDefault(implementationOutputKey, "")
	viper.SetDefault(implementationFilesKey, []string{})
	viper.SetDefault(implementationIncludeKey, "")
	viper.SetDefault(buildParallelKey, defaultBuildParallel)
	viper.SetDefault(buildManifestKey, "")

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)
}

// loadConfig reads the config file at path, or the default amalgam.yaml when
// path is empty. Only an explicitly requested file must exist.
func loadConfig(path string) error {
	explicit := path != ""
	if !explicit {
		path = filepath.Join(configFolderPath, configFileName)
	}

	viper.SetConfigFile(path)

	if err := viper.ReadInConfig(); err != nil {
		if !explicit && isNotExist(err) {
			slog.Debug("no config file found", "path", path)
			return nil
		}

		return fmt.Errorf("read config %s: %w", path, err)
	}

	return nil
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError

	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at Info; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}

// loadPlan assembles the amalgamation plan from the resolved configuration.
func loadPlan(ctx context.Context) (m.Plan, error) {
	interfaceOutput := viper.GetString(interfaceOutputKey)
	if interfaceOutput == "" {
		return m.Plan{}, fmt.Errorf("%s: %w", interfaceOutputKey, errMissingOutput)
	}

	implementationOutput := viper.GetString(implementationOutputKey)
	if implementationOutput == "" {
		return m.Plan{}, fmt.Errorf("%s: %w", implementationOutputKey, errMissingOutput)
	}

	banner, err := loadBanner(ctx)
	if err != nil {
		return m.Plan{}, err
	}

	include := viper.GetString(implementationIncludeKey)
	if include == "" {
		include = filepath.Base(interfaceOutput)
	}

	plan := m.Plan{
		Banner: banner,
		Markers: m.Markers{
			BannerPrefix: viper.GetString(bannerPrefixKey),
			LocalInclude: viper.GetString(localIncludeKey),
			Guard:        viper.GetString(guardKey),
		},
		Interface: m.Target{
			Kind:   m.PassInterface,
			Output: m.Path(interfaceOutput),
			Files:  parsePaths(viper.GetStringSlice(interfaceFilesKey)),
		},
		Implementation: m.Target{
			Kind:    m.PassImplementation,
			Output:  m.Path(implementationOutput),
			Files:   parsePaths(viper.GetStringSlice(implementationFilesKey)),
			Include: include,
		},
	}

	slog.Debug("loaded plan",
		"interface", plan.Interface.Output,
		"interface_files", len(plan.Interface.Files),
		"implementation", plan.Implementation.Output,
		"implementation_files", len(plan.Implementation.Files),
		"include", include,
	)

	return plan, nil
}

// loadBanner returns the banner file content when banner.file is set and
// banner.text otherwise. Both are used verbatim.
func loadBanner(ctx context.Context) (string, error) {
	path := viper.GetString(bannerFileKey)
	if path == "" {
		return viper.GetString(bannerTextKey), nil
	}

	content, err := fsAdapter.ReadFile(ctx, m.Path(path))
	if err != nil {
		return "", fmt.Errorf("%s: %w", bannerFileKey, err)
	}

	return string(content), nil
}
