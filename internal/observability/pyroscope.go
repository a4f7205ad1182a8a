package observability

import (
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/grafana/pyroscope-go"
	"github.com/riskibarqy/football-sync/internal/config"
	"github.com/riskibarqy/football-sync/internal/platform/logging"
)

// Sampling rates applied when mutex or block profiles are requested; the Go
// runtime records neither by default.
const (
	mutexProfileFraction = 5
	blockProfileRate     = 5
)

var allProfileTypes = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocObjects,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileInuseObjects,
	pyroscope.ProfileInuseSpace,
	pyroscope.ProfileGoroutines,
	pyroscope.ProfileMutexCount,
	pyroscope.ProfileMutexDuration,
	pyroscope.ProfileBlockCount,
	pyroscope.ProfileBlockDuration,
}

// InitPyroscope starts continuous profiling when enabled.
func InitPyroscope(cfg config.Config, logger *logging.Logger) (func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	if !cfg.PyroscopeEnabled {
		logger.Info("pyroscope disabled", "reason", "PYROSCOPE_ENABLED=false")
		return func() error { return nil }, nil
	}

	pcfg, err := pyroscopeConfig(cfg, logger.Named("pyroscope"))
	if err != nil {
		return nil, err
	}
	enableContentionProfiling(pcfg.ProfileTypes)

	profiler, err := pyroscope.Start(pcfg)
	if err != nil {
		return nil, fmt.Errorf("start pyroscope: %w", err)
	}

	logger.Info("pyroscope enabled",
		"server_address", pcfg.ServerAddress,
		"application", pcfg.ApplicationName,
		"profiles", len(pcfg.ProfileTypes),
		"basic_auth", pcfg.BasicAuthUser != "",
	)

	return profiler.Stop, nil
}

func pyroscopeConfig(cfg config.Config, logger *logging.Logger) (pyroscope.Config, error) {
	profiles, err := parseProfileTypes(cfg.PyroscopeProfileTypes)
	if err != nil {
		return pyroscope.Config{}, err
	}

	return pyroscope.Config{
		ApplicationName:   cfg.PyroscopeAppName,
		ServerAddress:     cfg.PyroscopeServerAddress,
		AuthToken:         cfg.PyroscopeAuthToken,
		BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
		BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
		UploadRate:        cfg.PyroscopeUploadRate,
		Logger:            pyroscopeLogAdapter{logger: logger},
		Tags: map[string]string{
			"env":          cfg.AppEnv,
			"service":      cfg.ServiceName,
			"version":      cfg.ServiceVersion,
			"store_driver": cfg.StoreDriver,
		},
		ProfileTypes: profiles,
	}, nil
}

// parseProfileTypes maps names such as "cpu" or "inuse_space" onto profile
// types. No names selects every type.
func parseProfileTypes(names []string) ([]pyroscope.ProfileType, error) {
	if len(names) == 0 {
		return slices.Clone(allProfileTypes), nil
	}

	out := make([]pyroscope.ProfileType, 0, len(names))
	for _, name := range names {
		profile := pyroscope.ProfileType(strings.ToLower(strings.TrimSpace(name)))
		if !slices.Contains(allProfileTypes, profile) {
			return nil, fmt.Errorf("unknown pyroscope profile type %q", name)
		}
		if !slices.Contains(out, profile) {
			out = append(out, profile)
		}
	}
	return out, nil
}

func enableContentionProfiling(profiles []pyroscope.ProfileType) {
	if slices.Contains(profiles, pyroscope.ProfileMutexCount) || slices.Contains(profiles, pyroscope.ProfileMutexDuration) {
		runtime.SetMutexProfileFraction(mutexProfileFraction)
	}
	if slices.Contains(profiles, pyroscope.ProfileBlockCount) || slices.Contains(profiles, pyroscope.ProfileBlockDuration) {
		runtime.SetBlockProfileRate(blockProfileRate)
	}
}

// pyroscopeLogAdapter routes the profiler's printf-style logs into the service logger.
type pyroscopeLogAdapter struct {
	logger *logging.Logger
}

func (a pyroscopeLogAdapter) Infof(format string, args ...any) {
	a.logger.Debug(fmt.Sprintf(format, args...))
}

func (a pyroscopeLogAdapter) Debugf(format string, args ...any) {
	a.logger.Debug(fmt.Sprintf(format, args...))
}

func (a pyroscopeLogAdapter) Errorf(format string, args ...any) {
	a.logger.Error(fmt.Sprintf(format, args...))
}
