package swctx

import (
	"os"
	"strconv"
)

// Config is the environment-derived configuration for one Context.
type Config struct {
	// StorageRoot is the package manager root: sources, builds, and the
	// service database all live under it.
	StorageRoot string
	// RegistryURL is the base URL of the remote registry's resolvePackages
	// RPC. Empty disables the remote pass; the resolver then only
	// satisfies dependencies already present in the local store.
	RegistryURL string
	// NoNetwork forces resolution to the local store only, regardless of
	// RegistryURL.
	NoNetwork bool
	// Verbose selects debug-level, human-readable text logging instead of
	// the default JSON handler.
	Verbose bool
	// Trace selects trace-level logging, one level finer than Verbose. It
	// implies Verbose's text handler.
	Trace bool
	// Workers sizes the executor's worker pool. Zero means runtime.NumCPU().
	Workers int
	// CommandTimeoutMs bounds each command's runtime. Zero means no
	// per-command timeout.
	CommandTimeoutMs int
	// MaxArgvBytes is the response-file materialization threshold. Zero
	// means cmdgraph.DefaultMaxArgvBytes.
	MaxArgvBytes int
}

// LoadConfig reads Config from the process environment. This is the only
// place in the module that calls os.Getenv.
func LoadConfig() Config {
	cfg := Config{
		StorageRoot: os.Getenv("SW_STORAGE"),
		RegistryURL: os.Getenv("SW_REGISTRY_URL"),
		NoNetwork:   envBool("SW_NO_NETWORK"),
		Verbose:     envBool("SW_VERBOSE"),
		Trace:       envBool("SW_TRACE"),
	}
	if cfg.StorageRoot == "" {
		cfg.StorageRoot = defaultStorageRoot()
	}
	cfg.Workers = envInt("SW_WORKERS", 0)
	cfg.CommandTimeoutMs = envInt("SW_COMMAND_TIMEOUT_MS", 0)
	cfg.MaxArgvBytes = envInt("SW_MAX_ARGV_BYTES", 0)
	return cfg
}

func defaultStorageRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sw"
	}
	return home + "/.sw"
}

func envBool(key string) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return b
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
