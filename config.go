package poolcore

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// LoadEnv loads KEY=VALUE pairs from filename into the process
// environment, skipping keys already set. The file is optional: a
// missing file is not an error.
func LoadEnv(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}

// Config holds the POOLCORE_* settings: where snapshots are persisted
// and a default tick spacing and LP fee for a new pool. Nothing in this
// module reads it outside its own tests; cmd/poolctl takes these values
// from its own flags and their defaults.
type Config struct {
	SnapshotDSN        string
	DefaultTickSpacing int32
	DefaultLPFee       uint32
}

// LoadConfig reads POOLCORE_* environment variables, applying the
// defaults a freshly checked out repo would use.
func LoadConfig() Config {
	cfg := Config{
		SnapshotDSN:        "poolcore.db",
		DefaultTickSpacing: 60,
		DefaultLPFee:       3000,
	}
	if v := os.Getenv("POOLCORE_SNAPSHOT_DSN"); v != "" {
		cfg.SnapshotDSN = v
	}
	if v := os.Getenv("POOLCORE_DEFAULT_TICK_SPACING"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			cfg.DefaultTickSpacing = int32(n)
		}
	}
	if v := os.Getenv("POOLCORE_DEFAULT_LP_FEE"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			cfg.DefaultLPFee = uint32(n)
		}
	}
	return cfg
}
