package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "SPECRUN_"

// EnvLoader reads variables from .env files. Process environment
// variables take precedence over loaded ones.
type EnvLoader struct {
	mu   sync.RWMutex
	vars map[string]string
}

// NewEnvLoader creates an empty loader.
func NewEnvLoader() *EnvLoader {
	return &EnvLoader{vars: make(map[string]string)}
}

// Load reads KEY=VALUE lines from path. Blank lines and lines
// starting with # are ignored; surrounding quotes are removed.
func (l *EnvLoader) Load(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open env file %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		l.vars[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"'`)
	}
	return scanner.Err()
}

// Lookup returns the value of key and whether it is set.
func (l *EnvLoader) Lookup(key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok {
		return v, true
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.vars[key]
	return v, ok
}

// Get returns the value of key or "".
func (l *EnvLoader) Get(key string) string {
	v, _ := l.Lookup(key)
	return v
}

// Set stores a value in the loader only.
func (l *EnvLoader) Set(key, value string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.vars[key] = value
}

// All returns all loaded variables.
func (l *EnvLoader) All() map[string]string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	result := make(map[string]string, len(l.vars))
	for k, v := range l.vars {
		result[k] = v
	}
	return result
}

// ApplyEnv overlays SPECRUN_* variables from env onto c. A nil
// env reads the process environment only.
func (c *Config) ApplyEnv(env *EnvLoader) error {
	if env == nil {
		env = NewEnvLoader()
	}
	lookup := func(name string) (string, bool) {
		return env.Lookup(EnvPrefix + name)
	}

	var errs []string
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}
	list := func(name string, dst *[]string) {
		if v, ok := lookup(name); ok {
			*dst = splitList(v)
		}
	}
	boolean := func(name string, dst *bool) {
		if v, ok := lookup(name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s%s: %v", EnvPrefix, name, err))
				return
			}
			*dst = b
		}
	}

	str("TARGET", &c.TargetVersion)
	str("PLATFORM", &c.Platform)
	list("FEATURES", &c.Features)
	if v, ok := lookup("PARALLEL"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%sPARALLEL: %v", EnvPrefix, err))
		} else {
			c.Parallel = n
		}
	}
	if v, ok := lookup("DEADLINE"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%sDEADLINE: %v", EnvPrefix, err))
		} else {
			c.Deadline = d
		}
	}
	boolean("STRICT", &c.Strict)
	boolean("VERBOSE", &c.Verbose)
	str("LOG_LEVEL", &c.LogLevel)
	str("FORMAT", &c.Format)
	str("RESULTS_DIR", &c.ResultsDir)
	str("MONITOR_ADDR", &c.MonitorAddr)
	list("SUITES", &c.Suites)
	list("BANKS", &c.Banks)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(errs, "; "))
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
