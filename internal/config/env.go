package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/xyproto/env/v2"
)

const (
	APP_NAME = "penquin"
	ENV_FILE = "env"
)

var DEFAULT_ENV_FILE string = `PENQUIN_STD=./std
PENQUIN_CC=clang
PENQUIN_BUILD_DIR=/tmp
`

type Envs struct {
	STD       string `env:"PENQUIN_STD"`
	CC        string `env:"PENQUIN_CC"`
	BUILD_DIR string `env:"PENQUIN_BUILD_DIR"`

	// Not kept in the env file, only read from the process environment.
	Jobs  int
	Debug bool
}

// eachEnvField calls fn with the tag and the settable value of every string
// field of e carrying an env tag.
func eachEnvField(e any, fn func(tag string, field reflect.Value)) error {
	v := reflect.ValueOf(e)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("expected a pointer to a struct, got %T", e)
	}
	v = v.Elem()

	for i := range v.NumField() {
		tag := v.Type().Field(i).Tag.Get("env")
		field := v.Field(i)
		if tag == "" || field.Kind() != reflect.String || !field.CanSet() {
			continue
		}
		fn(tag, field)
	}
	return nil
}

func (e *Envs) ShowAll(out io.Writer) {
	_ = eachEnvField(e, func(tag string, field reflect.Value) {
		fmt.Fprintf(out, "%s='%s'\n", tag, field.String())
	})
	fmt.Fprintf(out, "PENQUIN_JOBS='%d'\n", e.Jobs)
	fmt.Fprintf(out, "PENQUIN_DEBUG='%t'\n", e.Debug)
}

// ApplyOverrides replaces every value that is also set in the process
// environment.
func (e *Envs) ApplyOverrides() {
	_ = eachEnvField(e, func(tag string, field reflect.Value) {
		field.SetString(env.Str(tag, field.String()))
	})
	e.Jobs = env.Int("PENQUIN_JOBS", e.Jobs)
	e.Debug = e.Debug || env.Bool("PENQUIN_DEBUG")
}

func MapEnvToStruct(data map[string]string, result any) error {
	return eachEnvField(result, func(tag string, field reflect.Value) {
		if value, ok := data[tag]; ok {
			field.SetString(value)
		}
	})
}

// Load reads the env file from the configuration directory, creating it
// with the defaults on first use, and applies the environment overrides.
func Load() (*Envs, error) {
	cfgDir, err := configDir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(filepath.Join(cfgDir, ENV_FILE))
}

func LoadFrom(envFile string) (*Envs, error) {
	values, err := loadEnvFile(envFile)
	if err != nil {
		return nil, err
	}

	envs := Defaults()
	if err := MapEnvToStruct(values, envs); err != nil {
		return nil, err
	}
	envs.ApplyOverrides()
	return envs, nil
}

func Defaults() *Envs {
	values, _ := ParseEnv(strings.NewReader(DEFAULT_ENV_FILE))
	envs := &Envs{}
	_ = MapEnvToStruct(values, envs)
	return envs
}

// configDir is $XDG_CONFIG_HOME/penquin, or the platform default for user
// configuration, created if missing.
func configDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not determine configuration directory: %w", err)
	}
	dir := filepath.Join(base, APP_NAME)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func loadEnvFile(path string) (map[string]string, error) {
	_, err := os.Stat(path)
	missing := errors.Is(err, fs.ErrNotExist)
	if err != nil && !missing {
		return nil, err
	}

	// NOTE: in development mode the env file is rewritten on every run
	// because the defaults may have changed
	if missing || DEV {
		if err := os.WriteFile(path, []byte(DEFAULT_ENV_FILE), 0o644); err != nil {
			return nil, err
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ParseEnv(file)
}

// ParseEnv reads KEY=VALUE lines, skipping blank lines and '#' comments.
func ParseEnv(r io.Reader) (map[string]string, error) {
	values := make(map[string]string)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		values[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return values, scanner.Err()
}
