package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type BackendType string

const (
	BackendLocal  BackendType = "local"
	BackendRemote BackendType = "remote"

	DefaultConfigPath   string = "config.json"
	DefaultModelDir     string = "models"
	DefaultDetectorHost string = "localhost:8080"
	DefaultLogFile      string = "logs/annotator.log"
)

var BackendsList = [...]string{
	string(BackendLocal),
	string(BackendRemote),
}

type ModelsConfig struct {
	Dir    string `json:"dir" yaml:"dir" validate:"required"`
	Ruler  string `json:"ruler" yaml:"ruler" validate:"required"`
	Border string `json:"border" yaml:"border" validate:"required"`
	Stain  string `json:"stain" yaml:"stain" validate:"required"`
}

type RemoteConfig struct {
	Host string `json:"host" yaml:"host" validate:"required"`
	Path string `json:"path" yaml:"path"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level" validate:"omitempty,oneof=trace debug info warn warning error"`
	File  string `json:"file" yaml:"file"`
}

type Config struct {
	mu sync.RWMutex
	// source is the file the config was loaded from.
	source string

	Backend      BackendType `json:"backend" yaml:"backend" validate:"required,oneof=local remote"`
	InputWidth   int         `json:"input_width" yaml:"input_width" validate:"min=1"`
	InputHeight  int         `json:"input_height" yaml:"input_height" validate:"min=1"`
	WindowWidth  float32     `json:"window_width" yaml:"window_width" validate:"gt=0"`
	WindowHeight float32     `json:"window_height" yaml:"window_height" validate:"gt=0"`

	ImageDir       string `json:"image_dir" yaml:"image_dir"`
	AnnotationFile string `json:"annotation_file" yaml:"annotation_file"`

	Models ModelsConfig `json:"models" yaml:"models"`
	Remote RemoteConfig `json:"remote" yaml:"remote"`
	Log    LogConfig    `json:"log" yaml:"log"`
}

func (c *Config) GetImageDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ImageDir
}

func (c *Config) SetImageDir(dir string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ImageDir = dir
}

func (c *Config) GetAnnotationFile() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.AnnotationFile
}

func (c *Config) SetAnnotationFile(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.AnnotationFile = path
}

// ModelPath returns the weight file of one classifier, resolved against Models.Dir.
func (c *Config) ModelPath(artifact string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var name string
	switch artifact {
	case "ruler":
		name = c.Models.Ruler
	case "border":
		name = c.Models.Border
	case "stain":
		name = c.Models.Stain
	default:
		return ""
	}

	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Models.Dir, name)
}

func (c *Config) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) Save(path string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var (
		data []byte
		err  error
	)

	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// SaveByDefault writes back to the file the config was loaded from.
func (c *Config) SaveByDefault() error {
	if c.source != "" {
		return c.Save(c.source)
	}
	return c.Save(DefaultConfigPath)
}

// ApplyEnv overrides file values with ANNOTATOR_* variables, reading .env first if present.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()

	c.mu.Lock()
	defer c.mu.Unlock()

	if v := os.Getenv("ANNOTATOR_BACKEND"); v != "" {
		c.Backend = BackendType(strings.ToLower(v))
	}
	if v := os.Getenv("ANNOTATOR_MODEL_DIR"); v != "" {
		c.Models.Dir = v
	}
	if v := os.Getenv("ANNOTATOR_DETECTOR_HOST"); v != "" {
		c.Remote.Host = v
	}
	if v := os.Getenv("ANNOTATOR_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("ANNOTATOR_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// LoadConfigFile returns the defaults overlaid with the file at path.
// A missing file is not an error.
func LoadConfigFile(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	cfg.source = path

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}

	if err != nil {
		cfg = NewDefaultConfig()
		cfg.source = path
		return cfg, fmt.Errorf("decode %s: %w", path, err)
	}

	return cfg, nil
}

func NewDefaultConfig() *Config {
	return &Config{
		Backend:      BackendLocal,
		InputWidth:   300,
		InputHeight:  300,
		WindowWidth:  1600,
		WindowHeight: 900,
		Models: ModelsConfig{
			Dir:    DefaultModelDir,
			Ruler:  "ruler_detector.onnx",
			Border: "border_detector.onnx",
			Stain:  "stain_detector.onnx",
		},
		Remote: RemoteConfig{Host: DefaultDetectorHost, Path: "/ws"},
		Log:    LogConfig{Level: "info", File: DefaultLogFile},
	}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
