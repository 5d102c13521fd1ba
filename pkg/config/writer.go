package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v2"

	"github.com/pg-sharding/batchwrite/pkg/models/bwerror"
)

const (
	DefaultMaxBatchSize  = 1000
	DefaultMaxParameters = 65535

	SourceMemory   = "memory"
	SourcePostgres = "postgres"
	SourceSQL      = "sql"
	SourceEtcd     = "etcd"
)

var cfgWriter Writer

type Writer struct {
	LogLevel      string `json:"log_level" toml:"log_level" yaml:"log_level"`
	LogFileName   string `json:"log_filename" toml:"log_filename" yaml:"log_filename"`
	PrettyLogging bool   `json:"pretty_logging" toml:"pretty_logging" yaml:"pretty_logging"`

	Batch          BatchCfg          `json:"batch" toml:"batch" yaml:"batch"`
	HiLo           HiLoCfg           `json:"hilo" toml:"hilo" yaml:"hilo"`
	SequenceSource SequenceSourceCfg `json:"sequence_source" toml:"sequence_source" yaml:"sequence_source"`
	JaegerConfig   JaegerCfg         `json:"jaeger" toml:"jaeger" yaml:"jaeger"`

	TimeQuantiles []float64 `json:"time_quantiles" toml:"time_quantiles" yaml:"time_quantiles"`
}

type BatchCfg struct {
	MaxBatchSize  int `json:"max_batch_size" toml:"max_batch_size" yaml:"max_batch_size"`
	MaxParameters int `json:"max_parameters" toml:"max_parameters" yaml:"max_parameters"`
	// SimpleProtocol sends batches as one multi-statement text command.
	SimpleProtocol bool `json:"simple_protocol" toml:"simple_protocol" yaml:"simple_protocol"`
}

type HiLoCfg struct {
	DefaultIncrement int64  `json:"default_increment" toml:"default_increment" yaml:"default_increment"`
	DefaultSchema    string `json:"default_schema" toml:"default_schema" yaml:"default_schema"`
	DefaultSequence  string `json:"default_sequence" toml:"default_sequence" yaml:"default_sequence"`
}

type SequenceSourceCfg struct {
	Kind        string        `json:"kind" toml:"kind" yaml:"kind"`
	ConnString  string        `json:"conn_string" toml:"conn_string" yaml:"conn_string"`
	EtcdAddrs   []string      `json:"etcd_addrs" toml:"etcd_addrs" yaml:"etcd_addrs"`
	DialTimeout time.Duration `json:"dial_timeout" toml:"dial_timeout" yaml:"dial_timeout"`
	// BackupPath persists the memory source between runs.
	BackupPath string `json:"backup_path" toml:"backup_path" yaml:"backup_path"`
}

type JaegerCfg struct {
	JaegerUrl   string `json:"jaeger_url" toml:"jaeger_url" yaml:"jaeger_url"`
	ServiceName string `json:"service_name" toml:"service_name" yaml:"service_name"`
}

func initWriterConfig(file *os.File, filepath string) error {
	if strings.HasSuffix(filepath, ".toml") {
		_, err := toml.NewDecoder(file).Decode(&cfgWriter)
		return err
	}
	if strings.HasSuffix(filepath, ".yaml") || strings.HasSuffix(filepath, ".yml") {
		return yaml.NewDecoder(file).Decode(&cfgWriter)
	}
	if strings.HasSuffix(filepath, ".json") {
		return json.NewDecoder(file).Decode(&cfgWriter)
	}
	return fmt.Errorf("unknown config format type: %s. Use .toml, .yaml or .json suffix in filename", filepath)
}

// LoadWriterCfg reads the config file into the global writer config.
func LoadWriterCfg(cfgPath string) error {
	file, err := os.Open(cfgPath)
	if err != nil {
		return err
	}
	defer file.Close()

	cfgWriter = Writer{}
	if err := initWriterConfig(file, cfgPath); err != nil {
		return err
	}
	cfgWriter.ApplyDefaults()
	if err := cfgWriter.Validate(); err != nil {
		return err
	}

	configBytes, err := json.MarshalIndent(&cfgWriter, "", "  ")
	if err != nil {
		return err
	}

	log.Println("Running config:", string(configBytes))
	return nil
}

func WriterConfig() *Writer {
	return &cfgWriter
}

func (w *Writer) ApplyDefaults() {
	if w.LogLevel == "" {
		w.LogLevel = "info"
	}
	if w.Batch.MaxBatchSize <= 0 {
		w.Batch.MaxBatchSize = DefaultMaxBatchSize
	}
	if w.Batch.MaxParameters <= 0 {
		w.Batch.MaxParameters = DefaultMaxParameters
	}
	if w.HiLo.DefaultIncrement <= 0 {
		w.HiLo.DefaultIncrement = 10
	}
	if w.HiLo.DefaultSchema == "" {
		w.HiLo.DefaultSchema = "public"
	}
	if w.SequenceSource.Kind == "" {
		w.SequenceSource.Kind = SourceMemory
	}
	if w.SequenceSource.DialTimeout <= 0 {
		w.SequenceSource.DialTimeout = 5 * time.Second
	}
	if w.JaegerConfig.ServiceName == "" {
		w.JaegerConfig.ServiceName = "batchwrite"
	}
}

func (w *Writer) Validate() error {
	switch w.SequenceSource.Kind {
	case SourceMemory:
	case SourcePostgres, SourceSQL:
		if w.SequenceSource.ConnString == "" {
			return bwerror.Newf(bwerror.BW_CONFIG_ERROR, "sequence source %q requires conn_string", w.SequenceSource.Kind)
		}
	case SourceEtcd:
		if len(w.SequenceSource.EtcdAddrs) == 0 {
			return bwerror.New(bwerror.BW_CONFIG_ERROR, "sequence source \"etcd\" requires etcd_addrs")
		}
	default:
		return bwerror.Newf(bwerror.BW_CONFIG_ERROR, "unknown sequence source kind %q", w.SequenceSource.Kind)
	}
	if w.Batch.MaxParameters > DefaultMaxParameters {
		return bwerror.Newf(bwerror.BW_CONFIG_ERROR,
			"max_parameters %d exceeds the protocol limit %d", w.Batch.MaxParameters, DefaultMaxParameters)
	}
	return nil
}
