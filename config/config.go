package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	HTTPServerPort string `json:"http_server_port" validate:"required,numeric"`
	DebugMode      bool   `json:"debug_mode"` // print logs out to console instead of file when true
	LogFile        string `json:"log_file"`

	// Spectrometer results to compute descriptors for.
	DataType        string `json:"data_type" validate:"omitempty,oneof=mdb xml"`
	DataSource      string `json:"data_source" validate:"required_with=DataType"` // If xml: folder of xml files. If mdb: connection string of mdb file database.
	NumberOfResults int    `json:"number_of_results" validate:"min=1"`            // number of latest samples returned to client

	Workers             int  `json:"workers" validate:"min=1"`
	LegacyEnthalpyGuard bool `json:"legacy_enthalpy_guard"` // report the substituted enthalpy when it is near zero

	// optional YAML tables replacing the built in ones
	ElementTable  string `json:"element_table"`
	EnthalpyTable string `json:"enthalpy_table"`
	PriceTable    string `json:"price_table"`

	ResultDatabase struct {
		Address  string `json:"address"`
		User     string `json:"user"`
		Password string `json:"password"`
		Database string `json:"database" validate:"required_with=Address"`
		Table    string `json:"table" validate:"required_with=Address"`
	} `json:"result_database"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		HTTPServerPort:  "8080",
		LogFile:         "alloycalc.log",
		NumberOfResults: 20,
		Workers:         4,
	}
}

func LoadConfig(filePath string) (*Config, error) {
	conf := Default()

	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err = dec.Decode(conf); err != nil {
		return nil, fmt.Errorf("error decoding config %s: %w", filePath, err)
	}

	if err = conf.Validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// HasResultDatabase reports whether computed results should be stored.
func (c *Config) HasResultDatabase() bool {
	return c.ResultDatabase.Address != ""
}
