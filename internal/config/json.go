package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type StructuredJSONConfig struct {
	App struct {
		Service string   `json:"service"`
		Env     string   `json:"env"`
		Version string   `json:"version"`
		Tags    []string `json:"tags"`
	} `json:"app,omitempty"`

	Adapter struct {
		HTTPAddress    string   `json:"http_address"`
		Path           string   `json:"path"`
		RequestTimeout Duration `json:"request_timeout"`
		RetryWindow    Duration `json:"retry_window"`
		APIKey         string   `json:"api_key"`
	} `json:"adapter,omitempty"`

	Workers struct {
		PollInterval Duration `json:"poll_interval"`
		AckTimeout   Duration `json:"ack_timeout"`
	} `json:"workers,omitempty"`

	Server struct {
		HTTPAddress string `json:"http_address"`
	} `json:"server,omitempty"`

	RemoteConfig struct {
		Products []string `json:"products"`
	} `json:"remote_config,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			Service: jsonCfg.App.Service,
			Env:     jsonCfg.App.Env,
			Version: jsonCfg.App.Version,
			Tags:    jsonCfg.App.Tags,
		},
		Adapter: Adapter{
			HTTPAddress:    jsonCfg.Adapter.HTTPAddress,
			Path:           jsonCfg.Adapter.Path,
			RequestTimeout: time.Duration(jsonCfg.Adapter.RequestTimeout),
			RetryWindow:    time.Duration(jsonCfg.Adapter.RetryWindow),
			APIKey:         jsonCfg.Adapter.APIKey,
		},
		Workers: Workers{
			PollInterval: time.Duration(jsonCfg.Workers.PollInterval),
			AckTimeout:   time.Duration(jsonCfg.Workers.AckTimeout),
		},
		Server: Server{
			HTTPAddress: jsonCfg.Server.HTTPAddress,
		},
		RemoteConfig: RemoteConfig{
			Products: jsonCfg.RemoteConfig.Products,
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
