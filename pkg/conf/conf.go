// Copyright 2025 Conduit Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package conf

import (
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/fsnotify/fsnotify"
	"github.com/go-conduit/conduit/pkg/log"
	"github.com/spf13/viper"
)

func init() {
	viper.AutomaticEnv()
}

// LoadConfigFile reads a TOML config into cfg and keeps watching it,
// re-unmarshalling on change. confPath is either the config file itself
// or a directory containing config.toml. cfg must be a non-nil pointer.
func LoadConfigFile(confPath string, cfg any) error {
	cfgValue := reflect.ValueOf(cfg)
	if cfgValue.Kind() != reflect.Ptr || cfgValue.IsNil() {
		return errors.New("cfg must be a non-nil pointer")
	}

	vCfg := viper.New()
	if info, err := os.Stat(confPath); err == nil && info.IsDir() {
		vCfg.AddConfigPath(confPath)
		vCfg.SetConfigName("config")
	} else {
		vCfg.SetConfigFile(confPath)
	}
	vCfg.SetConfigType("toml")

	if err := vCfg.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read configuration file: %w", err)
	}

	vCfg.WatchConfig()
	vCfg.OnConfigChange(func(e fsnotify.Event) {
		log.Infof("configuration changed, re-parsing: %s", e.Name)
		if err := vCfg.Unmarshal(cfg); err != nil {
			log.Errorf("failed to unmarshal configuration file: %v", err)
		}
	})

	if err := vCfg.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal configuration file: %w", err)
	}

	log.Infof("configuration file path: %s", confPath)
	return nil
}
