//  Copyright (c) 2020 The Bluge Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// 		http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package index

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls how a Manager and its directories are constructed. It
// follows the host engine's fluent value-receiver style: With* methods
// return a modified copy, never mutate the receiver.
type Config struct {
	Logger *zap.Logger

	// DirectoryFunc builds the durable (inner) directory the Tiered
	// directory wraps.
	DirectoryFunc func() Directory

	// EventCallback, if set, is invoked for every lifecycle Event fired
	// by a Manager-backed writer.
	EventCallback func(Event)
}

// WithLogger returns a copy of config using logger for diagnostics.
func (config Config) WithLogger(logger *zap.Logger) Config {
	config.Logger = logger
	return config
}

// WithDirectoryFunc returns a copy of config using df to build the durable
// directory.
func (config Config) WithDirectoryFunc(df func() Directory) Config {
	config.DirectoryFunc = df
	return config
}

// WithEventCallback returns a copy of config that fires cb on every event.
func (config Config) WithEventCallback(cb func(Event)) Config {
	config.EventCallback = cb
	return config
}

// WithRotatingLogger returns a copy of config whose Logger writes
// JSON-encoded entries into a lumberjack-rotated file at level, the same
// rotation knobs the host engine's own file logger exposes.
func (config Config) WithRotatingLogger(rotation LogRotationConfig, level zapcore.Level) Config {
	config.Logger = NewRotatingLogger(rotation, level)
	return config
}

// DefaultConfig returns a Config whose durable directory lives at path on
// the filesystem.
func DefaultConfig(path string) Config {
	rv := defaultConfig()
	rv.DirectoryFunc = func() Directory {
		return NewFileSystemDirectory(path)
	}
	return rv
}

// InMemoryConfig returns a Config whose durable directory is itself
// in-memory, useful for tests that want no filesystem footprint at all.
func InMemoryConfig() Config {
	rv := defaultConfig()
	rv.DirectoryFunc = func() Directory {
		return NewVolatileDirectory()
	}
	return rv
}

func defaultConfig() Config {
	return Config{
		Logger: zap.NewNop(),
	}
}
