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
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// LogRotationConfig controls the rotating file sink a Manager's logger
// can be pointed at. Zero values defer to lumberjack's own defaults: a
// zero MaxSizeMB rotates at 100 MB, and zero MaxAgeDays/MaxBackups keep old
// files regardless of age or count.
type LogRotationConfig struct {
	Filename   string
	MaxSizeMB  int
	MaxAgeDays int
	MaxBackups int
	Compress   bool
}

// NewRotatingLogger builds a zap.Logger writing JSON-encoded entries at
// level into a lumberjack-rotated file. Config.WithRotatingLogger installs
// it as a Config's Logger, the durable diagnostic sink a long-running
// Manager logs to.
func NewRotatingLogger(cfg LogRotationConfig, level zapcore.Level) *zap.Logger {
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSizeMB,
		MaxAge:     cfg.MaxAgeDays,
		MaxBackups: cfg.MaxBackups,
		Compress:   cfg.Compress,
	})
	core := zapcore.NewCore(encoder, writer, level)
	return zap.New(core, zap.AddCaller())
}
