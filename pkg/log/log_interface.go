// Copyright 2025 Arcade Team
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

package log

// ILogger is the structured logging surface consumed by the rest of the
// module. *zap.SugaredLogger satisfies it.
type ILogger interface {
	Debugw(msg string, keysAndValues ...any)
	Infow(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)
}

var _ ILogger = (*global)(nil)

type global struct{}

func (global) Debugw(msg string, kv ...any) { GetLogger().Debugw(msg, kv...) }
func (global) Infow(msg string, kv ...any)  { GetLogger().Infow(msg, kv...) }
func (global) Warnw(msg string, kv ...any)  { GetLogger().Warnw(msg, kv...) }
func (global) Errorw(msg string, kv ...any) { GetLogger().Errorw(msg, kv...) }

// Global returns an ILogger that forwards to whatever logger is installed
// at call time.
func Global() ILogger {
	return global{}
}
