// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package wasmkit

import "github.com/sirupsen/logrus"

// defaultLogger is the package-wide logrus instance used for structured
// diagnostics (instantiation milestones and failures). Callers that
// embed wasmkit in a larger service can redirect it with SetLogger.
var defaultLogger = logrus.New()

// SetLogger replaces the logger used by every Store created after this
// call. It does not affect Stores already constructed.
func SetLogger(l *logrus.Logger) {
	if l == nil {
		return
	}
	defaultLogger = l
}
