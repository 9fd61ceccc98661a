/**
 * Copyright 2025 ByteDance Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package codechange

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

const schemaID = "https://github.com/cloudwego/scaffolder/codechange.schema.json"

// Schema describes the configuration format for editors and linters.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
	}
	s := r.Reflect(&Config{})
	s.ID = jsonschema.ID(schemaID)
	s.Title = "Code change configuration"
	return s
}

// SchemaJSON is Schema rendered as indented JSON.
func SchemaJSON() ([]byte, error) {
	return json.MarshalIndent(Schema(), "", "  ")
}
