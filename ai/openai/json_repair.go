// Copyright 2025 Poiesic Systems
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


package openai

import "regexp"

// Small models sometimes drop the opening quote of an object key,
// e.g. `{theme_analysis": "..."}` or `, key_points": [...]`.
var missingKeyQuote = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z_ ]*?)(":)`)

// repairJSON fixes common JSON formatting issues in LLM responses before
// unmarshaling. It only restores missing opening quotes on object keys;
// anything else is left for the retry loop.
func repairJSON(s string) string {
	return missingKeyQuote.ReplaceAllString(s, `$1"$2$3`)
}
