// Copyright 2026 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2026 Charles University, Faculty of Arts,
//                Institute of the Czech National Corpus
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package proc

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StreetKey is the only tag key whose values are corrected
const StreetKey = "addr:street"

// Corrections is an exact-match table of street name fixes.
// Matching is case-sensitive and values are not normalized
// in any way. The table is read-only once created.
type Corrections struct {
	table map[string]string
}

// Apply returns a corrected value for the tag key and value.
// Only values of the addr:street key are looked up.
func (c *Corrections) Apply(key, value string) (string, bool) {
	if key != StreetKey || c == nil {
		return value, false
	}
	fixed, ok := c.table[value]
	if !ok {
		return value, false
	}
	return fixed, true
}

func (c *Corrections) Size() int {
	return len(c.table)
}

// NewCorrections creates a correction table. It fails in case
// a corrected value is also a key of the table (i.e. applying
// corrections twice would produce different results).
func NewCorrections(table map[string]string) (*Corrections, error) {
	cp := make(map[string]string, len(table))
	for k, v := range table {
		if _, ok := table[v]; ok {
			return nil, fmt.Errorf("invalid correction '%s' -> '%s': the result is corrected again", k, v)
		}
		cp[k] = v
	}
	return &Corrections{table: cp}, nil
}

// LoadCorrections loads a correction table from a YAML
// mapping (original value: corrected value).
func LoadCorrections(path string) (*Corrections, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load corrections: %w", err)
	}
	var table map[string]string
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse corrections file %s: %w", path, err)
	}
	return NewCorrections(table)
}

// DefaultCorrections returns street name corrections for the Lyon
// (France) extract.
func DefaultCorrections() *Corrections {
	ans, err := NewCorrections(lyonStreets)
	if err != nil {
		panic(err)
	}
	return ans
}

var lyonStreets = map[string]string{
	"Boulevard du 11 novembre 1918":             "Boulevard du 11 Novembre 1918",
	"Rue moliere":                               "Rue Molière",
	"Chemin jean petit":                         "Chemin Jean Petit",
	"Cours DOCTEUR LONG":                        "Cours Docteur Long",
	"Cours du Docteur Long":                     "Cours Docteur Long",
	"Rue du Docteur Fleury-Pierre Papillon":     "Rue du Docteur Pierre-Fleury Papillon",
	"Galerie Soufflot":                          "Quai Jules Courmont",
	"Caluire-et-Cuire":                          "Quai Clemenceau",
	"Route de vienne":                           "Route de Vienne",
	"rue de la charité":                         "Rue de la Charité",
	"rue du 8 Mai 1945":                         "Rue du 8 Mai 1945",
	"GRANDE RUE":                                "Grande Rue",
	"rue des Charmettes":                        "Rue des Charmettes",
	"allée des Savoies":                         "Allée des Savoies",
	"Roger Salengro":                            "Rue Roger Salengro",
	"Passage du beal":                           "Passage du Beal",
	"/25 Grande Rue":                            "Grande Rue",
	"37":                                        "Grande Rue de Vaise",
	"A 7":                                       "A7",
	"Ctre Cial Carrefour Ecully":                "Centre Commercial Carrefour Ecully",
	"Grand Cloître":                             "Place du Grand Cloître",
	"Pl. Depéret":                               "Place Depéret",
	"Rond-Point Maréchal de Lattre de Tassigny": "Rue du Rond-Point Maréchal de Lattre de Tassigny",
	"Rue":                                       "Rue Lortet",
	"Victor Hugo":                               "Rue Victor Hugo",
	"avenue Roger Salengro":                     "Avenue Roger Salengro",
	"boulevard Joliot Curie":                    "Boulevard Joliot Curie",
	"Chemin de Chalin":                          "chemin de Chalin",
	"chemin de chantegrillet":                   "Chemin de chantegrillet",
	"des remparts d'Ainay":                      "Rue des Remparts d'Ainay",
	"humanités":                                 "Rue des Humanités",
	"place des Trois Renards":                   "Place des Trois Renards",
	"quai Perrache":                             "Quai Perrache",
	"rue Béchevelin":                            "Rue Béchevelin",
	"rue Carnot":                                "Rue Carnot",
	"rue Chavanne":                              "Rue Chavanne",
	"rue Duhamel":                               "Rue Duhamel",
	"rue François Peissel":                      "Rue François Peissel",
	"rue Laurent Paul":                          "Rue Laurent Paul",
	"rue Roger Salengro":                        "Rue Roger Salengro",
	"rue commandant Charcot":                    "Rue Commandant Charcot",
	"rue de Sèze":                               "Rue de Sèze",
	"rue de sans soucis":                        "Rue de Sans Soucis",
	"rue de tourvielle":                         "Rue de Tourvielle",
	"rue des freres bertrand":                   "Rue des Frères Bertrand",
	"rue du 4 août 1789":                        "Rue du 4 Août 1789",
	"rue vaubecour":                             "Rue Vaubecour",
}
