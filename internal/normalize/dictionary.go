package normalize

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

// Entry maps a canonical form to the spellings that should collapse onto it.
type Entry struct {
	Canonical string   `yaml:"canonical"`
	Variants  []string `yaml:"variants"`
}

// Dictionary is an ordered list of entries. Order matters: the first entry
// that matches wins, both for text normalization and for key lookups.
type Dictionary []Entry

// DefaultDictionary returns the built-in vocabulary used by field crews.
func DefaultDictionary() Dictionary {
	return Dictionary{
		{Canonical: "STANDBY", Variants: []string{"STANDBY", "STAND BY", "STANBY", "SIAP", "READY", "SIAGA"}},
		{Canonical: "RUSAK", Variants: []string{"RUSAK", "RUSK", "BROKEN", "DAMAGE", "RUSAK", "JELEK"}},
		{Canonical: "TERPASANG", Variants: []string{"TERPASANG", "PASANG", "INSTALLED", "AKTIF", "ACTIVE"}},
		{Canonical: "TIDAK", Variants: []string{"TDK", "TIAK", "TIDKA", "TIDAK", "TDK.", "TIDK", "TDAK", "ENGGAK", "ENGGA", "GA", "NGGAK", "NDAK", "tidak", "tdk"}},
		{Canonical: "YA", Variants: []string{"YES", "IYA", "IYAH", "Y", "OK", "OKE", "BETUL", "BENAR", "ya", "iya"}},
		{Canonical: "KARANG", Variants: []string{"KARANG", "TANJUNG KARANG", "TJK", "TJ KARANG"}},
		{Canonical: "METRO", Variants: []string{"METRO", "MTR", "METRO CITY"}},
		{Canonical: "KOTABUMI", Variants: []string{"KOTABUMI", "KOTA BUMI", "KTB"}},
		{Canonical: "PRINGSEWU", Variants: []string{"PRINGSEWU", "PRINGSEU", "PSW", "PRINGS"}},
		{Canonical: "BAIK", Variants: []string{"BAIK", "BAGUS", "OK", "AMAN", "NORMAL"}},
		{Canonical: "BURUK", Variants: []string{"BURUK", "JELEK", "BAD", "POOR", "RUSAK"}},
	}
}

// LoadDictionary reads a dictionary from a YAML file holding a list of
// {canonical, variants} entries. The file order is preserved.
func LoadDictionary(path string) (Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dictionary %s: %w", path, err)
	}

	var dict Dictionary
	if err := yaml.Unmarshal(data, &dict); err != nil {
		return nil, fmt.Errorf("parse dictionary %s: %w", path, err)
	}
	if err := dict.Validate(); err != nil {
		return nil, fmt.Errorf("dictionary %s: %w", path, err)
	}
	return dict, nil
}

// Validate checks that every entry has a canonical form.
func (d Dictionary) Validate() error {
	if len(d) == 0 {
		return fmt.Errorf("dictionary is empty")
	}
	for i, e := range d {
		if strings.TrimSpace(e.Canonical) == "" {
			return fmt.Errorf("entry %d has no canonical form", i)
		}
	}
	return nil
}

// Canonicals lists the canonical forms in dictionary order.
func (d Dictionary) Canonicals() []string {
	out := make([]string, len(d))
	for i, e := range d {
		out[i] = e.Canonical
	}
	return out
}

func (d Dictionary) clone() Dictionary {
	out := make(Dictionary, len(d))
	for i, e := range d {
		out[i] = Entry{
			Canonical: e.Canonical,
			Variants:  append([]string(nil), e.Variants...),
		}
	}
	return out
}
