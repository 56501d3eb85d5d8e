package catalog

import "sort"

// Translations maps a language code to its bundle of UI strings,
// mirroring the structure of translations.json.
type Translations map[string]map[string]string

// Languages returns the sorted language codes present in the bundle.
func (t Translations) Languages() []string {
	result := make([]string, 0, len(t))
	for lang := range t {
		result = append(result, lang)
	}

	sort.Strings(result)

	return result
}
