package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// rawRecord mirrors the scraped catalog's loose shape: numbers may arrive as
// strings, list fields as single comma-joined strings, seniority labels in
// free form.
type rawRecord struct {
	ID            string   `json:"id"`
	URL           string   `json:"url"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	DurationMin   int      `json:"duration_min"`
	DurationMax   int      `json:"duration_max"`
	JobLevels     []string `json:"job_levels"`
	Languages     []string `json:"languages"`
	TestTypeCodes []string `json:"test_type_codes"`
	Tags          []string `json:"tags"`

	AdaptiveSupport string `json:"adaptive_support"`
	RemoteSupport   string `json:"remote_support"`
}

// ReadScraped reads a scraped (pre-embedding) catalog file and normalizes it
// into typed records with no embeddings. The scraper output is not strictly
// typed, so decoding is deliberately weak.
func ReadScraped(path string) ([]*AssessmentRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scraped catalog %q: %w", path, err)
	}

	var items []map[string]any
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing scraped catalog %q: %w", path, err)
	}

	records := make([]*AssessmentRecord, 0, len(items))
	for i, item := range items {
		normalizeListFields(item)

		var raw rawRecord
		cfg := &mapstructure.DecoderConfig{
			Result:           &raw,
			TagName:          "json",
			WeaklyTypedInput: true,
		}
		decoder, err := mapstructure.NewDecoder(cfg)
		if err != nil {
			return nil, err
		}
		if err := decoder.Decode(item); err != nil {
			return nil, fmt.Errorf("record at index %d: %w", i, err)
		}

		records = append(records, fromRaw(raw))
	}

	return records, nil
}

// normalizeListFields rewrites scalar values into single-element lists for
// the fields the scraper emits inconsistently.
func normalizeListFields(item map[string]any) {
	for _, key := range []string{"job_levels", "languages", "test_type_codes", "tags"} {
		if s, ok := item[key].(string); ok {
			parts := strings.Split(s, ",")
			list := make([]any, 0, len(parts))
			for _, p := range parts {
				if p = strings.TrimSpace(p); p != "" {
					list = append(list, p)
				}
			}
			item[key] = list
		}
	}
}

func fromRaw(raw rawRecord) *AssessmentRecord {
	r := &AssessmentRecord{
		ID:              raw.ID,
		URL:             raw.URL,
		Name:            raw.Name,
		Description:     raw.Description,
		DurationMin:     raw.DurationMin,
		DurationMax:     raw.DurationMax,
		Languages:       raw.Languages,
		Tags:            raw.Tags,
		AdaptiveSupport: raw.AdaptiveSupport,
		RemoteSupport:   raw.RemoteSupport,
	}

	for _, s := range raw.JobLevels {
		if level, ok := ParseJobLevel(s); ok && !r.HasJobLevel(level) {
			r.JobLevels = append(r.JobLevels, level)
		}
	}

	for _, code := range raw.TestTypeCodes {
		if code = strings.ToUpper(strings.TrimSpace(code)); code != "" {
			r.TestTypeCodes = append(r.TestTypeCodes, code)
		}
	}

	// A single duration value may stand in for both bounds.
	if r.DurationMax == 0 && r.DurationMin > 0 {
		r.DurationMax = r.DurationMin
	}

	return r
}

// WriteArtifact writes the runnable catalog artifact (records with inline
// embeddings) as JSON.
func WriteArtifact(path string, records []*AssessmentRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding catalog artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing catalog artifact %q: %w", path, err)
	}
	return nil
}
