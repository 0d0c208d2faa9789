package staging

import (
	"crypto/sha256"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"sigs.k8s.io/yaml"

	"github.com/opmodel/stager/internal/compat"
	"github.com/opmodel/stager/internal/output"
)

// Report describes the content of a staged directory.
type Report struct {
	Dest    string               `json:"dest"`
	Target  compat.TargetRuntime `json:"target"`
	Digest  string               `json:"digest"`
	Entries []ReportEntry        `json:"entries"`
}

// ReportEntry is one top-level entry with its digest.
type ReportEntry struct {
	Name    string    `json:"name"`
	Type    EntryType `json:"type"`
	Files   int       `json:"files"`
	Digest  string    `json:"digest"`
	Module  string    `json:"module,omitempty"`
	Kind    string    `json:"kind,omitempty"`
	Outcome Outcome   `json:"outcome,omitempty"`
	Source  string    `json:"source,omitempty"`
}

// BuildReport digests every top-level entry of dest. Entries produced by
// result are annotated with how they were staged; result may be nil.
func BuildReport(result *Result, dest string) (*Report, error) {
	entries, err := List(dest)
	if err != nil {
		return nil, err
	}

	byOutput := map[string]ModuleResult{}
	report := &Report{Dest: dest}
	if result != nil {
		report.Target = result.Target
		for _, m := range result.Modules {
			if m.Output != "" {
				byOutput[m.Output] = m
			}
		}
	}

	for _, e := range entries {
		full := filepath.Join(dest, e.Name)
		var (
			digest string
			files  int
		)
		if e.Type == EntryDir {
			digest, files, err = treeDigest(full)
		} else {
			digest, err = fileDigest(full)
			files = 1
		}
		if err != nil {
			return nil, err
		}

		re := ReportEntry{Name: e.Name, Type: e.Type, Files: files, Digest: digest}
		if m, ok := byOutput[e.Name]; ok {
			re.Module = m.Name
			re.Kind = m.Kind.String()
			re.Outcome = m.Outcome
			re.Source = m.Source
		}
		report.Entries = append(report.Entries, re)
	}

	report.Digest = combinedDigest(report.Entries)
	return report, nil
}

// YAML renders the report.
func (r *Report) YAML() ([]byte, error) {
	return yaml.Marshal(r)
}

// LoadReport reads a report written by YAML.
func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing report %s: %w", path, err)
	}
	return &r, nil
}

// combinedDigest is order-independent over entries: they are sorted by name first.
func combinedDigest(entries []ReportEntry) string {
	sorted := make([]ReportEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	h := sha256.New()
	for i, e := range sorted {
		fmt.Fprintf(h, "%s %s %s", e.Type, e.Name, e.Digest)
		if i < len(sorted)-1 {
			h.Write([]byte("\n"))
		}
	}
	return fmt.Sprintf("sha256:%x", h.Sum(nil))
}

func fileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("sha256:%x", h.Sum(nil)), nil
}

// treeDigest hashes the sorted relative paths and contents of every file under root.
func treeDigest(root string) (string, int, error) {
	var rels []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rels = append(rels, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return "", 0, err
	}
	sort.Strings(rels)

	h := sha256.New()
	for _, rel := range rels {
		fmt.Fprintf(h, "%s\x00", rel)
		f, err := os.Open(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return "", 0, err
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", 0, err
		}
		h.Write([]byte("\n"))
	}
	return fmt.Sprintf("sha256:%x", h.Sum(nil)), len(rels), nil
}

// Compare lists the entries added, removed or changed from one report to
// another, each sorted by name.
func Compare(from, to *Report) output.ChangeSummary {
	before := make(map[string]ReportEntry, len(from.Entries))
	for _, e := range from.Entries {
		before[e.Name] = e
	}

	var s output.ChangeSummary
	seen := make(map[string]bool, len(to.Entries))
	for _, e := range to.Entries {
		seen[e.Name] = true
		prev, ok := before[e.Name]
		switch {
		case !ok:
			s.Added = append(s.Added, e.Name)
		case prev.Digest != e.Digest || prev.Type != e.Type:
			s.Modified = append(s.Modified, e.Name)
		}
	}
	for _, e := range from.Entries {
		if !seen[e.Name] {
			s.Removed = append(s.Removed, e.Name)
		}
	}

	sort.Strings(s.Added)
	sort.Strings(s.Removed)
	sort.Strings(s.Modified)
	return s
}
