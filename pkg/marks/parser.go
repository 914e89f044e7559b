package marks

import "path/filepath"

// Parse returns the marks in content in file order. Relative paths are joined
// onto projectRoot. Lines that are not marks are skipped; Parse never fails.
func Parse(content, projectRoot string) []Mark {
	var out []Mark
	for _, l := range Scan(content) {
		if !l.IsMark() {
			continue
		}
		out = append(out, Mark{
			Name:     l.RawName(),
			FilePath: Resolve(l.RawPath(), projectRoot),
			Line:     l.Number,
			Index:    l.Ordinal,
		})
	}
	return out
}

// Resolve keeps absolute paths verbatim and joins relative ones onto root.
func Resolve(path, root string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
