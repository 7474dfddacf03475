package report

// ModuleInput names one module findings file feeding the combined
// output. Order matters: the combined file preserves it.
type ModuleInput struct {
	Module string
	Path   string
}

// CombineFindings concatenates module findings into the canonical
// combined file, stamping each row with its source_module. Missing and
// empty module files are skipped. The file is written even when no
// module produced findings, so downstream readers always find it.
func CombineFindings(inputs []ModuleInput, outPath string) error {
	var combined []Row
	for _, in := range inputs {
		rows, err := LoadFindings(in.Path)
		if err != nil {
			return err
		}
		for _, row := range rows {
			row.SourceModule = in.Module
			combined = append(combined, row)
		}
	}

	header := append(append([]string{}, findingColumns...), "source_module")
	records := make([][]string, 0, len(combined))
	for _, row := range combined {
		records = append(records, row.record())
	}
	return writeCSV(outPath, header, records)
}

// LoadCombined reads the combined findings file. A missing file reads
// as no findings, matching LoadFindings.
func LoadCombined(path string) ([]Row, error) {
	return LoadFindings(path)
}
