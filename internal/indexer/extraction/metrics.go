package extraction

// NewFileMetrics returns FileMetrics with element and complexity rollups computed
// from elements. Line counters are left for the caller.
func NewFileMetrics(elements []Element, imports []ImportRecord) FileMetrics {
	m := FileMetrics{
		ElementCount: len(elements),
		KindCounts:   make(map[ElementKind]int),
		ImportCount:  len(imports),
	}

	for i := range elements {
		e := &elements[i]
		m.KindCounts[e.Kind]++

		if e.Complexity == nil {
			continue
		}
		m.ComplexElements++
		m.TotalCyclomatic += e.Complexity.Cyclomatic
		m.TotalCognitive += e.Complexity.Cognitive
		m.MaxCyclomatic = max(m.MaxCyclomatic, e.Complexity.Cyclomatic)
		m.MaxCognitive = max(m.MaxCognitive, e.Complexity.Cognitive)
	}

	if m.ComplexElements > 0 {
		m.AverageCyclomatic = float64(m.TotalCyclomatic) / float64(m.ComplexElements)
		m.AverageCognitive = float64(m.TotalCognitive) / float64(m.ComplexElements)
	}

	return m
}

// NewProjectMetrics sums the metrics of files. Averages are weighted by the number
// of complexity-carrying elements, not by file.
func NewProjectMetrics(files []FileModel) ProjectMetrics {
	pm := ProjectMetrics{
		FileCount:  len(files),
		KindCounts: make(map[ElementKind]int),
	}

	for i := range files {
		fm := &files[i].Metrics
		pm.TotalLines += fm.TotalLines
		pm.CodeLines += fm.CodeLines
		pm.CommentLines += fm.CommentLines
		pm.BlankLines += fm.BlankLines
		pm.ElementCount += fm.ElementCount
		pm.ImportCount += fm.ImportCount
		for kind, n := range fm.KindCounts {
			pm.KindCounts[kind] += n
		}

		pm.ComplexElements += fm.ComplexElements
		pm.TotalCyclomatic += fm.TotalCyclomatic
		pm.TotalCognitive += fm.TotalCognitive
		pm.MaxCyclomatic = max(pm.MaxCyclomatic, fm.MaxCyclomatic)
		pm.MaxCognitive = max(pm.MaxCognitive, fm.MaxCognitive)
	}

	if pm.ComplexElements > 0 {
		pm.AverageCyclomatic = float64(pm.TotalCyclomatic) / float64(pm.ComplexElements)
		pm.AverageCognitive = float64(pm.TotalCognitive) / float64(pm.ComplexElements)
	}

	return pm
}
