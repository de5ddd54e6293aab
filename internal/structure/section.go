package structure

// Section is a header-delimited run of elements. Level is the section
// header's level, or zero for a headerless preamble section. The header
// element itself is the first entry in Elements.
type Section struct {
	Level    int
	Elements []Element
}

// Group folds a flat element sequence into sections, preserving header
// hierarchy: a header opens a new section only when its level is less than or
// equal to the open section's level. Deeper headers stay inside the current
// section instead of flattening the outline.
func Group(elems []Element) []Section {
	var secs []Section
	for _, el := range elems {
		if el.Kind == KindHeader && startsSection(secs, el.Level) {
			secs = append(secs, Section{Level: el.Level, Elements: []Element{el}})
			continue
		}
		if len(secs) == 0 {
			secs = append(secs, Section{})
		}
		cur := &secs[len(secs)-1]
		cur.Elements = append(cur.Elements, el)
	}
	return secs
}

func startsSection(secs []Section, level int) bool {
	if len(secs) == 0 {
		return true
	}
	cur := secs[len(secs)-1]
	// A headerless preamble section is always closed by a header.
	if cur.Level == 0 {
		return true
	}
	return level <= cur.Level
}
