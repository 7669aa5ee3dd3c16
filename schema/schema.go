package schema

// Annotation is attached to fields and tables to carry dialect specific
// settings that the core column model does not describe.
type Annotation interface {
	// Name identifies the annotation. Annotations with the same name
	// are merged (see Merger) or replaced by the last one.
	Name() string
}

// Merger is implemented by annotations that accumulate instead of being
// replaced when the same annotation is set more than once.
type Merger interface {
	Merge(Annotation) Annotation
}

// Merge folds the given annotations into a list keyed by name. Later
// annotations replace earlier ones unless the earlier one is a Merger.
func Merge(ants ...Annotation) []Annotation {
	var (
		out []Annotation
		idx = make(map[string]int, len(ants))
	)
	for _, a := range ants {
		if a == nil {
			continue
		}
		i, ok := idx[a.Name()]
		if !ok {
			idx[a.Name()] = len(out)
			out = append(out, a)
			continue
		}
		if m, ok := out[i].(Merger); ok {
			out[i] = m.Merge(a)
		} else {
			out[i] = a
		}
	}
	return out
}
