package bhav

// UnknownLineageError is returned when a lineage name resolves to no known
// profile, including via aliases. Bad reference data is rejected at the
// boundary, never silently defaulted.
type UnknownLineageError struct {
	Lineage string
}

func (e UnknownLineageError) Error() string {
	if e.Lineage == "" {
		return "unknown lineage"
	}
	return "unknown lineage: " + e.Lineage
}

// UnknownProfileError is returned when a golden profile id is not registered.
type UnknownProfileError struct {
	Profile string
}

func (e UnknownProfileError) Error() string {
	if e.Profile == "" {
		return "unknown golden profile"
	}
	return "unknown golden profile: " + e.Profile
}

// UnsupportedStageError is returned when a non-scoreable stage is submitted
// for evaluation.
type UnsupportedStageError struct {
	Stage string
}

func (e UnsupportedStageError) Error() string {
	return "unsupported stage for scoring: " + e.Stage
}
