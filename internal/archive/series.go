package archive

// SeriesStatus tracks where a distribution series is in its lifecycle.
type SeriesStatus string

const (
	SeriesExperimental SeriesStatus = "experimental"
	SeriesDevelopment  SeriesStatus = "development"
	SeriesFrozen       SeriesStatus = "frozen"
	SeriesCurrent      SeriesStatus = "current"
	SeriesSupported    SeriesStatus = "supported"
	SeriesObsolete     SeriesStatus = "obsolete"
)

// DistroSeries is one release of a distribution, e.g. "noble" in "ubuntu".
type DistroSeries struct {
	Distribution string
	Name         string
	Status       SeriesStatus

	// NominatedArchIndep is the architecture that builds and publishes
	// architecture-independent ("all") binaries for the series.
	NominatedArchIndep string

	// Architectures lists the concrete architecture tags the series builds.
	Architectures []string
}

// HasArchitecture reports whether the series builds the given architecture.
func (s *DistroSeries) HasArchitecture(arch string) bool {
	for _, a := range s.Architectures {
		if a == arch {
			return true
		}
	}
	return false
}

// Released reports whether the series has reached its release milestone.
func (s *DistroSeries) Released() bool {
	switch s.Status {
	case SeriesCurrent, SeriesSupported, SeriesObsolete:
		return true
	}
	return false
}

// CanUploadToPocket applies the lifecycle rule for direct uploads: a
// released series no longer takes uploads to Release or Proposed, and an
// unreleased one does not yet take Security, Updates or Backports.
func (s *DistroSeries) CanUploadToPocket(p Pocket) bool {
	if s.Released() {
		return p != PocketRelease && p != PocketProposed
	}
	return p == PocketRelease || p == PocketProposed
}
