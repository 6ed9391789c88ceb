package plan

import (
	"github.com/shinji-kodama/envstrap/internal/model"
	"github.com/shinji-kodama/envstrap/internal/probe"
)

// SelectInterpreterSource chooses where Python comes from. Ubuntu releases
// at or above threshold ship a sufficient interpreter in their default
// repository; every other release needs the alternate source.
func SelectInterpreterSource(rel model.OSRelease, threshold string) model.Source {
	if rel.IsUbuntu() && probe.AtLeast(rel.VersionID, threshold) {
		return model.SourceDefaultRepo
	}
	return model.SourceAlternate
}
