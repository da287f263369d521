package recruitment

import (
	"time"

	"github.com/jonathan/faculty-recruitment/internal/types"
)

// BuildSnapshot copies the requirement-bearing parts of a job into a
// JobSnapshot. The job must exist, be published and accepting applications at now.
// Slices are deep-copied so later edits of the job cannot reach the
// snapshot.
func BuildSnapshot(job *types.Job, now time.Time) (types.JobSnapshot, error) {
	if job == nil {
		return types.JobSnapshot{}, &NotFoundError{Resource: "job"}
	}
	if job.Status != types.JobStatusPublished {
		return types.JobSnapshot{}, &StateError{Message: "job is not accepting applications (status " + string(job.Status) + ")"}
	}
	if now.Before(job.ApplicationStartDate) {
		return types.JobSnapshot{}, &StateError{Message: "applications open on " + job.ApplicationStartDate.UTC().Format(time.RFC3339)}
	}
	if now.After(job.ApplicationEndDate) {
		return types.JobSnapshot{}, &StateError{Message: "application deadline has passed"}
	}

	return types.JobSnapshot{
		Title:             job.Title,
		AdvertisementCode: job.AdvertisementCode,
		DepartmentName:    job.DepartmentName,
		RequiredSections:  copyRequirements(job.RequiredSections),
		CustomFields:      copyCustomFields(job.CustomFields),
		CapturedAt:        now.UTC(),
	}, nil
}

func copyRequirements(in []types.SectionRequirement) []types.SectionRequirement {
	out := make([]types.SectionRequirement, len(in))
	copy(out, in)
	return out
}

func copyCustomFields(in []types.CustomFieldDefinition) []types.CustomFieldDefinition {
	out := make([]types.CustomFieldDefinition, len(in))
	for i, def := range in {
		def.Options = append([]string(nil), def.Options...)
		out[i] = def
	}
	return out
}
