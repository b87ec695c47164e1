package plan

import (
	"fmt"

	"github.com/felixgeelhaar/specplan/internal/domain"
	"github.com/felixgeelhaar/specplan/internal/spec"
)

// Analyze builds the AnalysisReport for a finished plan.
func Analyze(reqs []spec.Requirement, tasks []Task, ep ExecutionPlan) AnalysisReport {
	report := AnalysisReport{
		LowConfidenceTaskIDs: []domain.TaskID{},
		Warnings:             []Warning{},
	}

	for _, t := range tasks {
		switch t.Confidence.Band() {
		case domain.BandHigh:
			report.ByConfidenceBand.High++
		case domain.BandMedium:
			report.ByConfidenceBand.Medium++
		default:
			report.ByConfidenceBand.Low++
			report.LowConfidenceTaskIDs = append(report.LowConfidenceTaskIDs, t.ID)
			if t.SizeCategory == domain.SizeL {
				report.Warnings = append(report.Warnings, Warning{
					Code:    WarnLowConfidenceLarge,
					Subject: t.ID.String(),
					Message: fmt.Sprintf("task %s is size L with confidence %.0f; consider splitting %s", t.ID, t.Confidence.Float(), t.RequirementID),
				})
			}
		}
	}

	known := make(map[domain.RequirementID]bool, len(reqs))
	groupSize := make(map[string]int)
	for _, r := range reqs {
		known[r.ID] = true
		groupSize[r.EpicID+"/"+r.StoryID]++
	}

	for _, r := range reqs {
		if r.IsExempt() {
			report.Warnings = append(report.Warnings, Warning{
				Code:    WarnExemptRequirement,
				Subject: r.ID.String(),
				Message: fmt.Sprintf("requirement %s is exempt (%s) and has no test task", r.ID, r.Exempt),
			})
		}
		for _, ref := range r.InformedBy {
			if !known[domain.RequirementID(ref)] {
				report.Warnings = append(report.Warnings, Warning{
					Code:    WarnUnresolvedInformedBy,
					Subject: r.ID.String(),
					Message: fmt.Sprintf("requirement %s is informed by unknown requirement %s", r.ID, ref),
				})
			}
		}
		if r.CrossCutting && groupSize[r.EpicID+"/"+r.StoryID] == 1 {
			report.Warnings = append(report.Warnings, Warning{
				Code:    WarnIsolatedCrossCutting,
				Subject: r.ID.String(),
				Message: fmt.Sprintf("requirement %s is cross-cutting but is the only requirement in its story", r.ID),
			})
		}
	}

	if len(ep.Batches) > 1 {
		for i, b := range ep.Batches {
			if len(b) == 1 {
				report.Warnings = append(report.Warnings, Warning{
					Code:    WarnSerialBottleneck,
					Subject: b[0].String(),
					Message: fmt.Sprintf("batch %d contains only %s", i+1, b[0]),
				})
			}
		}
	}

	return report
}
