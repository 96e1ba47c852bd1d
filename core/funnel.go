package core

import "github.com/skillpulse/skillpulse/schema"

// ComputeFunnel computes stage percentages against the first stage and
// conversion between adjacent stages. The input slice is not modified.
func ComputeFunnel(stages []schema.FunnelStage) schema.FunnelResult {
	result := schema.FunnelResult{
		Stages:      make([]schema.StageResult, len(stages)),
		Conversions: make([]schema.StageConversion, 0, max(len(stages)-1, 0)),
	}
	if len(stages) == 0 {
		return result
	}

	base := float64(stages[0].Count)
	for i, s := range stages {
		result.Stages[i] = schema.StageResult{
			Stage:      s.Stage,
			Count:      s.Count,
			Percentage: Percent(float64(s.Count), base),
		}
	}

	for i := 0; i+1 < len(stages); i++ {
		from, to := stages[i], stages[i+1]
		conversion := Percent(float64(to.Count), float64(from.Count))
		result.Conversions = append(result.Conversions, schema.StageConversion{
			FromStage:      from.Stage,
			ToStage:        to.Stage,
			FromCount:      from.Count,
			ToCount:        to.Count,
			ConversionRate: conversion,
			DropOffRate:    100 - conversion,
		})
	}

	result.HighestDropOff = HighestDropOff(result.Conversions)
	return result
}

// HighestDropOff returns the first conversion with the largest drop-off, or nil when empty.
func HighestDropOff(conversions []schema.StageConversion) *schema.StageConversion {
	if len(conversions) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(conversions); i++ {
		if conversions[i].DropOffRate > conversions[best].DropOffRate {
			best = i
		}
	}
	highest := conversions[best]
	return &highest
}

// dropOffFromAnalysis picks the provider's highest precomputed drop-off.
// It is used when the journey funnel has fewer than two stages.
func dropOffFromAnalysis(entries []schema.DropOffEntry) *schema.StageConversion {
	var best *schema.DropOffEntry
	for i := range entries {
		if best == nil || entries[i].DropOffRate > best.DropOffRate {
			best = &entries[i]
		}
	}
	if best == nil {
		return nil
	}
	return &schema.StageConversion{
		FromStage:      best.Stage,
		ToStage:        best.NextStage,
		FromCount:      best.Count,
		ConversionRate: 100 - best.DropOffRate,
		DropOffRate:    best.DropOffRate,
	}
}
