package ai

import (
	"fmt"
	"strings"
)

// Feature identifies an AI generation capability.
type Feature string

const (
	FeatureRewrite     Feature = "rewrite"
	FeatureSummary     Feature = "summary"
	FeatureATSAnalysis Feature = "ats_analysis"
)

// ParseFeature validates a feature name from the URL.
func ParseFeature(s string) (Feature, bool) {
	switch Feature(s) {
	case FeatureRewrite, FeatureSummary, FeatureATSAnalysis:
		return Feature(s), true
	}
	return "", false
}

const (
	rewriteSystemPrompt = `You are an expert resume editor. Rewrite the resume content you are given
so that each bullet point starts with a strong action verb, quantifies impact where the source
material allows it, and stays truthful to the original. Return only the rewritten content.`

	summarySystemPrompt = `You are an expert resume writer. Write a professional summary of at most
four sentences for the candidate described below. Highlight their strongest skills and most
recent experience. Return only the summary text.`

	atsSystemPrompt = `You are an applicant tracking system (ATS) expert. Analyze the resume below
and report: missing keywords for the target role, formatting issues that could break automated
parsing, and a match score from 0 to 100. Structure the answer with short headed sections.`
)

func promptsFor(feature Feature, resumeText, instructions string) (system, user string) {
	switch feature {
	case FeatureRewrite:
		system = rewriteSystemPrompt
	case FeatureSummary:
		system = summarySystemPrompt
	case FeatureATSAnalysis:
		system = atsSystemPrompt
	}

	var b strings.Builder
	b.WriteString(resumeText)
	if instructions != "" {
		fmt.Fprintf(&b, "\n\nAdditional instructions: %s", instructions)
	}
	return system, b.String()
}
