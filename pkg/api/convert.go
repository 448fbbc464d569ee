package api

import "github.com/codeready-toolchain/deliberate/pkg/orchestrator"

func orchestratorIterateInput(req iterateWithFeedbackRequest) orchestrator.IterateWithFeedbackInput {
	return orchestrator.IterateWithFeedbackInput{
		Comments:                req.Comments,
		Tone:                    req.Tone,
		Length:                  req.Length,
		Audience:                req.Audience,
		MaxAdditionalIterations: req.MaxAdditionalIterations,
	}
}
