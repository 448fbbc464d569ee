package api

import "github.com/codeready-toolchain/deliberate/pkg/models"

type personaConfigRequest struct {
	RootPrompt       string  `json:"rootPrompt"`
	ModelName        string  `json:"modelName"`
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	TopP             float64 `json:"topP"`
	PresencePenalty  float64 `json:"presencePenalty"`
	FrequencyPenalty float64 `json:"frequencyPenalty"`
}

func (r personaConfigRequest) toModel() models.PersonaConfig {
	return models.PersonaConfig{
		RootPrompt:       r.RootPrompt,
		ModelName:        r.ModelName,
		Temperature:      r.Temperature,
		MaxOutputTokens:  r.MaxOutputTokens,
		TopP:             r.TopP,
		PresencePenalty:  r.PresencePenalty,
		FrequencyPenalty: r.FrequencyPenalty,
	}
}

type reviewerConfigRequest struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	personaConfigRequest
}

func (r reviewerConfigRequest) toModel() models.ReviewerConfig {
	return models.ReviewerConfig{
		ID:            r.ID,
		DisplayName:   r.DisplayName,
		PersonaConfig: r.personaConfigRequest.toModel(),
	}
}

type createSessionRequest struct {
	DisplayName            string                  `json:"displayName" binding:"required"`
	Topic                  string                  `json:"topic"`
	MaxIterations          int                     `json:"maxIterations"`
	StopMarker             string                  `json:"stopMarker"`
	StopOnReviewerApproved bool                    `json:"stopOnReviewerApproved"`
	RunMode                string                  `json:"runMode"`
	Creator                personaConfigRequest    `json:"creator"`
	Reviewers              []reviewerConfigRequest `json:"reviewers"`
}

type createModelRequest struct {
	ModelName   string `json:"modelName" binding:"required"`
	DisplayName string `json:"displayName"`
	Endpoint    string `json:"endpoint"`
	Provider    string `json:"provider" binding:"required"`
	APIKey      string `json:"apiKey"`
}

type updateModelRequest struct {
	ModelName   string  `json:"modelName" binding:"required"`
	DisplayName string  `json:"displayName"`
	Endpoint    string  `json:"endpoint"`
	Provider    string  `json:"provider" binding:"required"`
	APIKey      *string `json:"apiKey"`
}

type feedbackRequest struct {
	Iteration int    `json:"iteration" binding:"required"`
	Feedback  string `json:"feedback" binding:"required"`
}

type iterateWithFeedbackRequest struct {
	Comments                string `json:"comments" binding:"required"`
	Tone                    string `json:"tone"`
	Length                  string `json:"length"`
	Audience                string `json:"audience"`
	MaxAdditionalIterations int    `json:"maxAdditionalIterations"`
}
