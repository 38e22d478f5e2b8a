package model

import "encoding/json"

// ProfileInferenceResult is the final output of one pipeline run.
// Error and RawResponse are only set when the reply could not be reconciled.
type ProfileInferenceResult struct {
	Profile         Profile          `json:"profile"`
	Recommendations []Recommendation `json:"recommendations"`
	Error           string           `json:"error,omitempty"`
	RawResponse     string           `json:"raw_response,omitempty"`
}

// NewErrorResult builds a result that carries only an error and the raw reply.
func NewErrorResult(msg, raw string) *ProfileInferenceResult {
	return &ProfileInferenceResult{
		Profile:         Profile{},
		Recommendations: []Recommendation{},
		Error:           msg,
		RawResponse:     raw,
	}
}

// Failed reports whether the run could not recover structured data.
func (r *ProfileInferenceResult) Failed() bool {
	return r.Error != ""
}

// MarshalJSON keeps profile and recommendations as {} and [] rather than null.
func (r ProfileInferenceResult) MarshalJSON() ([]byte, error) {
	type alias ProfileInferenceResult
	out := alias(r)
	if out.Profile == nil {
		out.Profile = Profile{}
	}
	if out.Recommendations == nil {
		out.Recommendations = []Recommendation{}
	}
	return json.Marshal(out)
}
