// Package jobs defines the asynchronous job boundary between the API process
// and the audio-generation workers. A task payload is a self-contained job
// descriptor; the dispatcher never awaits a result.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskLeadAudio is the task type for per-lead audio generation.
const TaskLeadAudio = "campaign:lead_audio"

// LeadAudioPayload carries everything a worker needs to generate the audio
// variants for one lead.
type LeadAudioPayload struct {
	LeadID            string `json:"leadId"`
	VoiceGroupID      string `json:"voiceGroupId"`
	TemplateNoAMD     string `json:"templateNoAmd"`
	TemplateAMD       string `json:"templateAmd"`
	TemplateTransfer  string `json:"templateTransfer"`
	TemplateVoicemail string `json:"templateVoicemail"`
	LLMEnabled        bool   `json:"llmEnabled"`
}

// NewLeadAudioTask builds the asynq task for a lead audio job.
func NewLeadAudioTask(payload LeadAudioPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadAudio, data), nil
}

// ParseLeadAudioPayload decodes a lead audio task payload.
func ParseLeadAudioPayload(task *asynq.Task) (LeadAudioPayload, error) {
	var payload LeadAudioPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadAudioPayload{}, err
	}
	return payload, nil
}
