package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"roadtripgo/pkg/voice"
)

// VoicePrompter exposes the pending yes/no prompt. voice.Prompter satisfies
// this.
type VoicePrompter interface {
	Pending() *voice.PendingPrompt
	Respond(r voice.Response) bool
}

// VoiceHandler bridges driver answers from the UI into the prompt loop.
type VoiceHandler struct {
	prompter VoicePrompter
}

// NewVoiceHandler creates a new VoiceHandler.
func NewVoiceHandler(p VoicePrompter) *VoiceHandler {
	return &VoiceHandler{prompter: p}
}

// PromptResponse represents the currently open prompt, if any.
type PromptResponse struct {
	Open   bool   `json:"open"`
	Prompt string `json:"prompt,omitempty"`
}

// HandlePrompt handles GET /api/voice/prompt
func (h *VoiceHandler) HandlePrompt(w http.ResponseWriter, r *http.Request) {
	resp := PromptResponse{}
	if p := h.prompter.Pending(); p != nil {
		resp.Open = true
		resp.Prompt = p.Prompt
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// RespondRequest represents a driver's answer to the open prompt.
type RespondRequest struct {
	Answer string `json:"answer"` // "yes" or "no"
}

// HandleRespond handles POST /api/voice/respond
func (h *VoiceHandler) HandleRespond(w http.ResponseWriter, r *http.Request) {
	var req RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var answer voice.Response
	switch req.Answer {
	case "yes":
		answer = voice.ResponseYes
	case "no":
		answer = voice.ResponseNo
	default:
		http.Error(w, "answer must be yes or no", http.StatusBadRequest)
		return
	}

	if !h.prompter.Respond(answer) {
		http.Error(w, "no open prompt", http.StatusConflict)
		return
	}

	slog.Debug("API: Voice answer", "answer", req.Answer)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
