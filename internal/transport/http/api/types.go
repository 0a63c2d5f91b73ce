package api

// ChatResponse carries the model's conversational answer.
type ChatResponse struct {
	Response string `json:"response"`
}

// TranscribeResponse carries the recognized text.
type TranscribeResponse struct {
	Text string `json:"text"`
}

// ShareResponse carries the code under which an analysis was published.
type ShareResponse struct {
	ShareCode string `json:"shareCode"`
}

// SystemStatus is the health/status report for the service.
type SystemStatus struct {
	Status        string   `json:"status"`
	Providers     []string `json:"providers"`
	SharedStorage bool     `json:"sharedStorage"`
	CPUPercent    float64  `json:"cpuPercent"`
	MemoryPercent float64  `json:"memoryPercent"`
}
