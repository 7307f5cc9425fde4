package models

const (
	BatchStatusOK    = "ok"
	BatchStatusError = "error"
)

type BatchResult struct {
	Original string   `json:"original"`
	ID       string   `json:"id,omitempty"`
	Filename string   `json:"filename,omitempty"`
	Download string   `json:"download,omitempty"`
	Elapsed  *float64 `json:"time,omitempty"`
	Status   string   `json:"status"`
	Error    string   `json:"error,omitempty"`
}

type BatchResponse struct {
	Processed int           `json:"processed"`
	Results   []BatchResult `json:"results"`
}
